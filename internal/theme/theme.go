// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package theme holds the site's design tokens and renders them as CSS
// custom properties or as a Tailwind theme extension.
package theme

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v3"
)

// Color is a color token with optional foreground and hover variants. In
// YAML a bare string sets only the default.
type Color struct {
	Default    string `json:"DEFAULT" yaml:"default" validate:"required,iscolor"`
	Foreground string `json:"foreground,omitempty" yaml:"foreground,omitempty" validate:"omitempty,iscolor"`
	Hover      string `json:"hover,omitempty" yaml:"hover,omitempty" validate:"omitempty,iscolor"`
}

// UnmarshalYAML accepts a scalar or a mapping.
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Default = node.Value
		return nil
	}
	type plain Color
	return node.Decode((*plain)(c))
}

// Tokens is the full set of design tokens.
type Tokens struct {
	DarkMode string            `json:"darkMode" yaml:"dark_mode" validate:"omitempty,oneof=class media"`
	Colors   map[string]Color  `json:"colors" yaml:"colors" validate:"dive"`
	Shadows  map[string]string `json:"boxShadow" yaml:"shadows"`
	Radii    map[string]string `json:"borderRadius" yaml:"radii"`
	FontSans []string          `json:"fontSans" yaml:"font_sans"`

	// Prose maps typography variables to color references of the form
	// "name", "name.variant", or "name / alpha".
	Prose map[string]string `json:"prose" yaml:"prose"`
}

// Default returns the built-in tokens.
func Default() Tokens {
	return Tokens{
		DarkMode: "class",
		Colors: map[string]Color{
			"border":     {Default: "#e5e7eb"},
			"input":      {Default: "#e5e7eb"},
			"ring":       {Default: "#6366f1"},
			"background": {Default: "#ffffff"},
			"foreground": {Default: "#111827"},
			"heading":    {Default: "#111827"},
			"link":       {Default: "#6366f1", Hover: "#4f46e5"},
			"muted":      {Default: "#f3f4f6", Foreground: "#6b7280"},
			"accent":     {Default: "#6366f1", Foreground: "#ffffff", Hover: "#4f46e5"},
			"popover":    {Default: "#ffffff", Foreground: "#111827"},
			"card":       {Default: "#ffffff", Foreground: "#111827"},
			"primary":    {Default: "#6366f1", Foreground: "#ffffff", Hover: "#4f46e5"},
			"success":    {Default: "#16a34a"},
			"warning":    {Default: "#f59e0b"},
			"error":      {Default: "#dc2626"},
			"info":       {Default: "#3b82f6"},
		},
		Shadows: map[string]string{
			"s-0": "none",
			"s-1": "0 1px 2px rgba(0,0,0,.14), 0 1px 1px rgba(0,0,0,.08)",
			"s-2": "0 6px 12px rgba(0,0,0,.18)",
			"s-3": "0 18px 42px rgba(0,0,0,.28)",
		},
		Radii: map[string]string{
			"lg": "0.5rem",
			"md": "0.375rem",
			"sm": "0.25rem",
		},
		FontSans: []string{
			"Inter", "ui-sans-serif", "system-ui", "sans-serif",
			"Apple Color Emoji", "Segoe UI Emoji", "Segoe UI Symbol", "Noto Color Emoji",
		},
		Prose: map[string]string{
			"body":          "foreground / 0.85",
			"headings":      "heading",
			"lead":          "foreground",
			"links":         "link",
			"bold":          "foreground",
			"counters":      "muted.foreground",
			"bullets":       "border",
			"hr":            "border",
			"quotes":        "foreground",
			"quote-borders": "border",
			"captions":      "muted.foreground",
			"code":          "foreground",
			"pre-code":      "foreground",
			"pre-bg":        "muted",
			"th-borders":    "border",
			"td-borders":    "border",
		},
	}
}

// Load returns the default tokens overlaid with the YAML file at path. An
// empty path returns the defaults. Overlay colors replace only the
// variants they set.
func Load(path string) (Tokens, error) {
	t := Default()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tokens{}, fmt.Errorf("reading theme file: %w", err)
	}
	var overlay Tokens
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Tokens{}, fmt.Errorf("parsing theme file %s: %w", path, err)
	}

	t.merge(overlay)
	if err := t.Validate(); err != nil {
		return Tokens{}, fmt.Errorf("theme file %s: %w", path, err)
	}
	return t, nil
}

func (t *Tokens) merge(o Tokens) {
	if o.DarkMode != "" {
		t.DarkMode = o.DarkMode
	}
	for name, c := range o.Colors {
		base := t.Colors[name]
		if c.Default != "" {
			base.Default = c.Default
		}
		if c.Foreground != "" {
			base.Foreground = c.Foreground
		}
		if c.Hover != "" {
			base.Hover = c.Hover
		}
		t.Colors[name] = base
	}
	for k, v := range o.Shadows {
		t.Shadows[k] = v
	}
	for k, v := range o.Radii {
		t.Radii[k] = v
	}
	for k, v := range o.Prose {
		t.Prose[k] = v
	}
	if len(o.FontSans) > 0 {
		t.FontSans = o.FontSans
	}
}

var validate = validator.New()

// Validate checks every color value and the dark mode setting.
func (t Tokens) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid tokens: %w", err)
	}
	for name, ref := range t.Prose {
		if _, err := t.resolve(ref); err != nil {
			return fmt.Errorf("prose %s: %w", name, err)
		}
	}
	return nil
}

// CSS renders the tokens as custom properties on :root, followed by a
// .prose block mapping typography variables onto the color properties.
func (t Tokens) CSS() string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, name := range sortedKeys(t.Colors) {
		c := t.Colors[name]
		writeProp(&b, "color-"+name, c.Default)
		if c.Foreground != "" {
			writeProp(&b, "color-"+name+"-foreground", c.Foreground)
		}
		if c.Hover != "" {
			writeProp(&b, "color-"+name+"-hover", c.Hover)
		}
	}
	for _, name := range sortedKeys(t.Shadows) {
		writeProp(&b, "shadow-"+name, t.Shadows[name])
	}
	for _, name := range sortedKeys(t.Radii) {
		writeProp(&b, "radius-"+name, t.Radii[name])
	}
	writeProp(&b, "font-sans", fontStack(t.FontSans))
	b.WriteString("}\n")

	if len(t.Prose) > 0 {
		b.WriteString("\n.prose {\n")
		for _, name := range sortedKeys(t.Prose) {
			value, err := t.resolve(t.Prose[name])
			if err != nil {
				continue
			}
			writeProp(&b, "tw-prose-"+name, value)
		}
		b.WriteString("}\n")
	}
	return b.String()
}

// TailwindJSON renders the tokens as a Tailwind config fragment with
// darkMode and theme.extend.
func (t Tokens) TailwindJSON() ([]byte, error) {
	colors := make(map[string]any, len(t.Colors))
	for name, c := range t.Colors {
		if c.Foreground == "" && c.Hover == "" {
			colors[name] = c.Default
			continue
		}
		colors[name] = c
	}

	config := map[string]any{
		"darkMode": t.DarkMode,
		"theme": map[string]any{
			"extend": map[string]any{
				"colors":       colors,
				"boxShadow":    t.Shadows,
				"borderRadius": t.Radii,
				"fontFamily":   map[string][]string{"sans": t.FontSans},
			},
		},
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(config); err != nil {
		return nil, fmt.Errorf("encoding tailwind config: %w", err)
	}
	return buf.Bytes(), nil
}

// resolve turns a color reference into a CSS value using var() references.
func (t Tokens) resolve(ref string) (string, error) {
	name, alpha, hasAlpha := strings.Cut(ref, "/")
	name = strings.TrimSpace(name)
	color, variant, _ := strings.Cut(name, ".")

	c, ok := t.Colors[color]
	if !ok {
		return "", fmt.Errorf("unknown color %q", color)
	}
	prop := "--color-" + color
	switch variant {
	case "", "DEFAULT":
	case "foreground", "hover":
		if (variant == "foreground" && c.Foreground == "") || (variant == "hover" && c.Hover == "") {
			return "", fmt.Errorf("color %q has no %s variant", color, variant)
		}
		prop += "-" + variant
	default:
		return "", fmt.Errorf("unknown variant %q of color %q", variant, color)
	}

	if !hasAlpha {
		return "var(" + prop + ")", nil
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(alpha), 64)
	if err != nil || a < 0 || a > 1 {
		return "", fmt.Errorf("invalid alpha %q", strings.TrimSpace(alpha))
	}
	pct := strconv.FormatFloat(math.Round(a*10000)/100, 'f', -1, 64)
	return "color-mix(in srgb, var(" + prop + ") " + pct + "%, transparent)", nil
}

func writeProp(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "  --%s: %s;\n", name, value)
}

func fontStack(fonts []string) string {
	quoted := make([]string, len(fonts))
	for i, f := range fonts {
		if strings.ContainsAny(f, " \t") {
			f = strconv.Quote(f)
		}
		quoted[i] = f
	}
	return strings.Join(quoted, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
