// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package content loads concept entries from markdown files with YAML
// frontmatter and validates them against the permissive or strict schema.
package content

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/concepts/internal/logger"
	"github.com/pdiddy/concepts/pkg/types"
)

const markdownExt = ".md"

// Collection is a validated set of concepts, sorted by category then title.
type Collection struct {
	Concepts []types.Concept
	Mode     types.SchemaMode
}

// Len returns the number of concepts.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Concepts)
}

// Categories returns the distinct category names in sorted order.
func (c *Collection) Categories() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, concept := range c.Concepts {
		if !seen[concept.Category] {
			seen[concept.Category] = true
			names = append(names, concept.Category)
		}
	}
	sort.Strings(names)
	return names
}

// ByCategory groups concepts by category, preserving collection order.
func (c *Collection) ByCategory() map[string][]types.Concept {
	out := make(map[string][]types.Concept)
	if c == nil {
		return out
	}
	for _, concept := range c.Concepts {
		out[concept.Category] = append(out[concept.Category], concept)
	}
	return out
}

// Get returns the concept with the given slug.
func (c *Collection) Get(slug string) (types.Concept, bool) {
	if c == nil {
		return types.Concept{}, false
	}
	for _, concept := range c.Concepts {
		if concept.Slug == slug {
			return concept, true
		}
	}
	return types.Concept{}, false
}

// NewCollection sorts concepts and wraps them in a Collection.
func NewCollection(concepts []types.Concept, mode types.SchemaMode) *Collection {
	sorted := append([]types.Concept(nil), concepts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Category != sorted[j].Category {
			return sorted[i].Category < sorted[j].Category
		}
		if sorted[i].Title != sorted[j].Title {
			return sorted[i].Title < sorted[j].Title
		}
		return sorted[i].Slug < sorted[j].Slug
	})
	return &Collection{Concepts: sorted, Mode: mode}
}

// Load reads every markdown file under cfg.Dir, parses files concurrently,
// and validates them against cfg.Schema. Any rejected file makes Load fail
// with a *ValidationError listing every problem found.
func Load(ctx context.Context, cfg types.ContentConfig, log *logger.Logger) (*Collection, error) {
	log = logger.OrNop(log)
	mode := cfg.Schema
	if mode == "" {
		mode = types.SchemaPermissive
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown schema mode %q: use permissive or strict", mode)
	}

	paths, err := markdownFiles(cfg.Dir)
	if err != nil {
		return nil, err
	}

	type parsed struct {
		concept  types.Concept
		problems []Problem
	}
	results := make([]parsed, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}
	g.SetLimit(workers)

	for i, rel := range paths {
		i, rel := i, rel // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			concept, problems, err := loadFile(cfg.Dir, rel, mode)
			if err != nil {
				return err
			}
			results[i] = parsed{concept: concept, problems: problems}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		concepts []types.Concept
		problems []Problem
		slugs    = make(map[string]string)
	)
	for _, r := range results {
		if len(r.problems) > 0 {
			problems = append(problems, r.problems...)
			continue
		}
		if other, dup := slugs[r.concept.Slug]; dup {
			problems = append(problems, Problem{
				Path:    r.concept.Path,
				Message: fmt.Sprintf("slug %q already used by %s", r.concept.Slug, other),
			})
			continue
		}
		slugs[r.concept.Slug] = r.concept.Path
		concepts = append(concepts, r.concept)
	}

	if len(problems) > 0 {
		for _, p := range problems {
			log.Warn("rejected concept", "path", p.Path, "field", p.Field, "reason", p.Message)
		}
		return nil, &ValidationError{Problems: problems}
	}

	log.Debug("loaded concepts", "dir", cfg.Dir, "schema", string(mode), "count", len(concepts))
	return NewCollection(concepts, mode), nil
}

// markdownFiles returns the sorted relative paths of markdown files under
// dir. Hidden entries and entries starting with "_" are skipped.
func markdownFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if path != dir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(name), markdownExt) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading content directory %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// loadFile reads and validates one concept file. Read failures are errors;
// malformed content is reported as problems.
func loadFile(dir, rel string, mode types.SchemaMode) (types.Concept, []Problem, error) {
	full := filepath.Join(dir, rel)
	info, err := os.Stat(full)
	if err != nil {
		return types.Concept{}, nil, fmt.Errorf("reading %s: %w", rel, err)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return types.Concept{}, nil, fmt.Errorf("reading %s: %w", rel, err)
	}

	relSlash := filepath.ToSlash(rel)
	if Slug(relSlash) == "" {
		return types.Concept{}, []Problem{{Path: relSlash, Message: "file name has no letters or digits to build a slug from"}}, nil
	}
	fm, body, err := ParseFile(data)
	if err != nil {
		return types.Concept{}, []Problem{{Path: relSlash, Message: err.Error()}}, nil
	}
	if problems := Validate(relSlash, fm, mode); len(problems) > 0 {
		return types.Concept{}, problems, nil
	}

	concept := Build(relSlash, fm, body)
	concept.ModTime = info.ModTime()
	return concept, nil, nil
}

// Build turns validated frontmatter into a Concept, filling the permissive
// fallbacks: title from the first heading or the slug, the Uncategorized
// category, and an empty keyword list.
func Build(rel string, fm types.Frontmatter, body string) types.Concept {
	slug := Slug(rel)
	c := types.Concept{
		Slug:        slug,
		Category:    strings.TrimSpace(fm.Category),
		Title:       strings.TrimSpace(fm.Title),
		Description: strings.TrimSpace(fm.Description),
		Keywords:    make([]string, 0, len(fm.Keywords)),
		Body:        body,
		Path:        rel,
	}
	for _, k := range fm.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			c.Keywords = append(c.Keywords, k)
		}
	}
	if c.Category == "" {
		c.Category = types.Uncategorized
	}
	if c.Title == "" {
		c.Title = FirstHeading(body)
	}
	if c.Title == "" {
		c.Title = TitleFromSlug(slug)
	}
	return c
}
