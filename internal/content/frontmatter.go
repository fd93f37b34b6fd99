// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package content

import (
	"bytes"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/concepts/pkg/types"
)

const fenceLine = "---"

// SplitFrontmatter separates a leading "---" fenced YAML block from the
// markdown body. A file without a leading fence has no frontmatter and the
// whole file is the body.
func SplitFrontmatter(data []byte) (header []byte, body string, err error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	if !strings.HasPrefix(text, fenceLine+"\n") {
		return nil, text, nil
	}
	rest := text[len(fenceLine)+1:]

	// The closing fence may be the first line of rest (empty header).
	if strings.HasPrefix(rest, fenceLine+"\n") || rest == fenceLine {
		return []byte{}, strings.TrimPrefix(strings.TrimPrefix(rest, fenceLine), "\n"), nil
	}
	end := strings.Index(rest, "\n"+fenceLine+"\n")
	if end < 0 {
		if strings.HasSuffix(rest, "\n"+fenceLine) {
			return []byte(rest[:len(rest)-len(fenceLine)-1]), "", nil
		}
		return nil, "", fmt.Errorf("frontmatter is not closed by %q", fenceLine)
	}
	return []byte(rest[:end]), rest[end+len(fenceLine)+2:], nil
}

// ParseFile decodes the frontmatter of a concept file and returns it along
// with the markdown body.
func ParseFile(data []byte) (types.Frontmatter, string, error) {
	header, body, err := SplitFrontmatter(data)
	if err != nil {
		return types.Frontmatter{}, "", err
	}
	var fm types.Frontmatter
	if len(bytes.TrimSpace(header)) > 0 {
		if err := yaml.Unmarshal(header, &fm); err != nil {
			return types.Frontmatter{}, "", fmt.Errorf("parsing frontmatter: %w", err)
		}
	}
	return fm, strings.TrimLeft(body, "\n"), nil
}

// FirstHeading returns the text of the first level-one markdown heading in
// body, or "" when there is none.
func FirstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}
	}
	return ""
}
