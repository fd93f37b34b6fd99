// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the concepts site.
//
// A Concept is one markdown-backed content record. Its frontmatter carries
// the category, title, description, and keywords; the body is kept as raw
// markdown for full-text indexing.
package types

import "time"

// AllCategories is the wildcard category: no category filter is applied.
const AllCategories = "All"

// Uncategorized is the category assigned to permissive entries that omit one.
const Uncategorized = "Uncategorized"

// SchemaMode selects how strictly concept frontmatter is validated.
type SchemaMode string

const (
	// SchemaPermissive accepts partial entries; every field is optional and
	// keywords default to an empty list. Used while migrating legacy content.
	SchemaPermissive SchemaMode = "permissive"

	// SchemaStrict requires category, title, and description, and at least
	// one keyword.
	SchemaStrict SchemaMode = "strict"
)

// Valid reports whether m names a known schema mode.
func (m SchemaMode) Valid() bool {
	return m == SchemaPermissive || m == SchemaStrict
}

// Frontmatter is the YAML header of a concept file as written by authors.
// Every field is optional at the decoding level; SchemaMode decides which
// ones are required.
type Frontmatter struct {
	Category    string   `json:"category,omitempty" yaml:"category,omitempty" validate:"notblank"`
	Title       string   `json:"title,omitempty" yaml:"title,omitempty" validate:"notblank"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" validate:"notblank"`
	Keywords    []string `json:"keywords" yaml:"keywords" validate:"required,min=1,dive,notblank"`
}

// Concept is a loaded, validated concept entry.
type Concept struct {
	// Slug is the stable identifier derived from the file's relative path.
	Slug string `json:"slug" yaml:"slug"`

	// Category is the concept's category; never empty after loading.
	Category string `json:"category" yaml:"category"`

	// Title is the display title; never empty after loading.
	Title string `json:"title" yaml:"title"`

	// Description is a one-paragraph summary. May be empty in permissive mode.
	Description string `json:"description" yaml:"description"`

	// Keywords are search terms attached to the concept. Never nil.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Body is the raw markdown following the frontmatter.
	Body string `json:"-" yaml:"-"`

	// Path is the source file path relative to the content directory.
	Path string `json:"path" yaml:"path"`

	// ModTime is the source file's modification time, used for incremental indexing.
	ModTime time.Time `json:"-" yaml:"-"`
}
