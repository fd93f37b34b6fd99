// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/concepts/pkg/types"
)

// --- test helpers ---

func writeConcept(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const bfsConcept = `---
category: Algorithms
title: Breadth-First Search
description: Level-by-level graph traversal.
keywords: [graph, traversal, queue]
---

# Breadth-First Search

BFS visits every vertex at distance k before distance k+1.
`

const eigenConcept = `---
category: Math
title: Eigenvalues
description: Scalars that a linear map stretches eigenvectors by.
keywords:
  - linear algebra
  - spectrum
---
An eigenvector v of A satisfies Av = λv.
`

// --- frontmatter ---

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantHeader string
		wantBody   string
		wantErr    bool
	}{
		{
			name:       "header and body",
			input:      "---\ntitle: x\n---\nbody\n",
			wantHeader: "title: x",
			wantBody:   "body\n",
		},
		{
			name:     "no frontmatter",
			input:    "# Heading\ntext",
			wantBody: "# Heading\ntext",
		},
		{
			name:     "empty frontmatter",
			input:    "---\n---\nbody",
			wantBody: "body",
		},
		{
			name:       "closing fence at end of file",
			input:      "---\ncategory: Math\n---",
			wantHeader: "category: Math",
		},
		{
			name:       "windows line endings",
			input:      "---\r\ntitle: x\r\n---\r\nbody",
			wantHeader: "title: x",
			wantBody:   "body",
		},
		{
			name:       "byte order mark",
			input:      "\xef\xbb\xbf---\ntitle: x\n---\nbody",
			wantHeader: "title: x",
			wantBody:   "body",
		},
		{
			name:    "unclosed",
			input:   "---\ntitle: x\nbody",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, body, err := SplitFrontmatter([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeader, string(header))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestParseFile(t *testing.T) {
	fm, body, err := ParseFile([]byte(bfsConcept))
	require.NoError(t, err)
	assert.Equal(t, "Algorithms", fm.Category)
	assert.Equal(t, "Breadth-First Search", fm.Title)
	assert.Equal(t, []string{"graph", "traversal", "queue"}, fm.Keywords)
	assert.True(t, strings.HasPrefix(body, "# Breadth-First Search"))
}

func TestParseFileRejectsBadYAML(t *testing.T) {
	_, _, err := ParseFile([]byte("---\nkeywords: {oops\n---\n"))
	assert.Error(t, err)

	_, _, err = ParseFile([]byte("---\nkeywords: not-a-list\n---\n"))
	assert.Error(t, err)
}

func TestFirstHeading(t *testing.T) {
	assert.Equal(t, "Graph Coloring", FirstHeading("intro\n\n# Graph Coloring\n## Sub"))
	assert.Equal(t, "", FirstHeading("## Only second level"))
}

// --- schema ---

func TestCategoryOnlyEntry(t *testing.T) {
	fm := types.Frontmatter{Category: "Math"}

	assert.Empty(t, Validate("math.md", fm, types.SchemaPermissive))

	problems := Validate("math.md", fm, types.SchemaStrict)
	require.Len(t, problems, 3)
	fields := []string{problems[0].Field, problems[1].Field, problems[2].Field}
	assert.Equal(t, []string{"description", "keywords", "title"}, fields)
}

func TestStrictRejectsWhitespaceFields(t *testing.T) {
	fm := types.Frontmatter{Category: "Math", Title: "  ", Description: " ", Keywords: []string{" "}}

	assert.Empty(t, Validate("x.md", fm, types.SchemaPermissive))

	problems := Validate("x.md", fm, types.SchemaStrict)
	require.Len(t, problems, 3)
	fields := []string{problems[0].Field, problems[1].Field, problems[2].Field}
	assert.Equal(t, []string{"description", "keywords[0]", "title"}, fields)
}

func TestStrictValidation(t *testing.T) {
	full := types.Frontmatter{
		Category:    "Math",
		Title:       "Eigenvalues",
		Description: "d",
		Keywords:    []string{"spectrum"},
	}

	tests := []struct {
		name      string
		mutate    func(fm *types.Frontmatter)
		wantField string
		wantMsg   string
	}{
		{name: "complete entry passes"},
		{
			name:      "missing category",
			mutate:    func(fm *types.Frontmatter) { fm.Category = "" },
			wantField: "category",
			wantMsg:   "is required",
		},
		{
			name:      "empty keyword list",
			mutate:    func(fm *types.Frontmatter) { fm.Keywords = []string{} },
			wantField: "keywords",
			wantMsg:   "must not be empty",
		},
		{
			name:      "whitespace description",
			mutate:    func(fm *types.Frontmatter) { fm.Description = "  \t" },
			wantField: "description",
			wantMsg:   "is required",
		},
		{
			name:      "whitespace keyword",
			mutate:    func(fm *types.Frontmatter) { fm.Keywords = []string{" "} },
			wantField: "keywords[0]",
			wantMsg:   "is required",
		},
		{
			name:      "blank keyword",
			mutate:    func(fm *types.Frontmatter) { fm.Keywords = []string{"ok", ""} },
			wantField: "keywords[1]",
			wantMsg:   "is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm := full
			fm.Keywords = append([]string(nil), full.Keywords...)
			if tt.mutate != nil {
				tt.mutate(&fm)
			}
			problems := Validate("e.md", fm, types.SchemaStrict)
			if tt.wantField == "" {
				assert.Empty(t, problems)
				return
			}
			require.Len(t, problems, 1)
			assert.Equal(t, tt.wantField, problems[0].Field)
			assert.Equal(t, tt.wantMsg, problems[0].Message)
			assert.Equal(t, "e.md", problems[0].Path)
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	one := &ValidationError{Problems: []Problem{{Path: "a.md", Field: "title", Message: "is required"}}}
	assert.Equal(t, "invalid concept: a.md: title: is required", one.Error())

	two := &ValidationError{Problems: []Problem{
		{Path: "a.md", Field: "title", Message: "is required"},
		{Path: "b.md", Message: "parsing frontmatter: bad"},
	}}
	assert.Equal(t, "2 invalid concepts:\n  a.md: title: is required\n  b.md: parsing frontmatter: bad", two.Error())
}

// --- slugs and fallbacks ---

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"bfs.md":                              "bfs",
		"Linear Algebra/Eigenvalues.md":       "linear-algebra/eigenvalues",
		"graphs/Dijkstra's Algorithm.md":      "graphs/dijkstra-s-algorithm",
		"physique/Équation de Schrödinger.md": "physique/equation-de-schrodinger",
		"  spaced  /--odd--name--.md":         "spaced/odd-name",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slug(in), in)
	}
}

func TestTitleFromSlug(t *testing.T) {
	assert.Equal(t, "Graph Coloring", TitleFromSlug("graphs/graph-coloring"))
	assert.Equal(t, "Bfs", TitleFromSlug("bfs"))
}

func TestBuildFallbacks(t *testing.T) {
	c := Build("legacy/graph-coloring.md", types.Frontmatter{}, "text only")
	assert.Equal(t, "legacy/graph-coloring", c.Slug)
	assert.Equal(t, types.Uncategorized, c.Category)
	assert.Equal(t, "Graph Coloring", c.Title)
	assert.NotNil(t, c.Keywords)
	assert.Empty(t, c.Keywords)

	c = Build("x.md", types.Frontmatter{Keywords: []string{" a ", "", "b"}}, "# From Heading\n")
	assert.Equal(t, "From Heading", c.Title)
	assert.Equal(t, []string{"a", "b"}, c.Keywords)
}

// --- loading ---

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConcept(t, dir, "algorithms/bfs.md", bfsConcept)
	writeConcept(t, dir, "math/eigenvalues.md", eigenConcept)
	writeConcept(t, dir, "notes.txt", "ignored")
	writeConcept(t, dir, ".drafts/wip.md", "---\ncategory: [broken\n---\n")
	writeConcept(t, dir, "_partials/footer.md", "footer")

	coll, err := Load(context.Background(), types.ContentConfig{Dir: dir, Schema: types.SchemaStrict}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, coll.Len())

	assert.Equal(t, []string{"Algorithms", "Math"}, coll.Categories())
	bfs, ok := coll.Get("algorithms/bfs")
	require.True(t, ok)
	assert.Equal(t, "algorithms/bfs.md", bfs.Path)
	assert.False(t, bfs.ModTime.IsZero())
	assert.Contains(t, bfs.Body, "distance k")

	groups := coll.ByCategory()
	assert.Len(t, groups["Math"], 1)
}

func TestLoadPermissiveAcceptsPartialEntries(t *testing.T) {
	dir := t.TempDir()
	writeConcept(t, dir, "math.md", "---\ncategory: Math\n---\n# Math Basics\n")
	writeConcept(t, dir, "plain.md", "no frontmatter at all")

	coll, err := Load(context.Background(), types.ContentConfig{Dir: dir}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, coll.Len())
	assert.Equal(t, types.SchemaPermissive, coll.Mode)

	math, _ := coll.Get("math")
	assert.Equal(t, "Math Basics", math.Title)
	assert.Empty(t, math.Keywords)

	plain, _ := coll.Get("plain")
	assert.Equal(t, types.Uncategorized, plain.Category)
}

func TestLoadStrictRejectsPartialEntries(t *testing.T) {
	dir := t.TempDir()
	writeConcept(t, dir, "bfs.md", bfsConcept)
	writeConcept(t, dir, "math.md", "---\ncategory: Math\n---\n")

	_, err := Load(context.Background(), types.ContentConfig{Dir: dir, Schema: types.SchemaStrict}, nil)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 3)
	for _, p := range verr.Problems {
		assert.Equal(t, "math.md", p.Path)
	}
}

func TestLoadReportsParseErrorsInEitherMode(t *testing.T) {
	dir := t.TempDir()
	writeConcept(t, dir, "broken.md", "---\ntitle: x\n")

	_, err := Load(context.Background(), types.ContentConfig{Dir: dir}, nil)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "broken.md", verr.Problems[0].Path)
}

func TestLoadRejectsEmptySlug(t *testing.T) {
	dir := t.TempDir()
	writeConcept(t, dir, "bfs.md", bfsConcept)
	writeConcept(t, dir, "!!!.md", bfsConcept)

	_, err := Load(context.Background(), types.ContentConfig{Dir: dir}, nil)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Problems, 1)
	assert.Equal(t, "!!!.md", verr.Problems[0].Path)
	assert.Contains(t, verr.Problems[0].Message, "slug")
}

func TestLoadRejectsDuplicateSlugs(t *testing.T) {
	dir := t.TempDir()
	writeConcept(t, dir, "Graph Theory.md", "# A")
	writeConcept(t, dir, "graph-theory.md", "# B")

	_, err := Load(context.Background(), types.ContentConfig{Dir: dir}, nil)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Problems[0].Message, `slug "graph-theory" already used`)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(context.Background(), types.ContentConfig{Dir: filepath.Join(t.TempDir(), "missing")}, nil)
	assert.Error(t, err)

	_, err = Load(context.Background(), types.ContentConfig{Dir: t.TempDir(), Schema: "loose"}, nil)
	assert.ErrorContains(t, err, "unknown schema mode")
}

func TestLoadCancelled(t *testing.T) {
	dir := t.TempDir()
	writeConcept(t, dir, "bfs.md", bfsConcept)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, types.ContentConfig{Dir: dir}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewCollectionOrder(t *testing.T) {
	coll := NewCollection([]types.Concept{
		{Slug: "c", Category: "Math", Title: "Zeta"},
		{Slug: "a", Category: "Algorithms", Title: "Sort"},
		{Slug: "b", Category: "Math", Title: "Alpha"},
	}, types.SchemaPermissive)

	var slugs []string
	for _, c := range coll.Concepts {
		slugs = append(slugs, c.Slug)
	}
	assert.Equal(t, []string{"a", "b", "c"}, slugs)

	var nilColl *Collection
	assert.Equal(t, 0, nilColl.Len())
	assert.Nil(t, nilColl.Categories())
}
