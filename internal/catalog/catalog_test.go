// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/concepts/internal/content"
	"github.com/pdiddy/concepts/internal/filter"
	"github.com/pdiddy/concepts/pkg/types"
)

func sampleCollection() *content.Collection {
	return content.NewCollection([]types.Concept{
		{Slug: "bfs", Category: "Algorithms", Title: "Breadth-First Search",
			Description: "Level-order graph traversal", Keywords: []string{"graph", "queue"}},
		{Slug: "dfs", Category: "Algorithms", Title: "Depth-First Search",
			Description: "Backtracking traversal", Keywords: []string{"graph", "stack"}},
		{Slug: "heap", Category: "Algorithms", Title: "Heapsort",
			Description: "Sorting with a binary heap", Keywords: []string{"sorting"}},
		{Slug: "eigen", Category: "Math", Title: "Eigenvalues",
			Description: "Spectrum of a linear map", Keywords: []string{"linear algebra"}},
		{Slug: "spectral", Category: "Math", Title: "Spectral Graph Theory",
			Description: "Eigenvalues of adjacency matrices", Keywords: []string{"graph"}},
		{Slug: "entropy", Category: "Physics", Title: "Entropy",
			Description: "Measure of disorder", Keywords: []string{"thermodynamics"}},
	}, types.SchemaPermissive)
}

func TestMatches(t *testing.T) {
	c := types.Concept{
		Category: "Physics", Title: "Schrödinger Equation",
		Description: "Wave function evolution", Keywords: []string{"Quantum"},
	}
	tests := []struct {
		term string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"schrödinger", true},
		{"SCHRÖDINGER", true},
		{"wave", true},
		{"physics", true},
		{"quantum", true},
		{" quantum ", true},
		{"graph", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Matches(c, tt.term), "term %q", tt.term)
	}
}

func TestBindReportsCountsForCurrentTerm(t *testing.T) {
	state := filter.New(nil)
	cat := New(sampleCollection())
	cat.Bind(state)

	assert.Equal(t, map[string]int{"Algorithms": 3, "Math": 2, "Physics": 1}, state.CategoryCounts())
	assert.Equal(t, 6, state.ResultCount())
}

func TestBindFollowsSearchTerm(t *testing.T) {
	state := filter.New(nil)
	cat := New(sampleCollection())
	unbind := cat.Bind(state)

	state.SetSearchTerm("graph")
	assert.Equal(t, map[string]int{"Algorithms": 2, "Math": 1, "Physics": 0}, state.CategoryCounts())
	assert.Equal(t, 3, state.ResultCount())

	state.SetActiveCategory("Math")
	assert.Equal(t, 1, state.ResultCount())

	unbind()
	state.SetSearchTerm("")
	assert.Equal(t, 1, state.CategoryCounts()["Math"], "unbound sections stop reporting")
}

func TestBindUsesSeededTerm(t *testing.T) {
	loc, err := filter.NewLocation("/?q=entropy&cat=Physics")
	require.NoError(t, err)
	state := filter.New(loc)
	state.Init()

	cat := New(sampleCollection())
	cat.Bind(state)

	assert.Equal(t, 1, state.ResultCount())
	assert.Equal(t, 0, loc.Writes())
}

func TestView(t *testing.T) {
	state := filter.New(nil)
	cat := New(sampleCollection())
	cat.Bind(state)
	state.SetSearchTerm("graph")

	v := cat.View(state)
	assert.Equal(t, "graph", v.Query)
	assert.Equal(t, types.AllCategories, v.Category)
	assert.Equal(t, 3, v.ResultCount)
	assert.Equal(t, []Tab{
		{Name: "All", Count: 3, Active: true},
		{Name: "Algorithms", Count: 2},
		{Name: "Math", Count: 1},
		{Name: "Physics", Count: 0},
	}, v.Tabs)

	require.Len(t, v.Sections, 2, "empty sections are hidden")
	assert.Equal(t, "Algorithms", v.Sections[0].Category)
	assert.Len(t, v.Sections[0].Concepts, 2)

	state.SetActiveCategory("Math")
	v = cat.View(state)
	require.Len(t, v.Sections, 1)
	assert.Equal(t, "Spectral Graph Theory", v.Sections[0].Concepts[0].Title)
	assert.Equal(t, 1, v.ResultCount)
}

func TestViewUnknownCategory(t *testing.T) {
	state := filter.New(nil)
	cat := New(sampleCollection())
	cat.Bind(state)
	state.SetActiveCategory("Chemistry")

	v := cat.View(state)
	assert.Equal(t, 0, v.ResultCount)
	assert.Empty(t, v.Sections)
	for _, tab := range v.Tabs {
		assert.False(t, tab.Active)
	}
}

func TestSectionLookup(t *testing.T) {
	cat := New(sampleCollection())
	require.Len(t, cat.Sections(), 3)
	assert.NotNil(t, cat.Section("Math"))
	assert.Nil(t, cat.Section("Chemistry"))
	assert.Len(t, cat.Section("Physics").Visible(), 1)
}
