// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"github.com/pdiddy/concepts/internal/filter"
	"github.com/pdiddy/concepts/pkg/types"
)

// Tab is one entry of the category selector.
type Tab struct {
	Name   string `json:"name" yaml:"name"`
	Count  int    `json:"count" yaml:"count"`
	Active bool   `json:"active" yaml:"active"`
}

// SectionView is a rendered category section.
type SectionView struct {
	Category string          `json:"category" yaml:"category"`
	Concepts []types.Concept `json:"concepts" yaml:"concepts"`
}

// View is a snapshot of what the page shows for the current filter state.
type View struct {
	Query       string        `json:"query" yaml:"query"`
	Category    string        `json:"category" yaml:"category"`
	ResultCount int           `json:"result_count" yaml:"result_count"`
	Tabs        []Tab         `json:"tabs" yaml:"tabs"`
	Sections    []SectionView `json:"sections" yaml:"sections"`
}

// View renders the catalog for state. With the "All" category every
// section with matches is shown; otherwise only the active category's
// section. An unknown active category shows nothing and counts 0.
func (c *Catalog) View(state *filter.State) View {
	active := state.ActiveCategory()
	counts := state.CategoryCounts()

	v := View{
		Query:       state.SearchTerm(),
		Category:    active,
		ResultCount: state.ResultCount(),
		Tabs:        make([]Tab, 0, len(c.sections)+1),
		Sections:    []SectionView{},
	}

	v.Tabs = append(v.Tabs, Tab{
		Name:   types.AllCategories,
		Count:  sum(counts),
		Active: active == types.AllCategories,
	})
	for _, s := range c.sections {
		v.Tabs = append(v.Tabs, Tab{
			Name:   s.Category,
			Count:  counts[s.Category],
			Active: active == s.Category,
		})

		if active != types.AllCategories && active != s.Category {
			continue
		}
		visible := s.Visible()
		if len(visible) == 0 {
			continue
		}
		v.Sections = append(v.Sections, SectionView{Category: s.Category, Concepts: visible})
	}
	return v
}

func sum(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
