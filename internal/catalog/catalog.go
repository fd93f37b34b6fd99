// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog groups concepts into category sections. Each section
// filters its concepts by the current search term and reports how many
// match to the filter state, which derives the result count from those
// reports.
package catalog

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/pdiddy/concepts/internal/content"
	"github.com/pdiddy/concepts/internal/filter"
	"github.com/pdiddy/concepts/pkg/types"
)

// Section holds the concepts of one category and the subset that matches
// the last search term it saw.
type Section struct {
	Category string
	Concepts []types.Concept

	mu      sync.Mutex
	visible []types.Concept
}

// Visible returns the concepts that matched the last refresh.
func (s *Section) Visible() []types.Concept {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Concept(nil), s.visible...)
}

// refresh recomputes the visible concepts for term and reports the count.
func (s *Section) refresh(state *filter.State, term string) {
	m := newMatcher(term)
	var visible []types.Concept
	for _, c := range s.Concepts {
		if m.match(c) {
			visible = append(visible, c)
		}
	}
	s.mu.Lock()
	s.visible = visible
	s.mu.Unlock()

	state.ReportCategoryCount(s.Category, len(visible))
}

// Catalog is the set of category sections of a collection.
type Catalog struct {
	sections []*Section
}

// New builds one section per category of coll, in category order.
func New(coll *content.Collection) *Catalog {
	groups := coll.ByCategory()
	c := &Catalog{}
	for _, name := range coll.Categories() {
		c.sections = append(c.sections, &Section{
			Category: name,
			Concepts: groups[name],
			visible:  groups[name],
		})
	}
	return c
}

// Sections returns the catalog's sections in category order.
func (c *Catalog) Sections() []*Section {
	return c.sections
}

// Section returns the section for category, or nil.
func (c *Catalog) Section(category string) *Section {
	for _, s := range c.sections {
		if s.Category == category {
			return s
		}
	}
	return nil
}

// Bind makes every section follow the search term of state. Sections are
// refreshed immediately for the current term, then again on every change.
// The returned function detaches the sections.
func (c *Catalog) Bind(state *filter.State) (unbind func()) {
	c.refreshAll(state, state.SearchTerm())
	return state.SubscribeSearchTerm(func(term string) {
		c.refreshAll(state, term)
	})
}

func (c *Catalog) refreshAll(state *filter.State, term string) {
	for _, s := range c.sections {
		s.refresh(state, term)
	}
}

// Matches reports whether concept matches term. Matching is a case-folded
// substring test over the title, description, category, and keywords; an
// empty or blank term matches everything.
func Matches(concept types.Concept, term string) bool {
	return newMatcher(term).match(concept)
}

type matcher struct {
	fold   cases.Caser
	needle string
}

func newMatcher(term string) *matcher {
	m := &matcher{fold: cases.Fold()}
	m.needle = m.fold.String(strings.TrimSpace(term))
	return m
}

func (m *matcher) match(c types.Concept) bool {
	if m.needle == "" {
		return true
	}
	if m.contains(c.Title) || m.contains(c.Description) || m.contains(c.Category) {
		return true
	}
	for _, k := range c.Keywords {
		if m.contains(k) {
			return true
		}
	}
	return false
}

func (m *matcher) contains(s string) bool {
	return strings.Contains(m.fold.String(s), m.needle)
}
