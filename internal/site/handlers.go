// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package site

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/concepts/internal/catalog"
	"github.com/pdiddy/concepts/internal/filter"
	"github.com/pdiddy/concepts/internal/index"
	"github.com/pdiddy/concepts/pkg/types"
)

type conceptsResponse struct {
	catalog.View
	URL string `json:"url"`
}

type searchResponse struct {
	Query       string         `json:"query"`
	Category    string         `json:"category"`
	ResultCount int            `json:"result_count"`
	Counts      map[string]int `json:"counts"`
	Results     []index.Result `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleThemeCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write([]byte(s.theme.CSS()))
}

func (s *Server) handleTailwind(w http.ResponseWriter, r *http.Request) {
	data, err := s.theme.TailwindJSON()
	if err != nil {
		s.log.Error("rendering tailwind config", "error", err)
		writeError(w, http.StatusInternalServerError, "rendering tailwind config")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// handleConcepts runs a page's filter state against the query string and
// returns the resulting view together with the page URL the state
// synchronized to.
func (s *Server) handleConcepts(w http.ResponseWriter, r *http.Request) {
	page := filter.LocationFromURL(&url.URL{
		Path:     s.basePath + "/",
		RawQuery: r.URL.RawQuery,
	})
	state := filter.New(page, filter.Debounce(s.debounce), filter.WithLogger(s.log))
	defer state.Close()
	state.Init()

	cat := catalog.New(s.Collection())
	unbind := cat.Bind(state)
	defer unbind()
	state.Flush()

	writeJSON(w, http.StatusOK, conceptsResponse{
		View: cat.View(state),
		URL:  page.String(),
	})
}

func (s *Server) handleConcept(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "*")
	concept, ok := s.Collection().Get(slug)
	if !ok {
		writeError(w, http.StatusNotFound, "concept not found: "+slug)
		return
	}
	writeJSON(w, http.StatusOK, concept)
}

// handleSearch queries the full-text index. The result count is derived
// from the per-category hit counts the same way the page derives it.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		writeError(w, http.StatusServiceUnavailable, "search index not available")
		return
	}

	q := r.URL.Query()
	query := index.Query{
		Text:     q.Get(filter.ParamSearch),
		Category: q.Get(filter.ParamCategory),
	}
	if query.Category == "" {
		query.Category = types.AllCategories
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit: "+raw)
			return
		}
		query.MaxResults = limit
	}

	results, err := s.index.Search(r.Context(), query)
	if err != nil {
		s.log.Error("search failed", "query", query.Text, "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	counts, err := s.index.Counts(r.Context(), query.Text)
	if err != nil {
		s.log.Error("counting matches failed", "query", query.Text, "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	state := filter.New(filter.NoopSync{})
	defer state.Close()
	state.SetActiveCategory(query.Category)
	for category, n := range counts {
		state.ReportCategoryCount(category, n)
	}
	s.metrics.searchResults.Observe(float64(state.ResultCount()))

	writeJSON(w, http.StatusOK, searchResponse{
		Query:       query.Text,
		Category:    query.Category,
		ResultCount: state.ResultCount(),
		Counts:      counts,
		Results:     results,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
