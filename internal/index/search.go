// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/concepts/pkg/types"
)

// Query holds parameters for an index search.
type Query struct {
	// Text is free text; each word is matched as a prefix.
	Text string

	// Category restricts results to one category. Empty or "All" means
	// every category.
	Category string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Result is an indexed concept with its relevance rank and a highlighted
// snippet of the best matching column.
type Result struct {
	types.Concept
	Rank    float64 `json:"rank" yaml:"rank"`
	Snippet string  `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// MatchExpression turns free text into an FTS5 MATCH expression. Words are
// split on anything that is not a letter or digit, quoted, and matched as
// prefixes. Blank text yields an empty expression.
func MatchExpression(text string) string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, len(words))
	for i, w := range words {
		terms[i] = `"` + w + `"*`
	}
	return strings.Join(terms, " ")
}

// Search runs q against the index. Text queries are ranked by bm25;
// queries without text list concepts in category and title order.
func (s *Store) Search(ctx context.Context, q Query) ([]Result, error) {
	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb    strings.Builder
		args  []any
		match = MatchExpression(q.Text)
	)

	if match != "" {
		qb.WriteString(
			`SELECT c.slug, c.category, c.title, c.description, c.keywords, c.path,
				bm25(concepts_fts),
				snippet(concepts_fts, -1, '[', ']', '…', 12)
			FROM concepts_fts
			JOIN concepts c ON c.rowid = concepts_fts.rowid
			WHERE concepts_fts MATCH ?`)
		args = append(args, match)
	} else {
		qb.WriteString(
			`SELECT c.slug, c.category, c.title, c.description, c.keywords, c.path,
				0, ''
			FROM concepts c
			WHERE 1=1`)
	}

	if q.Category != "" && q.Category != types.AllCategories {
		qb.WriteString(` AND c.category = ?`)
		args = append(args, q.Category)
	}

	if match != "" {
		qb.WriteString(` ORDER BY bm25(concepts_fts), c.slug`)
	} else {
		qb.WriteString(` ORDER BY c.category, c.title, c.slug`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		var (
			r            Result
			description  sql.NullString
			keywordsJSON sql.NullString
		)
		if err := rows.Scan(
			&r.Slug, &r.Category, &r.Title, &description, &keywordsJSON, &r.Path,
			&r.Rank, &r.Snippet,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.Description = description.String
		r.Keywords = s.decodeKeywords(r.Slug, keywordsJSON)
		results = append(results, r)
	}

	return results, rows.Err()
}

// decodeKeywords reads the keywords column. A corrupt value is logged and
// read as no keywords.
func (s *Store) decodeKeywords(slug string, raw sql.NullString) []string {
	keywords := []string{}
	if !raw.Valid || raw.String == "" {
		return keywords
	}
	if err := json.Unmarshal([]byte(raw.String), &keywords); err != nil {
		s.log.Warn("corrupt keywords column", "slug", slug, "error", err)
		return []string{}
	}
	return keywords
}

// Counts returns the number of concepts per category matching text. Every
// indexed category is present, with 0 when nothing in it matches.
func (s *Store) Counts(ctx context.Context, text string) (map[string]int, error) {
	counts := make(map[string]int)

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM concepts`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		counts[category] = 0
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var (
		query string
		args  []any
		match = MatchExpression(text)
	)
	if match != "" {
		query = `SELECT c.category, count(*)
			FROM concepts_fts
			JOIN concepts c ON c.rowid = concepts_fts.rowid
			WHERE concepts_fts MATCH ?
			GROUP BY c.category`
		args = append(args, match)
	} else {
		query = `SELECT category, count(*) FROM concepts GROUP BY category`
	}

	rows, err = s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("counting matches: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			category string
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[category] = n
	}
	return counts, rows.Err()
}
