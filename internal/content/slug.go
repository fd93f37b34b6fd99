// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package content

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug derives a URL-safe identifier from a path relative to the content
// directory: "Linear Algebra/Eigenvalues.md" becomes
// "linear-algebra/eigenvalues". Diacritics are removed.
func Slug(rel string) string {
	rel = filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))

	// Transformers carry state; build one per call.
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(strip, rel)
	if err != nil {
		plain = rel
	}

	segments := strings.Split(plain, "/")
	out := segments[:0]
	for _, seg := range segments {
		if s := slugSegment(seg); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "/")
}

func slugSegment(seg string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(seg) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}

// TitleFromSlug turns the last slug segment into a display title:
// "graph-coloring" becomes "Graph Coloring".
func TitleFromSlug(slug string) string {
	last := slug
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		last = slug[i+1:]
	}
	return cases.Title(language.English).String(strings.ReplaceAll(last, "-", " "))
}
