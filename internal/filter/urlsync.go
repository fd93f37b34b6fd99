// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filter

import (
	"fmt"
	"net/url"
	"sync"
)

// Query parameter names synchronized with the filter state.
const (
	ParamSearch   = "q"
	ParamCategory = "cat"
)

// URLSync is the port between the filter state and the page location.
// Interactive contexts use a Location; static generation uses NoopSync.
type URLSync interface {
	// Param returns the named query parameter and whether it is present.
	Param(name string) (string, bool)

	// Replace rewrites the given query parameters in place of the current
	// history entry. An empty value removes the parameter.
	Replace(params map[string]string)
}

// NoopSync is the URL port for contexts without a location (static
// generation, CLI rendering without a URL). Reads report nothing and
// writes are dropped.
type NoopSync struct{}

func (NoopSync) Param(string) (string, bool) { return "", false }

func (NoopSync) Replace(map[string]string) {}

// Location is an in-memory page location. Replace mutates the query string
// of the current entry; it never adds history entries.
type Location struct {
	mu     sync.Mutex
	u      url.URL
	writes int
}

// NewLocation parses raw into a Location.
func NewLocation(raw string) (*Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing location %q: %w", raw, err)
	}
	return &Location{u: *u}, nil
}

// LocationFromURL returns a Location holding a copy of u.
func LocationFromURL(u *url.URL) *Location {
	l := &Location{}
	if u != nil {
		l.u = *u
	}
	return l
}

// Param returns the first value of the named query parameter.
func (l *Location) Param(name string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	values := l.u.Query()
	if _, ok := values[name]; !ok {
		return "", false
	}
	return values.Get(name), true
}

// Replace applies params to the query string as one history replacement.
func (l *Location) Replace(params map[string]string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	values := l.u.Query()
	for k, v := range params {
		if v == "" {
			values.Del(k)
		} else {
			values.Set(k, v)
		}
	}
	l.u.RawQuery = values.Encode()
	l.writes++
}

// URL returns a copy of the current location.
func (l *Location) URL() *url.URL {
	l.mu.Lock()
	defer l.mu.Unlock()
	u := l.u
	return &u
}

// String returns the current location as a string.
func (l *Location) String() string {
	return l.URL().String()
}

// Writes returns how many history replacements have been applied.
func (l *Location) Writes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writes
}
