// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter holds the search/filter state of a concepts page: the
// search term, the active category, and the per-category match counts
// reported by category sections. The search term and category are kept in
// sync with the page URL through a URLSync port.
//
// Subscribers run synchronously, in subscription order, on the goroutine
// that made the change. The only asynchronous piece is the debounced write
// of the search term to the URL, which is owned and cancelled by the State.
package filter

import (
	"sort"
	"sync"
	"time"

	"github.com/facebookgo/clock"

	"github.com/pdiddy/concepts/internal/logger"
	"github.com/pdiddy/concepts/pkg/types"
)

// Option configures a State.
type Option func(*State)

// Debounce sets the quiet period before a search term change is written to
// the URL. Zero or negative writes immediately.
func Debounce(d time.Duration) Option {
	return func(s *State) { s.debounce = d }
}

// WithClock sets the clock that schedules debounced writes.
func WithClock(c clock.Clock) Option {
	return func(s *State) { s.clock = c }
}

// WithLogger sets the logger used for URL write tracing.
func WithLogger(l *logger.Logger) Option {
	return func(s *State) { s.log = logger.OrNop(l) }
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// State is the single source of truth for one page's search/filter UI.
type State struct {
	mu       sync.Mutex
	url      URLSync
	clock    clock.Clock
	debounce time.Duration
	log      *logger.Logger

	term     string
	category string
	counts   map[string]int

	termSubs     []subscriber[string]
	categorySubs []subscriber[string]
	resultSubs   []subscriber[int]
	nextID       int

	initialized bool
	closed      bool

	// pending is the scheduled search term write; gen identifies the most
	// recent schedule so a superseded timer that already fired does nothing.
	pending     *clock.Timer
	pendingTerm string
	gen         uint64
}

// New returns a State with an empty search term and the "All" category.
// A nil port is treated as NoopSync.
func New(port URLSync, opts ...Option) *State {
	if port == nil {
		port = NoopSync{}
	}
	s := &State{
		url:      port,
		clock:    clock.New(),
		debounce: types.DefaultDebounce,
		log:      logger.Nop(),
		category: types.AllCategories,
		counts:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init seeds the search term and active category from the q and cat query
// parameters. It runs once; later calls do nothing. Seeding does not notify
// subscribers and does not write back to the URL.
func (s *State) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return
	}
	s.initialized = true

	if q, ok := s.url.Param(ParamSearch); ok && q != "" {
		s.term = q
	}
	if cat, ok := s.url.Param(ParamCategory); ok && cat != "" {
		s.category = cat
	}
}

// SearchTerm returns the current search term.
func (s *State) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// ActiveCategory returns the current category, "All" when unfiltered.
func (s *State) ActiveCategory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.category
}

// CategoryCounts returns a copy of the reported per-category counts.
func (s *State) CategoryCounts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

// Categories returns the reported category names in sorted order.
func (s *State) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.counts))
	for k := range s.counts {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ResultCount is the number of matching concepts for the active category:
// the sum of every reported count for "All", otherwise the count reported
// for the active category, 0 when none was reported.
func (s *State) ResultCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultCountLocked()
}

func (s *State) resultCountLocked() int {
	if s.category == types.AllCategories {
		total := 0
		for _, n := range s.counts {
			total += n
		}
		return total
	}
	return s.counts[s.category]
}

// SetSearchTerm updates the search term, notifies subscribers, and
// schedules a debounced write of q. Setting the current value does nothing.
func (s *State) SetSearchTerm(term string) {
	s.mu.Lock()
	if term == s.term {
		s.mu.Unlock()
		return
	}
	s.term = term
	subs := append([]subscriber[string](nil), s.termSubs...)
	writeNow := s.scheduleTermWriteLocked(term)
	s.mu.Unlock()

	if writeNow {
		s.writeTerm(term)
	}
	for _, sub := range subs {
		sub.fn(term)
	}
}

// SetActiveCategory updates the active category, writes cat to the URL at
// once, and notifies category and result count subscribers.
func (s *State) SetActiveCategory(category string) {
	s.mu.Lock()
	if category == s.category {
		s.mu.Unlock()
		return
	}
	before := s.resultCountLocked()
	s.category = category
	after := s.resultCountLocked()
	subs := append([]subscriber[string](nil), s.categorySubs...)
	resultSubs := s.resultSubsIfChangedLocked(before, after)
	closed := s.closed
	s.mu.Unlock()

	if !closed {
		s.writeCategory(category)
	}
	for _, sub := range subs {
		sub.fn(category)
	}
	for _, sub := range resultSubs {
		sub.fn(after)
	}
}

// ReportCategoryCount records how many concepts of category currently match
// the search term. Negative counts are stored as 0.
func (s *State) ReportCategoryCount(category string, count int) {
	if count < 0 {
		count = 0
	}
	s.mu.Lock()
	if prev, ok := s.counts[category]; ok && prev == count {
		s.mu.Unlock()
		return
	}
	before := s.resultCountLocked()
	s.counts[category] = count
	after := s.resultCountLocked()
	resultSubs := s.resultSubsIfChangedLocked(before, after)
	s.mu.Unlock()

	for _, sub := range resultSubs {
		sub.fn(after)
	}
}

func (s *State) resultSubsIfChangedLocked(before, after int) []subscriber[int] {
	if before == after {
		return nil
	}
	return append([]subscriber[int](nil), s.resultSubs...)
}

// SubscribeSearchTerm registers fn for search term changes and returns a
// function that removes it.
func (s *State) SubscribeSearchTerm(fn func(term string)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextIDLocked()
	s.termSubs = append(s.termSubs, subscriber[string]{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.termSubs = removeSubscriber(s.termSubs, id)
	}
}

// SubscribeActiveCategory registers fn for category changes.
func (s *State) SubscribeActiveCategory(fn func(category string)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextIDLocked()
	s.categorySubs = append(s.categorySubs, subscriber[string]{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.categorySubs = removeSubscriber(s.categorySubs, id)
	}
}

// SubscribeResultCount registers fn for changes of the derived result count.
func (s *State) SubscribeResultCount(fn func(count int)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextIDLocked()
	s.resultSubs = append(s.resultSubs, subscriber[int]{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.resultSubs = removeSubscriber(s.resultSubs, id)
	}
}

func (s *State) nextIDLocked() int {
	s.nextID++
	return s.nextID
}

func removeSubscriber[T any](subs []subscriber[T], id int) []subscriber[T] {
	for i, sub := range subs {
		if sub.id == id {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}

// Pending reports whether a search term write is waiting for its debounce.
func (s *State) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Flush performs a pending search term write immediately.
func (s *State) Flush() {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return
	}
	s.pending.Stop()
	s.pending = nil
	s.gen++
	term := s.pendingTerm
	s.mu.Unlock()

	s.writeTerm(term)
}

// Close cancels any pending write. Later changes still update the state but
// are no longer written to the URL.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
		s.gen++
	}
}

// scheduleTermWriteLocked replaces any pending write with one for term. It
// reports true when the write has no debounce and must happen immediately.
func (s *State) scheduleTermWriteLocked(term string) bool {
	if s.closed {
		return false
	}
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.gen++
	if s.debounce <= 0 {
		return true
	}
	gen := s.gen
	s.pendingTerm = term
	s.pending = s.clock.AfterFunc(s.debounce, func() {
		s.fireTermWrite(gen, term)
	})
	return false
}

func (s *State) fireTermWrite(gen uint64, term string) {
	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.mu.Unlock()

	s.writeTerm(term)
}

func (s *State) writeTerm(term string) {
	s.url.Replace(map[string]string{ParamSearch: term})
	s.log.Debug("url sync", "param", ParamSearch, "value", term)
}

// writeCategory writes cat as given. Only an empty category removes it.
func (s *State) writeCategory(category string) {
	s.url.Replace(map[string]string{ParamCategory: category})
	s.log.Debug("url sync", "param", ParamCategory, "value", category)
}
