// Package caption implements the caption collection of one editing session.
// A Store keeps its captions in canonical ascending start-time order with a
// stable tie-break, validates every interval at admission, and reports
// overlap between captions as a warning rather than an error.
package caption

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/subcue/subcue-agent/internal/interval"
	"github.com/subcue/subcue-agent/internal/timecode"
)

// Store is safe for concurrent use. Every mutating operation is atomic: a
// rejected call leaves the collection exactly as it was.
type Store struct {
	mu        sync.RWMutex
	captions  []Caption
	duration  float64
	direction SortDirection
	onChange  []func()
}

func NewStore() *Store {
	return &Store{direction: SortAscending}
}

// SetDuration records the current video duration used to bound new
// intervals. Changing it never re-validates captions already admitted.
func (s *Store) SetDuration(seconds float64) {
	s.mu.Lock()
	s.duration = seconds
	s.mu.Unlock()
}

func (s *Store) Duration() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.duration
}

// SetSortDirection flips the presentation order of List and Search results.
// Storage order is untouched.
func (s *Store) SetSortDirection(dir SortDirection) {
	s.mu.Lock()
	if dir == SortDescending {
		s.direction = SortDescending
	} else {
		s.direction = SortAscending
	}
	s.mu.Unlock()
}

func (s *Store) Direction() SortDirection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.direction
}

// OnChange registers fn to run after every successful mutation. Callbacks
// run outside the store lock, so they may call back into the store.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// Add parses and validates a draft, then inserts it with a fresh ID. The
// returned bool reports whether the new caption overlaps an existing one;
// overlap never blocks the insert.
func (s *Store) Add(d Draft) (*Caption, bool, error) {
	if strings.TrimSpace(d.Text) == "" {
		return nil, false, ErrEmptyText
	}

	start, err := timecode.Parse(d.StartTime)
	if err != nil {
		return nil, false, fmt.Errorf("%w: start time: %w", ErrInvalidInterval, err)
	}
	end, err := timecode.Parse(d.EndTime)
	if err != nil {
		return nil, false, fmt.Errorf("%w: end time: %w", ErrInvalidInterval, err)
	}

	s.mu.Lock()
	if !interval.IsValid(start, end, s.duration) {
		duration := s.duration
		s.mu.Unlock()
		return nil, false, fmt.Errorf("%w: %s-%s does not fit video of %s",
			ErrInvalidInterval, timecode.Format(start), timecode.Format(end), timecode.Format(duration))
	}

	overlap := s.overlapsLocked(start, end, "")

	c := Caption{
		ID:        NewID(),
		StartTime: start,
		EndTime:   end,
		Text:      d.Text,
		Style:     styleOrDefault(d.Style),
	}
	s.captions = append(s.captions, c)
	s.sortLocked()
	s.mu.Unlock()

	s.notify()
	out := c
	return &out, overlap, nil
}

// Update merges a patch into an existing caption. Timing fields are
// re-validated as a pair against the current duration; a failed patch
// leaves the caption untouched.
func (s *Store) Update(id string, p Patch) (*Caption, bool, error) {
	if p.Text != nil && strings.TrimSpace(*p.Text) == "" {
		return nil, false, ErrEmptyText
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := s.captions[idx]
	timingChanged := false

	if p.StartTime != nil {
		start, err := timecode.Parse(*p.StartTime)
		if err != nil {
			s.mu.Unlock()
			return nil, false, fmt.Errorf("%w: start time: %w", ErrInvalidInterval, err)
		}
		next.StartTime = start
		timingChanged = true
	}
	if p.EndTime != nil {
		end, err := timecode.Parse(*p.EndTime)
		if err != nil {
			s.mu.Unlock()
			return nil, false, fmt.Errorf("%w: end time: %w", ErrInvalidInterval, err)
		}
		next.EndTime = end
		timingChanged = true
	}
	if p.Text != nil {
		next.Text = *p.Text
	}
	if p.Style != nil {
		next.Style = *p.Style
	}

	if timingChanged && !interval.IsValid(next.StartTime, next.EndTime, s.duration) {
		duration := s.duration
		s.mu.Unlock()
		return nil, false, fmt.Errorf("%w: %s-%s does not fit video of %s",
			ErrInvalidInterval, timecode.Format(next.StartTime), timecode.Format(next.EndTime), timecode.Format(duration))
	}

	overlap := s.overlapsLocked(next.StartTime, next.EndTime, id)
	s.captions[idx] = next
	if timingChanged {
		s.sortLocked()
	}
	s.mu.Unlock()

	s.notify()
	out := next
	return &out, overlap, nil
}

// Remove deletes a caption. Removing an unknown ID is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.captions = append(s.captions[:idx], s.captions[idx+1:]...)
	s.mu.Unlock()

	s.notify()
}

func (s *Store) Get(id string) (*Caption, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, false
	}
	out := s.captions[idx]
	return &out, true
}

// FindActive returns the caption whose interval contains currentTime, both
// endpoints inclusive. When several match, the earliest start time wins and
// equal starts fall back to insertion order. Returns nil when no caption is
// active.
func (s *Store) FindActive(currentTime float64) *Caption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.captions {
		c := s.captions[i]
		if currentTime >= c.StartTime && currentTime <= c.EndTime {
			out := c
			return &out
		}
	}
	return nil
}

// Search returns captions whose text contains the query, case-insensitively,
// in presentation order. An empty query matches everything.
func (s *Store) Search(query string) []Caption {
	needle := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Caption
	for _, c := range s.viewLocked() {
		if strings.Contains(strings.ToLower(c.Text), needle) {
			out = append(out, c)
		}
	}
	return out
}

// List returns a copy of the captions in the current presentation order.
func (s *Store) List() []Caption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

// Captions returns a copy in canonical ascending order regardless of the
// presentation direction. Snapshots and alignment queries use this.
func (s *Store) Captions() []Caption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Caption, len(s.captions))
	copy(out, s.captions)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.captions)
}

// ReplaceAll swaps the whole collection, re-sorting into canonical order.
// Callers are expected to hand in captions that already passed validation,
// as import and restore do.
func (s *Store) ReplaceAll(captions []Caption) {
	s.mu.Lock()
	s.captions = make([]Caption, len(captions))
	copy(s.captions, captions)
	s.sortLocked()
	s.mu.Unlock()

	s.notify()
}

// Reset drops every caption.
func (s *Store) Reset() {
	s.mu.Lock()
	s.captions = nil
	s.mu.Unlock()

	s.notify()
}

func (s *Store) indexLocked(id string) int {
	for i := range s.captions {
		if s.captions[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) overlapsLocked(start, end float64, excludeID string) bool {
	for i := range s.captions {
		c := &s.captions[i]
		if c.ID == excludeID {
			continue
		}
		if interval.Overlaps(start, end, c.StartTime, c.EndTime) {
			return true
		}
	}
	return false
}

func (s *Store) sortLocked() {
	sort.SliceStable(s.captions, func(i, j int) bool {
		return s.captions[i].StartTime < s.captions[j].StartTime
	})
}

func (s *Store) viewLocked() []Caption {
	out := make([]Caption, len(s.captions))
	copy(out, s.captions)
	if s.direction == SortDescending {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].StartTime > out[j].StartTime
		})
	}
	return out
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := make([]func(), len(s.onChange))
	copy(subs, s.onChange)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}

func styleOrDefault(st *Style) Style {
	if st == nil {
		return DefaultStyle()
	}
	return *st
}
