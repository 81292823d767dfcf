// Package requestlog records intercepted requests and their synthesized
// responses, for inspection and assertions in tests.
package requestlog

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxBodyBytes caps stored request bodies so a large upload in a test does
// not balloon the log.
const maxBodyBytes = 10 * 1024

// DefaultMaxEntries bounds the in-memory log.
const DefaultMaxEntries = 1000

// Entry captures one dispatched request and its outcome.
type Entry struct {
	// ID is a unique identifier for the entry.
	ID string `json:"id"`

	// Timestamp is when the request was intercepted.
	Timestamp time.Time `json:"timestamp"`

	// Method is the HTTP method.
	Method string `json:"method"`

	// Path is the request URL path.
	Path string `json:"path"`

	// QueryString is the raw query string.
	QueryString string `json:"queryString,omitempty"`

	// Headers are the request headers.
	Headers map[string][]string `json:"headers,omitempty"`

	// Body is the request body, truncated beyond 10KB.
	Body string `json:"body,omitempty"`

	// BodySize is the original body size in bytes.
	BodySize int `json:"bodySize"`

	// HandlerID identifies the handler that matched; empty when the
	// request was unhandled.
	HandlerID string `json:"handlerId,omitempty"`

	// Layer names the registry layer the handler came from.
	Layer string `json:"layer,omitempty"`

	// Status is the synthesized response status; 0 when dispatch failed.
	Status int `json:"status"`

	// Duration is how long dispatch took, including artificial latency.
	Duration time.Duration `json:"duration"`

	// Error holds the dispatch error message, if any.
	Error string `json:"error,omitempty"`
}

// Filter selects entries from the store.
type Filter struct {
	// Method filters by HTTP method.
	Method string

	// Path filters by exact path.
	Path string

	// HandlerID filters by matched handler.
	HandlerID string

	// Unhandled selects only entries with no matching handler.
	Unhandled bool

	// Limit caps the number of returned entries; 0 means no cap.
	Limit int
}

// Store is a bounded in-memory request log. Safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	entries    []*Entry
	maxEntries int
}

// NewStore returns a store holding at most maxEntries entries; older
// entries are evicted first. maxEntries <= 0 uses DefaultMaxEntries.
func NewStore(maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{maxEntries: maxEntries}
}

// Record appends an entry, assigning its ID and timestamp if unset, and
// truncating oversized bodies.
func (s *Store) Record(e *Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.BodySize == 0 {
		e.BodySize = len(e.Body)
	}
	if len(e.Body) > maxBodyBytes {
		e.Body = e.Body[:maxBodyBytes]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	if len(s.entries) > s.maxEntries {
		s.entries = s.entries[len(s.entries)-s.maxEntries:]
	}
}

// List returns entries newest-first, optionally filtered.
func (s *Store) List(f *Filter) []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if f != nil && !f.matches(e) {
			continue
		}
		out = append(out, e)
		if f != nil && f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}

// Count returns the number of entries matching the filter.
func (s *Store) Count(f *Filter) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if f == nil {
		return len(s.entries)
	}
	n := 0
	for _, e := range s.entries {
		if f.matches(e) {
			n++
		}
	}
	return n
}

// Get retrieves an entry by ID, or nil.
func (s *Store) Get(id string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

func (f *Filter) matches(e *Entry) bool {
	if f.Method != "" && f.Method != e.Method {
		return false
	}
	if f.Path != "" && f.Path != e.Path {
		return false
	}
	if f.HandlerID != "" && f.HandlerID != e.HandlerID {
		return false
	}
	if f.Unhandled && e.HandlerID != "" {
		return false
	}
	return true
}
