package idf

import (
	"sort"
	"sync"
)

// Session is the transient editing state of one form: the current document
// plus the markers a client shows while generation is in flight.
//
// Generation calls run outside the lock and merge their result with Update,
// so regenerations of different fields interleave and the last write to a
// field wins.
type Session struct {
	mu       sync.Mutex
	doc      Document
	updating map[FieldName]struct{}
	loading  bool
}

// NewSession starts a session from a copy of doc.
func NewSession(doc Document) *Session {
	doc.normalize()
	return &Session{
		doc:      doc.Clone(),
		updating: make(map[FieldName]struct{}),
	}
}

// Document returns a copy of the current document.
func (s *Session) Document() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Replace swaps in a new document.
func (s *Session) Replace(doc Document) {
	doc.normalize()
	s.mu.Lock()
	s.doc = doc.Clone()
	s.mu.Unlock()
}

// Update applies fn to a copy of the document and commits it only when fn
// succeeds. It returns the resulting document either way.
func (s *Session) Update(fn func(*Document) error) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	if err := fn(&next); err != nil {
		return s.doc.Clone(), err
	}
	next.normalize()
	s.doc = next
	return s.doc.Clone(), nil
}

// BeginField marks f as updating. It returns false if f already is.
func (s *Session) BeginField(f FieldName) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.updating[f]; busy {
		return false
	}
	s.updating[f] = struct{}{}
	return true
}

// EndField clears the updating marker for f.
func (s *Session) EndField(f FieldName) {
	s.mu.Lock()
	delete(s.updating, f)
	s.mu.Unlock()
}

// IsUpdating reports whether f has a generation in flight.
func (s *Session) IsUpdating(f FieldName) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.updating[f]
	return busy
}

// UpdatingFields lists fields with a generation in flight, sorted.
func (s *Session) UpdatingFields() []FieldName {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields := make([]FieldName, 0, len(s.updating))
	for f := range s.updating {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// BeginLoading marks a whole-document generation. It returns false if one
// is already running.
func (s *Session) BeginLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return false
	}
	s.loading = true
	return true
}

// EndLoading clears the whole-document marker.
func (s *Session) EndLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

// Loading reports whether a whole-document generation is running.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// FieldUpdate is the outcome of one field regeneration.
type FieldUpdate struct {
	Field    FieldName `json:"field"`
	Document Document  `json:"document"`
	Result   string    `json:"result"`  // normalized model output
	Applied  bool      `json:"applied"` // false when the output was filtered out
}
