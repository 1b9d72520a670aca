package domain

import (
	"fmt"
	"time"
)

// WindowTable pairs a recency label with its EventTable.
type WindowTable struct {
	Label string
	Table EventTable
}

// Snapshot is the complete set of Event Tables loaded for one session.
// It is immutable once constructed.
type Snapshot struct {
	labels    []string
	tables    map[string]EventTable
	fetchedAt time.Time
}

// NewSnapshot builds a Snapshot keeping the order of windows. Duplicate
// labels are rejected.
func NewSnapshot(windows []WindowTable, fetchedAt time.Time) (*Snapshot, error) {
	s := &Snapshot{
		labels:    make([]string, 0, len(windows)),
		tables:    make(map[string]EventTable, len(windows)),
		fetchedAt: fetchedAt,
	}
	for _, w := range windows {
		if _, dup := s.tables[w.Label]; dup {
			return nil, fmt.Errorf("new snapshot: duplicate window %q", w.Label)
		}
		s.labels = append(s.labels, w.Label)
		s.tables[w.Label] = w.Table
	}
	return s, nil
}

// Labels returns the recency labels in feed order.
func (s *Snapshot) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Table returns the Event Table for label.
func (s *Snapshot) Table(label string) (EventTable, bool) {
	t, ok := s.tables[label]
	return t, ok
}

// FetchedAt is when the snapshot's feeds finished loading.
func (s *Snapshot) FetchedAt() time.Time { return s.fetchedAt }
