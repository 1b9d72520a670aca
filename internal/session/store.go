package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Store holds sessions in memory with LRU eviction and an idle TTL.
// Evicting a session discards its Snapshot.
type Store struct {
	capacity int
	ttl      time.Duration
	clock    clockwork.Clock

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	session  *Session
	lastSeen time.Time
	prev     *entry
	next     *entry
}

// NewStore creates a session store holding at least one session. A nil
// clock uses real time.
func NewStore(capacity int, ttl time.Duration, clock clockwork.Clock) *Store {
	capacity = max(capacity, 1)
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		capacity: capacity,
		ttl:      ttl,
		clock:    clock,
		entries:  make(map[string]*entry),
	}
}

// Get returns the live session for id and marks it used. Expired sessions
// are removed and reported as missing.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	now := s.clock.Now()
	if now.Sub(e.lastSeen) > s.ttl {
		s.remove(e)
		delete(s.entries, id)
		return nil, false
	}
	e.lastSeen = now
	s.moveToFront(e)
	return e.session, true
}

// Create starts a new session with a random id.
func (s *Store) Create() *Session {
	sess := newSession(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry{session: sess, lastSeen: s.clock.Now()}
	s.entries[sess.id] = e
	s.addToFront(e)

	if len(s.entries) > s.capacity {
		s.evictTail()
	}
	return sess
}

// GetOrCreate returns the session for id, or a new one when id is empty,
// unknown or expired. The boolean reports whether a session was created.
func (s *Store) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if sess, ok := s.Get(id); ok {
			return sess, false
		}
	}
	return s.Create(), true
}

// Len returns the number of sessions held, including expired ones not yet
// swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes every expired session and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	dropped := 0
	for e := s.tail; e != nil; {
		prev := e.prev
		if now.Sub(e.lastSeen) > s.ttl {
			s.remove(e)
			delete(s.entries, e.session.id)
			dropped++
		}
		e = prev
	}
	return dropped
}

// RunSweeper sweeps expired sessions every interval until ctx is done.
// onSweep, if non-nil, receives the number of sessions left after each sweep.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(remaining int)) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.Sweep()
			if onSweep != nil {
				onSweep(s.Len())
			}
		}
	}
}

func (s *Store) moveToFront(e *entry) {
	if e == s.head {
		return
	}
	s.remove(e)
	s.addToFront(e)
}

func (s *Store) addToFront(e *entry) {
	e.next = s.head
	e.prev = nil
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *Store) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
}

func (s *Store) evictTail() {
	if s.tail == nil {
		return
	}
	delete(s.entries, s.tail.session.id)
	s.remove(s.tail)
}
