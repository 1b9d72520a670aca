package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/couchcryptid/quake-dashboard/internal/domain"
)

// ErrNoSnapshot is stored when a load reports success without a Snapshot.
var ErrNoSnapshot = errors.New("load returned no snapshot")

// LoadFunc produces the Snapshot for a session.
type LoadFunc func(ctx context.Context) (*domain.Snapshot, error)

// State is what a session remembers about its one feed load: either a
// Snapshot or the failure that replaced it.
type State struct {
	Snapshot  *domain.Snapshot
	Err       error
	FetchedAt time.Time
}

// Failed reports whether the stored load is a failure marker.
func (s State) Failed() bool { return s.Err != nil }

// Session is the state kept across page requests of one browser session.
type Session struct {
	id string

	mu     sync.Mutex
	loaded bool
	state  State
}

func newSession(id string) *Session {
	return &Session{id: id}
}

// ID returns the opaque session identifier.
func (s *Session) ID() string { return s.id }

// Load runs fn the first time it is called and stores its outcome, success or
// failure. Later calls return the stored State without calling fn. Concurrent
// callers block until the first load finishes. A load abandoned because ctx
// was cancelled is not stored.
func (s *Session) Load(ctx context.Context, fn LoadFunc) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.state
	}

	snap, err := fn(ctx)
	if err == nil && snap == nil {
		err = ErrNoSnapshot
	}
	if err != nil {
		if ctx.Err() != nil {
			return State{Err: err}
		}
		s.state = State{Err: err}
		s.loaded = true
		return s.state
	}

	s.state = State{Snapshot: snap, FetchedAt: snap.FetchedAt()}
	s.loaded = true
	return s.state
}

// State returns the stored load outcome and whether a load has completed.
func (s *Session) State() (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.loaded
}
