package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/quake-dashboard/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFetchedAt = time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)

func testSnapshot(t *testing.T) *domain.Snapshot {
	t.Helper()
	snap, err := domain.NewSnapshot([]domain.WindowTable{{Label: domain.LabelLastHour}}, testFetchedAt)
	require.NoError(t, err)
	return snap
}

// --- Session tests ---

func TestSession_LoadOnce(t *testing.T) {
	snap := testSnapshot(t)
	var calls atomic.Int32
	load := func(context.Context) (*domain.Snapshot, error) {
		calls.Add(1)
		return snap, nil
	}

	s := newSession("sid")
	_, loaded := s.State()
	assert.False(t, loaded)

	st1 := s.Load(context.Background(), load)
	st2 := s.Load(context.Background(), load)

	assert.Equal(t, int32(1), calls.Load())
	assert.Same(t, snap, st1.Snapshot)
	assert.Same(t, snap, st2.Snapshot)
	assert.Equal(t, testFetchedAt, st1.FetchedAt)
	assert.False(t, st1.Failed())
}

func TestSession_FailureIsSticky(t *testing.T) {
	var calls atomic.Int32
	load := func(context.Context) (*domain.Snapshot, error) {
		calls.Add(1)
		return nil, errors.New("status 503")
	}

	s := newSession("sid")
	st := s.Load(context.Background(), load)
	require.True(t, st.Failed())
	assert.Nil(t, st.Snapshot)

	st = s.Load(context.Background(), load)
	assert.True(t, st.Failed())
	assert.Equal(t, int32(1), calls.Load(), "failure marker is not retried")
}

func TestSession_NilSnapshotIsFailure(t *testing.T) {
	s := newSession("sid")

	st := s.Load(context.Background(), func(context.Context) (*domain.Snapshot, error) { return nil, nil })

	require.True(t, st.Failed())
	assert.ErrorIs(t, st.Err, ErrNoSnapshot)
	stored, loaded := s.State()
	assert.True(t, loaded)
	assert.True(t, stored.Failed())
}

func TestSession_CancelledLoadNotStored(t *testing.T) {
	s := newSession("sid")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := s.Load(ctx, func(ctx context.Context) (*domain.Snapshot, error) {
		return nil, ctx.Err()
	})
	assert.True(t, st.Failed())

	_, loaded := s.State()
	assert.False(t, loaded)

	snap := testSnapshot(t)
	st = s.Load(context.Background(), func(context.Context) (*domain.Snapshot, error) { return snap, nil })
	assert.Same(t, snap, st.Snapshot)
}

func TestSession_ConcurrentLoadRunsOnce(t *testing.T) {
	snap := testSnapshot(t)
	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (*domain.Snapshot, error) {
		calls.Add(1)
		<-release
		return snap, nil
	}

	s := newSession("sid")
	var wg sync.WaitGroup
	results := make([]State, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Load(context.Background(), load)
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, st := range results {
		assert.Same(t, snap, st.Snapshot)
	}
}

// --- Store tests ---

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(10, time.Hour, clockwork.NewFakeClock())

	sess := store.Create()
	require.NotEmpty(t, sess.ID())

	got, ok := store.Get(sess.ID())
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, store.Len())
}

func TestStore_GetOrCreate(t *testing.T) {
	store := NewStore(10, time.Hour, clockwork.NewFakeClock())

	first, created := store.GetOrCreate("")
	assert.True(t, created)

	again, created := store.GetOrCreate(first.ID())
	assert.False(t, created)
	assert.Same(t, first, again)

	other, created := store.GetOrCreate("unknown-id")
	assert.True(t, created)
	assert.NotEqual(t, first.ID(), other.ID())
}

func TestStore_NonPositiveCapacityKeepsNewest(t *testing.T) {
	for _, capacity := range []int{0, -3} {
		store := NewStore(capacity, time.Hour, clockwork.NewFakeClock())

		first := store.Create()
		_, ok := store.Get(first.ID())
		require.True(t, ok, "capacity %d", capacity)

		second := store.Create()
		_, ok = store.Get(second.ID())
		assert.True(t, ok, "capacity %d", capacity)
		_, ok = store.Get(first.ID())
		assert.False(t, ok, "capacity %d", capacity)
		assert.Equal(t, 1, store.Len())
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewStore(10, 30*time.Minute, clock)

	sess := store.Create()
	clock.Advance(20 * time.Minute)
	_, ok := store.Get(sess.ID())
	require.True(t, ok, "access refreshes idle time")

	clock.Advance(20 * time.Minute)
	_, ok = store.Get(sess.ID())
	require.True(t, ok)

	clock.Advance(31 * time.Minute)
	_, ok = store.Get(sess.ID())
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestStore_LRUEviction(t *testing.T) {
	store := NewStore(2, time.Hour, clockwork.NewFakeClock())

	a := store.Create()
	b := store.Create()

	// Touch a so b becomes least recently used.
	_, ok := store.Get(a.ID())
	require.True(t, ok)

	c := store.Create()

	_, ok = store.Get(b.ID())
	assert.False(t, ok, "b should be evicted")
	_, ok = store.Get(a.ID())
	assert.True(t, ok)
	_, ok = store.Get(c.ID())
	assert.True(t, ok)
	assert.Equal(t, 2, store.Len())
}

func TestStore_Sweep(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewStore(10, time.Minute, clock)

	store.Create()
	store.Create()
	clock.Advance(2 * time.Minute)
	fresh := store.Create()

	assert.Equal(t, 2, store.Sweep())
	assert.Equal(t, 1, store.Len())
	_, ok := store.Get(fresh.ID())
	assert.True(t, ok)
}

func TestStore_RunSweeper(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := NewStore(10, time.Minute, clock)
	store.Create()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	remaining := make(chan int, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		store.RunSweeper(ctx, 30*time.Second, func(n int) {
			select {
			case remaining <- n:
			default:
			}
		})
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(2 * time.Minute)

	select {
	case n := <-remaining:
		assert.Equal(t, 0, n)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not run")
	}

	cancel()
	<-done
}
