package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/youruser/galentine/internal/flow"
)

var ErrNotFound = errors.New("session not found")

// Session is one visitor's page state.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu    sync.Mutex
	state flow.State
}

// Snapshot returns the current state. Album values are copy-on-write, so
// the snapshot is safe to read after the lock is released.
func (s *Session) Snapshot() flow.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch runs the reducer under the session lock.
func (s *Session) Dispatch(a flow.Action) (flow.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := flow.Reduce(s.state, a)
	if err != nil {
		return s.state, err
	}
	s.state = next
	return next, nil
}

// BeginCompose marks the session as composing and returns the state to
// compose from. The caller must run release on every exit path.
func (s *Session) BeginCompose() (flow.State, func(), error) {
	st, err := s.Dispatch(flow.ComposeStarted{})
	if err != nil {
		return st, func() {}, err
	}
	var once sync.Once
	release := func() {
		once.Do(func() { _, _ = s.Dispatch(flow.ComposeFinished{}) })
	}
	return st, release, nil
}

// Store keeps sessions in memory. Expire drops them once they are older than
// a TTL.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func (st *Store) Create() *Session {
	s := &Session{ID: uuid.NewString(), CreatedAt: time.Now(), state: flow.Initial()}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions created more than ttl before now and reports how
// many were dropped. A request already holding a removed session finishes
// normally.
func (st *Store) Sweep(now time.Time, ttl time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if now.Sub(s.CreatedAt) > ttl {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

// Expire sweeps every interval until ctx is done. A non-positive ttl disables
// expiry.
func (st *Store) Expire(ctx context.Context, ttl, interval time.Duration, logger *slog.Logger) {
	if ttl <= 0 || interval <= 0 {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			if n := st.Sweep(now, ttl); n > 0 {
				logger.InfoContext(ctx, "sessions expired", "count", n, "remaining", st.Len())
			}
		}
	}
}
