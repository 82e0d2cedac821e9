package chatbot

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSessionBusy is returned when a user's session lock could not be taken in time.
var ErrSessionBusy = errors.New("chatbot: session busy")

// SessionStore keeps one conversation state per user. Lock serialises turns
// for the same user; different users never wait on each other.
type SessionStore interface {
	Lock(ctx context.Context, userID int64) (unlock func(), err error)
	// Load returns the user's state, or NewState() when none exists.
	Load(ctx context.Context, userID int64) (State, error)
	Save(ctx context.Context, userID int64, state State) error
	Delete(ctx context.Context, userID int64) error
}

type userLock struct {
	ch   chan struct{}
	refs int
}

// MemorySessionStore keeps sessions in process memory. Nothing survives a restart.
type MemorySessionStore struct {
	mu     sync.Mutex
	states map[int64]State
	locks  map[int64]*userLock

	lockWait time.Duration
}

// MemorySessionOption customises a MemorySessionStore.
type MemorySessionOption func(*MemorySessionStore)

// WithMemoryLockWait bounds how long a turn waits for the same user's previous turn.
func WithMemoryLockWait(wait time.Duration) MemorySessionOption {
	return func(s *MemorySessionStore) {
		if wait > 0 {
			s.lockWait = wait
		}
	}
}

// NewMemorySessionStore returns an empty in-memory store.
func NewMemorySessionStore(opts ...MemorySessionOption) *MemorySessionStore {
	s := &MemorySessionStore{
		states:   make(map[int64]State),
		locks:    make(map[int64]*userLock),
		lockWait: defaultLockWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lock blocks until the user's lock is free, ctx is done or the lock wait
// elapses. Lock entries are reference counted and dropped once no turn holds
// or waits for them.
func (s *MemorySessionStore) Lock(ctx context.Context, userID int64) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{ch: make(chan struct{}, 1)}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	deadline := time.NewTimer(s.lockWait)
	defer deadline.Stop()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		s.release(userID, l)
		return nil, ctx.Err()
	case <-deadline.C:
		s.release(userID, l)
		return nil, ErrSessionBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			s.release(userID, l)
		})
	}, nil
}

func (s *MemorySessionStore) release(userID int64, l *userLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, userID)
	}
}

func (s *MemorySessionStore) Load(ctx context.Context, userID int64) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[userID]
	if !ok {
		return NewState(), nil
	}
	return state, nil
}

func (s *MemorySessionStore) Save(ctx context.Context, userID int64, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = state
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
	return nil
}

// Len reports how many users currently have a stored conversation.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
