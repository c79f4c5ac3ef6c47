package session

import (
	"sync"

	"ifrs-console/internal/model"
)

// State is the session as seen by one page load. It starts loading and
// settles exactly once.
type State struct {
	// ID changes only when login rotates the session.
	ID string

	mu      sync.RWMutex
	token   string
	user    *model.User
	loading bool

	once sync.Once
	done chan struct{}
}

func newState(id string) *State {
	return &State{ID: id, loading: true, done: make(chan struct{})}
}

// NewPending is a state whose resolution has not finished.
func NewPending(id string) *State { return newState(id) }

// NewSettled builds an already-resolved state; used by tests and tools.
func NewSettled(id, token string, user *model.User) *State {
	s := newState(id)
	s.settle(token, user)
	return s
}

// settle records the outcome of resolution. Later calls are no-ops.
func (s *State) settle(token string, user *model.User) bool {
	settled := false
	s.once.Do(func() {
		s.mu.Lock()
		s.token, s.user, s.loading = token, user, false
		s.mu.Unlock()
		close(s.done)
		settled = true
	})
	return settled
}

// Done is closed once loading has finished.
func (s *State) Done() <-chan struct{} { return s.done }

func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *State) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *State) Authenticated() bool { return s.User() != nil }

func (s *State) replace(token string, user *model.User) {
	s.settle(token, user)
	s.mu.Lock()
	s.token, s.user = token, user
	s.mu.Unlock()
}

// clear drops token and user together.
func (s *State) clear() { s.replace("", nil) }

// rotate moves the state to a new session id with a fresh identity.
func (s *State) rotate(id, token string, user *model.User) {
	s.replace(token, user)
	s.mu.Lock()
	s.ID = id
	s.mu.Unlock()
}
