// Package session owns who is logged in: it persists the backend access
// token per browser session and resolves the current user once per page load.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"ifrs-console/internal/apiclient"
	"ifrs-console/internal/logger"
	"ifrs-console/internal/model"
	"ifrs-console/internal/store"
)

const (
	loginFallback    = "Login failed. Please check your credentials."
	registerFallback = "Registration failed."
)

// Backend is the slice of the API client the session needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (*model.TokenResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (*model.TokenResponse, error)
	Me(ctx context.Context, token string) (*model.User, error)
}

// AuthenticationError is returned when the backend refuses to issue or
// honour a token. Message is safe to show to the user.
type AuthenticationError struct {
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string { return e.Message }
func (e *AuthenticationError) Unwrap() error { return e.Err }

type Manager struct {
	backend Backend
	tokens  store.TokenStore
	group   singleflight.Group
}

func NewManager(backend Backend, tokens store.TokenStore) *Manager {
	return &Manager{backend: backend, tokens: tokens}
}

func NewID() string { return uuid.NewString() }

// Resolve loads the stored token for sid and asks the backend who it
// belongs to. One attempt, no retry. A rejected token is cleared.
func (m *Manager) Resolve(ctx context.Context, sid string) *State {
	st := newState(sid)

	token, err := m.tokens.Load(ctx, sid)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Warn("session.load.failed", "err", err)
		}
		st.settle("", nil)
		return st
	}

	user, err := m.me(ctx, token)
	if err != nil {
		if apiclient.IsAuthRejection(err) {
			logger.Info("session.resolve.rejected", "sid", sid)
			if cerr := m.tokens.Clear(ctx, sid); cerr != nil {
				logger.Error("session.clear.failed", "err", cerr)
			}
			st.settle("", nil)
			return st
		}
		logger.Warn("session.resolve.failed", "sid", sid, "err", err)
		st.settle(token, nil)
		return st
	}

	st.settle(token, user)
	return st
}

// me collapses concurrent lookups of the same token into one backend call.
// The shared call outlives any single caller; each caller stops waiting
// when its own context ends.
func (m *Manager) me(ctx context.Context, token string) (*model.User, error) {
	ch := m.group.DoChan(token, func() (interface{}, error) {
		return m.backend.Me(context.WithoutCancel(ctx), token)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		u := *res.Val.(*model.User)
		return &u, nil
	}
}

func (m *Manager) Login(ctx context.Context, st *State, email, password string) (*model.User, error) {
	resp, err := m.backend.Login(ctx, email, password)
	if err != nil {
		logger.Warn("login.failed", "email", email, "err", err)
		return nil, &AuthenticationError{Message: apiclient.Detail(err, loginFallback), Err: err}
	}
	user, err := m.adopt(ctx, st, resp.AccessToken)
	if err != nil {
		return nil, &AuthenticationError{Message: apiclient.Detail(err, loginFallback), Err: err}
	}
	logger.Info("login.ok", "uid", user.ID, "role", user.Role)
	return user, nil
}

func (m *Manager) Register(ctx context.Context, st *State, req model.RegisterRequest) (*model.User, error) {
	resp, err := m.backend.Register(ctx, req)
	if err != nil {
		logger.Warn("register.failed", "email", req.Email, "err", err)
		return nil, &AuthenticationError{Message: apiclient.Detail(err, registerFallback), Err: err}
	}
	user, err := m.adopt(ctx, st, resp.AccessToken)
	if err != nil {
		return nil, &AuthenticationError{Message: apiclient.Detail(err, registerFallback), Err: err}
	}
	logger.Info("register.ok", "uid", user.ID, "role", user.Role)
	return user, nil
}

// adopt moves the session to a fresh id, persists the issued token under
// it and fetches the profile. The pre-login id never carries the token.
// If the profile cannot be fetched the token is dropped again.
func (m *Manager) adopt(ctx context.Context, st *State, token string) (*model.User, error) {
	if token == "" {
		return nil, errors.New("backend issued an empty token")
	}
	sid := NewID()
	if err := m.tokens.Save(ctx, sid, token); err != nil {
		return nil, err
	}
	user, err := m.backend.Me(ctx, token)
	if err != nil {
		_ = m.tokens.Clear(ctx, sid)
		st.clear()
		return nil, err
	}
	if err := m.tokens.Clear(ctx, st.ID); err != nil {
		logger.Warn("session.rotate.clear_failed", "err", err)
	}
	st.rotate(sid, token, user)
	return user, nil
}

// Logout forgets the token and the user. The backend is not contacted.
func (m *Manager) Logout(ctx context.Context, st *State) error {
	err := m.tokens.Clear(ctx, st.ID)
	st.clear()
	if err != nil {
		return err
	}
	logger.Info("logout.ok", "sid", st.ID)
	return nil
}
