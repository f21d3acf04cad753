package api

import (
	"context"
	"net/http"
	"sync"

	"happymoney/internal/core"
)

// Session is the explicit auth session: login/logout plus a restore/clear
// lifecycle instead of ambient global state. The server tracks the session
// in a cookie held by the client's jar; Session only caches who is logged
// in.
type Session struct {
	client *Client

	mu   sync.Mutex
	user *core.User
}

func NewSession(client *Client) *Session {
	return &Session{client: client}
}

// Login authenticates as the given user id.
func (s *Session) Login(ctx context.Context, userID string) (core.User, error) {
	var user core.User
	err := s.client.do(ctx, http.MethodPost, "/auth/login", nil,
		map[string]string{"user_id": userID}, &user)
	if err != nil {
		return core.User{}, err
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return user, nil
}

// Logout ends the server session and clears the local one.
func (s *Session) Logout(ctx context.Context) error {
	err := s.client.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	s.Clear()
	return err
}

// Restore asks the server who the cookie belongs to, repopulating the
// session after a fresh start.
func (s *Session) Restore(ctx context.Context) (core.User, error) {
	var user core.User
	if err := s.client.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return core.User{}, err
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return user, nil
}

// Clear drops the locally cached user without calling the server.
func (s *Session) Clear() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// Current returns the cached user, if any.
func (s *Session) Current() (core.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return core.User{}, false
	}
	return *s.user, true
}
