// Package session holds the client's current session and keeps it persisted across restarts.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"task-manager/backend/internal/client"
	userdomain "task-manager/backend/internal/user/domain"
)

// Authenticator is the part of the API client the holder delegates to.
type Authenticator interface {
	Register(ctx context.Context, name, email, password string) (*client.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*client.AuthResponse, error)
}

// Holder is the current {token, user} pair. It implements client.TokenSource.
type Holder struct {
	store Storage

	mu      sync.RWMutex
	auth    Authenticator
	token   string
	user    *userdomain.PublicUser
	loading bool
}

// NewHolder restores the session persisted in store. A session is restored only when both the token
// and the user are present and the user decodes; otherwise the holder starts unauthenticated.
func NewHolder(ctx context.Context, store Storage) (*Holder, error) {
	h := &Holder{store: store, loading: true}
	defer func() { h.loading = false }()

	token, okToken, err := store.Get(ctx, KeyToken)
	if err != nil {
		return nil, fmt.Errorf("session: read token: %w", err)
	}
	rawUser, okUser, err := store.Get(ctx, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("session: read user: %w", err)
	}
	if !okToken || !okUser || token == "" {
		return h, nil
	}
	var u userdomain.PublicUser
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
		return h, nil
	}
	h.token = token
	h.user = &u
	return h, nil
}

// SetAuthenticator sets the API used by Login and Register. The API client usually takes the holder
// as its token source, so the two are wired after construction.
func (h *Holder) SetAuthenticator(a Authenticator) {
	h.mu.Lock()
	h.auth = a
	h.mu.Unlock()
}

// Token returns the current token, or "" when logged out.
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// User returns a copy of the current user, or nil when logged out.
func (h *Holder) User() *userdomain.PublicUser {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.user == nil {
		return nil
	}
	u := *h.user
	return &u
}

// IsAuthenticated reports whether a token is held. Expiry is left to the server.
func (h *Holder) IsAuthenticated() bool {
	return h.Token() != ""
}

// Loading reports whether a login or registration is in flight.
func (h *Holder) Loading() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loading
}

// Login authenticates and, on success, persists and holds the new session.
// On failure the current session is left as it was.
func (h *Holder) Login(ctx context.Context, email, password string) error {
	return h.authenticate(ctx, func(a Authenticator) (*client.AuthResponse, error) {
		return a.Login(ctx, email, password)
	})
}

// Register creates an account and holds its session, like Login.
func (h *Holder) Register(ctx context.Context, name, email, password string) error {
	return h.authenticate(ctx, func(a Authenticator) (*client.AuthResponse, error) {
		return a.Register(ctx, name, email, password)
	})
}

func (h *Holder) authenticate(ctx context.Context, call func(Authenticator) (*client.AuthResponse, error)) error {
	h.mu.Lock()
	a := h.auth
	h.loading = true
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.loading = false
		h.mu.Unlock()
	}()
	if a == nil {
		return fmt.Errorf("session: no authenticator configured")
	}

	res, err := call(a)
	if err != nil {
		return err
	}
	rawUser, err := json.Marshal(res.User)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}
	if err := h.store.Set(ctx, KeyToken, res.Token); err != nil {
		return fmt.Errorf("session: persist token: %w", err)
	}
	if err := h.store.Set(ctx, KeyUser, string(rawUser)); err != nil {
		return fmt.Errorf("session: persist user: %w", err)
	}

	u := res.User
	h.mu.Lock()
	h.token = res.Token
	h.user = &u
	h.mu.Unlock()
	return nil
}

// Logout forgets the session in memory and in storage. It is safe to call when logged out.
// The in-memory session is cleared even if storage fails.
func (h *Holder) Logout(ctx context.Context) error {
	h.mu.Lock()
	h.token = ""
	h.user = nil
	h.mu.Unlock()
	if err := h.store.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("session: clear storage: %w", err)
	}
	return nil
}
