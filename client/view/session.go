package view

import (
	"context"
	"fmt"
	"kidcheck/client/store"
	"kidcheck/domain"
	"strings"
)

// Identity signs people in and remembers who is signed in per role.
type Identity struct {
	auth            store.Authenticator
	sessions        store.SessionStore
	adminPassphrase string
}

func NewIdentity(auth store.Authenticator, sessions store.SessionStore, adminPassphrase string) *Identity {
	return &Identity{
		auth:            auth,
		sessions:        sessions,
		adminPassphrase: adminPassphrase,
	}
}

func (i *Identity) LoginParent(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := i.auth.Login(ctx, domain.LoginRequest{
		Email:    email,
		Password: password,
		UserType: domain.RoleParent,
	})
	if err != nil {
		return nil, err
	}
	if err := i.sessions.SaveSession(ctx, *session); err != nil {
		return nil, err
	}
	return session, nil
}

func (i *Identity) RegisterParent(ctx context.Context, req domain.RegisterRequest) (*domain.Session, error) {
	req.UserType = domain.RoleParent
	session, err := i.auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := i.sessions.SaveSession(ctx, *session); err != nil {
		return nil, err
	}
	return session, nil
}

// LoginAdmin checks the shared passphrase. It is a UX gate, not a security boundary.
func (i *Identity) LoginAdmin(ctx context.Context, name, passphrase string) (*domain.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if passphrase != i.adminPassphrase {
		return nil, fmt.Errorf("%w: invalid admin password", domain.ErrInvalidCredentials)
	}

	session := domain.Session{Role: domain.RoleAdmin, Name: name}
	if err := i.sessions.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Current returns the remembered session for role, or domain.ErrNotFound.
func (i *Identity) Current(ctx context.Context, role string) (*domain.Session, error) {
	return i.sessions.Session(ctx, role)
}

func (i *Identity) Logout(ctx context.Context) error {
	return i.sessions.ClearSessions(ctx)
}
