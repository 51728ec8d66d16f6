// Package store holds the client side request stores: the remote REST
// backend, the device local SQLite backend and the fallback between them.
package store

import (
	"context"
	"kidcheck/domain"
)

type RequestStore interface {
	Create(ctx context.Context, in domain.NewRequest) (*domain.StatusRequest, error)
	List(ctx context.Context, filter domain.RequestFilter) ([]domain.StatusRequest, error)
	Update(ctx context.Context, id string, status domain.RequestStatus, feedback string) (*domain.StatusRequest, error)
	Delete(ctx context.Context, id string) error
}

type Authenticator interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.Session, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.Session, error)
}

// Backend is everything a store must serve to sit behind Fallback.
type Backend interface {
	RequestStore
	Authenticator
}

type ChildStore interface {
	Children(ctx context.Context, parentEmail string) ([]domain.Child, error)
	SaveChildren(ctx context.Context, parentEmail string, children []domain.Child) error
}

type SessionStore interface {
	SaveSession(ctx context.Context, session domain.Session) error
	// Session returns domain.ErrNotFound when no one is signed in with the role.
	Session(ctx context.Context, role string) (*domain.Session, error)
	ClearSessions(ctx context.Context) error
}
