package store

import (
	"context"
	"kidcheck/domain"

	"github.com/sirupsen/logrus"
)

// Fallback tries the remote backend first and, on any error, runs the same
// operation against the local one. Input is validated before either is touched.
type Fallback struct {
	remote Backend
	local  Backend
	log    logrus.FieldLogger
}

// NewFallback builds the store. A nil remote gives a local only store.
func NewFallback(remote Backend, local Backend, log logrus.FieldLogger) *Fallback {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Fallback{
		remote: remote,
		local:  local,
		log:    log,
	}
}

func attempt[T any](ctx context.Context, f *Fallback, op string, call func(Backend) (T, error)) (T, error) {
	if f.remote != nil {
		out, err := call(f.remote)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			var zero T
			return zero, ctx.Err()
		}
		f.log.WithFields(logrus.Fields{
			"operation": op,
			"error":     err.Error(),
		}).Warn("remote backend failed, using local store")
	}
	return call(f.local)
}

func (f *Fallback) Create(ctx context.Context, in domain.NewRequest) (*domain.StatusRequest, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	return attempt(ctx, f, "create", func(b Backend) (*domain.StatusRequest, error) {
		return b.Create(ctx, in)
	})
}

func (f *Fallback) List(ctx context.Context, filter domain.RequestFilter) ([]domain.StatusRequest, error) {
	return attempt(ctx, f, "list", func(b Backend) ([]domain.StatusRequest, error) {
		return b.List(ctx, filter)
	})
}

func (f *Fallback) Update(ctx context.Context, id string, status domain.RequestStatus, feedback string) (*domain.StatusRequest, error) {
	id, err := validateUpdate(id, status)
	if err != nil {
		return nil, err
	}
	return attempt(ctx, f, "update", func(b Backend) (*domain.StatusRequest, error) {
		return b.Update(ctx, id, status, feedback)
	})
}

func (f *Fallback) Delete(ctx context.Context, id string) error {
	id, err := validateID(id)
	if err != nil {
		return err
	}
	_, err = attempt(ctx, f, "delete", func(b Backend) (struct{}, error) {
		return struct{}{}, b.Delete(ctx, id)
	})
	return err
}

func (f *Fallback) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Session, error) {
	if err := normalizeRegister(&req); err != nil {
		return nil, err
	}
	return attempt(ctx, f, "register", func(b Backend) (*domain.Session, error) {
		return b.Register(ctx, req)
	})
}

func (f *Fallback) Login(ctx context.Context, req domain.LoginRequest) (*domain.Session, error) {
	if err := normalizeLogin(&req); err != nil {
		return nil, err
	}
	return attempt(ctx, f, "login", func(b Backend) (*domain.Session, error) {
		return b.Login(ctx, req)
	})
}
