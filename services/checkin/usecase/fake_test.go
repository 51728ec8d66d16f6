package usecase

import (
	"context"
	"fmt"
	"kidcheck/domain"
	"sync"
	"time"
)

type fakeRequestRepo struct {
	mu      sync.Mutex
	data    []domain.StatusRequest
	updates int
}

func (f *fakeRequestRepo) CreateRequest(_ context.Context, req *domain.StatusRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = append(f.data, *req)
	return nil
}

func (f *fakeRequestRepo) GetAllRequests(_ context.Context, filter domain.RequestFilter) (*[]domain.StatusRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := domain.FilterRequests(f.data, filter)
	domain.SortNewestFirst(out)
	return &out, nil
}

func (f *fakeRequestRepo) GetRequestByID(_ context.Context, id string) (*domain.StatusRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.data {
		if r.ID == id {
			found := r
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
}

func (f *fakeRequestRepo) UpdateRequest(_ context.Context, id string, status domain.RequestStatus, feedback string) (*domain.StatusRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.data {
		if f.data[i].ID == id {
			f.updates++
			f.data[i].ApplyResponse(status, feedback, time.Now())
			updated := f.data[i]
			return &updated, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
}

func (f *fakeRequestRepo) DeleteRequest(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.data {
		if f.data[i].ID == id {
			f.data = append(f.data[:i], f.data[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
}

func (f *fakeRequestRepo) CountRequests(_ context.Context) (*domain.RequestStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := domain.CountStats(f.data)
	return &stats, nil
}

type fakeAuthRepo struct {
	users map[string]domain.User
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: map[string]domain.User{}}
}

func (f *fakeAuthRepo) CreateUser(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.Email]; ok {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, user.Email)
	}
	f.users[user.Email] = *user
	return nil
}

func (f *fakeAuthRepo) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, email)
	}
	return &user, nil
}
