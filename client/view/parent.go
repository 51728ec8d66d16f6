// Package view holds the parent and admin screens as plain state machines:
// each owns its session data and a poller, with no package level state.
package view

import (
	"context"
	"fmt"
	"kidcheck/client/poller"
	"kidcheck/client/store"
	"kidcheck/domain"
	"strings"
)

// ConfirmFunc asks the person at the keyboard to approve a destructive action.
type ConfirmFunc func(id string) bool

// SelectableChild is a complete child row with its position in the book.
type SelectableChild struct {
	Index int
	domain.Child
}

type ParentView struct {
	email    string
	name     string
	requests store.RequestStore
	children store.ChildStore
	poller   *poller.Poller
	book     []domain.Child
}

func NewParentView(session domain.Session, requests store.RequestStore, children store.ChildStore, opts ...poller.Option) (*ParentView, error) {
	email := strings.TrimSpace(session.Email)
	if session.Role != domain.RoleParent || email == "" {
		return nil, fmt.Errorf("%w: a signed in parent is required", domain.ErrUnauthorized)
	}

	v := &ParentView{
		email:    email,
		name:     session.Name,
		requests: requests,
		children: children,
		book:     []domain.Child{{}},
	}
	filter := domain.RequestFilter{ParentEmail: email}
	v.poller = poller.New(func(ctx context.Context) ([]domain.StatusRequest, error) {
		return requests.List(ctx, filter)
	}, opts...)
	return v, nil
}

// Open loads the child book and starts polling for this parent's requests.
func (v *ParentView) Open(ctx context.Context) error {
	book, err := v.children.Children(ctx, v.email)
	if err != nil {
		return err
	}
	if len(book) == 0 {
		book = []domain.Child{{}}
	}
	v.book = book
	v.poller.Start(ctx)
	return nil
}

func (v *ParentView) Close() {
	v.poller.Stop()
}

func (v *ParentView) Email() string { return v.email }
func (v *ParentView) Name() string  { return v.name }

// Requests is the latest snapshot, newest first, holding only this parent's requests.
func (v *ParentView) Requests() []domain.StatusRequest {
	return v.poller.Snapshot()
}

// Reload fetches right away instead of waiting for the next tick.
func (v *ParentView) Reload(ctx context.Context) error {
	return v.poller.Reload(ctx)
}

func (v *ParentView) Children() []domain.Child {
	out := make([]domain.Child, len(v.book))
	copy(out, v.book)
	return out
}

func (v *ParentView) SelectableChildren() []SelectableChild {
	out := []SelectableChild{}
	for i, c := range v.book {
		if c.Selectable() {
			out = append(out, SelectableChild{Index: i, Child: c})
		}
	}
	return out
}

// AddChild appends a blank row.
func (v *ParentView) AddChild(ctx context.Context) error {
	return v.saveBook(ctx, append(v.Children(), domain.Child{}))
}

func (v *ParentView) UpdateChild(ctx context.Context, index int, child domain.Child) error {
	if index < 0 || index >= len(v.book) {
		return fmt.Errorf("%w: no child row %d", domain.ErrValidation, index)
	}
	child.Name = strings.TrimSpace(child.Name)
	child.Grade = strings.TrimSpace(child.Grade)
	if !domain.ValidGrade(child.Grade) {
		return fmt.Errorf("%w: unknown grade %q", domain.ErrValidation, child.Grade)
	}

	book := v.Children()
	book[index] = child
	return v.saveBook(ctx, book)
}

// RemoveChild splices the row out. The last row can not be removed.
func (v *ParentView) RemoveChild(ctx context.Context, index int) error {
	if index < 0 || index >= len(v.book) {
		return fmt.Errorf("%w: no child row %d", domain.ErrValidation, index)
	}
	if len(v.book) <= 1 {
		return fmt.Errorf("%w: at least one child row is kept", domain.ErrValidation)
	}

	book := v.Children()
	book = append(book[:index], book[index+1:]...)
	return v.saveBook(ctx, book)
}

func (v *ParentView) saveBook(ctx context.Context, book []domain.Child) error {
	if err := v.children.SaveChildren(ctx, v.email, book); err != nil {
		return err
	}
	v.book = book
	return nil
}

// Ask files a check-in or check-out request for the child at index.
func (v *ParentView) Ask(ctx context.Context, t domain.RequestType, index int) (*domain.StatusRequest, error) {
	if index < 0 || index >= len(v.book) || !v.book[index].Selectable() {
		return nil, fmt.Errorf("%w: select a child with a name and grade", domain.ErrValidation)
	}
	child := v.book[index]

	req, err := v.requests.Create(ctx, domain.NewRequest{
		Type:        t,
		ChildName:   child.Name,
		ChildGrade:  child.Grade,
		ParentEmail: v.email,
		ParentName:  v.name,
	})
	if err != nil {
		return nil, err
	}
	v.poller.Refresh()
	return req, nil
}

// Delete removes one of this parent's requests after confirm approves it.
// It reports whether anything was deleted.
func (v *ParentView) Delete(ctx context.Context, id string, confirm ConfirmFunc) (bool, error) {
	own, err := v.requests.List(ctx, domain.RequestFilter{ParentEmail: v.email})
	if err != nil {
		return false, err
	}
	if !containsRequest(own, id) {
		return false, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if confirm == nil || !confirm(id) {
		return false, nil
	}

	if err := v.requests.Delete(ctx, id); err != nil {
		return false, err
	}
	v.poller.Refresh()
	return true, nil
}

func containsRequest(reqs []domain.StatusRequest, id string) bool {
	for _, r := range reqs {
		if r.ID == id {
			return true
		}
	}
	return false
}
