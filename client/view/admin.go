package view

import (
	"context"
	"fmt"
	"kidcheck/client/poller"
	"kidcheck/client/store"
	"kidcheck/domain"
	"strings"
	"sync"
)

// Form is the admin's unsent answer for one request.
type Form struct {
	ActualStatus domain.ActualStatus
	Time         string
	Note         string
}

type AdminView struct {
	name     string
	requests store.RequestStore
	poller   *poller.Poller

	mu    sync.Mutex
	forms map[string]Form
}

func NewAdminView(session domain.Session, requests store.RequestStore, opts ...poller.Option) (*AdminView, error) {
	if session.Role != domain.RoleAdmin || strings.TrimSpace(session.Name) == "" {
		return nil, fmt.Errorf("%w: a signed in admin is required", domain.ErrUnauthorized)
	}

	v := &AdminView{
		name:     session.Name,
		requests: requests,
		forms:    map[string]Form{},
	}
	v.poller = poller.New(func(ctx context.Context) ([]domain.StatusRequest, error) {
		return requests.List(ctx, domain.RequestFilter{})
	}, opts...)
	return v, nil
}

func (v *AdminView) Open(ctx context.Context) {
	v.poller.Start(ctx)
}

func (v *AdminView) Close() {
	v.poller.Stop()
}

func (v *AdminView) Name() string { return v.name }

func (v *AdminView) Reload(ctx context.Context) error {
	return v.poller.Reload(ctx)
}

func (v *AdminView) Pending() []domain.StatusRequest {
	pending, _ := domain.Partition(v.poller.Snapshot())
	return pending
}

func (v *AdminView) Processed() []domain.StatusRequest {
	_, processed := domain.Partition(v.poller.Snapshot())
	return processed
}

func (v *AdminView) Stats() domain.RequestStats {
	return domain.CountStats(v.poller.Snapshot())
}

func (v *AdminView) SetActualStatus(id string, status domain.ActualStatus) {
	v.editForm(id, func(f *Form) { f.ActualStatus = status })
}

func (v *AdminView) SetTime(id, at string) {
	v.editForm(id, func(f *Form) { f.Time = at })
}

func (v *AdminView) SetNote(id, note string) {
	v.editForm(id, func(f *Form) { f.Note = note })
}

func (v *AdminView) Form(id string) Form {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.forms[id]
}

func (v *AdminView) editForm(id string, fn func(f *Form)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	f := v.forms[id]
	fn(&f)
	v.forms[id] = f
}

func (v *AdminView) clearForm(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.forms, id)
}

func (v *AdminView) Approve(ctx context.Context, id string) (*domain.StatusRequest, error) {
	return v.respond(ctx, id, domain.StatusApproved)
}

func (v *AdminView) Reject(ctx context.Context, id string) (*domain.StatusRequest, error) {
	return v.respond(ctx, id, domain.StatusRejected)
}

func (v *AdminView) respond(ctx context.Context, id string, decision domain.RequestStatus) (*domain.StatusRequest, error) {
	req, err := v.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CanRespond(*req); err != nil {
		return nil, err
	}

	form := v.Form(id)
	feedback, err := domain.ComposeFeedback(req.ChildName, domain.Response{
		Decision:     decision,
		ActualStatus: form.ActualStatus,
		Time:         form.Time,
		Note:         form.Note,
	})
	if err != nil {
		return nil, err
	}

	updated, err := v.requests.Update(ctx, id, decision, feedback)
	if err != nil {
		return nil, err
	}
	v.clearForm(id)
	v.poller.Refresh()
	return updated, nil
}

// Delete removes a request after confirm approves it and reports whether it did.
func (v *AdminView) Delete(ctx context.Context, id string, confirm ConfirmFunc) (bool, error) {
	if _, err := v.find(ctx, id); err != nil {
		return false, err
	}
	if confirm == nil || !confirm(id) {
		return false, nil
	}

	if err := v.requests.Delete(ctx, id); err != nil {
		return false, err
	}
	v.clearForm(id)
	v.poller.Refresh()
	return true, nil
}

// find reads the store rather than the snapshot so a stale tick can not answer twice.
func (v *AdminView) find(ctx context.Context, id string) (*domain.StatusRequest, error) {
	all, err := v.requests.List(ctx, domain.RequestFilter{})
	if err != nil {
		return nil, err
	}
	for _, r := range all {
		if r.ID == id {
			found := r
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
}
