package usecase

import (
	"context"
	"errors"
	"kidcheck/domain"
	"testing"
	"time"
)

func newTestRequestUC(repo domain.RequestRepo) *requestUC {
	uc := NewRequestUseCase(repo, time.Second).(*requestUC)
	base := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	tick := 0
	uc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return uc
}

func anaRequest() *domain.NewRequest {
	return &domain.NewRequest{
		Type:        domain.RequestCheckin,
		ChildName:   "Ana",
		ChildGrade:  "3rd",
		ParentEmail: "p@x.com",
		ParentName:  "Pat",
	}
}

func TestCreateRequestStartsPending(t *testing.T) {
	repo := &fakeRequestRepo{}
	uc := newTestRequestUC(repo)

	req, err := uc.CreateRequest(context.Background(), anaRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if req.Status != domain.StatusPending {
		t.Fatalf("status = %q, want pending", req.Status)
	}
	if req.Feedback != nil || req.ResponseTime != nil || req.UpdatedAt != nil {
		t.Fatalf("pending request carries response fields: %+v", req)
	}
	want := "Please confirm if Ana has checked in to school and provide the time."
	if req.RequestMessage != want {
		t.Fatalf("requestMessage = %q, want %q", req.RequestMessage, want)
	}
	if len(repo.data) != 1 {
		t.Fatalf("stored %d requests, want 1", len(repo.data))
	}
}

func TestCreateRequestRejectsMissingFields(t *testing.T) {
	repo := &fakeRequestRepo{}
	uc := newTestRequestUC(repo)

	in := anaRequest()
	in.ChildGrade = "  "
	if _, err := uc.CreateRequest(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	in = anaRequest()
	in.Type = "pickup"
	if _, err := uc.CreateRequest(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(repo.data) != 0 {
		t.Fatalf("invalid input was stored")
	}
}

func TestRespondToRequestScenario(t *testing.T) {
	repo := &fakeRequestRepo{}
	uc := newTestRequestUC(repo)
	ctx := context.Background()

	created, err := uc.CreateRequest(ctx, anaRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := uc.RespondToRequest(ctx, &domain.RespondRequestInput{
		ID:           created.ID,
		Decision:     domain.StatusApproved,
		ActualStatus: domain.CheckedIn,
		Time:         "08:15",
	})
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	want := "✅ CONFIRMED: Ana has checked in to school at 08:15."
	if got.Feedback == nil || *got.Feedback != want {
		t.Fatalf("feedback = %v, want %q", got.Feedback, want)
	}
	if got.Status != domain.StatusApproved || got.ResponseTime == nil || got.UpdatedAt == nil {
		t.Fatalf("response bundle incomplete: %+v", got)
	}

	_, err = uc.RespondToRequest(ctx, &domain.RespondRequestInput{
		ID:           created.ID,
		Decision:     domain.StatusRejected,
		ActualStatus: domain.CheckedIn,
		Time:         "08:20",
	})
	if !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("second respond err = %v, want ErrAlreadyAnswered", err)
	}
}

func TestRespondToRequestMissingFieldsDoesNotMutate(t *testing.T) {
	repo := &fakeRequestRepo{}
	uc := newTestRequestUC(repo)
	ctx := context.Background()

	created, _ := uc.CreateRequest(ctx, anaRequest())

	_, err := uc.RespondToRequest(ctx, &domain.RespondRequestInput{
		ID:       created.ID,
		Decision: domain.StatusApproved,
		Time:     "08:15",
	})
	if !errors.Is(err, domain.ErrMissingField) {
		t.Fatalf("err = %v, want ErrMissingField", err)
	}

	_, err = uc.RespondToRequest(ctx, &domain.RespondRequestInput{
		ID:           created.ID,
		Decision:     domain.StatusApproved,
		ActualStatus: domain.CheckedIn,
	})
	if !errors.Is(err, domain.ErrMissingField) {
		t.Fatalf("err = %v, want ErrMissingField", err)
	}

	if repo.updates != 0 {
		t.Fatalf("updates = %d, want 0", repo.updates)
	}
	if !repo.data[0].IsPending() {
		t.Fatalf("request left pending state")
	}
}

func TestRespondToUnknownRequest(t *testing.T) {
	uc := newTestRequestUC(&fakeRequestRepo{})
	_, err := uc.RespondToRequest(context.Background(), &domain.RespondRequestInput{
		ID:           "nope",
		Decision:     domain.StatusRejected,
		ActualStatus: domain.CheckedOut,
		Time:         "15:00",
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateRequestValidatesStatus(t *testing.T) {
	repo := &fakeRequestRepo{}
	uc := newTestRequestUC(repo)
	ctx := context.Background()
	created, _ := uc.CreateRequest(ctx, anaRequest())

	_, err := uc.UpdateRequest(ctx, &domain.UpdateRequestInput{ID: created.ID, Status: domain.StatusPending})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	got, err := uc.UpdateRequest(ctx, &domain.UpdateRequestInput{ID: created.ID, Status: domain.StatusRejected, Feedback: "closed"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if *got.Feedback != "closed" {
		t.Fatalf("feedback = %q", *got.Feedback)
	}

	_, err = uc.UpdateRequest(ctx, &domain.UpdateRequestInput{ID: "missing", Status: domain.StatusApproved})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListFilterAndStats(t *testing.T) {
	repo := &fakeRequestRepo{}
	uc := newTestRequestUC(repo)
	ctx := context.Background()

	first, _ := uc.CreateRequest(ctx, anaRequest())
	other := anaRequest()
	other.ParentEmail = "q@x.com"
	other.ChildName = "Ben"
	_, _ = uc.CreateRequest(ctx, other)
	third, _ := uc.CreateRequest(ctx, anaRequest())

	mine, err := uc.GetAllRequests(ctx, domain.RequestFilter{ParentEmail: "p@x.com"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(*mine) != 2 || (*mine)[0].ID != third.ID || (*mine)[1].ID != first.ID {
		t.Fatalf("filtered list = %+v", *mine)
	}

	all, _ := uc.GetAllRequests(ctx, domain.RequestFilter{})
	if len(*all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(*all))
	}

	_, _ = uc.UpdateRequest(ctx, &domain.UpdateRequestInput{ID: first.ID, Status: domain.StatusApproved})
	stats, err := uc.GetRequestStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Pending != 2 || stats.Processed != 1 || stats.Total != 3 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestDeleteRequest(t *testing.T) {
	repo := &fakeRequestRepo{}
	uc := newTestRequestUC(repo)
	ctx := context.Background()
	created, _ := uc.CreateRequest(ctx, anaRequest())

	if err := uc.DeleteRequest(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := uc.DeleteRequest(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
	if err := uc.DeleteRequest(ctx, " "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank delete err = %v, want ErrValidation", err)
	}
}
