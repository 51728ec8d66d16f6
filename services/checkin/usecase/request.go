package usecase

import (
	"context"
	"fmt"
	"kidcheck/domain"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

type requestUC struct {
	repo    domain.RequestRepo
	TimeOut time.Duration
	now     func() time.Time
}

func NewRequestUseCase(repo domain.RequestRepo, timeOut time.Duration) domain.RequestUseCase {
	return &requestUC{
		repo:    repo,
		TimeOut: timeOut,
		now:     time.Now,
	}
}

func (ruc *requestUC) CreateRequest(ctx context.Context, input *domain.NewRequest) (*domain.StatusRequest, error) {
	if err := input.Normalize(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, ruc.TimeOut)
	defer cancel()

	req := domain.NewStatusRequest(*input, ruc.now())
	if err := ruc.repo.CreateRequest(ctx, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (ruc *requestUC) GetAllRequests(ctx context.Context, filter domain.RequestFilter) (*[]domain.StatusRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, ruc.TimeOut)
	defer cancel()

	filter.ParentEmail = strings.TrimSpace(filter.ParentEmail)
	datas, err := ruc.repo.GetAllRequests(ctx, filter)
	if err != nil {
		return nil, err
	}
	return datas, nil
}

// UpdateRequest stores a caller composed feedback as is. It is the raw form of RespondToRequest.
func (ruc *requestUC) UpdateRequest(ctx context.Context, input *domain.UpdateRequestInput) (*domain.StatusRequest, error) {
	input.ID = strings.TrimSpace(input.ID)
	if _, err := govalidator.ValidateStruct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := domain.ValidateResponseStatus(input.Status); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, ruc.TimeOut)
	defer cancel()

	return ruc.repo.UpdateRequest(ctx, input.ID, input.Status, input.Feedback)
}

func (ruc *requestUC) RespondToRequest(ctx context.Context, input *domain.RespondRequestInput) (*domain.StatusRequest, error) {
	input.ID = strings.TrimSpace(input.ID)
	if _, err := govalidator.ValidateStruct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	ctx, cancel := context.WithTimeout(ctx, ruc.TimeOut)
	defer cancel()

	existing, err := ruc.repo.GetRequestByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := domain.CanRespond(*existing); err != nil {
		return nil, err
	}

	feedback, err := domain.ComposeFeedback(existing.ChildName, domain.Response{
		Decision:     input.Decision,
		ActualStatus: input.ActualStatus,
		Time:         input.Time,
		Note:         input.Note,
	})
	if err != nil {
		return nil, err
	}

	return ruc.repo.UpdateRequest(ctx, existing.ID, input.Decision, feedback)
}

func (ruc *requestUC) DeleteRequest(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, ruc.TimeOut)
	defer cancel()

	return ruc.repo.DeleteRequest(ctx, id)
}

func (ruc *requestUC) GetRequestStats(ctx context.Context) (*domain.RequestStats, error) {
	ctx, cancel := context.WithTimeout(ctx, ruc.TimeOut)
	defer cancel()

	return ruc.repo.CountRequests(ctx)
}
