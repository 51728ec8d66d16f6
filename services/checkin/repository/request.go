package repository

import (
	"context"
	"errors"
	"fmt"
	"kidcheck/domain"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) domain.RequestRepo {
	return &requestRepository{
		db: db,
	}
}

func (rr *requestRepository) CreateRequest(ctx context.Context, req *domain.StatusRequest) error {
	if err := rr.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("could not create request, error: %v", err)
	}
	return nil
}

func (rr *requestRepository) GetAllRequests(ctx context.Context, filter domain.RequestFilter) (*[]domain.StatusRequest, error) {
	datas := []domain.StatusRequest{}

	query := rr.db.WithContext(ctx).Order("requested_at DESC")
	if filter.ParentEmail != "" {
		query = query.Where("parent_email = ?", filter.ParentEmail)
	}

	if err := query.Find(&datas).Error; err != nil {
		return nil, fmt.Errorf("could not get requests, error: %v", err)
	}
	return &datas, nil
}

func (rr *requestRepository) GetRequestByID(ctx context.Context, id string) (*domain.StatusRequest, error) {
	var data domain.StatusRequest

	err := rr.db.WithContext(ctx).Where("id = ?", id).First(&data).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("could not get request %s, error: %v", id, err)
	}
	return &data, nil
}

// UpdateRequest writes the whole response bundle while holding the row lock.
func (rr *requestRepository) UpdateRequest(ctx context.Context, id string, status domain.RequestStatus, feedback string) (*domain.StatusRequest, error) {
	var data domain.StatusRequest

	err := rr.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&data).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
			}
			return fmt.Errorf("could not lock request %s, error: %v", id, err)
		}

		data.ApplyResponse(status, feedback, time.Now())

		return tx.Model(&domain.StatusRequest{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":        data.Status,
			"feedback":      data.Feedback,
			"response_time": data.ResponseTime,
			"updated_at":    data.UpdatedAt,
		}).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("could not update request %s, error: %w", id, err)
	}

	return &data, nil
}

func (rr *requestRepository) DeleteRequest(ctx context.Context, id string) error {
	result := rr.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.StatusRequest{})
	if result.Error != nil {
		return fmt.Errorf("could not delete request %s, error: %v", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return nil
}

func (rr *requestRepository) CountRequests(ctx context.Context) (*domain.RequestStats, error) {
	var stats domain.RequestStats

	if err := rr.db.WithContext(ctx).Model(&domain.StatusRequest{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("could not count requests, error: %v", err)
	}
	if err := rr.db.WithContext(ctx).Model(&domain.StatusRequest{}).
		Where("status = ?", domain.StatusPending).
		Count(&stats.Pending).Error; err != nil {
		return nil, fmt.Errorf("could not count pending requests, error: %v", err)
	}

	stats.Processed = stats.Total - stats.Pending
	return &stats, nil
}
