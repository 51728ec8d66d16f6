package domain

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
)

type RequestType string

const (
	RequestCheckin  RequestType = "checkin"
	RequestCheckout RequestType = "checkout"
)

func (t RequestType) Valid() bool {
	return t == RequestCheckin || t == RequestCheckout
}

// Phrase is the verb used in parent and admin messages.
func (t RequestType) Phrase() string {
	if t == RequestCheckout {
		return "checked out from"
	}
	return "checked in to"
}

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// ResponseTimeLayout formats the human readable responseTime field.
const ResponseTimeLayout = "2006-01-02 15:04:05"

type StatusRequest struct {
	ID             string        `gorm:"primaryKey;type:varchar(40)" json:"id"`
	Type           RequestType   `gorm:"type:varchar(10);not null" json:"type"`
	ChildName      string        `gorm:"type:varchar(150);not null" json:"childName"`
	ChildGrade     string        `gorm:"type:varchar(20);not null" json:"childGrade"`
	ParentEmail    string        `gorm:"type:varchar(255);not null;index" json:"parentEmail"`
	ParentName     string        `gorm:"type:varchar(150);not null" json:"parentName"`
	RequestMessage string        `gorm:"type:text;not null" json:"requestMessage"`
	Status         RequestStatus `gorm:"type:varchar(10);not null;default:pending;index" json:"status"`
	Feedback       *string       `gorm:"type:text" json:"feedback,omitempty"`
	ResponseTime   *string       `gorm:"type:varchar(30)" json:"responseTime,omitempty"`
	Timestamp      time.Time     `gorm:"column:requested_at;not null;index" json:"timestamp"`
	UpdatedAt      *time.Time    `gorm:"autoUpdateTime:false" json:"updatedAt,omitempty"`
}

// NewRequest is the parent supplied part of a StatusRequest.
type NewRequest struct {
	Type        RequestType `json:"type" valid:"required~type is required"`
	ChildName   string      `json:"childName" valid:"required~childName is required"`
	ChildGrade  string      `json:"childGrade" valid:"required~childGrade is required"`
	ParentEmail string      `json:"parentEmail" valid:"required~parentEmail is required"`
	ParentName  string      `json:"parentName" valid:"required~parentName is required"`
	// RequestMessage is accepted on the wire but always regenerated from type and child name.
	RequestMessage string `json:"requestMessage,omitempty"`
}

type UpdateRequestInput struct {
	ID       string        `json:"id" valid:"required~id is required"`
	Status   RequestStatus `json:"status" valid:"required~status is required"`
	Feedback string        `json:"feedback"`
}

type RespondRequestInput struct {
	ID           string        `json:"id" valid:"required~id is required"`
	Decision     RequestStatus `json:"decision"`
	ActualStatus ActualStatus  `json:"actualStatus"`
	Time         string        `json:"time"`
	Note         string        `json:"note"`
}

type DeleteRequestInput struct {
	ID string `json:"id" valid:"required~id is required"`
}

type RequestFilter struct {
	ParentEmail string `json:"parentEmail,omitempty"`
}

func (f RequestFilter) Matches(r StatusRequest) bool {
	return f.ParentEmail == "" || r.ParentEmail == f.ParentEmail
}

type RequestStats struct {
	Pending   int64 `json:"pending"`
	Processed int64 `json:"processed"`
	Total     int64 `json:"total"`
}

type RequestRepo interface {
	CreateRequest(ctx context.Context, req *StatusRequest) error
	GetAllRequests(ctx context.Context, filter RequestFilter) (*[]StatusRequest, error)
	GetRequestByID(ctx context.Context, id string) (*StatusRequest, error)
	UpdateRequest(ctx context.Context, id string, status RequestStatus, feedback string) (*StatusRequest, error)
	DeleteRequest(ctx context.Context, id string) error
	CountRequests(ctx context.Context) (*RequestStats, error)
}

type RequestUseCase interface {
	CreateRequest(ctx context.Context, input *NewRequest) (*StatusRequest, error)
	GetAllRequests(ctx context.Context, filter RequestFilter) (*[]StatusRequest, error)
	UpdateRequest(ctx context.Context, input *UpdateRequestInput) (*StatusRequest, error)
	RespondToRequest(ctx context.Context, input *RespondRequestInput) (*StatusRequest, error)
	DeleteRequest(ctx context.Context, id string) error
	GetRequestStats(ctx context.Context) (*RequestStats, error)
}

// NewRequestID returns a time derived id with a random suffix so bursts created
// within the same millisecond do not collide.
func NewRequestID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return strconv.FormatInt(now.UnixMilli(), 10) + suffix
}

func RequestMessageFor(t RequestType, childName string) string {
	return fmt.Sprintf("Please confirm if %s has %s school and provide the time.", childName, t.Phrase())
}

// Normalize trims every field and validates the required ones.
func (in *NewRequest) Normalize() error {
	in.Type = RequestType(strings.TrimSpace(string(in.Type)))
	in.ChildName = strings.TrimSpace(in.ChildName)
	in.ChildGrade = strings.TrimSpace(in.ChildGrade)
	in.ParentEmail = strings.TrimSpace(in.ParentEmail)
	in.ParentName = strings.TrimSpace(in.ParentName)

	if _, err := govalidator.ValidateStruct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: type must be %s or %s", ErrValidation, RequestCheckin, RequestCheckout)
	}
	return nil
}

// NewStatusRequest builds a pending request from validated input.
func NewStatusRequest(in NewRequest, now time.Time) StatusRequest {
	return StatusRequest{
		ID:             NewRequestID(now),
		Type:           in.Type,
		ChildName:      in.ChildName,
		ChildGrade:     in.ChildGrade,
		ParentEmail:    in.ParentEmail,
		ParentName:     in.ParentName,
		RequestMessage: RequestMessageFor(in.Type, in.ChildName),
		Status:         StatusPending,
		Timestamp:      now,
	}
}

// ValidateResponseStatus rejects updates that would move a request to anything but a terminal state.
func ValidateResponseStatus(status RequestStatus) error {
	if status != StatusApproved && status != StatusRejected {
		return fmt.Errorf("%w: status must be %s or %s", ErrValidation, StatusApproved, StatusRejected)
	}
	return nil
}

// ApplyResponse sets the full response bundle in one step.
func (r *StatusRequest) ApplyResponse(status RequestStatus, feedback string, now time.Time) {
	responseTime := now.Format(ResponseTimeLayout)
	updatedAt := now
	r.Status = status
	r.Feedback = &feedback
	r.ResponseTime = &responseTime
	r.UpdatedAt = &updatedAt
}

func (r StatusRequest) IsPending() bool {
	return r.Status == StatusPending
}

func SortNewestFirst(reqs []StatusRequest) {
	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].Timestamp.After(reqs[j].Timestamp)
	})
}

func FilterRequests(reqs []StatusRequest, filter RequestFilter) []StatusRequest {
	out := make([]StatusRequest, 0, len(reqs))
	for _, r := range reqs {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Partition splits requests into the admin's pending and processed lists, keeping order.
func Partition(reqs []StatusRequest) (pending, processed []StatusRequest) {
	pending = []StatusRequest{}
	processed = []StatusRequest{}
	for _, r := range reqs {
		if r.IsPending() {
			pending = append(pending, r)
		} else {
			processed = append(processed, r)
		}
	}
	return pending, processed
}

func CountStats(reqs []StatusRequest) RequestStats {
	var stats RequestStats
	for _, r := range reqs {
		if r.IsPending() {
			stats.Pending++
		} else {
			stats.Processed++
		}
	}
	stats.Total = int64(len(reqs))
	return stats
}
