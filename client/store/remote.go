package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"kidcheck/domain"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// remoteEnvelope is the union of every response body the REST backend sends.
type remoteEnvelope struct {
	Success  bool                   `json:"success"`
	Error    string                 `json:"error"`
	Request  *domain.StatusRequest  `json:"request"`
	Requests []domain.StatusRequest `json:"requests"`
	User     *domain.User           `json:"user"`
	Token    string                 `json:"token"`
}

// Remote talks to the REST backend. Every failure, whatever its cause, is
// reported as domain.ErrBackendUnavailable.
type Remote struct {
	baseURL    string
	httpClient *http.Client
}

func NewRemote(baseURL string, timeout time.Duration) *Remote {
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (r *Remote) do(ctx context.Context, method, path string, body any) (*remoteEnvelope, error) {
	var reader io.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: encode %s: %v", domain.ErrBackendUnavailable, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build %s: %v", domain.ErrBackendUnavailable, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", domain.ErrBackendUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrBackendUnavailable, path, err)
	}

	var env remoteEnvelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: decode %s (status %d): %v", domain.ErrBackendUnavailable, path, resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		return nil, fmt.Errorf("%w: %s %s: status %d: %s", domain.ErrBackendUnavailable, method, path, resp.StatusCode, env.Error)
	}
	return &env, nil
}

func (r *Remote) Create(ctx context.Context, in domain.NewRequest) (*domain.StatusRequest, error) {
	env, err := r.do(ctx, http.MethodPost, "/requests", in)
	if err != nil {
		return nil, err
	}
	if env.Request == nil {
		return nil, fmt.Errorf("%w: create: response carries no request", domain.ErrBackendUnavailable)
	}
	return env.Request, nil
}

func (r *Remote) List(ctx context.Context, filter domain.RequestFilter) ([]domain.StatusRequest, error) {
	path := "/requests"
	if filter.ParentEmail != "" {
		path += "?parentEmail=" + url.QueryEscape(filter.ParentEmail)
	}

	env, err := r.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if env.Requests == nil {
		return []domain.StatusRequest{}, nil
	}
	return env.Requests, nil
}

func (r *Remote) Update(ctx context.Context, id string, status domain.RequestStatus, feedback string) (*domain.StatusRequest, error) {
	env, err := r.do(ctx, http.MethodPost, "/requests/update", domain.UpdateRequestInput{
		ID:       id,
		Status:   status,
		Feedback: feedback,
	})
	if err != nil {
		return nil, err
	}
	if env.Request == nil {
		return nil, fmt.Errorf("%w: update: response carries no request", domain.ErrBackendUnavailable)
	}
	return env.Request, nil
}

func (r *Remote) Delete(ctx context.Context, id string) error {
	_, err := r.do(ctx, http.MethodPost, "/requests/delete", domain.DeleteRequestInput{ID: id})
	return err
}

func (r *Remote) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Session, error) {
	env, err := r.do(ctx, http.MethodPost, "/auth/register", req)
	if err != nil {
		return nil, err
	}
	return sessionFrom(env)
}

func (r *Remote) Login(ctx context.Context, req domain.LoginRequest) (*domain.Session, error) {
	env, err := r.do(ctx, http.MethodPost, "/auth/login", req)
	if err != nil {
		return nil, err
	}
	return sessionFrom(env)
}

func sessionFrom(env *remoteEnvelope) (*domain.Session, error) {
	if env.User == nil {
		return nil, fmt.Errorf("%w: response carries no user", domain.ErrBackendUnavailable)
	}
	return &domain.Session{
		Role:  env.User.UserType,
		Email: env.User.Email,
		Name:  env.User.Name,
		Token: env.Token,
	}, nil
}
