package usecase

import (
	"context"
	"errors"
	"fmt"
	"kidcheck/domain"
	"kidcheck/middleware"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
)

type authUC struct {
	authRepo        domain.AuthRepo
	adminPassphrase string
	TimeOut         time.Duration
}

func NewAuthUseCase(repo domain.AuthRepo, adminPassphrase string, timeOut time.Duration) domain.AuthUseCase {
	return &authUC{
		authRepo:        repo,
		adminPassphrase: adminPassphrase,
		TimeOut:         timeOut,
	}
}

func (auc *authUC) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.ChildName = strings.TrimSpace(req.ChildName)
	if _, err := govalidator.ValidateStruct(req); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if req.UserType == "" {
		req.UserType = domain.RoleParent
	}
	// admins sign in with the shared passphrase, never through registration
	if req.UserType != domain.RoleParent {
		return nil, "", fmt.Errorf("%w: userType must be %s", domain.ErrValidation, domain.RoleParent)
	}

	ctx, cancel := context.WithTimeout(ctx, auc.TimeOut)
	defer cancel()

	if _, err := auc.authRepo.FindUserByEmail(ctx, req.Email); err == nil {
		return nil, "", fmt.Errorf("%w: %s", domain.ErrAlreadyExists, req.Email)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	user := &domain.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		ChildName: req.ChildName,
		UserType:  req.UserType,
		CreatedAt: time.Now(),
	}
	if err := auc.authRepo.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := middleware.GenerateJWT(user.Email, user.Name, user.UserType)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token, err : %v", err)
	}
	return user, token, nil
}

func (auc *authUC) Login(ctx context.Context, req *domain.LoginRequest) (*domain.User, string, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := govalidator.ValidateStruct(req); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	ctx, cancel := context.WithTimeout(ctx, auc.TimeOut)
	defer cancel()

	user, err := auc.authRepo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: invalid email or password", domain.ErrInvalidCredentials)
		}
		return nil, "", err
	}

	// plain equality, passwords are stored as given
	if user.Password != req.Password {
		return nil, "", fmt.Errorf("%w: invalid email or password", domain.ErrInvalidCredentials)
	}
	if req.UserType != "" && req.UserType != user.UserType {
		return nil, "", fmt.Errorf("%w: account is not a %s account", domain.ErrInvalidCredentials, req.UserType)
	}

	token, err := middleware.GenerateJWT(user.Email, user.Name, user.UserType)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token, err : %v", err)
	}
	return user, token, nil
}

func (auc *authUC) AdminLogin(ctx context.Context, req *domain.AdminLoginRequest) (*domain.Session, error) {
	req.Name = strings.TrimSpace(req.Name)
	if _, err := govalidator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if req.Password != auc.adminPassphrase {
		return nil, fmt.Errorf("%w: invalid admin password", domain.ErrInvalidCredentials)
	}

	token, err := middleware.GenerateJWT("", req.Name, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token, err : %v", err)
	}
	return &domain.Session{
		Role:  domain.RoleAdmin,
		Name:  req.Name,
		Token: token,
	}, nil
}
