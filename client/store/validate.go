package store

import (
	"fmt"
	"kidcheck/domain"
	"strings"

	"github.com/asaskevich/govalidator"
)

func validateID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: id is required", domain.ErrValidation)
	}
	return id, nil
}

func validateUpdate(id string, status domain.RequestStatus) (string, error) {
	id, err := validateID(id)
	if err != nil {
		return "", err
	}
	if err := domain.ValidateResponseStatus(status); err != nil {
		return "", err
	}
	return id, nil
}

func normalizeRegister(req *domain.RegisterRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.ChildName = strings.TrimSpace(req.ChildName)
	if req.UserType == "" {
		req.UserType = domain.RoleParent
	}
	if _, err := govalidator.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if req.UserType != domain.RoleParent {
		return fmt.Errorf("%w: userType must be %s", domain.ErrValidation, domain.RoleParent)
	}
	return nil
}

func normalizeLogin(req *domain.LoginRequest) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := govalidator.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}
