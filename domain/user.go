package domain

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleParent = "parent"
	RoleAdmin  = "admin"
)

type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(40)" json:"id"`
	Name      string    `gorm:"type:varchar(150);not null;" json:"name"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null;" json:"-"`
	ChildName string    `gorm:"type:varchar(150)" json:"childName"`
	UserType  string    `gorm:"type:varchar(10);not null;default:parent" json:"userType"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

type RegisterRequest struct {
	Name      string `json:"name" valid:"required~Name is required"`
	Email     string `json:"email" valid:"required~Email is required,email~Invalid email format"`
	Password  string `json:"password" valid:"required~Password is required"`
	ChildName string `json:"childName"`
	UserType  string `json:"userType"`
}

type LoginRequest struct {
	Email    string `json:"email" valid:"required~Email is required"`
	Password string `json:"password" valid:"required~Password is required"`
	UserType string `json:"userType"`
}

type AdminLoginRequest struct {
	Name     string `json:"name" valid:"required~Name is required"`
	Password string `json:"password" valid:"required~Password is required"`
}

// Session is who is asking, as remembered by a client between runs.
type Session struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type AuthRepo interface {
	CreateUser(ctx context.Context, user *User) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
}

type AuthUseCase interface {
	Register(ctx context.Context, req *RegisterRequest) (*User, string, error)
	Login(ctx context.Context, req *LoginRequest) (*User, string, error)
	AdminLogin(ctx context.Context, req *AdminLoginRequest) (*Session, error)
}
