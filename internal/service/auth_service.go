package service

import (
	"errors"
	"fmt"

	"go-almoxarifado/internal/invariant"
	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/repository"
	"go-almoxarifado/pkg/jwt"
	"go-almoxarifado/pkg/validator"

	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type AuthService interface {
	Login(req *LoginRequest) (*LoginResponse, error)
	ResetPassword(userID uuid.UUID, newPassword, actor string) error
}

type authService struct {
	users  repository.UserRepository
	audits repository.AuditLogRepository
}

func NewAuthService(users repository.UserRepository, audits repository.AuditLogRepository) AuthService {
	return &authService{users: users, audits: audits}
}

// Login rotates the user's token version, so each successful login
// invalidates every previously issued token.
func (s *authService) Login(req *LoginRequest) (*LoginResponse, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("%w: field '%s' failed on tag '%s'",
			invariant.ErrInvalidInput, first.FailedField, first.Tag)
	}

	user, err := s.users.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive || !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	user.TokenVersion = uuid.NewString()
	if err := s.users.Update(user); err != nil {
		return nil, err
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, user.Role, user.TokenVersion)
	if err != nil {
		return nil, err
	}

	s.audits.Append("auth:login", fmt.Sprintf("user %s logged in", user.Email), user.Email)
	return &LoginResponse{Token: token, User: user.ToResponse()}, nil
}

func (s *authService) ResetPassword(userID uuid.UUID, newPassword, actor string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", invariant.ErrInvalidInput)
	}
	user, err := s.users.FindByID(userID)
	if err != nil {
		return err
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	// Rotating the version also kicks the user's current session.
	user.TokenVersion = uuid.NewString()
	if err := s.users.Update(user); err != nil {
		return err
	}
	s.audits.Append("auth:reset_password", fmt.Sprintf("password reset for %s", user.Email), actor)
	return nil
}
