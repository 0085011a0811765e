package service

import (
	"fmt"

	"go-almoxarifado/internal/invariant"
	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/repository"
	"go-almoxarifado/pkg/validator"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin operator viewer"`
}

type UpdateUserRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin operator viewer"`
	IsActive bool   `json:"is_active"`
}

type UserService interface {
	GetAll() ([]model.UserResponse, error)
	GetByID(id uuid.UUID) (*model.UserResponse, error)
	Create(req *CreateUserRequest, actor string) (*model.UserResponse, error)
	Update(id uuid.UUID, req *UpdateUserRequest, actor string) (*model.UserResponse, error)
	Delete(id uuid.UUID, actor string) error
}

type userService struct {
	users  repository.UserRepository
	audits repository.AuditLogRepository
}

func NewUserService(users repository.UserRepository, audits repository.AuditLogRepository) UserService {
	return &userService{users: users, audits: audits}
}

func (s *userService) GetAll() ([]model.UserResponse, error) {
	users, err := s.users.FindAll()
	if err != nil {
		return nil, err
	}
	responses := make([]model.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) Create(req *CreateUserRequest, actor string) (*model.UserResponse, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("%w: field '%s' failed on tag '%s'",
			invariant.ErrInvalidInput, first.FailedField, first.Tag)
	}

	user := &model.User{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: true,
	}
	user.EnsureBase()
	user.CreatedBy = actor
	user.UpdatedBy = actor
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	s.audits.Append("user:create", fmt.Sprintf("created user %s with role %s", user.Email, user.Role), actor)
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) Update(id uuid.UUID, req *UpdateUserRequest, actor string) (*model.UserResponse, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("%w: field '%s' failed on tag '%s'",
			invariant.ErrInvalidInput, first.FailedField, first.Tag)
	}

	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, err
	}
	user.FullName = req.FullName
	user.Role = req.Role
	user.IsActive = req.IsActive
	user.UpdatedBy = actor
	if !user.IsActive {
		// Deactivation also kicks the current session.
		user.TokenVersion = uuid.NewString()
	}
	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	s.audits.Append("user:update", fmt.Sprintf("updated user %s", user.Email), actor)
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) Delete(id uuid.UUID, actor string) error {
	user, err := s.users.FindByID(id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(id); err != nil {
		return err
	}
	s.audits.Append("user:delete", fmt.Sprintf("deleted user %s", user.Email), actor)
	return nil
}
