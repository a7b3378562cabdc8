package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/foodbridge/donations-backend/pkg/db/models"
	pkgerrors "github.com/foodbridge/donations-backend/pkg/errors"
)

// RegisterInput captures the profile fields collected at signup. Credential
// handling lives outside this service.
type RegisterInput struct {
	Phone string
	Name  string
	Email string
}

// Service defines profile operations for donors and collectors.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Get(ctx context.Context, phone string) (*models.User, error)
	Exists(ctx context.Context, phone string) (bool, error)
}

type service struct {
	repo Repository
}

// NewService wires the users dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	phone := strings.TrimSpace(input.Phone)
	name := strings.TrimSpace(input.Name)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	exists, err := s.repo.Exists(ctx, phone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up user")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone is already registered")
	}

	user := &models.User{
		Phone: phone,
		Name:  name,
		Email: strings.TrimSpace(input.Email),
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, phone string) (*models.User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}

	user, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) Exists(ctx context.Context, phone string) (bool, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false, nil
	}
	exists, err := s.repo.Exists(ctx, phone)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up user")
	}
	return exists, nil
}
