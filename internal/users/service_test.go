package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodbridge/donations-backend/pkg/db/models"
	pkgerrors "github.com/foodbridge/donations-backend/pkg/errors"
)

type stubUsersRepo struct {
	byPhone map[string]*models.User
}

func newStubUsersRepo() *stubUsersRepo {
	return &stubUsersRepo{byPhone: map[string]*models.User{}}
}

func (s *stubUsersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	s.byPhone[user.Phone] = user
	return user, nil
}

func (s *stubUsersRepo) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	user, ok := s.byPhone[phone]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUsersRepo) Exists(ctx context.Context, phone string) (bool, error) {
	_, ok := s.byPhone[phone]
	return ok, nil
}

func TestRegisterRejectsDuplicatePhone(t *testing.T) {
	repo := newStubUsersRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Phone: "9400000011", Name: "Ravi"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Phone: "9400000011", Name: "Copycat"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestRegisterRequiresPhoneAndName(t *testing.T) {
	svc, err := NewService(newStubUsersRepo())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "No Phone"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.Register(context.Background(), RegisterInput{Phone: "9400000021"})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestGetUnknownUserNotFound(t *testing.T) {
	svc, err := NewService(newStubUsersRepo())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "9400000031")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
