// Package moderation exposes the read side of the abuse gate. Report intake
// and the decision to block a user happen outside this service.
package moderation

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/foodbridge/donations-backend/pkg/db/models"
	pkgerrors "github.com/foodbridge/donations-backend/pkg/errors"
)

// Service answers whether a user may issue mutating requests.
type Service interface {
	IsBlocked(ctx context.Context, phone string) (bool, error)
}

type service struct {
	db *gorm.DB
}

// NewService builds the moderation gate over the blocked_users table.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database required")
	}
	return &service{db: db}, nil
}

func (s *service) IsBlocked(ctx context.Context, phone string) (bool, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false, nil
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.BlockedUser{}).
		Where("phone = ?", phone).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check blocked users")
	}
	return count > 0, nil
}
