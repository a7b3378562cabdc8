package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodbridge/donations-backend/pkg/enums"
)

// SeenFlag records that a user acknowledged one lifecycle event for one
// donation under one role bucket. Absence of a row means unseen.
type SeenFlag struct {
	UserPhone  string                  `gorm:"column:user_phone;type:text;primaryKey" json:"user_phone"`
	Role       enums.Role              `gorm:"column:role;type:text;primaryKey" json:"role"`
	DonationID uuid.UUID               `gorm:"column:donation_id;type:uuid;primaryKey" json:"donation_id"`
	Event      enums.NotificationEvent `gorm:"column:event;type:text;primaryKey" json:"event"`
	SeenAt     time.Time               `gorm:"column:seen_at;autoCreateTime" json:"seen_at"`
}

// TableName pins the composite-key table name.
func (SeenFlag) TableName() string {
	return "seen_flags"
}
