package models

import "time"

// BlockedUser marks a phone number the moderation collaborator has gated.
// The core only reads this table; report intake lives elsewhere.
type BlockedUser struct {
	Phone     string    `gorm:"column:phone;type:text;primaryKey" json:"phone"`
	Reason    *string   `gorm:"column:reason;type:text" json:"reason,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
