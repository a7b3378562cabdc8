package models

import "time"

// User holds the profile for a registered phone number. Credential storage
// and session handling live outside this service.
type User struct {
	Phone     string    `gorm:"column:phone;type:text;primaryKey" json:"phone"`
	Name      string    `gorm:"column:name;type:text;not null" json:"name"`
	Email     string    `gorm:"column:email;type:text;not null" json:"email"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
