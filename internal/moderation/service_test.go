package moderation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/foodbridge/donations-backend/pkg/db/models"
)

func setupModerationTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	blocked := `
CREATE TABLE IF NOT EXISTS blocked_users (
  phone TEXT PRIMARY KEY,
  reason TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(blocked).Error)
	return db
}

func TestIsBlocked(t *testing.T) {
	db := setupModerationTestDB(t)
	svc, err := NewService(db)
	require.NoError(t, err)
	ctx := context.Background()

	reason := "spam reports"
	require.NoError(t, db.Create(&models.BlockedUser{Phone: "9500000001", Reason: &reason}).Error)

	blocked, err := svc.IsBlocked(ctx, "9500000001")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = svc.IsBlocked(ctx, "9500000002")
	require.NoError(t, err)
	assert.False(t, blocked)

	// empty identity is treated as unblocked, the auth layer rejects it first
	blocked, err = svc.IsBlocked(ctx, "  ")
	require.NoError(t, err)
	assert.False(t, blocked)
}
