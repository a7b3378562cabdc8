package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/foodbridge/donations-backend/pkg/db/models"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  phone TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	return db
}

func TestCreateAndFindByPhone(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{Phone: "9400000001", Name: "Asha", Email: "asha@gmail.com"})
	require.NoError(t, err)

	user, err := repo.FindByPhone(ctx, "9400000001")
	require.NoError(t, err)
	assert.Equal(t, "Asha", user.Name)

	exists, err := repo.Exists(ctx, "9400000001")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "9400000099")
	require.NoError(t, err)
	assert.False(t, exists)
}
