package service

import (
	"fmt"
	"sync/atomic"
	"testing"

	"taskhub/internal/auth"
	"taskhub/internal/database"
	"taskhub/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter atomic.Int64

// setupTestDB opens a fresh in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svctest%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// newTestUserService wires a UserService over real repositories and a
// non-delivering mail sender.
func newTestUserService(t *testing.T) (*UserService, repository.UserRepository, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	tokens := auth.NewTokenService("test_secret")
	return NewUserService(userRepo, taskRepo, tokens, nil), userRepo, db
}
