package seed

import (
	"fmt"
	"sync/atomic"
	"testing"

	"taskhub/internal/database"
	"taskhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter atomic.Int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:seedtest%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestSeedCreatesUsersAndTasks(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Seed(db, Options{NumUsers: 5, TasksPerUser: 4}))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 5)

	// Every seeded account can log in with the shared password
	for _, user := range users {
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(SeedPassword)))
		assert.NotEmpty(t, user.Email)
	}

	var taskCount int64
	require.NoError(t, db.Model(&models.Task{}).Count(&taskCount).Error)
	assert.Equal(t, int64(20), taskCount)

	// Tasks are spread across owners
	var owners int64
	require.NoError(t, db.Model(&models.Task{}).Distinct("user_id").Count(&owners).Error)
	assert.Equal(t, int64(5), owners)
}

func TestSeedEmailsAreUnique(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Seed(db, Options{NumUsers: 20, TasksPerUser: 0}))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)

	seen := make(map[string]bool, len(users))
	for _, user := range users {
		assert.False(t, seen[user.Email], "duplicate email %q", user.Email)
		seen[user.Email] = true
	}
}
