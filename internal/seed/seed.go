// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"taskhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers     int
	TasksPerUser int
	ShouldClean  bool
}

// SeedPassword is the shared plaintext password for all seeded accounts.
const SeedPassword = "red123$!"

var taskVerbs = []string{
	"Buy", "Clean", "Fix", "Write", "Review", "Plan", "Call", "Schedule",
	"Cancel", "Organize", "Read", "Return", "Update", "Water", "Pack",
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users and %d tasks each...", opts.NumUsers, opts.TasksPerUser)
	gofakeit.Seed(time.Now().UnixNano())

	// Clear existing data to avoid conflicts if requested
	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d test users created", len(users))

	total, err := createTasks(db, users, opts.TasksPerUser)
	if err != nil {
		return fmt.Errorf("failed to create tasks: %w", err)
	}
	log.Printf("%d tasks created", total)

	log.Println("Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE tasks, session_tokens, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(db *gorm.DB, count int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		name := gofakeit.Name()
		user := models.User{
			Name: name,
			// A positional suffix keeps generated addresses collision-free
			Email:    fmt.Sprintf("%s%d@example.com", strings.ToLower(gofakeit.Username()), i),
			Password: string(hash),
			Age:      gofakeit.Number(18, 80),
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createTasks(db *gorm.DB, users []models.User, perUser int) (int, error) {
	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	total := 0
	for _, user := range users {
		for i := 0; i < perUser; i++ {
			verb := taskVerbs[r.Intn(len(taskVerbs))]
			task := models.Task{
				Description: fmt.Sprintf("%s %s", verb, strings.ToLower(gofakeit.NounConcrete())),
				Completed:   r.Intn(3) == 0,
				UserID:      user.ID,
			}
			// realistic created_at spread
			daysBack := r.Intn(60)
			hoursBack := r.Intn(24)
			task.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

			if err := db.Create(&task).Error; err != nil {
				return total, err
			}
			total++
		}
	}
	return total, nil
}
