// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account. Password, Avatar and Tokens are
// never serialized in API responses.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Age       int            `gorm:"default:0" json:"age"`
	Avatar    []byte         `json:"-"`
	Tokens    []SessionToken `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SessionToken is one entry in a user's active session list. A token is
// valid for authentication only while its row exists.
type SessionToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Token     string    `gorm:"not null" json:"token"`
	CreatedAt time.Time `json:"created_at"`
}
