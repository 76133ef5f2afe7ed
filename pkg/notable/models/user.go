package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account that owns notes
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"not null" json:"email"`
	PasswordHash string         `json:"-"`

	// Relationships
	Notes []Note `gorm:"foreignKey:CreatedByID" json:"notes,omitempty"`
}
