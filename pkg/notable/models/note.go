package models

import (
	"time"

	"gorm.io/gorm"
)

// Note represents a short text note owned by a user.
// CreatedByID is set server-side at creation and never changes.
type Note struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Title       string         `gorm:"size:150;not null" json:"title"`
	Body        string         `gorm:"size:500;not null" json:"body"`
	Private     bool           `gorm:"default:true" json:"private"`
	CreatedByID uint           `gorm:"not null;index" json:"created_by_id"`

	// Relationships
	CreatedBy User  `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Tags      []Tag `gorm:"many2many:note_tags;" json:"tags,omitempty"`
}
