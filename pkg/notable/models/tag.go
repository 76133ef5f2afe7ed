package models

import (
	"time"

	"gorm.io/gorm"
)

// Tag represents a free-text label that can be applied to notes.
// Title is the natural key during reconciliation but carries no unique
// constraint: two concurrent get-or-creates for a new title may both
// persist, which is tolerated rather than surfaced as a write failure.
type Tag struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Title     string         `gorm:"size:150;not null;index" json:"title"`

	// Relationships
	Notes []Note `gorm:"many2many:note_tags;" json:"notes,omitempty"`
}
