package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Folder is a node in a user's directory tree. A nil ParentID marks a
// root-level folder. Sibling names are unique per owner; the composite
// index backs the query-before-write check but cannot catch duplicate
// root folders on its own (NULL parents never collide in MySQL), so
// callers must not rely on it alone.
type Folder struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_owner_parent_name" json:"name"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_owner_parent_name;index" json:"user_id"`
	ParentID  *string   `gorm:"size:36;uniqueIndex:idx_owner_parent_name;index" json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when not provided.
func (f *Folder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
