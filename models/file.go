package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File is the metadata record for one stored blob.
//
// StorageKey is "<owner id>/<original name>" and is globally unique: two
// files with the same name in different folders of the same owner share
// a key and therefore collide at the storage layer. That coupling is
// intentional and is what the upload duplicate check observes.
//
// AccessURL is a signed read URL valid for one hour from issuance; the
// issuance time is recovered from the URL itself (see storage package).
// Refreshing an expired URL rewrites the record and bumps Revision, so
// reads of stale leases are writes. Revision is advisory only.
type File struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	OriginalName string    `gorm:"size:255;not null" json:"original_name"`
	StorageKey   string    `gorm:"size:512;not null;uniqueIndex" json:"-"`
	MimeType     string    `gorm:"size:128;not null" json:"mime_type"`
	Size         int64     `gorm:"not null" json:"size"`
	AccessURL    string    `gorm:"size:2048" json:"access_url"`
	UserID       string    `gorm:"size:36;not null;index" json:"user_id"`
	FolderID     *string   `gorm:"size:36;index" json:"folder_id"`
	UploadDate   time.Time `json:"upload_date"`
	Revision     int       `gorm:"default:0" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID and upload time when not provided.
func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.UploadDate.IsZero() {
		f.UploadDate = time.Now()
	}
	return nil
}
