package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/gigadrive/gigadrive/models"
	"github.com/gigadrive/gigadrive/storage"
	"github.com/gigadrive/gigadrive/utils"
)

// FileService owns file metadata and coordinates it with the object
// store. Storage keys are "<owner>/<original name>", so the physical
// namespace is owner-scoped: identically named files in different
// folders of one owner share a key. Display-name uniqueness, by
// contrast, is checked per (owner, folder). The two granularities are
// deliberate and must not be unified.
type FileService struct {
	db    *gorm.DB
	store storage.ObjectStore
}

// NewFileService wires the file registry.
func NewFileService(db *gorm.DB, store storage.ObjectStore) *FileService {
	return &FileService{db: db, store: store}
}

// Incoming is one file of an upload batch.
type Incoming struct {
	Name     string
	MimeType string
	Size     int64
	Body     io.Reader
}

// UploadResult reports how an upload batch settled.
type UploadResult struct {
	Stored  []models.File
	Skipped int // files dropped because their storage key already existed
}

// StorageKey derives the owner-scoped blob key for a file name.
func StorageKey(userID, name string) string {
	return userID + "/" + name
}

// Upload writes each blob concurrently, then re-checks every storage
// key against the registry and silently drops files whose key already
// exists (the earlier blob write has already overwritten the object;
// the existing metadata record stays authoritative). Survivors are
// persisted in a single batch.
func (s *FileService) Upload(ctx context.Context, userID string, folderID *string, batch []Incoming) (*UploadResult, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("no files in upload: %w", ErrValidation)
	}

	if folderID != nil {
		if err := s.checkFolderAccess(ctx, userID, *folderID); err != nil {
			return nil, err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range batch {
		in := &batch[i]
		g.Go(func() error {
			return s.store.Put(gctx, StorageKey(userID, in.Name), in.Body, in.MimeType)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &UploadResult{}
	seen := map[string]bool{}
	var records []models.File
	for _, in := range batch {
		key := StorageKey(userID, in.Name)
		if seen[key] {
			result.Skipped++
			continue
		}
		seen[key] = true

		var count int64
		if err := s.db.WithContext(ctx).Model(&models.File{}).
			Where("storage_key = ?", key).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			result.Skipped++
			continue
		}

		url, err := s.store.SignedURL(ctx, key, storage.AccessTTL)
		if err != nil {
			// The record is still written; the first read refreshes the
			// missing lease.
			utils.Sugar.Errorf("signed URL for %s: %v", key, err)
			url = ""
		}

		records = append(records, models.File{
			OriginalName: in.Name,
			StorageKey:   key,
			MimeType:     in.MimeType,
			Size:         in.Size,
			AccessURL:    url,
			UserID:       userID,
			FolderID:     folderID,
		})
	}

	if len(records) > 0 {
		if err := s.db.WithContext(ctx).Create(&records).Error; err != nil {
			return nil, err
		}
	}
	result.Stored = records
	return result, nil
}

// Get returns one file, refreshing its access lease when expired. Every
// get bumps the revision counter and rewrites the record.
func (s *FileService) Get(ctx context.Context, userID, fileID string) (*models.File, error) {
	file, err := s.fetchOwned(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}

	if storage.LeaseExpired(file.AccessURL) {
		if err := s.refreshLease(ctx, file); err != nil {
			return nil, err
		}
	}

	file.Revision++
	if err := s.db.WithContext(ctx).Save(file).Error; err != nil {
		return nil, err
	}
	return file, nil
}

// List returns all files of one owner, newest upload first. Stale
// leases encountered during the scan are refreshed one by one; each
// refresh rewrites that record and bumps its revision.
func (s *FileService) List(ctx context.Context, userID string) ([]models.File, error) {
	var files []models.File
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("upload_date DESC").
		Find(&files).Error; err != nil {
		return nil, err
	}

	for i := range files {
		if !storage.LeaseExpired(files[i].AccessURL) {
			continue
		}
		if err := s.refreshLease(ctx, &files[i]); err != nil {
			return nil, err
		}
		files[i].Revision++
		if err := s.db.WithContext(ctx).Save(&files[i]).Error; err != nil {
			return nil, err
		}
	}
	return files, nil
}

// Rename gives a file a new display name, preserving the original
// extension: when the supplied name's extension differs from (or lacks)
// the original's, the original extension is appended. The blob is
// renamed first; the registry record is only touched after storage
// confirms the new key exists.
func (s *FileService) Rename(ctx context.Context, userID, fileID, newName string) (*models.File, error) {
	if strings.TrimSpace(newName) == "" {
		return nil, fmt.Errorf("file name: %w", ErrValidation)
	}

	file, err := s.fetchOwned(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}

	origExt := extensionOf(file.OriginalName)
	if extensionOf(newName) != origExt {
		newName = newName + "." + origExt
	}

	taken, err := s.displayNameTaken(ctx, userID, file.FolderID, newName, file.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("file %q: %w", newName, ErrConflict)
	}

	newKey := StorageKey(userID, newName)
	if err := s.store.Rename(ctx, file.StorageKey, newKey); err != nil {
		return nil, err
	}

	file.OriginalName = newName
	file.StorageKey = newKey
	url, err := s.store.SignedURL(ctx, newKey, storage.AccessTTL)
	if err != nil {
		return nil, err
	}
	file.AccessURL = url
	file.Revision++
	if err := s.db.WithContext(ctx).Save(file).Error; err != nil {
		return nil, err
	}
	return file, nil
}

// Move changes a file's folder placement. Metadata only: the storage
// key is owner-scoped and does not change on moves.
func (s *FileService) Move(ctx context.Context, userID, fileID string, folderID *string) (*models.File, error) {
	file, err := s.fetchOwned(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}

	if folderID != nil {
		if err := s.checkFolderAccess(ctx, userID, *folderID); err != nil {
			return nil, err
		}
	}

	taken, err := s.displayNameTaken(ctx, userID, folderID, file.OriginalName, file.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("file %q in destination: %w", file.OriginalName, ErrConflict)
	}

	file.FolderID = folderID
	if storage.LeaseExpired(file.AccessURL) {
		if err := s.refreshLease(ctx, file); err != nil {
			return nil, err
		}
	}
	file.Revision++
	if err := s.db.WithContext(ctx).Save(file).Error; err != nil {
		return nil, err
	}
	return file, nil
}

// Delete removes the blob first and the record after. A failed blob
// delete keeps the record, so the call can simply be retried.
func (s *FileService) Delete(ctx context.Context, userID, fileID string) error {
	file, err := s.fetchOwned(ctx, userID, fileID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, file.StorageKey); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(file).Error
}

// fetchOwned loads a file by id, distinguishing a missing record from a
// foreign-owned one. File endpoints keep the historical 404/403 split.
func (s *FileService) fetchOwned(ctx context.Context, userID, fileID string) (*models.File, error) {
	var file models.File
	err := s.db.WithContext(ctx).Where("id = ?", fileID).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("file: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if file.UserID != userID {
		return nil, fmt.Errorf("file access: %w", ErrForbidden)
	}
	return &file, nil
}

// checkFolderAccess verifies a destination folder exists and belongs to
// the caller. The "root" sentinel always passes.
func (s *FileService) checkFolderAccess(ctx context.Context, userID, folderID string) error {
	if folderID == "" || folderID == RootFolderID {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Folder{}).
		Where("id = ? AND user_id = ?", folderID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("folder access: %w", ErrForbidden)
	}
	return nil
}

// displayNameTaken reports whether another file with this display name
// exists in the (owner, folder) scope.
func (s *FileService) displayNameTaken(ctx context.Context, userID string, folderID *string, name, excludeID string) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.File{}).
		Where("user_id = ? AND original_name = ?", userID, name)
	q = whereScope(q, "folder_id", folderID)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *FileService) refreshLease(ctx context.Context, file *models.File) error {
	url, err := s.store.SignedURL(ctx, file.StorageKey, storage.AccessTTL)
	if err != nil {
		return err
	}
	file.AccessURL = url
	return nil
}

// extensionOf returns the text after the final dot, or the whole name
// when there is none. A dotless name therefore never "matches" a real
// extension, which is what forces the append in Rename.
func extensionOf(name string) string {
	parts := strings.Split(name, ".")
	return parts[len(parts)-1]
}
