package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/gigadrive/gigadrive/models"
	"github.com/gigadrive/gigadrive/storage"
)

// RootFolderID is the request sentinel for "no parent folder".
const RootFolderID = "root"

// FolderService owns the hierarchical folder namespace: creation,
// renaming, path resolution and recursive deletion.
type FolderService struct {
	db    *gorm.DB
	store storage.ObjectStore
}

// NewFolderService wires the folder tree manager.
func NewFolderService(db *gorm.DB, store storage.ObjectStore) *FolderService {
	return &FolderService{db: db, store: store}
}

// FolderNode pairs a folder with its resolved full path.
type FolderNode struct {
	Folder   models.Folder
	FullPath string
}

// FolderContents is the direct children of one folder scope.
type FolderContents struct {
	Current    *FolderNode // nil for the root scope
	Subfolders []FolderNode
	Files      []models.File
}

// Create inserts a folder under the given parent (nil = root level).
// The parent must exist and belong to the owner; a missing parent and a
// foreign-owned parent are deliberately indistinguishable.
func (s *FolderService) Create(ctx context.Context, userID, name string, parentID *string) (*FolderNode, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("folder name: %w", ErrValidation)
	}

	if parentID != nil {
		var parent models.Folder
		err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", *parentID, userID).First(&parent).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("parent folder: %w", ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
	}

	taken, err := s.siblingNameTaken(ctx, userID, parentID, name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("folder %q: %w", name, ErrConflict)
	}

	folder := models.Folder{Name: name, UserID: userID, ParentID: parentID}
	if err := s.db.WithContext(ctx).Create(&folder).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("folder %q: %w", name, ErrConflict)
		}
		return nil, err
	}

	return &FolderNode{Folder: folder, FullPath: s.FullPath(ctx, &folder)}, nil
}

// Rename changes a folder's name in place. The folder is resolved by id
// and owner in one lookup; zero rows is not-found regardless of why.
func (s *FolderService) Rename(ctx context.Context, userID, folderID, newName string) (*FolderNode, error) {
	if strings.TrimSpace(newName) == "" {
		return nil, fmt.Errorf("folder name: %w", ErrValidation)
	}

	var folder models.Folder
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", folderID, userID).First(&folder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("folder: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	taken, err := s.siblingNameTaken(ctx, userID, folder.ParentID, newName, folder.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("folder %q: %w", newName, ErrConflict)
	}

	folder.Name = newName
	if err := s.db.WithContext(ctx).Save(&folder).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("folder %q: %w", newName, ErrConflict)
		}
		return nil, err
	}

	return &FolderNode{Folder: folder, FullPath: s.FullPath(ctx, &folder)}, nil
}

// Contents lists the direct child folders and files of one scope.
// folderID may be the "root" sentinel for the owner's top level.
func (s *FolderService) Contents(ctx context.Context, userID, folderID string) (*FolderContents, error) {
	var current *FolderNode
	var scope *string

	if folderID != "" && folderID != RootFolderID {
		var folder models.Folder
		err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", folderID, userID).First(&folder).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("folder: %w", ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		current = &FolderNode{Folder: folder, FullPath: s.FullPath(ctx, &folder)}
		scope = &folder.ID
	}

	var subfolders []models.Folder
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if err := whereScope(q, "parent_id", scope).Order("name ASC").Find(&subfolders).Error; err != nil {
		return nil, err
	}

	nodes := make([]FolderNode, 0, len(subfolders))
	for i := range subfolders {
		nodes = append(nodes, FolderNode{
			Folder:   subfolders[i],
			FullPath: s.FullPath(ctx, &subfolders[i]),
		})
	}

	var files []models.File
	q = s.db.WithContext(ctx).Where("user_id = ?", userID)
	if err := whereScope(q, "folder_id", scope).Order("original_name ASC").Find(&files).Error; err != nil {
		return nil, err
	}

	return &FolderContents{Current: current, Subfolders: nodes, Files: files}, nil
}

// Delete removes a folder, every descendant folder, and every file they
// contain. Blobs go first: if any blob delete fails the metadata is left
// untouched and ErrPartialDelete is returned so the caller retries (blob
// deletes are idempotent, so a retry converges). Nothing is transactional
// across the two stores.
func (s *FolderService) Delete(ctx context.Context, userID, folderID string) (folders, files int, err error) {
	var root models.Folder
	err = s.db.WithContext(ctx).Where("id = ? AND user_id = ?", folderID, userID).First(&root).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, fmt.Errorf("folder: %w", ErrNotFound)
	}
	if err != nil {
		return 0, 0, err
	}

	ids, err := s.collectSubtreeIDs(ctx, userID, folderID)
	if err != nil {
		return 0, 0, err
	}

	var doomed []models.File
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND folder_id IN ?", userID, ids).
		Find(&doomed).Error; err != nil {
		return 0, 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range doomed {
		key := doomed[i].StorageKey
		g.Go(func() error {
			return s.store.Delete(gctx, key)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrPartialDelete, err)
	}

	if err := s.db.WithContext(ctx).
		Where("id IN ? AND user_id = ?", ids, userID).
		Delete(&models.Folder{}).Error; err != nil {
		return 0, 0, err
	}
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND folder_id IN ?", userID, ids).
		Delete(&models.File{}).Error; err != nil {
		return 0, 0, err
	}

	return len(ids), len(doomed), nil
}

// FullPath resolves a folder's path from the root, names joined by "/".
// The walk is iterative over an id-indexed lookup: a dangling parent
// reference truncates the path, and a visited set stops accidental
// cycles instead of hanging.
func (s *FolderService) FullPath(ctx context.Context, folder *models.Folder) string {
	names := []string{folder.Name}
	visited := map[string]bool{folder.ID: true}

	parentID := folder.ParentID
	for parentID != nil && !visited[*parentID] {
		var parent models.Folder
		err := s.db.WithContext(ctx).Where("id = ?", *parentID).First(&parent).Error
		if err != nil {
			break
		}
		names = append([]string{parent.Name}, names...)
		visited[parent.ID] = true
		parentID = parent.ParentID
	}

	return strings.Join(names, "/")
}

// collectSubtreeIDs gathers the target folder id plus all descendant
// folder ids, depth-first with an explicit stack. The visited set makes
// the walk terminate even on a corrupted, cyclic parent chain.
func (s *FolderService) collectSubtreeIDs(ctx context.Context, userID, rootID string) ([]string, error) {
	ids := []string{rootID}
	visited := map[string]bool{rootID: true}
	stack := []string{rootID}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var children []models.Folder
		if err := s.db.WithContext(ctx).
			Where("user_id = ? AND parent_id = ?", userID, id).
			Find(&children).Error; err != nil {
			return nil, err
		}
		for _, child := range children {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			ids = append(ids, child.ID)
			stack = append(stack, child.ID)
		}
	}

	return ids, nil
}

// siblingNameTaken reports whether a folder name is already used in the
// same (owner, parent) scope, excluding excludeID when renaming.
func (s *FolderService) siblingNameTaken(ctx context.Context, userID string, parentID *string, name, excludeID string) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.Folder{}).
		Where("user_id = ? AND name = ?", userID, name)
	q = whereScope(q, "parent_id", parentID)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// whereScope narrows a query to one tree scope, treating nil as the
// NULL (root) scope. col is always a compile-time constant.
func whereScope(q *gorm.DB, col string, id *string) *gorm.DB {
	if id == nil {
		return q.Where(col + " IS NULL")
	}
	return q.Where(col+" = ?", *id)
}
