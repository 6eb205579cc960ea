package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gigadrive/gigadrive/models"
)

func TestFolderCreate_FullPathChain(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFolderService(db, newFakeStore())
	user := createUser(t, db, "a@example.com")
	ctx := context.Background()

	a, err := svc.Create(ctx, user.ID, "A", nil)
	if err != nil {
		t.Fatalf("Create(A) error = %v", err)
	}
	b, err := svc.Create(ctx, user.ID, "B", &a.Folder.ID)
	if err != nil {
		t.Fatalf("Create(B) error = %v", err)
	}
	c, err := svc.Create(ctx, user.ID, "C", &b.Folder.ID)
	if err != nil {
		t.Fatalf("Create(C) error = %v", err)
	}

	if a.FullPath != "A" {
		t.Errorf("A full path = %q, want %q", a.FullPath, "A")
	}
	if c.FullPath != "A/B/C" {
		t.Errorf("C full path = %q, want %q", c.FullPath, "A/B/C")
	}
}

func TestFolderCreate_SiblingNameConflict(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFolderService(db, newFakeStore())
	user := createUser(t, db, "a@example.com")
	ctx := context.Background()

	parent, err := svc.Create(ctx, user.ID, "docs", nil)
	if err != nil {
		t.Fatalf("Create(docs) error = %v", err)
	}

	if _, err := svc.Create(ctx, user.ID, "docs", nil); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate root folder error = %v, want ErrConflict", err)
	}

	// Same name under a different parent is a different namespace slot.
	if _, err := svc.Create(ctx, user.ID, "docs", &parent.Folder.ID); err != nil {
		t.Errorf("nested same-name folder error = %v, want nil", err)
	}

	// Another owner can reuse the name freely.
	other := createUser(t, db, "b@example.com")
	if _, err := svc.Create(ctx, other.ID, "docs", nil); err != nil {
		t.Errorf("other owner same-name folder error = %v, want nil", err)
	}
}

func TestFolderCreate_ParentLookup(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFolderService(db, newFakeStore())
	user := createUser(t, db, "a@example.com")
	other := createUser(t, db, "b@example.com")
	ctx := context.Background()

	missing := "no-such-id"
	if _, err := svc.Create(ctx, user.ID, "x", &missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing parent error = %v, want ErrNotFound", err)
	}

	// A foreign-owned parent reports the same way as a missing one.
	foreign, err := svc.Create(ctx, other.ID, "theirs", nil)
	if err != nil {
		t.Fatalf("Create(theirs) error = %v", err)
	}
	if _, err := svc.Create(ctx, user.ID, "x", &foreign.Folder.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign parent error = %v, want ErrNotFound", err)
	}
}

func TestFolderCreate_EmptyName(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFolderService(db, newFakeStore())
	user := createUser(t, db, "a@example.com")

	if _, err := svc.Create(context.Background(), user.ID, "  ", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("empty name error = %v, want ErrValidation", err)
	}
}

func TestFolderRename(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFolderService(db, newFakeStore())
	user := createUser(t, db, "a@example.com")
	other := createUser(t, db, "b@example.com")
	ctx := context.Background()

	a, _ := svc.Create(ctx, user.ID, "A", nil)
	if _, err := svc.Create(ctx, user.ID, "B", nil); err != nil {
		t.Fatalf("Create(B) error = %v", err)
	}

	renamed, err := svc.Rename(ctx, user.ID, a.Folder.ID, "Archive")
	if err != nil {
		t.Fatalf("Rename error = %v", err)
	}
	if renamed.Folder.Name != "Archive" || renamed.FullPath != "Archive" {
		t.Errorf("renamed = %q path %q, want Archive", renamed.Folder.Name, renamed.FullPath)
	}

	// Collision with a sibling.
	if _, err := svc.Rename(ctx, user.ID, a.Folder.ID, "B"); !errors.Is(err, ErrConflict) {
		t.Errorf("sibling collision error = %v, want ErrConflict", err)
	}

	// Foreign owner sees not-found, never forbidden.
	if _, err := svc.Rename(ctx, other.ID, a.Folder.ID, "Mine"); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign rename error = %v, want ErrNotFound", err)
	}
}

func TestFullPath_DanglingParentTruncates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFolderService(db, newFakeStore())
	user := createUser(t, db, "a@example.com")
	ctx := context.Background()

	a, _ := svc.Create(ctx, user.ID, "A", nil)
	b, _ := svc.Create(ctx, user.ID, "B", &a.Folder.ID)

	// Corrupt the chain: point B at a parent that no longer exists.
	if err := db.Model(&models.Folder{}).Where("id = ?", b.Folder.ID).
		Update("parent_id", "gone").Error; err != nil {
		t.Fatalf("corrupting parent: %v", err)
	}

	var reloaded models.Folder
	if err := db.First(&reloaded, "id = ?", b.Folder.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := svc.FullPath(ctx, &reloaded); got != "B" {
		t.Errorf("full path with dangling parent = %q, want %q", got, "B")
	}
}

func TestFullPath_CyclicParentTerminates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFolderService(db, newFakeStore())
	user := createUser(t, db, "a@example.com")
	ctx := context.Background()

	a, _ := svc.Create(ctx, user.ID, "A", nil)
	b, _ := svc.Create(ctx, user.ID, "B", &a.Folder.ID)

	// A <-> B cycle.
	if err := db.Model(&models.Folder{}).Where("id = ?", a.Folder.ID).
		Update("parent_id", b.Folder.ID).Error; err != nil {
		t.Fatalf("corrupting parent: %v", err)
	}

	var reloaded models.Folder
	if err := db.First(&reloaded, "id = ?", b.Folder.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := svc.FullPath(ctx, &reloaded); got != "A/B" {
		t.Errorf("full path with cyclic parents = %q, want %q", got, "A/B")
	}
}

func TestFolderContents(t *testing.T) {
	db := setupTestDB(t)
	store := newFakeStore()
	folders := NewFolderService(db, store)
	files := NewFileService(db, store)
	user := createUser(t, db, "a@example.com")
	ctx := context.Background()

	parent, _ := folders.Create(ctx, user.ID, "docs", nil)
	folders.Create(ctx, user.ID, "zeta", &parent.Folder.ID)
	folders.Create(ctx, user.ID, "alpha", &parent.Folder.ID)

	_, err := files.Upload(ctx, user.ID, &parent.Folder.ID, []Incoming{
		{Name: "b.txt", MimeType: "text/plain", Size: 1, Body: strings.NewReader("b")},
		{Name: "a.txt", MimeType: "text/plain", Size: 1, Body: strings.NewReader("a")},
	})
	if err != nil {
		t.Fatalf("Upload error = %v", err)
	}

	contents, err := folders.Contents(ctx, user.ID, parent.Folder.ID)
	if err != nil {
		t.Fatalf("Contents error = %v", err)
	}
	if contents.Current == nil || contents.Current.Folder.ID != parent.Folder.ID {
		t.Fatalf("current folder not echoed")
	}
	if len(contents.Subfolders) != 2 || contents.Subfolders[0].Folder.Name != "alpha" || contents.Subfolders[1].Folder.Name != "zeta" {
		t.Errorf("subfolders not sorted by name: %+v", contents.Subfolders)
	}
	if len(contents.Files) != 2 || contents.Files[0].OriginalName != "a.txt" || contents.Files[1].OriginalName != "b.txt" {
		t.Errorf("files not sorted by name: %+v", contents.Files)
	}

	// Root sentinel lists the top level without a current folder.
	root, err := folders.Contents(ctx, user.ID, RootFolderID)
	if err != nil {
		t.Fatalf("Contents(root) error = %v", err)
	}
	if root.Current != nil {
		t.Errorf("root scope should have no current folder")
	}
	if len(root.Subfolders) != 1 || root.Subfolders[0].Folder.Name != "docs" {
		t.Errorf("root subfolders = %+v, want [docs]", root.Subfolders)
	}

	if _, err := folders.Contents(ctx, user.ID, "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown folder error = %v, want ErrNotFound", err)
	}
}

func TestFolderDelete_Cascade(t *testing.T) {
	db := setupTestDB(t)
	store := newFakeStore()
	folders := NewFolderService(db, store)
	files := NewFileService(db, store)
	user := createUser(t, db, "a@example.com")
	ctx := context.Background()

	a, _ := folders.Create(ctx, user.ID, "A", nil)
	b, _ := folders.Create(ctx, user.ID, "B", &a.Folder.ID)
	c, _ := folders.Create(ctx, user.ID, "C", &b.Folder.ID)

	mustUpload := func(folderID *string, name string) {
		t.Helper()
		if _, err := files.Upload(ctx, user.ID, folderID, []Incoming{
			{Name: name, MimeType: "text/plain", Size: 1, Body: strings.NewReader(name)},
		}); err != nil {
			t.Fatalf("Upload(%s) error = %v", name, err)
		}
	}
	mustUpload(&a.Folder.ID, "one.txt")
	mustUpload(&b.Folder.ID, "two.txt")
	mustUpload(&c.Folder.ID, "three.txt")
	mustUpload(nil, "keep.txt") // root file must survive

	foldersDeleted, filesDeleted, err := folders.Delete(ctx, user.ID, a.Folder.ID)
	if err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if foldersDeleted != 3 || filesDeleted != 3 {
		t.Errorf("deleted %d folders %d files, want 3 and 3", foldersDeleted, filesDeleted)
	}
	if store.deletes != 3 {
		t.Errorf("blob deletes = %d, want 3", store.deletes)
	}

	var folderCount, fileCount int64
	db.Model(&models.Folder{}).Count(&folderCount)
	db.Model(&models.File{}).Count(&fileCount)
	if folderCount != 0 {
		t.Errorf("remaining folders = %d, want 0", folderCount)
	}
	if fileCount != 1 {
		t.Errorf("remaining files = %d, want 1 (root file)", fileCount)
	}
	if !store.has(StorageKey(user.ID, "keep.txt")) {
		t.Errorf("root file blob should survive the cascade")
	}
}

func TestFolderDelete_PartialFailureKeepsMetadata(t *testing.T) {
	db := setupTestDB(t)
	store := newFakeStore()
	folders := NewFolderService(db, store)
	files := NewFileService(db, store)
	user := createUser(t, db, "a@example.com")
	ctx := context.Background()

	a, _ := folders.Create(ctx, user.ID, "A", nil)
	if _, err := files.Upload(ctx, user.ID, &a.Folder.ID, []Incoming{
		{Name: "one.txt", MimeType: "text/plain", Size: 1, Body: strings.NewReader("1")},
		{Name: "two.txt", MimeType: "text/plain", Size: 1, Body: strings.NewReader("2")},
	}); err != nil {
		t.Fatalf("Upload error = %v", err)
	}

	store.failDelete[StorageKey(user.ID, "two.txt")] = true

	_, _, err := folders.Delete(ctx, user.ID, a.Folder.ID)
	if !errors.Is(err, ErrPartialDelete) {
		t.Fatalf("Delete error = %v, want ErrPartialDelete", err)
	}

	// No metadata may be removed on a partial failure.
	var folderCount, fileCount int64
	db.Model(&models.Folder{}).Count(&folderCount)
	db.Model(&models.File{}).Count(&fileCount)
	if folderCount != 1 || fileCount != 2 {
		t.Errorf("metadata after partial failure: %d folders %d files, want 1 and 2", folderCount, fileCount)
	}

	// Retry converges once the store recovers.
	delete(store.failDelete, StorageKey(user.ID, "two.txt"))
	if _, _, err := folders.Delete(ctx, user.ID, a.Folder.ID); err != nil {
		t.Fatalf("retry Delete error = %v", err)
	}
}

func TestFolderDelete_ForeignOwnerNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFolderService(db, newFakeStore())
	user := createUser(t, db, "a@example.com")
	other := createUser(t, db, "b@example.com")
	ctx := context.Background()

	a, _ := svc.Create(ctx, user.ID, "A", nil)
	if _, _, err := svc.Delete(ctx, other.ID, a.Folder.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign delete error = %v, want ErrNotFound", err)
	}
}
