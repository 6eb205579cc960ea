package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gigadrive/gigadrive/models"
	"github.com/gigadrive/gigadrive/utils"
)

func TestMain(m *testing.M) {
	utils.Logger = zap.NewNop()
	utils.Sugar = utils.Logger.Sugar()
	os.Exit(m.Run())
}

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Folder{}, &models.File{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// fakeStore is an in-memory ObjectStore with fault injection.
type fakeStore struct {
	mu         sync.Mutex
	blobs      map[string][]byte
	failDelete map[string]bool
	failRename bool
	deletes    int
	signed     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		blobs:      map[string][]byte{},
		failDelete: map[string]bool{},
	}
}

func (s *fakeStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete[key] {
		return fmt.Errorf("injected delete failure for %s", key)
	}
	s.deletes++
	delete(s.blobs, key)
	return nil
}

func (s *fakeStore) Rename(ctx context.Context, oldKey, newKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRename {
		return fmt.Errorf("injected rename failure %s -> %s", oldKey, newKey)
	}
	data, ok := s.blobs[oldKey]
	if !ok {
		return fmt.Errorf("no such blob %s", oldKey)
	}
	s.blobs[newKey] = data
	delete(s.blobs, oldKey)
	return nil
}

func (s *fakeStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signed++
	return signedURLAt(key, time.Now(), s.signed), nil
}

func (s *fakeStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[key]
	return ok
}

// signedURLAt builds a URL carrying an issuance timestamp the way a
// real presigned URL does.
func signedURLAt(key string, issued time.Time, nonce int) string {
	return fmt.Sprintf("https://blobs.example/%s?X-Amz-Date=%s&X-Amz-Signature=%06d",
		key, issued.UTC().Format("20060102T150405Z"), nonce)
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}
