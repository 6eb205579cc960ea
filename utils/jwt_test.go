package utils

import (
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("S3_BUCKET", "test-bucket")
	Logger = zap.NewNop()
	Sugar = Logger.Sugar()
	os.Exit(m.Run())
}

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("user-1", "a@example.com", TokenDuration)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken error = %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("user id = %q, want %q", claims.UserID, "user-1")
	}
	if claims.Email != "a@example.com" {
		t.Errorf("email = %q, want %q", claims.Email, "a@example.com")
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) <= 0 {
		t.Errorf("token has no future expiry: %v", claims.ExpiresAt)
	}
}

func TestParseToken_Invalid(t *testing.T) {
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := ParseToken(tok); err == nil {
			t.Errorf("ParseToken(%q) accepted a bad token", tok)
		}
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken("user-1", "a@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}
	if _, err := ParseToken(token); err == nil {
		t.Errorf("expired token accepted")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword error = %v", err)
	}
	if hash == "s3cret" {
		t.Errorf("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "s3cret") {
		t.Errorf("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Errorf("wrong password accepted")
	}
}
