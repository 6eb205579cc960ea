package utils

import (
	"testing"
	"time"
)

func TestTokenBlacklist(t *testing.T) {
	const token = "some.jwt.token"

	if IsTokenBlacklisted(token) {
		t.Fatalf("unknown token reported revoked")
	}

	BlacklistToken(token, time.Now().Add(time.Hour))
	if !IsTokenBlacklisted(token) {
		t.Errorf("revoked token not reported")
	}

	// Entries past their natural expiry no longer count.
	const stale = "stale.jwt.token"
	BlacklistToken(stale, time.Now().Add(-time.Minute))
	if IsTokenBlacklisted(stale) {
		t.Errorf("expired entry still reported revoked")
	}
}
