package storage

import (
	"fmt"
	"testing"
	"time"
)

func urlIssuedAt(issued time.Time) string {
	return fmt.Sprintf("https://bucket.s3.amazonaws.com/u1/doc.txt?X-Amz-Date=%s&X-Amz-Expires=3600&X-Amz-Signature=abc",
		issued.UTC().Format("20060102T150405Z"))
}

func TestLeaseIssuedAt(t *testing.T) {
	want := time.Date(2026, 9, 1, 10, 15, 30, 0, time.UTC)
	got, ok := LeaseIssuedAt(urlIssuedAt(want))
	if !ok {
		t.Fatalf("timestamp not recovered")
	}
	if !got.Equal(want) {
		t.Errorf("issued at = %v, want %v", got, want)
	}

	for _, url := range []string{
		"",
		"https://bucket.s3.amazonaws.com/u1/doc.txt",
		"https://bucket.s3.amazonaws.com/u1/doc.txt?X-Amz-Date=not-a-time",
	} {
		if _, ok := LeaseIssuedAt(url); ok {
			t.Errorf("LeaseIssuedAt(%q) found a timestamp", url)
		}
	}
}

func TestLeaseExpired(t *testing.T) {
	if LeaseExpired(urlIssuedAt(time.Now())) {
		t.Errorf("fresh lease reported expired")
	}
	if LeaseExpired(urlIssuedAt(time.Now().Add(-AccessTTL / 2))) {
		t.Errorf("mid-window lease reported expired")
	}
	if !LeaseExpired(urlIssuedAt(time.Now().Add(-AccessTTL - time.Minute))) {
		t.Errorf("old lease reported live")
	}
	// No recoverable issuance time means the link cannot be trusted.
	if !LeaseExpired("") {
		t.Errorf("empty URL must count as expired")
	}
	if !LeaseExpired("https://bucket.s3.amazonaws.com/u1/doc.txt") {
		t.Errorf("URL without timestamp must count as expired")
	}
}
