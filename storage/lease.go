package storage

import (
	"regexp"
	"time"
)

// Signed URLs embed their issuance time in the X-Amz-Date query
// parameter (basic ISO 8601, e.g. 20260901T101530Z). The lease clock
// reads it straight out of the URL instead of storing a second
// timestamp next to the cached URL.
var issuedAtRe = regexp.MustCompile(`\d{8}T\d{6}Z`)

const issuedAtLayout = "20060102T150405Z"

// LeaseIssuedAt extracts the issuance time embedded in a signed URL.
// The second return value is false when the URL carries no timestamp.
func LeaseIssuedAt(url string) (time.Time, bool) {
	match := issuedAtRe.FindString(url)
	if match == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(issuedAtLayout, match)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// LeaseExpired reports whether a cached signed URL is past its window.
// URLs without a recoverable issuance time count as expired so the
// caller re-requests a lease rather than serving a dead link.
func LeaseExpired(url string) bool {
	issued, ok := LeaseIssuedAt(url)
	if !ok {
		return true
	}
	return time.Now().After(issued.Add(AccessTTL))
}
