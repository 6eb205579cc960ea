package services

import "errors"

// Sentinel errors translated by the controllers into the HTTP error
// taxonomy. Services wrap them with context via fmt.Errorf("%w").
var (
	// ErrValidation marks a missing or malformed required input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers both missing entities and, for folder
	// operations, entities owned by someone else. Folding ownership
	// failures into not-found avoids leaking which ids exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is an ownership mismatch on file operations, which
	// historically report it separately from not-found.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is a namespace uniqueness violation.
	ErrConflict = errors.New("name conflict")

	// ErrPartialDelete signals a cascading delete that removed some
	// blobs and then stopped. No metadata has been touched; the caller
	// should retry until the whole delete goes through.
	ErrPartialDelete = errors.New("partial delete")
)
