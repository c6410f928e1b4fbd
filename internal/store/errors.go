package store

import "errors"

var (
	// ErrNotConfigured means no database connection info is present.
	ErrNotConfigured = errors.New("database not configured: set DATABASE_URL or PG* environment variables")

	// ErrNotFound means the requested id or URL does not exist.
	ErrNotFound = errors.New("link not found")

	// ErrAlreadyExists is returned by Insert on a URL uniqueness conflict.
	ErrAlreadyExists = errors.New("link already exists")

	// ErrVectorNotInitialized means the embedding column has not been
	// created yet; run `linkdex db vector init`.
	ErrVectorNotInitialized = errors.New("vector search not initialized: run `linkdex db vector init`")

	// ErrInvalid marks malformed input such as an unknown crawl selector.
	ErrInvalid = errors.New("invalid input")
)
