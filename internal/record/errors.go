package record

import "errors"

var (
	// ErrRepoMismatch indicates that a record was upserted into a set belonging to a different repository.
	ErrRepoMismatch = errors.New("record belongs to a different repository")
	// ErrInvalidNumber indicates that the pull request number is not positive.
	ErrInvalidNumber = errors.New("pull request number must be positive")
)
