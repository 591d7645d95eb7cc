package commit

import "errors"

var (
	ErrUnknownKind  = errors.New("commit: unknown record kind")
	ErrNotMapping   = errors.New("commit: record must be a JSON object")
	ErrNoHashField  = errors.New("commit: record kind has no hash field")
	ErrMissingHash  = errors.New("commit: record has no stored hash")
	ErrHashMismatch = errors.New("commit: stored hash does not match")
)
