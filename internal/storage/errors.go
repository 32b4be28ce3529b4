package storage

import "errors"

// ErrNotFound is returned when a lookup key has no row in the table/index.
var ErrNotFound = errors.New("storage: not found")
