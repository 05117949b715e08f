package database

import "errors"

// ErrNotFound is returned when a lookup matches no row. Every other error
// from this package is a transient store failure: callers in the background
// enforcement loop fail open on it, callers in the learning flow surface it.
var ErrNotFound = errors.New("not found")
