package store

import "errors"

// ErrNotFound is returned when a record does not exist or is not
// visible to the caller. Owner-scoped queries deliberately do not
// distinguish the two cases.
var ErrNotFound = errors.New("not found")
