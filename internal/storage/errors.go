package storage

import "errors"

// ErrNotFound is returned when a task id has no matching record.
var ErrNotFound = errors.New("task not found")
