package repository

import "errors"

// ErrNotFound is returned when a record or stored token does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique field is already taken.
var ErrConflict = errors.New("conflict")
