package repositories

import "errors"

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotActive is returned by progress writes on a missing or terminal row.
	ErrNotActive = errors.New("import is not active")
)
