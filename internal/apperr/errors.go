package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	// ErrMissingField means the configuration names a field the note model does not have.
	ErrMissingField  = errors.New("missing field")
	ErrInvalidExport = errors.New("invalid export")
)
