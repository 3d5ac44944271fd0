package domain

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrDuplicateContact      = errors.New("duplicate contact")
	ErrUnknownTable          = errors.New("unknown table")
	ErrUnknownGuest          = errors.New("unknown guest")
	ErrTableCapacityExceeded = errors.New("table capacity exceeded")
	ErrInvalidInput          = errors.New("invalid input")
)
