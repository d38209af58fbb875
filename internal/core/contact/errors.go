package contact

import "errors"

var (
	ErrInvalidID       = errors.New("contact: invalid id")
	ErrInvalidName     = errors.New("contact: invalid name")
	ErrContactNotFound = errors.New("contact: not found")
)
