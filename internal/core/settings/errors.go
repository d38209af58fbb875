package settings

import "errors"

var (
	ErrInvalidFormat  = errors.New("settings: invalid name format")
	ErrInvalidPattern = errors.New("settings: invalid custom pattern")
)
