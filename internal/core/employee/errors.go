package employee

import "errors"

var (
	ErrInvalidID         = errors.New("employee: invalid id")
	ErrInvalidFirstName  = errors.New("employee: first name must not have leading or trailing spaces")
	ErrInvalidLastName   = errors.New("employee: last name must not have leading or trailing spaces")
	ErrInvalidNickName   = errors.New("employee: nick name must not have leading or trailing spaces")
	ErrNameRequired      = errors.New("employee: at least one of first name or last name is required")
	ErrInvalidNameFormat = errors.New("employee: invalid name format")
	ErrInvalidOperator   = errors.New("employee: invalid search operator")
	ErrInvalidLimit      = errors.New("employee: invalid limit")
	ErrEmployeeNotFound  = errors.New("employee: not found")
	ErrContactNotFound   = errors.New("employee: work contact not found")
)
