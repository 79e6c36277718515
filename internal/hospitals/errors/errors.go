package errors

import "errors"

var (
	ErrNotFound = errors.New("hospital not found")

	ErrInvalidID = errors.New("invalid id format")

	ErrDuplicateName = errors.New("hospital with this name already exists in the city")
)
