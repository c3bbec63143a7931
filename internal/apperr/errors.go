package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrEmptyDeck       = errors.New("deck has no slides")
	ErrInvalidLocation = errors.New("invalid location")
)
