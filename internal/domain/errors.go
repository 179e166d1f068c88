package domain

import "errors"

var (
	// ErrValidation is the base error for rejected input; specific
	// validation sentinels wrap it so callers can match either the exact
	// reason or the whole class.
	ErrValidation = errors.New("invalid input")
	// ErrParse is the base error for malformed numeric or date text.
	ErrParse = errors.New("malformed input")
)
