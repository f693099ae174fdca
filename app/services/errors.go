package services

import "errors"

var (
	// ErrInvalidPage is returned for page numbers that are not integers or
	// fall outside the listing.
	ErrInvalidPage = errors.New("invalid page")
	// ErrInvalidCredentials covers both unknown users and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
