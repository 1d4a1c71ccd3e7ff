package domain

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("an account with this email already exists")
	ErrNationalIDTaken = errors.New("an account with this national ID already exists")
	ErrAnonymous       = errors.New("no user is logged in")
)
