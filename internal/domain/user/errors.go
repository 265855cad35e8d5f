package user

import "errors"

var (
	// ErrUserNotFound is returned when a user doesn't exist
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when an account already exists for the email
	ErrEmailTaken = errors.New("email already in use")

	// ErrInvalidInput is returned when user data fails validation
	ErrInvalidInput = errors.New("invalid user input")
)
