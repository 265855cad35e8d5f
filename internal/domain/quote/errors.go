package quote

import "errors"

var (
	// ErrQuoteNotFound indicates the quote doesn't exist.
	ErrQuoteNotFound = errors.New("quote not found")
	// ErrNotPending indicates a decision on a quote that is already
	// terminal.
	ErrNotPending = errors.New("quote is not pending")
	// ErrInvalidInput indicates invalid quote input.
	ErrInvalidInput = errors.New("invalid quote input")
)
