package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrWorkerNotFound indicates the assignee doesn't exist.
	ErrWorkerNotFound = errors.New("worker not found")
	// ErrNotAWorker indicates the assignee is not a worker account.
	ErrNotAWorker = errors.New("assignee is not a worker")
	// ErrAlreadyAssigned indicates the project has left Pending Assignment.
	ErrAlreadyAssigned = errors.New("project already assigned")
	// ErrInvalidTransition indicates a status change outside the
	// transition table.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidMinutes indicates a non-positive hours entry.
	ErrInvalidMinutes = errors.New("minutes logged must be positive")
	// ErrEmptyComment indicates a blank comment.
	ErrEmptyComment = errors.New("comment must not be empty")
	// ErrInvalidInput indicates invalid input for project operations.
	ErrInvalidInput = errors.New("invalid project input")
)
