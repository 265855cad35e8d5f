package project

import (
	"context"
	"time"

	"github.com/erudithe/portal/internal/domain/user"
)

// ListOptions provides filtering for project listings.
type ListOptions struct {
	Status      Status
	AssignedTo  string
	ClientEmail string
	Search      string
}

// Repository provides persistence for projects. Every mutating method
// carries the log entry produced by the operation and must commit the
// field delta and the entry in one write, so no reader observes a
// half-applied lifecycle event.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, opts ListOptions) ([]Project, error)
	Assign(ctx context.Context, id, workerID string, deadline time.Time, entry LogEntry) error
	SetStatus(ctx context.Context, id string, status Status, entry LogEntry) error
	// AddHours increments hours_used against the freshly read current
	// value, inside the same transaction that appends the entry.
	AddHours(ctx context.Context, id string, hours float64, entry LogEntry) error
	AppendLog(ctx context.Context, id string, entry LogEntry) error
	AppendCompletedFile(ctx context.Context, id string, f StoredFile, entry LogEntry) error
}

// WorkerDirectory resolves assignees.
type WorkerDirectory interface {
	Get(ctx context.Context, id string) (*user.User, error)
}
