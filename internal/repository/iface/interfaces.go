package iface

import (
	"context"
	"time"

	"github.com/erudithe/portal/internal/domain/project"
	"github.com/erudithe/portal/internal/domain/quote"
	"github.com/erudithe/portal/internal/domain/user"
)

// QuoteRepository manages quote persistence
type QuoteRepository interface {
	Create(ctx context.Context, q *quote.Quote) error
	Get(ctx context.Context, id string) (*quote.Quote, error)
	List(ctx context.Context, opts quote.ListOptions) ([]quote.Quote, error)
	Approve(ctx context.Context, id string, p *project.Project) error
	Reject(ctx context.Context, id string) error
}

// ProjectRepository manages project persistence. Mutations carry their
// log entry and commit it with the field delta in one transaction.
type ProjectRepository interface {
	Create(ctx context.Context, p *project.Project) error
	Get(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context, opts project.ListOptions) ([]project.Project, error)
	Assign(ctx context.Context, id, workerID string, deadline time.Time, entry project.LogEntry) error
	SetStatus(ctx context.Context, id string, status project.Status, entry project.LogEntry) error
	AddHours(ctx context.Context, id string, hours float64, entry project.LogEntry) error
	AppendLog(ctx context.Context, id string, entry project.LogEntry) error
	AppendCompletedFile(ctx context.Context, id string, f project.StoredFile, entry project.LogEntry) error
}

// UserRepository manages user persistence
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	Get(ctx context.Context, id string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	List(ctx context.Context) ([]user.User, error)
	ListByRole(ctx context.Context, role user.Role) ([]user.User, error)
}
