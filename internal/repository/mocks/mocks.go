package mocks

import (
	"context"
	"time"

	"github.com/erudithe/portal/internal/domain/project"
	"github.com/erudithe/portal/internal/domain/quote"
	"github.com/erudithe/portal/internal/domain/user"
	"github.com/stretchr/testify/mock"
)

// QuoteRepository is a mock for repository.QuoteRepository.
type QuoteRepository struct {
	mock.Mock
}

func (m *QuoteRepository) Create(ctx context.Context, q *quote.Quote) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *QuoteRepository) Get(ctx context.Context, id string) (*quote.Quote, error) {
	args := m.Called(ctx, id)
	if q, ok := args.Get(0).(*quote.Quote); ok {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *QuoteRepository) List(ctx context.Context, opts quote.ListOptions) ([]quote.Quote, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]quote.Quote); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *QuoteRepository) Approve(ctx context.Context, id string, p *project.Project) error {
	args := m.Called(ctx, id, p)
	return args.Error(0)
}

func (m *QuoteRepository) Reject(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ProjectRepository is a mock for repository.ProjectRepository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*project.Project); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, opts project.ListOptions) ([]project.Project, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Assign(ctx context.Context, id, workerID string, deadline time.Time, entry project.LogEntry) error {
	args := m.Called(ctx, id, workerID, deadline, entry)
	return args.Error(0)
}

func (m *ProjectRepository) SetStatus(ctx context.Context, id string, status project.Status, entry project.LogEntry) error {
	args := m.Called(ctx, id, status, entry)
	return args.Error(0)
}

func (m *ProjectRepository) AddHours(ctx context.Context, id string, hours float64, entry project.LogEntry) error {
	args := m.Called(ctx, id, hours, entry)
	return args.Error(0)
}

func (m *ProjectRepository) AppendLog(ctx context.Context, id string, entry project.LogEntry) error {
	args := m.Called(ctx, id, entry)
	return args.Error(0)
}

func (m *ProjectRepository) AppendCompletedFile(ctx context.Context, id string, f project.StoredFile, entry project.LogEntry) error {
	args := m.Called(ctx, id, f, entry)
	return args.Error(0)
}

// UserRepository is a mock for repository.UserRepository.
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *UserRepository) Get(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) List(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]user.User); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) ListByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	args := m.Called(ctx, role)
	if list, ok := args.Get(0).([]user.User); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
