package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erudithe/portal/internal/repository"
	"github.com/google/uuid"
)

const defaultWeeklyCapacity = 40

// Service handles account management.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateWorkerRequest describes a new conversion-team account.
type CreateWorkerRequest struct {
	Name           string
	Email          string
	WeeklyCapacity float64
}

// CreateWorker provisions a worker account. A zero capacity falls back
// to the standard 40-hour week.
func (s *Service) CreateWorker(ctx context.Context, req CreateWorkerRequest) (*User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidInput
	}
	if req.WeeklyCapacity < 0 {
		return nil, ErrInvalidInput
	}

	capacity := req.WeeklyCapacity
	if capacity == 0 {
		capacity = defaultWeeklyCapacity
	}

	u := &User{
		ID:             uuid.NewString(),
		Email:          email,
		Name:           name,
		Role:           RoleWorker,
		Company:        "Erudithe",
		WeeklyCapacity: capacity,
		CreatedAt:      time.Now(),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating worker: %w", err)
	}

	s.logger.Info("worker created", "user", u.ID, "email", u.Email)
	return u, nil
}

// Get fetches a user by ID.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetByEmail fetches a user by email, case-insensitively.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// ListWorkers returns every worker account.
func (s *Service) ListWorkers(ctx context.Context) ([]User, error) {
	return s.repo.ListByRole(ctx, RoleWorker)
}

// List returns every account.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}
