package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erudithe/portal/internal/calendar"
	"github.com/erudithe/portal/internal/domain/user"
	"github.com/erudithe/portal/internal/repository"
)

// Actor identifies the user a log entry is written on behalf of.
type Actor struct {
	ID   string
	Name string
}

// systemActor authors entries produced by the portal itself.
var systemActor = Actor{ID: "system", Name: "System"}

// Service handles project lifecycle operations.
type Service struct {
	repo    Repository
	workers WorkerDirectory
	logger  *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, workers WorkerDirectory, logger *slog.Logger) *Service {
	return &Service{repo: repo, workers: workers, logger: logger}
}

// Get fetches a project with its full log.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return p, nil
}

// List returns projects matching the options, newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Project, error) {
	return s.repo.List(ctx, opts)
}

// Assign moves a project from Pending Assignment to In Progress, computes
// its deadline from the time allowance, and journals the change. The
// deadline is set here exactly once; reassignment is not supported.
func (s *Service) Assign(ctx context.Context, id, workerID string) (*Project, error) {
	if strings.TrimSpace(workerID) == "" {
		return nil, ErrInvalidInput
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPendingAssignment {
		return nil, ErrAlreadyAssigned
	}

	w, err := s.workers.Get(ctx, workerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrWorkerNotFound
		}
		return nil, fmt.Errorf("resolving worker: %w", err)
	}
	if w.Role != user.RoleWorker {
		return nil, ErrNotAWorker
	}

	deadline := calendar.AddBusinessDays(time.Now(), p.WorkDays())
	entry := LogEntry{
		Timestamp: time.Now(),
		Author:    systemActor.Name,
		AuthorID:  systemActor.ID,
		Type:      EntryStatusChange,
		Content:   fmt.Sprintf("Project assigned to %s. Status changed to '%s'.", w.Name, StatusInProgress),
	}

	if err := s.repo.Assign(ctx, id, workerID, deadline, entry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("assigning project: %w", err)
	}

	s.logger.Info("project assigned", "project", id, "worker", workerID, "deadline", deadline.Format("2006-01-02"))

	p.Status = StatusInProgress
	p.AssignedTo = workerID
	p.Deadline = &deadline
	p.Log = append(p.Log, entry)
	return p, nil
}

// UpdateStatus applies a status change from the transition table and
// journals it under the acting user.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, id string, to Status) (*Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := ValidateTransition(p.Status, to); err != nil {
		return nil, err
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Author:    actor.Name,
		AuthorID:  actor.ID,
		Type:      EntryStatusChange,
		Content:   fmt.Sprintf("Status changed from '%s' to '%s'.", p.Status, to),
	}

	if err := s.repo.SetStatus(ctx, id, to, entry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("updating status: %w", err)
	}

	p.Status = to
	p.Log = append(p.Log, entry)
	return p, nil
}

// LogHours records minutes worked and increments the hours accumulator.
// The increment and the log entry land in one write.
func (s *Service) LogHours(ctx context.Context, actor Actor, id string, minutes int) (*Project, error) {
	if minutes <= 0 {
		return nil, ErrInvalidMinutes
	}

	hours := float64(minutes) / 60
	entry := LogEntry{
		Timestamp:   time.Now(),
		Author:      actor.Name,
		AuthorID:    actor.ID,
		Type:        EntryHours,
		Content:     fmt.Sprintf("Logged %d minutes (%.2f hours).", minutes, hours),
		HoursLogged: hours,
	}

	if err := s.repo.AddHours(ctx, id, hours, entry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("logging hours: %w", err)
	}

	return s.Get(ctx, id)
}

// Comment appends a comment entry authored by the acting user.
func (s *Service) Comment(ctx context.Context, actor Actor, id, content string) (*Project, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyComment
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Author:    actor.Name,
		AuthorID:  actor.ID,
		Type:      EntryComment,
		Content:   content,
	}

	if err := s.repo.AppendLog(ctx, id, entry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("posting comment: %w", err)
	}

	return s.Get(ctx, id)
}

// AttachCompletedFile records a completed-file reference and journals the
// upload. The storage collaborator has already produced the reference.
func (s *Service) AttachCompletedFile(ctx context.Context, actor Actor, id string, f StoredFile) (*Project, error) {
	if strings.TrimSpace(f.Name) == "" {
		return nil, ErrInvalidInput
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Author:    actor.Name,
		AuthorID:  actor.ID,
		Type:      EntryFileUpload,
		Content:   fmt.Sprintf("Uploaded file: %s", f.Name),
	}

	if err := s.repo.AppendCompletedFile(ctx, id, f, entry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("attaching file: %w", err)
	}

	return s.Get(ctx, id)
}
