package quote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erudithe/portal/internal/domain/project"
	"github.com/erudithe/portal/internal/repository"
	"github.com/google/uuid"
)

// Service handles quote submission and the two terminal decisions.
type Service struct {
	repo     Repository
	analyzer Analyzer
	logger   *slog.Logger
}

// NewService creates a new quote service. analyzer may be nil; advisory
// annotation is then skipped.
func NewService(repo Repository, analyzer Analyzer, logger *slog.Logger) *Service {
	return &Service{repo: repo, analyzer: analyzer, logger: logger}
}

// CreateRequest describes a client quote submission.
type CreateRequest struct {
	ProjectType project.Type
	PageCount   int
	Client      project.Client
	SourceFiles []project.StoredFile
}

// Create prices a submission and stores it as a Pending quote.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Quote, error) {
	if !req.ProjectType.Valid() || req.PageCount <= 0 {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(req.Client.Name) == "" || strings.TrimSpace(req.Client.Email) == "" {
		return nil, ErrInvalidInput
	}

	cost, allowance := Price(req.ProjectType, req.PageCount)

	q := &Quote{
		ID:            uuid.NewString(),
		ProjectType:   req.ProjectType,
		PageCount:     req.PageCount,
		TotalCost:     cost,
		TimeAllowance: allowance,
		CreatedAt:     time.Now(),
		Client:        req.Client,
		SourceFiles:   req.SourceFiles,
		Status:        StatusPending,
	}

	if s.analyzer != nil {
		names := make([]string, 0, len(req.SourceFiles))
		for _, f := range req.SourceFiles {
			names = append(names, f.Name)
		}
		advisory, err := s.analyzer.Analyze(ctx, names, req.PageCount)
		if err != nil {
			s.logger.Warn("document analysis failed", "error", err)
		} else if advisory != nil {
			q.Summary = advisory.Summary
			q.SuggestionRationale = advisory.Rationale
		}
	}

	if err := s.repo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("creating quote: %w", err)
	}

	return q, nil
}

// Get fetches a quote by ID.
func (s *Service) Get(ctx context.Context, id string) (*Quote, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("getting quote: %w", err)
	}
	return q, nil
}

// List returns quotes matching the options, newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Quote, error) {
	return s.repo.List(ctx, opts)
}

// Approve promotes a Pending quote into exactly one project: every quote
// field is carried forward, the log starts empty, and the project awaits
// assignment. Approving a non-Pending quote is a data-integrity error.
func (s *Service) Approve(ctx context.Context, id string) (*project.Project, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status != StatusPending {
		return nil, ErrNotPending
	}

	p := &project.Project{
		ID:                  uuid.NewString(),
		QuoteID:             q.ID,
		ProjectType:         q.ProjectType,
		PageCount:           q.PageCount,
		TotalCost:           q.TotalCost,
		TimeAllowance:       q.TimeAllowance,
		CreatedAt:           time.Now(),
		Client:              q.Client,
		SourceFiles:         q.SourceFiles,
		CompletedFiles:      []project.StoredFile{},
		Status:              project.StatusPendingAssignment,
		Log:                 []project.LogEntry{},
		Summary:             q.Summary,
		SuggestionRationale: q.SuggestionRationale,
	}

	if err := s.repo.Approve(ctx, q.ID, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrNotPending
		}
		return nil, fmt.Errorf("approving quote: %w", err)
	}

	s.logger.Info("quote approved", "quote", q.ID, "project", p.ID)
	return p, nil
}

// Reject marks a Pending quote Rejected. No project is created.
func (s *Service) Reject(ctx context.Context, id string) (*Quote, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status != StatusPending {
		return nil, ErrNotPending
	}

	if err := s.repo.Reject(ctx, q.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrNotPending
		}
		return nil, fmt.Errorf("rejecting quote: %w", err)
	}

	q.Status = StatusRejected
	return q, nil
}
