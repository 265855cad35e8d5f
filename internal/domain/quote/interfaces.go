package quote

import (
	"context"

	"github.com/erudithe/portal/internal/domain/project"
)

// ListOptions provides filtering for quote listings.
type ListOptions struct {
	Status Status
}

// Repository provides persistence for quotes.
type Repository interface {
	Create(ctx context.Context, q *Quote) error
	Get(ctx context.Context, id string) (*Quote, error)
	List(ctx context.Context, opts ListOptions) ([]Quote, error)
	// Approve marks the quote Approved and creates the project in one
	// transaction. It fails with repository.ErrConflict if the quote is
	// no longer Pending.
	Approve(ctx context.Context, id string, p *project.Project) error
	// Reject marks the quote Rejected, failing with
	// repository.ErrConflict if it is no longer Pending.
	Reject(ctx context.Context, id string) error
}

// Advisory is the analyzer's opinion about a submission.
type Advisory struct {
	Summary       string
	SuggestedType project.Type
	Rationale     string
}

// Analyzer optionally annotates quote submissions. Implementations must
// treat their output as advisory; the portal stores it opaquely.
type Analyzer interface {
	Analyze(ctx context.Context, fileNames []string, pageCount int) (*Advisory, error)
}
