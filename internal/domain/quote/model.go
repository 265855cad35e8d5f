package quote

import (
	"time"

	"github.com/erudithe/portal/internal/domain/project"
)

// Status represents the decision state of a quote. Approved and Rejected
// are terminal.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Quote is a costed proposal awaiting an admin decision. TotalCost and
// TimeAllowance are derived from the page count and project type at
// submission and never recomputed.
type Quote struct {
	ID            string               `json:"id"`
	ProjectType   project.Type         `json:"project_type"`
	PageCount     int                  `json:"page_count"`
	TotalCost     float64              `json:"total_cost"`
	TimeAllowance int                  `json:"time_allowance"`
	CreatedAt     time.Time            `json:"created_at"`
	Client        project.Client       `json:"client"`
	SourceFiles   []project.StoredFile `json:"source_files"`
	Status        Status               `json:"status"`

	// Advisory annotations from the document analyzer. Opaque to the
	// portal; never authoritative.
	Summary             string `json:"summary,omitempty"`
	SuggestionRationale string `json:"suggestion_rationale,omitempty"`
}
