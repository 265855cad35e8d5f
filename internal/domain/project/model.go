package project

import "time"

// Type classifies the conversion work a client requested.
type Type string

const (
	TypeSimpleConversion     Type = "Simple Conversion"
	TypeCreativeRedesign     Type = "Creative Redesign"
	TypeInstructionalUpgrade Type = "Instructional Upgrade"
)

// Valid reports whether t is a known project type.
func (t Type) Valid() bool {
	switch t {
	case TypeSimpleConversion, TypeCreativeRedesign, TypeInstructionalUpgrade:
		return true
	}
	return false
}

// Status represents the workflow state of a project.
type Status string

const (
	StatusPendingAssignment Status = "Pending Assignment"
	StatusInProgress        Status = "In Progress"
	StatusReadyForReview    Status = "Ready for Review"
	StatusCompleted         Status = "Completed"
	StatusOnHold            Status = "On Hold"
)

// EntryType is the closed set of log entry kinds.
type EntryType string

const (
	EntryComment      EntryType = "comment"
	EntryHours        EntryType = "hours"
	EntryStatusChange EntryType = "status_change"
	EntryFileUpload   EntryType = "file_upload"
)

// LogEntry is an immutable record in a project's activity log.
// HoursLogged is set only on entries of type hours.
type LogEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Author      string    `json:"author"`
	AuthorID    string    `json:"author_id"`
	Type        EntryType `json:"type"`
	Content     string    `json:"content"`
	HoursLogged float64   `json:"hours_logged,omitempty"`
}

// StoredFile is a stable reference to a file held by the storage
// collaborator. The portal never touches file bytes.
type StoredFile struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Client holds the contact details captured at quote time. Immutable once
// the quote is submitted.
type Client struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
}

// Project is an approved, scheduled unit of work. The log is append-only
// and insertion order is chronological order; HoursUsed only grows, and
// only through logged hours entries. Deadline is set exactly once, at
// assignment, and never recomputed.
type Project struct {
	ID            string       `json:"id"`
	QuoteID       string       `json:"quote_id"`
	ProjectType   Type         `json:"project_type"`
	PageCount     int          `json:"page_count"`
	TotalCost     float64      `json:"total_cost"`
	TimeAllowance int          `json:"time_allowance"`
	CreatedAt     time.Time    `json:"created_at"`
	Client        Client       `json:"client"`
	SourceFiles   []StoredFile `json:"source_files"`

	Status         Status       `json:"status"`
	AssignedTo     string       `json:"assigned_to,omitempty"`
	Deadline       *time.Time   `json:"deadline,omitempty"`
	HoursUsed      float64      `json:"hours_used"`
	CompletedFiles []StoredFile `json:"completed_files"`
	Log            []LogEntry   `json:"log"`

	Summary             string `json:"summary,omitempty"`
	SuggestionRationale string `json:"suggestion_rationale,omitempty"`
}

const hoursPerWorkDay = 8

// WorkDays returns the number of 8-hour workdays the allowance spans,
// rounded up.
func (p *Project) WorkDays() int {
	return WorkDaysFor(p.TimeAllowance)
}

// WorkDaysFor returns ceil(allowanceHours / 8).
func WorkDaysFor(allowanceHours int) int {
	if allowanceHours <= 0 {
		return 0
	}
	return (allowanceHours + hoursPerWorkDay - 1) / hoursPerWorkDay
}

// Progress is the fraction of the time allowance consumed. Uncapped: a
// project over its allowance reports a value above 1.
func (p *Project) Progress() float64 {
	if p.TimeAllowance <= 0 {
		return 0
	}
	return p.HoursUsed / float64(p.TimeAllowance)
}
