package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erudithe/portal/internal/domain/project"
	"github.com/erudithe/portal/internal/repository"
	"github.com/erudithe/portal/internal/watch"
)

const dateLayout = "2006-01-02"

// ProjectRepository implements repository.ProjectRepository for SQLite
type ProjectRepository struct {
	db  *DB
	hub *watch.Hub
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB, hub *watch.Hub) *ProjectRepository {
	return &ProjectRepository{db: db, hub: hub}
}

// insertProject writes a project row and its source files inside tx. It
// is shared with the quote approval path so the quote flip and project
// creation commit together.
func insertProject(ctx context.Context, tx *sql.Tx, p *project.Project) error {
	query := `
		INSERT INTO projects (id, quote_id, project_type, page_count, total_cost, time_allowance,
			client_name, client_email, client_company, client_phone,
			status, assigned_to, deadline, hours_used, summary, suggestion_rationale, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var assignedTo any
	if p.AssignedTo != "" {
		assignedTo = p.AssignedTo
	}
	var deadline any
	if p.Deadline != nil {
		deadline = p.Deadline.Format(dateLayout)
	}

	_, err := tx.ExecContext(ctx, query,
		p.ID,
		p.QuoteID,
		p.ProjectType,
		p.PageCount,
		p.TotalCost,
		p.TimeAllowance,
		p.Client.Name,
		p.Client.Email,
		p.Client.Company,
		p.Client.Phone,
		p.Status,
		assignedTo,
		deadline,
		p.HoursUsed,
		p.Summary,
		p.SuggestionRationale,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	for _, f := range p.SourceFiles {
		if err := insertFile(ctx, tx, p.ID, "source", f); err != nil {
			return err
		}
	}
	for _, f := range p.CompletedFiles {
		if err := insertFile(ctx, tx, p.ID, "completed", f); err != nil {
			return err
		}
	}
	for _, e := range p.Log {
		if err := insertLogEntry(ctx, tx, p.ID, e); err != nil {
			return err
		}
	}

	return nil
}

func insertFile(ctx context.Context, tx *sql.Tx, projectID, kind string, f project.StoredFile) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO project_files (project_id, kind, name, url, uploaded_at) VALUES (?, ?, ?, ?, ?)`,
		projectID, kind, f.Name, f.URL, f.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store project file: %w", err)
	}
	return nil
}

func insertLogEntry(ctx context.Context, tx *sql.Tx, projectID string, e project.LogEntry) error {
	var hours any
	if e.Type == project.EntryHours {
		hours = e.HoursLogged
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO project_log (project_id, author, author_id, entry_type, content, hours_logged, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		projectID, e.Author, e.AuthorID, e.Type, e.Content, hours, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}
	return nil
}

// Create stores a new project with its files and log
func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertProject(ctx, tx, p); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.hub.Changed(watch.CollectionProjects)
	return nil
}

const projectColumns = `
	id, quote_id, project_type, page_count, total_cost, time_allowance,
	client_name, client_email, client_company, client_phone,
	status, assigned_to, deadline, hours_used, summary, suggestion_rationale, created_at
`

func scanProject(row interface{ Scan(...any) error }) (*project.Project, error) {
	var p project.Project
	var assignedTo, deadline sql.NullString
	err := row.Scan(
		&p.ID,
		&p.QuoteID,
		&p.ProjectType,
		&p.PageCount,
		&p.TotalCost,
		&p.TimeAllowance,
		&p.Client.Name,
		&p.Client.Email,
		&p.Client.Company,
		&p.Client.Phone,
		&p.Status,
		&assignedTo,
		&deadline,
		&p.HoursUsed,
		&p.Summary,
		&p.SuggestionRationale,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedTo.Valid {
		p.AssignedTo = assignedTo.String
	}
	if deadline.Valid {
		d, err := time.Parse(dateLayout, deadline.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse deadline: %w", err)
		}
		p.Deadline = &d
	}
	return &p, nil
}

// Get retrieves a project with its files and full activity log
func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)

	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if err := r.attachRelations(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// List returns projects matching the options, newest first
func (r *ProjectRepository) List(ctx context.Context, opts project.ListOptions) ([]project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`

	var conditions []string
	var args []any
	if opts.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, opts.Status)
	}
	if opts.AssignedTo != "" {
		conditions = append(conditions, "assigned_to = ?")
		args = append(args, opts.AssignedTo)
	}
	if opts.ClientEmail != "" {
		conditions = append(conditions, "lower(client_email) = lower(?)")
		args = append(args, opts.ClientEmail)
	}
	if opts.Search != "" {
		conditions = append(conditions, "(client_name LIKE ? OR client_company LIKE ? OR id LIKE ?)")
		pattern := "%" + opts.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	for i, c := range conditions {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	for i := range projects {
		if err := r.attachRelations(ctx, &projects[i]); err != nil {
			return nil, err
		}
	}

	return projects, nil
}

// Assign sets the assignee, moves the project to In Progress, stamps the
// deadline, and appends the entry in one transaction
func (r *ProjectRepository) Assign(ctx context.Context, id, workerID string, deadline time.Time, entry project.LogEntry) error {
	return r.mutate(ctx, id, entry, func(tx *sql.Tx) (sql.Result, error) {
		return tx.ExecContext(ctx,
			`UPDATE projects SET assigned_to = ?, status = ?, deadline = ? WHERE id = ?`,
			workerID, project.StatusInProgress, deadline.Format(dateLayout), id,
		)
	})
}

// SetStatus updates the status and appends the entry in one transaction
func (r *ProjectRepository) SetStatus(ctx context.Context, id string, status project.Status, entry project.LogEntry) error {
	return r.mutate(ctx, id, entry, func(tx *sql.Tx) (sql.Result, error) {
		return tx.ExecContext(ctx,
			`UPDATE projects SET status = ? WHERE id = ?`,
			status, id,
		)
	})
}

// AddHours increments the hours accumulator and appends the entry in one
// transaction, so the total always matches the sum of logged entries
func (r *ProjectRepository) AddHours(ctx context.Context, id string, hours float64, entry project.LogEntry) error {
	return r.mutate(ctx, id, entry, func(tx *sql.Tx) (sql.Result, error) {
		return tx.ExecContext(ctx,
			`UPDATE projects SET hours_used = hours_used + ? WHERE id = ?`,
			hours, id,
		)
	})
}

// AppendLog appends a log entry without touching project fields
func (r *ProjectRepository) AppendLog(ctx context.Context, id string, entry project.LogEntry) error {
	// The no-op update doubles as the existence check.
	return r.mutate(ctx, id, entry, func(tx *sql.Tx) (sql.Result, error) {
		return tx.ExecContext(ctx, `UPDATE projects SET id = id WHERE id = ?`, id)
	})
}

// AppendCompletedFile records a completed file and appends the entry in
// one transaction
func (r *ProjectRepository) AppendCompletedFile(ctx context.Context, id string, f project.StoredFile, entry project.LogEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE projects SET id = id WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}
	if err := requireRow(result); err != nil {
		return err
	}

	if err := insertFile(ctx, tx, id, "completed", f); err != nil {
		return err
	}
	if err := insertLogEntry(ctx, tx, id, entry); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.hub.Changed(watch.CollectionProjects)
	return nil
}

// mutate runs one field update plus the log append as a single commit.
func (r *ProjectRepository) mutate(ctx context.Context, id string, entry project.LogEntry, update func(tx *sql.Tx) (sql.Result, error)) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := update(tx)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if err := requireRow(result); err != nil {
		return err
	}

	if err := insertLogEntry(ctx, tx, id, entry); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.hub.Changed(watch.CollectionProjects)
	return nil
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) attachRelations(ctx context.Context, p *project.Project) error {
	var err error
	p.SourceFiles, err = r.loadFiles(ctx, p.ID, "source")
	if err != nil {
		return err
	}
	p.CompletedFiles, err = r.loadFiles(ctx, p.ID, "completed")
	if err != nil {
		return err
	}
	p.Log, err = r.loadLog(ctx, p.ID)
	return err
}

func (r *ProjectRepository) loadFiles(ctx context.Context, projectID, kind string) ([]project.StoredFile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, url, uploaded_at FROM project_files WHERE project_id = ? AND kind = ? ORDER BY id ASC`,
		projectID, kind,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load project files: %w", err)
	}
	defer rows.Close()

	files := []project.StoredFile{}
	for rows.Next() {
		var f project.StoredFile
		if err := rows.Scan(&f.Name, &f.URL, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project file: %w", err)
		}
		files = append(files, f)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project file rows: %w", err)
	}

	return files, nil
}

func (r *ProjectRepository) loadLog(ctx context.Context, projectID string) ([]project.LogEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT author, author_id, entry_type, content, hours_logged, created_at
		 FROM project_log WHERE project_id = ? ORDER BY id ASC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load project log: %w", err)
	}
	defer rows.Close()

	entries := []project.LogEntry{}
	for rows.Next() {
		var e project.LogEntry
		var hours sql.NullFloat64
		if err := rows.Scan(&e.Author, &e.AuthorID, &e.Type, &e.Content, &hours, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		if hours.Valid {
			e.HoursLogged = hours.Float64
		}
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating log rows: %w", err)
	}

	return entries, nil
}
