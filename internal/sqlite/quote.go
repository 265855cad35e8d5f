package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erudithe/portal/internal/domain/project"
	"github.com/erudithe/portal/internal/domain/quote"
	"github.com/erudithe/portal/internal/repository"
	"github.com/erudithe/portal/internal/watch"
)

// QuoteRepository implements repository.QuoteRepository for SQLite
type QuoteRepository struct {
	db  *DB
	hub *watch.Hub
}

// NewQuoteRepository creates a new QuoteRepository
func NewQuoteRepository(db *DB, hub *watch.Hub) *QuoteRepository {
	return &QuoteRepository{db: db, hub: hub}
}

// Create stores a new quote with its source files
func (r *QuoteRepository) Create(ctx context.Context, q *quote.Quote) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO quotes (id, project_type, page_count, total_cost, time_allowance,
			client_name, client_email, client_company, client_phone,
			status, summary, suggestion_rationale, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		q.ID,
		q.ProjectType,
		q.PageCount,
		q.TotalCost,
		q.TimeAllowance,
		q.Client.Name,
		q.Client.Email,
		q.Client.Company,
		q.Client.Phone,
		q.Status,
		q.Summary,
		q.SuggestionRationale,
		q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}

	for i, f := range q.SourceFiles {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO quote_files (quote_id, position, name, url, uploaded_at) VALUES (?, ?, ?, ?, ?)`,
			q.ID, i, f.Name, f.URL, f.UploadedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to store source file: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.hub.Changed(watch.CollectionQuotes)
	return nil
}

// Get retrieves a quote by ID
func (r *QuoteRepository) Get(ctx context.Context, id string) (*quote.Quote, error) {
	query := `
		SELECT id, project_type, page_count, total_cost, time_allowance,
			client_name, client_email, client_company, client_phone,
			status, summary, suggestion_rationale, created_at
		FROM quotes
		WHERE id = ?
	`

	var q quote.Quote
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&q.ID,
		&q.ProjectType,
		&q.PageCount,
		&q.TotalCost,
		&q.TimeAllowance,
		&q.Client.Name,
		&q.Client.Email,
		&q.Client.Company,
		&q.Client.Phone,
		&q.Status,
		&q.Summary,
		&q.SuggestionRationale,
		&q.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	q.SourceFiles, err = r.loadFiles(ctx, q.ID)
	if err != nil {
		return nil, err
	}

	return &q, nil
}

// List returns quotes matching the options, newest first
func (r *QuoteRepository) List(ctx context.Context, opts quote.ListOptions) ([]quote.Quote, error) {
	query := `
		SELECT id, project_type, page_count, total_cost, time_allowance,
			client_name, client_email, client_company, client_phone,
			status, summary, suggestion_rationale, created_at
		FROM quotes
	`
	var args []any
	if opts.Status != "" {
		query += " WHERE status = ?"
		args = append(args, opts.Status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []quote.Quote
	for rows.Next() {
		var q quote.Quote
		err := rows.Scan(
			&q.ID,
			&q.ProjectType,
			&q.PageCount,
			&q.TotalCost,
			&q.TimeAllowance,
			&q.Client.Name,
			&q.Client.Email,
			&q.Client.Company,
			&q.Client.Phone,
			&q.Status,
			&q.Summary,
			&q.SuggestionRationale,
			&q.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quote rows: %w", err)
	}

	for i := range quotes {
		quotes[i].SourceFiles, err = r.loadFiles(ctx, quotes[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return quotes, nil
}

// Approve flips a Pending quote to Approved and creates its project in
// the same transaction. Returns repository.ErrConflict if the quote has
// already been decided.
func (r *QuoteRepository) Approve(ctx context.Context, id string, p *project.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.decide(ctx, tx, id, quote.StatusApproved); err != nil {
		return err
	}

	if err := insertProject(ctx, tx, p); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.hub.Changed(watch.CollectionQuotes)
	r.hub.Changed(watch.CollectionProjects)
	return nil
}

// Reject flips a Pending quote to Rejected. Returns
// repository.ErrConflict if the quote has already been decided.
func (r *QuoteRepository) Reject(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.decide(ctx, tx, id, quote.StatusRejected); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.hub.Changed(watch.CollectionQuotes)
	return nil
}

// decide moves a quote out of Pending, guarding against double decisions.
func (r *QuoteRepository) decide(ctx context.Context, tx *sql.Tx, id string, to quote.Status) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE quotes SET status = ? WHERE id = ? AND status = ?`,
		to, id, quote.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to update quote status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM quotes WHERE id = ?)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check quote: %w", err)
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}

	return nil
}

func (r *QuoteRepository) loadFiles(ctx context.Context, quoteID string) ([]project.StoredFile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, url, uploaded_at FROM quote_files WHERE quote_id = ? ORDER BY position ASC`,
		quoteID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load quote files: %w", err)
	}
	defer rows.Close()

	files := []project.StoredFile{}
	for rows.Next() {
		var f project.StoredFile
		if err := rows.Scan(&f.Name, &f.URL, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quote file: %w", err)
		}
		files = append(files, f)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quote file rows: %w", err)
	}

	return files, nil
}
