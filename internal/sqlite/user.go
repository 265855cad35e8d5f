package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erudithe/portal/internal/domain/user"
	"github.com/erudithe/portal/internal/repository"
	"github.com/erudithe/portal/internal/watch"
)

// UserRepository implements repository.UserRepository for SQLite
type UserRepository struct {
	db  *DB
	hub *watch.Hub
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *DB, hub *watch.Hub) *UserRepository {
	return &UserRepository{db: db, hub: hub}
}

// Create stores a new user. Returns repository.ErrConflict if the email
// is already registered.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, email, name, role, company, phone, weekly_capacity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.Email,
		u.Name,
		u.Role,
		u.Company,
		u.Phone,
		u.WeeklyCapacity,
		u.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.hub.Changed(watch.CollectionUsers)
	return nil
}

const userColumns = `id, email, name, role, company, phone, weekly_capacity, created_at`

func scanUser(row interface{ Scan(...any) error }) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.Company,
		&u.Phone,
		&u.WeeklyCapacity,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id string) (*user.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower(?)`, email)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// List returns all users
func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
}

// ListByRole returns users holding the given role
func (r *UserRepository) ListByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY created_at ASC`, role)
}

func (r *UserRepository) list(ctx context.Context, query string, args ...any) ([]user.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}
