// Command bootstrap provisions an account directly against the database
// and prints a session token for it. Run it once to create the first
// admin, or to mint tokens for demo clients.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erudithe/portal/internal/config"
	"github.com/erudithe/portal/internal/domain/user"
	"github.com/erudithe/portal/internal/identity"
	"github.com/erudithe/portal/internal/repository"
	"github.com/erudithe/portal/internal/sqlite"
)

func main() {
	name := flag.String("name", "", "account display name")
	email := flag.String("email", "", "account email")
	role := flag.String("role", "Admin", "account role: Admin, Worker, or Client")
	company := flag.String("company", "Erudithe", "company name")
	flag.Parse()

	if err := run(*name, *email, *role, *company); err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap error: %v\n", err)
		os.Exit(1)
	}
}

func run(name, email, roleName, company string) error {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return errors.New("both -name and a valid -email are required")
	}
	role := user.Role(roleName)
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", roleName)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Auth.Secret == "" {
		return errors.New("auth secret is required; set PORTAL_AUTH_SECRET")
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	ctx := context.Background()
	repo := sqlite.NewUserRepository(db, nil)

	u, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		fmt.Printf("account exists: %s (%s)\n", u.Email, u.Role)
	case errors.Is(err, repository.ErrNotFound):
		u = &user.User{
			ID:             uuid.NewString(),
			Email:          email,
			Name:           name,
			Role:           role,
			Company:        company,
			WeeklyCapacity: 40,
			CreatedAt:      time.Now(),
		}
		if err := repo.Create(ctx, u); err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		fmt.Printf("created %s account %s (%s)\n", u.Role, u.Email, u.ID)
	default:
		return fmt.Errorf("look up account: %w", err)
	}

	tokens, err := identity.NewManager(cfg.Auth.Secret, time.Duration(cfg.Auth.TokenTTL))
	if err != nil {
		return fmt.Errorf("configure tokens: %w", err)
	}
	token, err := tokens.Token(u)
	if err != nil {
		return fmt.Errorf("mint token: %w", err)
	}
	fmt.Printf("token: %s\n", token)
	return nil
}
