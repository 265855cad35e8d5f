// Package mcp exposes portal operations to agent tooling over the Model
// Context Protocol. Tools are a thin layer over the domain services; all
// invariants live below.
package mcp

import (
	"context"
	"log/slog"

	"github.com/erudithe/portal/internal/domain/project"
	"github.com/erudithe/portal/internal/domain/quote"
	"github.com/erudithe/portal/internal/domain/user"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `Erudithe portal tools. Quotes are priced submissions awaiting an
admin decision; approving one creates a project. Projects move through
Pending Assignment, In Progress, Ready for Review, Completed, and On
Hold. Hours are logged in minutes and accumulate on the project.`

// QuoteService defines quote operations needed by MCP.
type QuoteService interface {
	List(ctx context.Context, opts quote.ListOptions) ([]quote.Quote, error)
	Approve(ctx context.Context, id string) (*project.Project, error)
}

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	List(ctx context.Context, opts project.ListOptions) ([]project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	LogHours(ctx context.Context, actor project.Actor, id string, minutes int) (*project.Project, error)
}

// UserService defines user operations needed by MCP.
type UserService interface {
	ListWorkers(ctx context.Context) ([]user.User, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Quotes   QuoteService
	Projects ProjectService
	Users    UserService
}

// Config contains server configuration.
type Config struct {
	Services Services
	Verifier IdentityVerifier
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "erudithe-portal",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	server.AddReceivingMiddleware(authMiddleware(cfg.Verifier))

	registerTools(server, cfg.Services)

	return server
}
