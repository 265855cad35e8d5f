package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/erudithe/portal/internal/domain/capacity"
	"github.com/erudithe/portal/internal/domain/project"
	"github.com/erudithe/portal/internal/domain/quote"
	"github.com/erudithe/portal/internal/domain/timeline"
	"github.com/erudithe/portal/internal/domain/user"
	"github.com/erudithe/portal/internal/identity"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type listProjectsParams struct {
	Status string `json:"status,omitempty" jsonschema:"Filter by project status. Accepts Pending as shorthand for Pending Assignment."`
	Search string `json:"search,omitempty" jsonschema:"Match against client name, company, or project ID."`
}

type listProjectsResult struct {
	Projects []project.Project `json:"projects"`
}

type getProjectParams struct {
	ID string `json:"id" jsonschema:"Project ID."`
}

type listQuotesParams struct {
	Status string `json:"status,omitempty" jsonschema:"Filter by quote status: Pending, Approved, or Rejected."`
}

type listQuotesResult struct {
	Quotes []quote.Quote `json:"quotes"`
}

type approveQuoteParams struct {
	ID string `json:"id" jsonschema:"Quote ID to approve."`
}

type logHoursParams struct {
	ProjectID string `json:"project_id" jsonschema:"Project to log hours against."`
	Minutes   int    `json:"minutes" jsonschema:"Minutes worked; must be positive."`
}

type workerUtilizationParams struct{}

type timelineParams struct{}

type workerUtilizationResult struct {
	Workers []capacity.WorkerLoad `json:"workers"`
}

// requireRole guards a tool to the given roles.
func requireRole(ctx context.Context, roles ...user.Role) (*identity.Identity, error) {
	id := getIdentity(ctx)
	if id == nil {
		return nil, fmt.Errorf("unauthorized: no identity on request")
	}
	for _, role := range roles {
		if id.Role == role {
			return id, nil
		}
	}
	return nil, fmt.Errorf("forbidden: requires one of %v", roles)
}

// listProjectsHandler lists projects scoped to the caller's role.
func listProjectsHandler(projects ProjectService) sdkmcp.ToolHandlerFor[listProjectsParams, listProjectsResult] {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, params listProjectsParams) (*sdkmcp.CallToolResult, listProjectsResult, error) {
		id := getIdentity(ctx)
		if id == nil {
			return nil, listProjectsResult{}, fmt.Errorf("unauthorized: no identity on request")
		}

		status := project.Status(params.Status)
		if params.Status == "Pending" {
			status = project.StatusPendingAssignment
		}
		opts := project.ListOptions{Status: status, Search: params.Search}
		switch id.Role {
		case user.RoleWorker:
			opts.AssignedTo = id.ID
		case user.RoleClient:
			opts.ClientEmail = id.Email
		}

		list, err := projects.List(ctx, opts)
		if err != nil {
			return nil, listProjectsResult{}, err
		}
		return nil, listProjectsResult{Projects: list}, nil
	}
}

// getProjectHandler fetches one project; workers and clients only see their own.
func getProjectHandler(projects ProjectService) sdkmcp.ToolHandlerFor[getProjectParams, *project.Project] {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, params getProjectParams) (*sdkmcp.CallToolResult, *project.Project, error) {
		id := getIdentity(ctx)
		if id == nil {
			return nil, nil, fmt.Errorf("unauthorized: no identity on request")
		}

		p, err := projects.Get(ctx, params.ID)
		if err != nil {
			return nil, nil, err
		}
		if id.Role == user.RoleWorker && p.AssignedTo != id.ID {
			return nil, nil, project.ErrProjectNotFound
		}
		if id.Role == user.RoleClient && p.Client.Email != id.Email {
			return nil, nil, project.ErrProjectNotFound
		}
		return nil, p, nil
	}
}

func listQuotesHandler(quotes QuoteService) sdkmcp.ToolHandlerFor[listQuotesParams, listQuotesResult] {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, params listQuotesParams) (*sdkmcp.CallToolResult, listQuotesResult, error) {
		if _, err := requireRole(ctx, user.RoleAdmin); err != nil {
			return nil, listQuotesResult{}, err
		}

		list, err := quotes.List(ctx, quote.ListOptions{Status: quote.Status(params.Status)})
		if err != nil {
			return nil, listQuotesResult{}, err
		}
		return nil, listQuotesResult{Quotes: list}, nil
	}
}

func approveQuoteHandler(quotes QuoteService) sdkmcp.ToolHandlerFor[approveQuoteParams, *project.Project] {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, params approveQuoteParams) (*sdkmcp.CallToolResult, *project.Project, error) {
		if _, err := requireRole(ctx, user.RoleAdmin); err != nil {
			return nil, nil, err
		}

		p, err := quotes.Approve(ctx, params.ID)
		if err != nil {
			return nil, nil, err
		}
		return nil, p, nil
	}
}

func logHoursHandler(projects ProjectService) sdkmcp.ToolHandlerFor[logHoursParams, *project.Project] {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, params logHoursParams) (*sdkmcp.CallToolResult, *project.Project, error) {
		id, err := requireRole(ctx, user.RoleWorker, user.RoleAdmin)
		if err != nil {
			return nil, nil, err
		}

		p, err := projects.LogHours(ctx, project.Actor{ID: id.ID, Name: id.Name}, params.ProjectID, params.Minutes)
		if err != nil {
			return nil, nil, err
		}
		return nil, p, nil
	}
}

func workerUtilizationHandler(users UserService, projects ProjectService) sdkmcp.ToolHandlerFor[workerUtilizationParams, workerUtilizationResult] {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, params workerUtilizationParams) (*sdkmcp.CallToolResult, workerUtilizationResult, error) {
		if _, err := requireRole(ctx, user.RoleAdmin); err != nil {
			return nil, workerUtilizationResult{}, err
		}

		workers, err := users.ListWorkers(ctx)
		if err != nil {
			return nil, workerUtilizationResult{}, err
		}
		all, err := projects.List(ctx, project.ListOptions{})
		if err != nil {
			return nil, workerUtilizationResult{}, err
		}
		return nil, workerUtilizationResult{Workers: capacity.Utilization(workers, all)}, nil
	}
}

func timelineHandler(projects ProjectService) sdkmcp.ToolHandlerFor[timelineParams, timeline.Timeline] {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, params timelineParams) (*sdkmcp.CallToolResult, timeline.Timeline, error) {
		if _, err := requireRole(ctx, user.RoleAdmin); err != nil {
			return nil, timeline.Timeline{}, err
		}

		all, err := projects.List(ctx, project.ListOptions{})
		if err != nil {
			return nil, timeline.Timeline{}, err
		}
		return nil, timeline.Layout(all, time.Now()), nil
	}
}

func registerTools(server *sdkmcp.Server, services Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List projects visible to the caller, optionally filtered by status or search text",
	}, listProjectsHandler(services.Projects))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get a project with its full activity log",
	}, getProjectHandler(services.Projects))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_quotes",
		Description: "List quote submissions, optionally filtered by status (admin only)",
	}, listQuotesHandler(services.Quotes))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "approve_quote",
		Description: "Approve a pending quote, creating its project (admin only)",
	}, approveQuoteHandler(services.Quotes))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "log_hours",
		Description: "Log minutes worked against a project; the entry lands on the activity log",
	}, logHoursHandler(services.Projects))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "worker_utilization",
		Description: "Report each worker's committed load against weekly capacity (admin only)",
	}, workerUtilizationHandler(services.Users, services.Projects))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "timeline",
		Description: "Lay scheduled projects out on a shared date axis (admin only)",
	}, timelineHandler(services.Projects))
}
