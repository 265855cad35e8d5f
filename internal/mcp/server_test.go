package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erudithe/portal/internal/domain/project"
	"github.com/erudithe/portal/internal/domain/quote"
	"github.com/erudithe/portal/internal/domain/user"
	"github.com/erudithe/portal/internal/identity"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// fakeProjectService records the last request and returns canned data.
type fakeProjectService struct {
	projects  []project.Project
	project   *project.Project
	err       error
	lastOpts  project.ListOptions
	lastActor project.Actor
	lastID    string
	lastMin   int
}

func (f *fakeProjectService) List(ctx context.Context, opts project.ListOptions) ([]project.Project, error) {
	f.lastOpts = opts
	return f.projects, f.err
}

func (f *fakeProjectService) Get(ctx context.Context, id string) (*project.Project, error) {
	f.lastID = id
	return f.project, f.err
}

func (f *fakeProjectService) LogHours(ctx context.Context, actor project.Actor, id string, minutes int) (*project.Project, error) {
	f.lastActor = actor
	f.lastID = id
	f.lastMin = minutes
	return f.project, f.err
}

type fakeQuoteService struct {
	quotes   []quote.Quote
	project  *project.Project
	err      error
	lastOpts quote.ListOptions
	lastID   string
}

func (f *fakeQuoteService) List(ctx context.Context, opts quote.ListOptions) ([]quote.Quote, error) {
	f.lastOpts = opts
	return f.quotes, f.err
}

func (f *fakeQuoteService) Approve(ctx context.Context, id string) (*project.Project, error) {
	f.lastID = id
	return f.project, f.err
}

type fakeUserService struct {
	workers []user.User
	err     error
}

func (f *fakeUserService) ListWorkers(ctx context.Context) ([]user.User, error) {
	return f.workers, f.err
}

// staticVerifier accepts one token and maps it to one identity.
type staticVerifier struct {
	token string
	id    *identity.Identity
}

func (v staticVerifier) Verify(token string) (*identity.Identity, error) {
	if token != v.token {
		return nil, identity.ErrInvalidToken
	}
	return v.id, nil
}

func asRole(role user.Role) context.Context {
	return context.WithValue(context.Background(), identityKey, &identity.Identity{
		ID:    "u-" + string(role),
		Name:  "Test " + string(role),
		Email: string(role) + "@erudithe.com",
		Role:  role,
	})
}

func TestListProjectsScopesByRole(t *testing.T) {
	svc := &fakeProjectService{projects: []project.Project{{ID: "p1"}}}
	handler := listProjectsHandler(svc)

	_, out, err := handler(asRole(user.RoleWorker), &sdkmcp.CallToolRequest{}, listProjectsParams{})
	require.NoError(t, err)
	require.Len(t, out.Projects, 1)
	require.Equal(t, "u-Worker", svc.lastOpts.AssignedTo)
	require.Empty(t, svc.lastOpts.ClientEmail)

	_, _, err = handler(asRole(user.RoleClient), &sdkmcp.CallToolRequest{}, listProjectsParams{})
	require.NoError(t, err)
	require.Equal(t, "Client@erudithe.com", svc.lastOpts.ClientEmail)
	require.Empty(t, svc.lastOpts.AssignedTo)

	_, _, err = handler(asRole(user.RoleAdmin), &sdkmcp.CallToolRequest{}, listProjectsParams{Status: "Pending", Search: "Acme"})
	require.NoError(t, err)
	require.Empty(t, svc.lastOpts.AssignedTo)
	require.Empty(t, svc.lastOpts.ClientEmail)
	require.Equal(t, project.StatusPendingAssignment, svc.lastOpts.Status)
	require.Equal(t, "Acme", svc.lastOpts.Search)
}

func TestListProjectsRequiresIdentity(t *testing.T) {
	handler := listProjectsHandler(&fakeProjectService{})

	_, _, err := handler(context.Background(), &sdkmcp.CallToolRequest{}, listProjectsParams{})
	require.ErrorContains(t, err, "unauthorized")
}

func TestGetProjectHidesOthersWork(t *testing.T) {
	p := &project.Project{
		ID:         "p1",
		AssignedTo: "u-other",
		Client:     project.Client{Email: "someone@example.com"},
	}
	svc := &fakeProjectService{project: p}
	handler := getProjectHandler(svc)

	_, got, err := handler(asRole(user.RoleAdmin), &sdkmcp.CallToolRequest{}, getProjectParams{ID: "p1"})
	require.NoError(t, err)
	require.Equal(t, "p1", got.ID)

	_, _, err = handler(asRole(user.RoleWorker), &sdkmcp.CallToolRequest{}, getProjectParams{ID: "p1"})
	require.ErrorIs(t, err, project.ErrProjectNotFound)

	_, _, err = handler(asRole(user.RoleClient), &sdkmcp.CallToolRequest{}, getProjectParams{ID: "p1"})
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestAdminOnlyTools(t *testing.T) {
	quotes := &fakeQuoteService{project: &project.Project{ID: "p1"}}
	users := &fakeUserService{}
	projects := &fakeProjectService{}

	_, _, err := listQuotesHandler(quotes)(asRole(user.RoleWorker), &sdkmcp.CallToolRequest{}, listQuotesParams{})
	require.ErrorContains(t, err, "forbidden")

	_, _, err = approveQuoteHandler(quotes)(asRole(user.RoleClient), &sdkmcp.CallToolRequest{}, approveQuoteParams{ID: "q1"})
	require.ErrorContains(t, err, "forbidden")

	_, _, err = workerUtilizationHandler(users, projects)(asRole(user.RoleWorker), &sdkmcp.CallToolRequest{}, workerUtilizationParams{})
	require.ErrorContains(t, err, "forbidden")

	_, got, err := approveQuoteHandler(quotes)(asRole(user.RoleAdmin), &sdkmcp.CallToolRequest{}, approveQuoteParams{ID: "q1"})
	require.NoError(t, err)
	require.Equal(t, "p1", got.ID)
	require.Equal(t, "q1", quotes.lastID)
}

func TestLogHoursCarriesActor(t *testing.T) {
	svc := &fakeProjectService{project: &project.Project{ID: "p1", HoursUsed: 1.25}}
	handler := logHoursHandler(svc)

	_, got, err := handler(asRole(user.RoleWorker), &sdkmcp.CallToolRequest{}, logHoursParams{ProjectID: "p1", Minutes: 75})
	require.NoError(t, err)
	require.InDelta(t, 1.25, got.HoursUsed, 1e-9)
	require.Equal(t, "p1", svc.lastID)
	require.Equal(t, 75, svc.lastMin)
	require.Equal(t, "u-Worker", svc.lastActor.ID)
	require.Equal(t, "Test Worker", svc.lastActor.Name)

	_, _, err = handler(asRole(user.RoleClient), &sdkmcp.CallToolRequest{}, logHoursParams{ProjectID: "p1", Minutes: 30})
	require.ErrorContains(t, err, "forbidden")
}

func TestWorkerUtilization(t *testing.T) {
	users := &fakeUserService{workers: []user.User{
		{ID: "w1", Name: "Pat", Role: user.RoleWorker, WeeklyCapacity: 40},
	}}
	projects := &fakeProjectService{projects: []project.Project{
		{ID: "p1", Status: project.StatusInProgress, AssignedTo: "w1", TimeAllowance: 10},
	}}

	_, out, err := workerUtilizationHandler(users, projects)(asRole(user.RoleAdmin), &sdkmcp.CallToolRequest{}, workerUtilizationParams{})
	require.NoError(t, err)
	require.Len(t, out.Workers, 1)
	require.InDelta(t, 10.0, out.Workers[0].Load, 1e-9)
	require.InDelta(t, 25.0, out.Workers[0].Percent, 1e-9)
}

func TestTimelineTool(t *testing.T) {
	deadline := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	projects := &fakeProjectService{projects: []project.Project{{
		ID:            "p1",
		Status:        project.StatusInProgress,
		TimeAllowance: 16,
		Deadline:      &deadline,
	}}}
	handler := timelineHandler(projects)

	_, out, err := handler(asRole(user.RoleAdmin), &sdkmcp.CallToolRequest{}, timelineParams{})
	require.NoError(t, err)
	require.Len(t, out.Bars, 1)
	require.Equal(t, "p1", out.Bars[0].ProjectID)

	_, _, err = handler(asRole(user.RoleClient), &sdkmcp.CallToolRequest{}, timelineParams{})
	require.ErrorContains(t, err, "forbidden")
}

// TestServerRejectsUnauthenticatedCalls drives the full server over
// in-memory transports: the handshake passes the auth middleware, tool
// calls without a bearer token do not.
func TestServerRejectsUnauthenticatedCalls(t *testing.T) {
	server := NewServer(Config{
		Services: Services{
			Quotes:   &fakeQuoteService{},
			Projects: &fakeProjectService{},
			Users:    &fakeUserService{},
		},
		Verifier: staticVerifier{token: "secret", id: &identity.Identity{ID: "u1", Role: user.RoleAdmin}},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer clientSession.Close()

	_, err = clientSession.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "list_projects",
		Arguments: map[string]any{},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unauthorized")
}
