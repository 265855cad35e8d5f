package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erudithe/portal/internal/api"
	"github.com/erudithe/portal/internal/domain/capacity"
	"github.com/erudithe/portal/internal/domain/project"
	"github.com/erudithe/portal/internal/domain/quote"
	"github.com/erudithe/portal/internal/domain/user"
	"github.com/erudithe/portal/internal/identity"
	"github.com/erudithe/portal/internal/sqlite"
	"github.com/erudithe/portal/internal/storage"
	"github.com/erudithe/portal/internal/watch"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	server      *httptest.Server
	adminToken  string
	workerToken string
	clientToken string
	workerID    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := sqlite.NewTestDB(t)
	hub := watch.NewHub()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	quoteRepo := sqlite.NewQuoteRepository(db, hub)
	projectRepo := sqlite.NewProjectRepository(db, hub)
	userRepo := sqlite.NewUserRepository(db, hub)

	quoteSvc := quote.NewService(quoteRepo, nil, logger)
	projectSvc := project.NewService(projectRepo, userRepo, logger)
	userSvc := user.NewService(userRepo, logger)

	files, err := storage.NewFileManager(t.TempDir(), 0)
	require.NoError(t, err)

	tokens, err := identity.NewManager("0123456789abcdef0123456789abcdef", time.Hour)
	require.NoError(t, err)

	srv := api.NewServer(quoteSvc, projectSvc, userSvc, files, tokens, hub, logger)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	env := &testEnv{server: ts}

	ctx := context.Background()
	seed := func(id, email, name string, role user.Role) string {
		require.NoError(t, userRepo.Create(ctx, &user.User{
			ID: id, Email: email, Name: name, Role: role, WeeklyCapacity: 40, CreatedAt: time.Now(),
		}))
		u, err := userRepo.Get(ctx, id)
		require.NoError(t, err)
		token, err := tokens.Token(u)
		require.NoError(t, err)
		return token
	}
	env.adminToken = seed("u-admin", "admin@erudithe.com", "Alex Admin", user.RoleAdmin)
	env.workerID = "u-worker"
	env.workerToken = seed("u-worker", "pat@erudithe.com", "Pat Worker", user.RoleWorker)
	env.clientToken = seed("u-client", "dana@example.com", "Dana Reyes", user.RoleClient)

	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// submitQuote posts a multipart submission with one source file.
func (e *testEnv) submitQuote(t *testing.T, projectType string, pages int) quote.Quote {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	require.NoError(t, mw.WriteField("project_type", projectType))
	require.NoError(t, mw.WriteField("page_count", fmt.Sprint(pages)))
	require.NoError(t, mw.WriteField("client_name", "Dana Reyes"))
	require.NoError(t, mw.WriteField("client_email", "dana@example.com"))
	require.NoError(t, mw.WriteField("client_company", "Acme Training"))
	fw, err := mw.CreateFormFile("files", "handbook.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("pdf bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/api/quotes", buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[quote.Quote](t, resp)
}

func (e *testEnv) approveQuote(t *testing.T, quoteID string) project.Project {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/quotes/"+quoteID+"/approve", e.adminToken, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[project.Project](t, resp)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSubmitQuote(t *testing.T) {
	env := newTestEnv(t)

	q := env.submitQuote(t, "Simple Conversion", 20)
	require.Equal(t, quote.StatusPending, q.Status)
	require.Equal(t, 300.0, q.TotalCost)
	require.Equal(t, 2, q.TimeAllowance)
	require.Len(t, q.SourceFiles, 1)
	require.Equal(t, "handbook.pdf", q.SourceFiles[0].Name)

	// The stored file is served back under its generated URL
	resp, err := http.Get(env.server.URL + q.SourceFiles[0].URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "pdf bytes", string(data))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "Admin@Erudithe.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]any](t, resp)
	require.NotEmpty(t, body["token"])

	resp = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@example.com"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestQuoteDecisions(t *testing.T) {
	env := newTestEnv(t)
	q := env.submitQuote(t, "Creative Redesign", 12)

	// Only admins may decide
	resp := env.do(t, http.MethodPost, "/api/quotes/"+q.ID+"/approve", env.workerToken, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	p := env.approveQuote(t, q.ID)
	require.Equal(t, q.ID, p.QuoteID)
	require.Equal(t, project.StatusPendingAssignment, p.Status)

	// A decided quote can't be decided again
	resp = env.do(t, http.MethodPost, "/api/quotes/"+q.ID+"/reject", env.adminToken, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestListQuotesRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.submitQuote(t, "Simple Conversion", 10)

	resp := env.do(t, http.MethodGet, "/api/quotes", env.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	quotes := decodeBody[[]quote.Quote](t, resp)
	require.Len(t, quotes, 1)

	resp = env.do(t, http.MethodGet, "/api/quotes", env.clientToken, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/quotes", "", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProjectLifecycle(t *testing.T) {
	env := newTestEnv(t)
	q := env.submitQuote(t, "Simple Conversion", 20)
	p := env.approveQuote(t, q.ID)

	// Assign
	resp := env.do(t, http.MethodPost, "/api/projects/"+p.ID+"/assign", env.adminToken,
		map[string]string{"worker_id": env.workerID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assigned := decodeBody[project.Project](t, resp)
	require.Equal(t, project.StatusInProgress, assigned.Status)
	require.NotNil(t, assigned.Deadline)
	require.Len(t, assigned.Log, 1)

	// Reassignment is refused
	resp = env.do(t, http.MethodPost, "/api/projects/"+p.ID+"/assign", env.adminToken,
		map[string]string{"worker_id": env.workerID})
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Worker logs hours
	resp = env.do(t, http.MethodPost, "/api/projects/"+p.ID+"/hours", env.workerToken,
		map[string]int{"minutes": 75})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[project.Project](t, resp)
	require.InDelta(t, 1.25, updated.HoursUsed, 1e-9)

	// Invalid minutes
	resp = env.do(t, http.MethodPost, "/api/projects/"+p.ID+"/hours", env.workerToken,
		map[string]int{"minutes": 0})
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Clients may not log hours
	resp = env.do(t, http.MethodPost, "/api/projects/"+p.ID+"/hours", env.clientToken,
		map[string]int{"minutes": 30})
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Status moves through the table
	resp = env.do(t, http.MethodPost, "/api/projects/"+p.ID+"/status", env.workerToken,
		map[string]string{"status": "Ready for Review"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reviewed := decodeBody[project.Project](t, resp)
	require.Equal(t, project.StatusReadyForReview, reviewed.Status)

	// Off-table transition is refused
	resp = env.do(t, http.MethodPost, "/api/projects/"+p.ID+"/status", env.adminToken,
		map[string]string{"status": "Pending Assignment"})
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Comment lands on the log
	resp = env.do(t, http.MethodPost, "/api/projects/"+p.ID+"/comments", env.clientToken,
		map[string]string{"content": "Looking forward to it."})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	commented := decodeBody[project.Project](t, resp)
	last := commented.Log[len(commented.Log)-1]
	require.Equal(t, project.EntryComment, last.Type)
	require.Equal(t, "Dana Reyes", last.Author)
}

func TestProjectListingIsRoleScoped(t *testing.T) {
	env := newTestEnv(t)
	q1 := env.submitQuote(t, "Simple Conversion", 10)
	q2 := env.submitQuote(t, "Simple Conversion", 10)
	p1 := env.approveQuote(t, q1.ID)
	p2 := env.approveQuote(t, q2.ID)

	resp := env.do(t, http.MethodPost, "/api/projects/"+p1.ID+"/assign", env.adminToken,
		map[string]string{"worker_id": env.workerID})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Admin sees both
	resp = env.do(t, http.MethodGet, "/api/projects", env.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decodeBody[[]project.Project](t, resp), 2)

	// The "Pending" shorthand filters to unassigned work
	resp = env.do(t, http.MethodGet, "/api/projects?status=Pending", env.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pending := decodeBody[[]project.Project](t, resp)
	require.Len(t, pending, 1)
	require.Equal(t, project.StatusPendingAssignment, pending[0].Status)

	// Worker sees only their assignment
	resp = env.do(t, http.MethodGet, "/api/projects", env.workerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mine := decodeBody[[]project.Project](t, resp)
	require.Len(t, mine, 1)
	require.Equal(t, p1.ID, mine[0].ID)

	// Client sees both of their submissions
	resp = env.do(t, http.MethodGet, "/api/projects", env.clientToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decodeBody[[]project.Project](t, resp), 2)

	// Worker can fetch their own project but not someone else's
	resp = env.do(t, http.MethodGet, "/api/projects/"+p1.ID, env.workerToken, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/projects/"+p2.ID, env.workerToken, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWorkerManagement(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/workers", env.adminToken,
		map[string]any{"name": "Sam New", "email": "sam@erudithe.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[user.User](t, resp)
	require.Equal(t, user.RoleWorker, created.Role)
	require.Equal(t, 40.0, created.WeeklyCapacity)

	resp = env.do(t, http.MethodPost, "/api/workers", env.adminToken,
		map[string]any{"name": "Sam Dup", "email": "sam@erudithe.com"})
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/workers", env.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	workers := decodeBody[[]user.User](t, resp)
	require.Len(t, workers, 2)

	resp = env.do(t, http.MethodPost, "/api/workers", env.workerToken,
		map[string]any{"name": "Nope", "email": "nope@erudithe.com"})
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDashboardAndTimeline(t *testing.T) {
	env := newTestEnv(t)
	q := env.submitQuote(t, "Simple Conversion", 20)
	p := env.approveQuote(t, q.ID)
	resp := env.do(t, http.MethodPost, "/api/projects/"+p.ID+"/assign", env.adminToken,
		map[string]string{"worker_id": env.workerID})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/dashboard/stats", env.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decodeBody[capacity.Stats](t, resp)
	require.Equal(t, 1, stats.TotalProjects)
	require.Equal(t, 20.0, stats.AvgPages)

	resp = env.do(t, http.MethodGet, "/api/dashboard/utilization", env.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	loads := decodeBody[[]capacity.WorkerLoad](t, resp)
	require.Len(t, loads, 1)
	require.Equal(t, 2.0, loads[0].Load)

	resp = env.do(t, http.MethodGet, "/api/timeline", env.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tl map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tl))
	resp.Body.Close()
	require.Contains(t, tl, "bars")

	resp = env.do(t, http.MethodGet, "/api/dashboard/stats", env.clientToken, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCompletedFileUpload(t *testing.T) {
	env := newTestEnv(t)
	q := env.submitQuote(t, "Simple Conversion", 10)
	p := env.approveQuote(t, q.ID)
	resp := env.do(t, http.MethodPost, "/api/projects/"+p.ID+"/assign", env.adminToken,
		map[string]string{"worker_id": env.workerID})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile("file", "final.pptx")
	require.NoError(t, err)
	_, err = fw.Write([]byte("slides"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/projects/"+p.ID+"/files", buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.workerToken)

	httpResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, httpResp.StatusCode)
	updated := decodeBody[project.Project](t, httpResp)

	require.Len(t, updated.CompletedFiles, 1)
	require.Equal(t, "final.pptx", updated.CompletedFiles[0].Name)
	last := updated.Log[len(updated.Log)-1]
	require.Equal(t, project.EntryFileUpload, last.Type)
	require.Equal(t, "Uploaded file: final.pptx", last.Content)
}

func TestEventsStream(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.adminToken)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req = req.WithContext(ctx)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// A quote submission produces a change event on the stream
	env.submitQuote(t, "Simple Conversion", 5)

	reader := make(chan string, 1)
	go func() {
		buf := make([]byte, 1024)
		n, _ := resp.Body.Read(buf)
		reader <- string(buf[:n])
	}()

	select {
	case chunk := <-reader:
		require.Contains(t, chunk, "event: changed")
		require.Contains(t, chunk, "quotes")
	case <-time.After(3 * time.Second):
		t.Fatal("no event received on stream")
	}
}
