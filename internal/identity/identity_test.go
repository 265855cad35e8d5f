package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erudithe/portal/internal/domain/user"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testUser() *user.User {
	return &user.User{
		ID:    "u1",
		Name:  "Alex Admin",
		Email: "alex@erudithe.com",
		Role:  user.RoleAdmin,
	}
}

func TestManager_TokenRoundTrip(t *testing.T) {
	m, err := NewManager(testSecret, time.Hour)
	require.NoError(t, err)

	token, err := m.Token(testUser())
	require.NoError(t, err)

	id, err := m.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "u1", id.ID)
	require.Equal(t, "Alex Admin", id.Name)
	require.Equal(t, "alex@erudithe.com", id.Email)
	require.Equal(t, user.RoleAdmin, id.Role)
}

func TestManager_RejectsBadTokens(t *testing.T) {
	m, err := NewManager(testSecret, time.Hour)
	require.NoError(t, err)

	_, err = m.Verify("")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)

	// Token signed under a different secret
	other, err := NewManager("another-secret-another-secret-ab", time.Hour)
	require.NoError(t, err)
	token, err := other.Token(testUser())
	require.NoError(t, err)
	_, err = m.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_RejectsExpiredToken(t *testing.T) {
	m, err := NewManager(testSecret, time.Hour)
	require.NoError(t, err)
	m.ttl = -time.Minute

	token, err := m.Token(testUser())
	require.NoError(t, err)

	_, err = m.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager("", time.Hour)
	require.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	m, err := NewManager(testSecret, time.Hour)
	require.NoError(t, err)
	token, err := m.Token(testUser())
	require.NoError(t, err)

	var seen *Identity
	handler := Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		require.Equal(t, "u1", seen.ID)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guard := RequireRole(user.RoleAdmin)(ok)

	t.Run("allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithIdentity(req.Context(), &Identity{ID: "u1", Role: user.RoleAdmin}))
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithIdentity(req.Context(), &Identity{ID: "u2", Role: user.RoleClient}))
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
