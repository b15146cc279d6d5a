package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loopr-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type fakeTokens map[string]string

func (f fakeTokens) Parse(token string) (string, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return "", errors.New("bad token")
}

type fakeUsers map[bson.ObjectID]*models.User

func (f fakeUsers) FindByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	return f[id], nil
}

func okHandler(t *testing.T, want *models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		require.NotNil(t, user)
		if want != nil {
			assert.Equal(t, want.ID, user.ID)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	active := &models.User{ID: bson.NewObjectID(), Role: models.RoleAnalyst, IsActive: true}
	inactive := &models.User{ID: bson.NewObjectID(), IsActive: false}
	tokens := fakeTokens{
		"good":     active.ID.Hex(),
		"inactive": inactive.ID.Hex(),
		"ghost":    bson.NewObjectID().Hex(),
		"notoid":   "user_001",
	}
	users := fakeUsers{active.ID: active, inactive.ID: inactive}
	h := Authenticate(tokens, users)(okHandler(t, active))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"non object id subject", "Bearer notoid", http.StatusUnauthorized},
		{"unknown user", "Bearer ghost", http.StatusUnauthorized},
		{"inactive user", "Bearer inactive", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, rr.Body.String(), `"success":false`)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(models.RoleAdmin)(okHandler(t, nil))

	serve := func(user *models.User) int {
		req := httptest.NewRequest(http.MethodDelete, "/api/transactions/1", nil)
		if user != nil {
			req = req.WithContext(WithUser(req.Context(), user))
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(nil))
	assert.Equal(t, http.StatusForbidden, serve(&models.User{Role: models.RoleViewer}))
	assert.Equal(t, http.StatusNoContent, serve(&models.User{Role: models.RoleAdmin}))
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2)
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("1.1.1.1")
	assert.True(t, ok)
	ok, _ = rl.Allow("1.1.1.1")
	assert.True(t, ok)

	now = now.Add(20 * time.Second)
	ok, retry := rl.Allow("1.1.1.1")
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, retry)

	ok, _ = rl.Allow("2.2.2.2")
	assert.True(t, ok, "other clients are unaffected")

	now = now.Add(41 * time.Second)
	ok, _ = rl.Allow("1.1.1.1")
	assert.True(t, ok, "new window")
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1)
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.Allow("1.1.1.1")

	now = now.Add(3 * time.Minute)
	rl.Allow("2.2.2.2")
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.clients, "1.1.1.1")
	assert.Contains(t, rl.clients, "2.2.2.2")
}

func TestRateLimiterHandler(t *testing.T) {
	rl := NewRateLimiter(1)
	defer rl.Stop()
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}
