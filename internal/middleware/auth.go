package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"loopr-backend/internal/logging"
	"loopr-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type contextKey string

const userKey contextKey = "user"

// TokenParser verifies a bearer token and returns the user id it carries.
type TokenParser interface {
	Parse(token string) (string, error)
}

type UserLookup interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
}

// Authenticate requires a valid "Authorization: Bearer <jwt>" header
// belonging to an active user, and stores that user in the context.
func Authenticate(tokens TokenParser, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(tokenString) == "" {
				writeError(w, http.StatusUnauthorized, "Access token required")
				return
			}

			userIDHex, err := tokens.Parse(strings.TrimSpace(tokenString))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			userID, err := bson.ObjectIDFromHex(userIDHex)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				logging.FromContext(r.Context()).Error("authenticate: load user", "error", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if user == nil || !user.IsActive {
				writeError(w, http.StatusUnauthorized, "User not found or inactive")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("user_id", userIDHex))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated users whose role is not listed.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r.Context())
			if user == nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !slices.Contains(roles, user.Role) {
				writeError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CurrentUser returns the user stored by Authenticate, or nil.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// WithUser is used by tests and internal callers to seed the context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
