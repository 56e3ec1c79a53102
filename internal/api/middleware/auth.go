package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/brawlhub/elo-ladder/internal/service"
)

type contextKey string

const (
	PlayerIDKey contextKey = "playerID"
	IsAdminKey  contextKey = "isAdmin"
)

// Auth validates the bearer token and stores the caller's identity in
// the request context.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := authService.ValidateToken(parts[1])
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			playerIDStr, ok := (*claims)["sub"].(string)
			if !ok {
				http.Error(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}

			playerID, err := uuid.Parse(playerIDStr)
			if err != nil {
				http.Error(w, "Invalid player ID", http.StatusUnauthorized)
				return
			}

			isAdmin, _ := (*claims)["admin"].(bool)

			ctx := context.WithValue(r.Context(), PlayerIDKey, playerID)
			ctx = context.WithValue(ctx, IsAdminKey, isAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly rejects requests whose token lacks the admin claim. Must
// run after Auth.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAdmin, ok := r.Context().Value(IsAdminKey).(bool); !ok || !isAdmin {
			http.Error(w, "Admin privileges required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetPlayerID(ctx context.Context) (uuid.UUID, bool) {
	playerID, ok := ctx.Value(PlayerIDKey).(uuid.UUID)
	return playerID, ok
}
