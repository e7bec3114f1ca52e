package core

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"authgate/internal/obs"
)

// unexported, collision-proof context key
type userIDContextKeyType struct{}

var userIDKey = userIDContextKeyType{}

// UserIDFromContext extracts the authenticated local user id attached by
// RequireAuth. Downstream handlers get the id only, never the raw token.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// RequireAuth gates protected handlers. Rejections never propagate as
// panics or errors past this boundary; every failure path writes a 401,
// except a directory outage which writes a 503 so callers can tell an
// infrastructure problem from bad credentials.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r)
		if err != nil {
			obs.ObserveTokenCheck("missing_auth")
			respondError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}

		userID, err := s.authService.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrDirectoryUnavailable) {
				obs.ObserveTokenCheck("directory_unavailable")
				log.Error().Err(err).Msg("user directory unreachable during token check")
				respondError(w, http.StatusServiceUnavailable, "Service unavailable")
				return
			}
			obs.ObserveTokenCheck("rejected")
			log.Debug().Err(err).Msg("session token rejected")
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		obs.ObserveTokenCheck("ok")
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken accepts exactly "Bearer <token>"; anything else is
// ErrMissingAuth.
func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuth
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrMissingAuth
	}

	return parts[1], nil
}
