package core

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"authgate/internal/obs"
)

type Server struct {
	authService *AuthService
	config      *Config
}

func NewServer(authService *AuthService, config *Config) *Server {
	return &Server{
		authService: authService,
		config:      config,
	}
}

// Routes wires the auth endpoints onto a fresh mux. Outer concerns
// (instrumentation, request logging, CORS, metrics endpoint) are layered
// on by the caller.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/google", s.HandleGoogleLogin)
	mux.Handle("/auth/me", s.RequireAuth(http.HandlerFunc(s.HandleMe)))
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}

type loginRequest struct {
	Code string `json:"code"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type userPayload struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// HandleGoogleLogin exchanges an authorization code carried in the JSON
// body for a session token. Exchange details are logged internally but
// never echoed to the caller.
func (s *Server) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !validateMethod(w, r, http.MethodPost) {
		return
	}

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.authService.Login(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, ErrDirectoryUnavailable) {
			obs.ObserveLogin("directory_unavailable")
			log.Error().Err(err).Msg("user directory unreachable during login")
			respondError(w, http.StatusServiceUnavailable, "Service unavailable")
			return
		}
		obs.ObserveLogin("failure")
		log.Warn().Err(err).Msg("google login rejected")
		respondError(w, http.StatusUnauthorized, "Authorization failed")
		return
	}

	obs.ObserveLogin("success")
	log.Info().Str("user_id", result.User.ID.String()).Msg("login succeeded")

	respondJSON(w, http.StatusOK, loginResponse{
		Token: result.Token,
		User: userPayload{
			ID:      result.User.ID.String(),
			Email:   result.User.Email,
			Name:    result.User.Name,
			Picture: result.User.Picture,
		},
	})
}

// HandleMe is the protected resource probe. RequireAuth has already
// resolved the identity by the time this runs.
func (s *Server) HandleMe(w http.ResponseWriter, r *http.Request) {
	if !validateMethod(w, r, http.MethodGet) {
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"user_id": userID.String(),
	})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Helper functions

func validateMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
