// Package handlers exposes the credential API consumed by the dashboard's
// route layer. Every /api route requires a bearer JWT resolving the user the
// operation acts for.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"token-vault/internal/auth"
	"token-vault/internal/common/errors"
	"token-vault/internal/credentials"
	"token-vault/internal/middleware"
)

// TokenManager is the slice of the lifecycle manager the handlers use.
type TokenManager interface {
	GetValidToken(ctx context.Context, userID string, platform credentials.Platform) (string, bool)
	SaveConfig(ctx context.Context, userID string, platform credentials.Platform, input *credentials.SaveInput) error
	RemoveConfig(ctx context.Context, userID string, platform credentials.Platform) error
	GetConfigInfo(ctx context.Context, userID string, platform credentials.Platform) (*credentials.ConfigInfo, error)
	ListConfigInfo(ctx context.Context, userID string) ([]*credentials.ConfigInfo, error)
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Health() error
}

type Handlers struct {
	manager TokenManager
	store   HealthChecker
	redis   HealthChecker
}

// New builds the handler set. redis may be nil when no Redis is configured.
func New(manager TokenManager, store HealthChecker, redis HealthChecker) *Handlers {
	return &Handlers{
		manager: manager,
		store:   store,
		redis:   redis,
	}
}

// NewRouter wires the routes. The /api subtree is authenticated; request
// logging runs inside auth so the user id is on the context.
func NewRouter(h *Handlers, a *auth.Auth) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/health", middleware.Logging(http.HandlerFunc(h.Health))).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(mux.MiddlewareFunc(a.RequireAuth))
	api.Use(middleware.Logging)

	api.HandleFunc("/platforms", h.ListPlatforms).Methods(http.MethodGet)
	api.HandleFunc("/platforms/{platform}", h.SaveConfig).Methods(http.MethodPost)
	api.HandleFunc("/platforms/{platform}", h.RemoveConfig).Methods(http.MethodDelete)
	api.HandleFunc("/platforms/{platform}/status", h.GetStatus).Methods(http.MethodGet)
	api.HandleFunc("/platforms/{platform}/token", h.GetToken).Methods(http.MethodGet)

	return r
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetType(err) {
	case errors.ErrTypeValidation:
		status = http.StatusBadRequest
	case errors.ErrTypeNotFound:
		status = http.StatusNotFound
	case errors.ErrTypeAuth:
		status = http.StatusUnauthorized
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// requestPlatform resolves the {platform} path variable. A parse failure
// writes the 400 itself and reports ok=false.
func requestPlatform(w http.ResponseWriter, r *http.Request) (credentials.Platform, bool) {
	platform, err := credentials.ParsePlatform(mux.Vars(r)["platform"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return "", false
	}
	return platform, true
}

func requestUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return "", false
	}
	return userID, true
}
