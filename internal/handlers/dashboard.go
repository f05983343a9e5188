package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecocycle/connect/internal/services"
	"github.com/ecocycle/connect/internal/store"
)

// DashboardHandler serves the role-dependent dashboard snapshot.
type DashboardHandler struct {
	users     *services.UserService
	dashboard *services.DashboardService
	logger    *slog.Logger
}

func NewDashboardHandler(users *services.UserService, dashboard *services.DashboardService, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{users: users, dashboard: dashboard, logger: logger}
}

// DashboardRouter registers dashboard routes behind auth.
func DashboardRouter(r chi.Router, handler *DashboardHandler, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Get("/", handler.Get)
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	account, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get dashboard data")
		return
	}

	dash, err := h.dashboard.Build(r.Context(), account)
	if err != nil {
		if errors.Is(err, services.ErrUnknownRole) {
			writeError(w, http.StatusBadRequest, "Invalid user role")
			return
		}
		h.logger.Error("dashboard failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get dashboard data")
		return
	}

	writeJSON(w, http.StatusOK, dash)
}
