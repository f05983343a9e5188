package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecocycle/connect/internal/services"
	"github.com/ecocycle/connect/internal/store"
	"github.com/ecocycle/connect/types"
)

const (
	defaultTokenTTL = 24 * time.Hour
	defaultResetTTL = time.Hour
)

// AuthConfig controls token lifetimes and where account events go.
type AuthConfig struct {
	TokenTTL time.Duration
	ResetTTL time.Duration
	Events   *services.AccountEvents
}

// AuthHandler provides JWT authentication endpoints.
type AuthHandler struct {
	userService *services.UserService
	tokens      *Tokens
	tokenTTL    time.Duration
	resetTTL    time.Duration
	events      *services.AccountEvents
	logger      *slog.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, tokens *Tokens, cfg AuthConfig, logger *slog.Logger) *AuthHandler {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = defaultResetTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
		tokenTTL:    cfg.TokenTTL,
		resetTTL:    cfg.ResetTTL,
		events:      cfg.Events,
		logger:      logger,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Post("/forgot-password", handler.ForgotPassword)
	r.Post("/reset-password", handler.ResetPassword)
	r.With(RequireAuth(handler.tokens)).Get("/me", handler.Me)
}

// RequireAuth enforces an access token and injects its subject into context.
func RequireAuth(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Missing authorization token")
				return
			}

			subject, err := tokens.subject(tokenString, purposeAccess)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), contextSubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Register creates a new account and returns a JWT.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterData
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.userService.NormalizeRegistration(&req); err != nil {
		writeInputError(w, err, "Registration failed")
		return
	}

	if _, err := h.userService.GetByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	account, err := h.userService.Create(r.Context(), types.Account{
		Identity: types.Identity{
			Email:       req.Email,
			Role:        req.Role,
			Name:        req.Name,
			CompanyName: req.CompanyName,
			GSTNumber:   req.GSTNumber,
			Location:    req.Location,
		},
		PasswordHash: string(hashed),
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusBadRequest, "Email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	token, err := h.tokens.issue(account.ID, purposeAccess, h.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	h.logger.Info("account registered", "user_id", account.ID, "role", account.Role)
	h.events.Registered(r.Context(), account.Identity)
	writeJSON(w, http.StatusCreated, AuthResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    account.Identity,
	})
}

// Login verifies credentials and returns a JWT.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	account, err := h.userService.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !account.IsActive {
		writeError(w, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	token, err := h.tokens.issue(account.ID, purposeAccess, h.tokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    account.Identity,
	})
}

// Me returns the current authenticated account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	account, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get user data")
		return
	}

	writeJSON(w, http.StatusOK, account.Identity)
}

// ForgotPassword issues a short-lived reset token for a known e-mail. The
// response does not reveal whether the account exists.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	account, err := h.userService.GetByEmail(r.Context(), req.Email)
	switch {
	case err == nil:
		token, err := h.tokens.issue(account.ID, purposeReset, h.resetTTL)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to process request")
			return
		}
		h.logger.Info("password reset requested", "email", account.Email, "reset_token", token)
		h.events.ResetRequested(r.Context(), account.Identity, token, h.tokens.clock.Now().Add(h.resetTTL))
	case !errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusInternalServerError, "Failed to process request")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "If the email exists, a reset link has been sent"})
}

// ResetPassword replaces the password of the account named by a reset token.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Token and password are required")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	userID, err := h.tokens.subject(req.Token, purposeReset)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}
	if err := h.userService.UpdatePassword(r.Context(), userID, string(hashed)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Invalid or expired reset token")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	h.logger.Info("password reset", "user_id", userID)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Password reset successful"})
}

func writeInputError(w http.ResponseWriter, err error, fallback string) {
	var inputErr *services.InputError
	if errors.As(err, &inputErr) {
		writeError(w, http.StatusBadRequest, inputErr.Message)
		return
	}
	writeError(w, http.StatusInternalServerError, fallback)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Message string         `json:"message,omitempty"`
	Token   string         `json:"token"`
	User    types.Identity `json:"user"`
}
