package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/martecommerce/backend/internal/domain"
	"github.com/martecommerce/backend/internal/pkg/httputil"
	"github.com/martecommerce/backend/internal/pkg/metrics"
)

// TxBeginner starts transactions for request-scoped work.
type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// Handler handles HTTP requests for the identity module.
type Handler struct {
	service   *Service
	db        TxBeginner
	validator *validator.Validate
	devMode   bool
}

// NewHandler creates a new identity handler. In dev mode error responses
// carry the failure detail; in production they stay generic.
func NewHandler(service *Service, db TxBeginner, devMode bool) *Handler {
	return &Handler{
		service:   service,
		db:        db,
		validator: validator.New(),
		devMode:   devMode,
	}
}

// RegisterRoutes registers identity routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
	})
	r.Get("/users/{id}", h.GetUser)
}

// SignupRequest represents the signup request body.
type SignupRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

// SignupResponse is the success envelope for signup.
type SignupResponse struct {
	Status  int          `json:"status"`
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// UserResponse is the success envelope for user lookups.
type UserResponse struct {
	Status  int          `json:"status"`
	Success bool         `json:"success"`
	User    *domain.User `json:"user"`
}

// Signup handles POST /auth/signup. The handler owns the transaction:
// exactly one of commit or rollback runs per request, whatever the outcome.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	ctx := r.Context()

	tx, err := h.db.BeginTx(ctx)
	if err != nil {
		httputil.HandleError(ctx, w, fmt.Errorf("begin transaction: %w", err), h.devMode)
		return
	}
	// Rollback after a successful commit is a no-op, so the transaction is
	// closed on every exit path, panics included.
	defer func() { _ = tx.Rollback(ctx) }()

	user, err := h.service.CreateUser(ctx, tx, SignupInput(req))
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			metrics.SignupsTotal.WithLabelValues(metrics.SignupOutcomeConflict).Inc()
		} else {
			metrics.SignupsTotal.WithLabelValues(metrics.SignupOutcomeError).Inc()
		}
		httputil.HandleError(ctx, w, err, h.devMode)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		metrics.SignupsTotal.WithLabelValues(metrics.SignupOutcomeError).Inc()
		httputil.HandleError(ctx, w, fmt.Errorf("commit transaction: %w", err), h.devMode)
		return
	}

	metrics.SignupsTotal.WithLabelValues(metrics.SignupOutcomeCreated).Inc()
	httputil.JSON(w, http.StatusCreated, SignupResponse{
		Status:  http.StatusCreated,
		Success: true,
		Message: "Signup successful",
		User:    user,
	})
}

// GetUser handles GET /users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, h.devMode)
		return
	}

	httputil.JSON(w, http.StatusOK, UserResponse{
		Status:  http.StatusOK,
		Success: true,
		User:    user,
	})
}
