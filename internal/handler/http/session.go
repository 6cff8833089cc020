package http

import (
	"log/slog"
	"net/http"

	"github.com/A3Manav/jewellery-wishlist-service/internal/service"
	"github.com/A3Manav/jewellery-wishlist-service/pkg/httputil"
	"github.com/A3Manav/jewellery-wishlist-service/pkg/validator"
)

// Handler exposes the wishlist session API.
type Handler struct {
	reconciler *service.Reconciler
	logger     *slog.Logger
}

// NewHandler creates the HTTP handler.
func NewHandler(reconciler *service.Reconciler, logger *slog.Logger) *Handler {
	return &Handler{reconciler: reconciler, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// InitializeSession reconciles and returns the session's current state.
func (h *Handler) InitializeSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.reconciler.InitializeSession(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// Login authenticates the session and merges wishlists.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.reconciler.Login(r.Context(), sessionID(r), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// Logout clears the session back to anonymous.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	view, err := h.reconciler.Logout(r.Context(), sessionID(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// Register creates a storefront account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.reconciler.Register(r.Context(), sessionID(r), req.Name, req.Email, req.Password); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{
		Data: map[string]string{"message": "account created, check your email to verify it"},
	})
}
