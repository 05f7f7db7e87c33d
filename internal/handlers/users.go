package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kimotaku1/Ecommerce-forever/internal/platform/httpx"
	"github.com/kimotaku1/Ecommerce-forever/internal/services"
)

const maxUserBodySize = 16 * 1024

// UserHandlers exposes registration and login endpoints.
type UserHandlers struct {
	accounts services.AccountService
}

// NewUserHandlers constructs handlers backed by the account service.
func NewUserHandlers(accounts services.AccountService) *UserHandlers {
	return &UserHandlers{accounts: accounts}
}

// Routes wires the /users endpoints onto the provided router.
func (h *UserHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/admin", h.adminLogin)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandlers) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.accounts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("account_service_unavailable", "account service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req registerRequest
	if err := decodeJSONBody(r, maxUserBodySize, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	result, err := h.accounts.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		h.writeAccountError(w, r, err)
		return
	}

	httpx.WriteSuccess(ctx, w, http.StatusCreated, authResultFields(result))
}

func (h *UserHandlers) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.accounts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("account_service_unavailable", "account service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req loginRequest
	if err := decodeJSONBody(r, maxUserBodySize, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	result, err := h.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.writeAccountError(w, r, err)
		return
	}

	httpx.WriteSuccess(ctx, w, http.StatusOK, authResultFields(result))
}

func (h *UserHandlers) adminLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.accounts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("account_service_unavailable", "account service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req loginRequest
	if err := decodeJSONBody(r, maxUserBodySize, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	result, err := h.accounts.AdminLogin(ctx, req.Email, req.Password)
	if err != nil {
		h.writeAccountError(w, r, err)
		return
	}

	httpx.WriteSuccess(ctx, w, http.StatusOK, map[string]any{"token": result.Token})
}

func authResultFields(result services.AuthResult) map[string]any {
	fields := map[string]any{
		"token":   result.Token,
		"user_id": result.AccountID,
	}
	if result.Name != "" {
		fields["name"] = result.Name
	}
	if result.Email != "" {
		fields["email"] = result.Email
	}
	return fields
}

func (h *UserHandlers) writeAccountError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, services.ErrAccountInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("validation_error", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrEmailTaken):
		httpx.WriteError(ctx, w, httpx.NewError("email_taken", "an account with this email already exists", http.StatusConflict))
	case errors.Is(err, services.ErrInvalidCredentials):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_credentials", "invalid email or password", http.StatusUnauthorized))
	case errors.Is(err, services.ErrAccountNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("account_not_found", "account not found", http.StatusNotFound))
	case errors.Is(err, services.ErrAccountUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("account_service_unavailable", "account service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("account_error", "account operation failed", http.StatusInternalServerError))
	}
}
