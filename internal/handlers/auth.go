package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quickcart/api/internal/platform/httpx"
	"github.com/quickcart/api/internal/services"
)

const maxAuthBodySize = 8 * 1024

type signUpRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type logInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthHandlers exposes the signup and login endpoints.
type AuthHandlers struct {
	accounts services.AccountService
}

// NewAuthHandlers constructs a new AuthHandlers instance.
func NewAuthHandlers(accounts services.AccountService) *AuthHandlers {
	return &AuthHandlers{accounts: accounts}
}

// Routes registers the /signup and /login endpoints.
func (h *AuthHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/signup", h.signUp)
	r.Post("/login", h.logIn)
}

func (h *AuthHandlers) signUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.accounts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("account_service_unavailable", "account service unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxAuthBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req signUpRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	if _, err := h.accounts.SignUp(ctx, services.SignUpCommand{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	}); err != nil {
		writeAccountError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusCreated, "Account created", nil)
}

func (h *AuthHandlers) logIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.accounts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("account_service_unavailable", "account service unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxAuthBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req logInRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	user, err := h.accounts.LogIn(ctx, services.LogInCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeAccountError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "Login successful!", map[string]any{
		"userId":   user.ID,
		"fullName": user.FullName,
		"email":    user.Email,
		"phone":    user.Phone,
	})
}

func writeAccountError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrAccountInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrAccountEmailTaken):
		httpx.WriteError(ctx, w, httpx.NewError("email_taken", "Email already registered", http.StatusConflict))
	case errors.Is(err, services.ErrAccountInvalidCredentials):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_credentials", "Invalid credentials", http.StatusUnauthorized))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("account_error", "Failed to process account request", http.StatusInternalServerError))
	}
}
