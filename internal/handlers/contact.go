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

const maxContactBodySize = 16 * 1024

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type contactMessagePayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject,omitempty"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// ContactHandlers exposes the contact-form endpoints.
type ContactHandlers struct {
	contact services.ContactService
}

// NewContactHandlers constructs a new ContactHandlers instance.
func NewContactHandlers(contact services.ContactService) *ContactHandlers {
	return &ContactHandlers{contact: contact}
}

// Routes registers the /contact endpoints.
func (h *ContactHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.submit)
	r.Get("/", h.listMessages)
}

func (h *ContactHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.contact == nil {
		httpx.WriteError(ctx, w, httpx.NewError("contact_service_unavailable", "contact service unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxContactBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req contactRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	if _, err := h.contact.Submit(ctx, services.SubmitMessageCommand{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}); err != nil {
		writeContactError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusCreated, "Message sent successfully! We will get back to you soon.", nil)
}

func (h *ContactHandlers) listMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.contact == nil {
		httpx.WriteError(ctx, w, httpx.NewError("contact_service_unavailable", "contact service unavailable", http.StatusServiceUnavailable))
		return
	}

	messages, err := h.contact.ListMessages(ctx)
	if err != nil {
		writeContactError(ctx, w, err)
		return
	}

	payloads := make([]contactMessagePayload, 0, len(messages))
	for _, message := range messages {
		payloads = append(payloads, contactMessagePayload{
			ID:        message.ID,
			Name:      message.Name,
			Email:     message.Email,
			Subject:   message.Subject,
			Message:   message.Message,
			CreatedAt: formatTime(message.CreatedAt),
		})
	}

	httpx.WriteSuccess(w, http.StatusOK, "", map[string]any{
		"messages": payloads,
	})
}

func writeContactError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrContactInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("contact_error", "Failed to process contact request", http.StatusInternalServerError))
	}
}
