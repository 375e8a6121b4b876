package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/quickcart/api/internal/domain"
	"github.com/quickcart/api/internal/platform/httpx"
	"github.com/quickcart/api/internal/services"
)

const maxPaymentBodySize = 16 * 1024

type createPaymentRequest struct {
	UserID            string   `json:"userId"`
	Amount            *float64 `json:"amount"`
	PaymentMethod     string   `json:"paymentMethod"`
	CardLastFour      string   `json:"cardLastFour"`
	TransactionStatus string   `json:"transactionStatus"`
	Notes             string   `json:"notes"`
}

type updatePaymentStatusRequest struct {
	TransactionStatus string `json:"transactionStatus"`
}

type paymentPayload struct {
	ID                string              `json:"id"`
	UserID            string              `json:"userId"`
	OrderID           string              `json:"orderId,omitempty"`
	Amount            float64             `json:"amount"`
	PaymentMethod     string              `json:"paymentMethod"`
	CardLastFour      string              `json:"cardLastFour,omitempty"`
	TransactionID     string              `json:"transactionId"`
	TransactionStatus string              `json:"transactionStatus"`
	PaymentDate       string              `json:"paymentDate"`
	RefundDate        *string             `json:"refundDate,omitempty"`
	RefundAmount      float64             `json:"refundAmount,omitempty"`
	Notes             string              `json:"notes,omitempty"`
	Order             *orderPayload       `json:"order,omitempty"`
	User              *userSummaryPayload `json:"user,omitempty"`
}

// PaymentHandlers exposes the payment endpoints.
type PaymentHandlers struct {
	payments services.PaymentService
}

// NewPaymentHandlers constructs a new PaymentHandlers instance.
func NewPaymentHandlers(payments services.PaymentService) *PaymentHandlers {
	return &PaymentHandlers{payments: payments}
}

// Routes registers the /payments endpoints.
func (h *PaymentHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.createPayment)
	r.Get("/", h.listAllPayments)
	r.Get("/user/{userID}", h.listUserPayments)
	r.Get("/{paymentID}", h.getPayment)
	r.Patch("/{paymentID}/status", h.updateStatus)
}

func (h *PaymentHandlers) createPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.payments == nil {
		httpx.WriteError(ctx, w, httpx.NewError("payment_service_unavailable", "payment service unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxPaymentBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req createPaymentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	payment, err := h.payments.CreatePayment(ctx, services.CreatePaymentCommand{
		UserID:            req.UserID,
		Amount:            req.Amount,
		PaymentMethod:     domain.PaymentMethod(req.PaymentMethod),
		CardLastFour:      req.CardLastFour,
		TransactionStatus: domain.TransactionStatus(req.TransactionStatus),
		Notes:             req.Notes,
	})
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusCreated, "Payment processed successfully", map[string]any{
		"payment": buildPaymentPayload(payment),
	})
}

func (h *PaymentHandlers) getPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.payments == nil {
		httpx.WriteError(ctx, w, httpx.NewError("payment_service_unavailable", "payment service unavailable", http.StatusServiceUnavailable))
		return
	}

	paymentID := strings.TrimSpace(chi.URLParam(r, "paymentID"))
	if paymentID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "payment id is required", http.StatusBadRequest))
		return
	}

	payment, err := h.payments.GetPayment(ctx, paymentID)
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "", map[string]any{
		"payment": buildPaymentPayload(payment),
	})
}

func (h *PaymentHandlers) listUserPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.payments == nil {
		httpx.WriteError(ctx, w, httpx.NewError("payment_service_unavailable", "payment service unavailable", http.StatusServiceUnavailable))
		return
	}

	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "user id is required", http.StatusBadRequest))
		return
	}

	payments, err := h.payments.ListUserPayments(ctx, userID)
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "", map[string]any{
		"payments": buildPaymentPayloads(payments),
	})
}

func (h *PaymentHandlers) listAllPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.payments == nil {
		httpx.WriteError(ctx, w, httpx.NewError("payment_service_unavailable", "payment service unavailable", http.StatusServiceUnavailable))
		return
	}

	filter := services.PaymentListFilter{
		OrphanedOnly: strings.EqualFold(r.URL.Query().Get("orphaned"), "true"),
	}

	payments, err := h.payments.ListAllPayments(ctx, filter)
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "", map[string]any{
		"payments": buildPaymentPayloads(payments),
	})
}

func (h *PaymentHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.payments == nil {
		httpx.WriteError(ctx, w, httpx.NewError("payment_service_unavailable", "payment service unavailable", http.StatusServiceUnavailable))
		return
	}

	paymentID := strings.TrimSpace(chi.URLParam(r, "paymentID"))
	if paymentID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "payment id is required", http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxPaymentBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req updatePaymentStatusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	payment, err := h.payments.UpdateStatus(ctx, services.UpdatePaymentStatusCommand{
		PaymentID:         paymentID,
		TransactionStatus: domain.TransactionStatus(req.TransactionStatus),
	})
	if err != nil {
		writePaymentError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "Payment status updated", map[string]any{
		"payment": buildPaymentPayload(payment),
	})
}

func buildPaymentPayload(payment services.Payment) paymentPayload {
	payload := paymentPayload{
		ID:                payment.ID,
		UserID:            payment.UserID,
		OrderID:           payment.OrderID,
		Amount:            payment.Amount,
		PaymentMethod:     string(payment.PaymentMethod),
		CardLastFour:      payment.CardLastFour,
		TransactionID:     payment.TransactionID,
		TransactionStatus: string(payment.TransactionStatus),
		PaymentDate:       formatTime(payment.PaymentDate),
		RefundDate:        formatTimePtr(payment.RefundDate),
		RefundAmount:      payment.RefundAmount,
		Notes:             payment.Notes,
	}
	if payment.Order != nil {
		order := buildOrderPayload(*payment.Order)
		payload.Order = &order
	}
	if payment.User != nil {
		payload.User = &userSummaryPayload{FullName: payment.User.FullName, Email: payment.User.Email}
	}
	return payload
}

func buildPaymentPayloads(payments []services.Payment) []paymentPayload {
	payloads := make([]paymentPayload, 0, len(payments))
	for _, payment := range payments {
		payloads = append(payloads, buildPaymentPayload(payment))
	}
	return payloads
}

func writePaymentError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrPaymentInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrPaymentNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("payment_not_found", "Payment not found", http.StatusNotFound))
	case errors.Is(err, services.ErrPaymentConflict):
		httpx.WriteError(ctx, w, httpx.NewError("payment_conflict", err.Error(), http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("payment_error", "Failed to process payment request", http.StatusInternalServerError))
	}
}
