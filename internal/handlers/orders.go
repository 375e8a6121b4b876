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

const maxOrderBodySize = 64 * 1024

type orderItemRequest struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
}

type shippingAddressRequest struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
	Country  string `json:"country"`
}

type createOrderRequest struct {
	UserID          string                 `json:"userId"`
	Items           []orderItemRequest     `json:"items"`
	ShippingAddress shippingAddressRequest `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	PaymentID       string                 `json:"paymentId"`
	Subtotal        float64                `json:"subtotal"`
	ShippingCost    float64                `json:"shippingCost"`
	TotalAmount     float64                `json:"totalAmount"`
	PaymentStatus   string                 `json:"paymentStatus"`
	Notes           string                 `json:"notes"`
}

type updateOrderStatusRequest struct {
	OrderStatus   *string `json:"orderStatus"`
	PaymentStatus *string `json:"paymentStatus"`
}

type orderItemPayload struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
}

type shippingAddressPayload struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
	Country  string `json:"country"`
}

type userSummaryPayload struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type orderPayload struct {
	ID              string                 `json:"id"`
	OrderNumber     string                 `json:"orderNumber"`
	UserID          string                 `json:"userId"`
	Items           []orderItemPayload     `json:"items"`
	ShippingAddress shippingAddressPayload `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	PaymentID       string                 `json:"paymentId,omitempty"`
	Subtotal        float64                `json:"subtotal"`
	ShippingCost    float64                `json:"shippingCost"`
	TotalAmount     float64                `json:"totalAmount"`
	PaymentStatus   string                 `json:"paymentStatus"`
	OrderStatus     string                 `json:"orderStatus"`
	OrderDate       string                 `json:"orderDate"`
	DeliveryDate    *string                `json:"deliveryDate,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	Payment         *paymentPayload        `json:"payment,omitempty"`
	User            *userSummaryPayload    `json:"user,omitempty"`
}

// OrderHandlers exposes the order lifecycle endpoints.
type OrderHandlers struct {
	orders services.OrderService
}

// NewOrderHandlers constructs a new OrderHandlers instance.
func NewOrderHandlers(orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{orders: orders}
}

// Routes registers the /orders endpoints.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.createOrder)
	r.Get("/", h.listAllOrders)
	r.Get("/user/{userID}", h.listUserOrders)
	r.Get("/{orderID}", h.getOrder)
	r.Patch("/{orderID}/status", h.updateStatus)
	r.Delete("/{orderID}", h.cancelOrder)
}

func (h *OrderHandlers) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req createOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	items := make([]services.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
		})
	}

	order, err := h.orders.CreateOrder(ctx, services.CreateOrderCommand{
		UserID: req.UserID,
		Items:  items,
		ShippingAddress: services.ShippingAddress{
			FullName: req.ShippingAddress.FullName,
			Phone:    req.ShippingAddress.Phone,
			Address:  req.ShippingAddress.Address,
			City:     req.ShippingAddress.City,
			State:    req.ShippingAddress.State,
			ZipCode:  req.ShippingAddress.ZipCode,
			Country:  req.ShippingAddress.Country,
		},
		PaymentMethod: domain.OrderPaymentMethod(req.PaymentMethod),
		PaymentID:     req.PaymentID,
		Subtotal:      req.Subtotal,
		ShippingCost:  req.ShippingCost,
		TotalAmount:   req.TotalAmount,
		PaymentStatus: domain.PaymentStatus(req.PaymentStatus),
		Notes:         req.Notes,
	})
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusCreated, "Order created successfully", map[string]any{
		"order": buildOrderPayload(order),
	})
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id is required", http.StatusBadRequest))
		return
	}

	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "", map[string]any{
		"order": buildOrderPayload(order),
	})
}

func (h *OrderHandlers) listUserOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "user id is required", http.StatusBadRequest))
		return
	}

	orders, err := h.orders.ListUserOrders(ctx, userID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "", map[string]any{
		"orders": buildOrderPayloads(orders),
	})
}

func (h *OrderHandlers) listAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	orders, err := h.orders.ListAllOrders(ctx)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "", map[string]any{
		"orders": buildOrderPayloads(orders),
	})
}

func (h *OrderHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id is required", http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxOrderBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	var req updateOrderStatusRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	cmd := services.UpdateOrderStatusCommand{OrderID: orderID}
	if req.OrderStatus != nil {
		status := domain.OrderStatus(*req.OrderStatus)
		cmd.OrderStatus = &status
	}
	if req.PaymentStatus != nil {
		status := domain.PaymentStatus(*req.PaymentStatus)
		cmd.PaymentStatus = &status
	}

	order, err := h.orders.UpdateStatus(ctx, cmd)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "Order updated successfully", map[string]any{
		"order": buildOrderPayload(order),
	})
}

func (h *OrderHandlers) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return
	}

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order id is required", http.StatusBadRequest))
		return
	}

	order, err := h.orders.Cancel(ctx, orderID)
	if err != nil {
		writeOrderError(ctx, w, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusOK, "Order cancelled successfully", map[string]any{
		"order": buildOrderPayload(order),
	})
}

func buildOrderPayload(order services.Order) orderPayload {
	items := make([]orderItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemPayload{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
		})
	}

	payload := orderPayload{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Items:       items,
		ShippingAddress: shippingAddressPayload{
			FullName: order.ShippingAddress.FullName,
			Phone:    order.ShippingAddress.Phone,
			Address:  order.ShippingAddress.Address,
			City:     order.ShippingAddress.City,
			State:    order.ShippingAddress.State,
			ZipCode:  order.ShippingAddress.ZipCode,
			Country:  order.ShippingAddress.Country,
		},
		PaymentMethod: string(order.PaymentMethod),
		PaymentID:     order.PaymentID,
		Subtotal:      order.Subtotal,
		ShippingCost:  order.ShippingCost,
		TotalAmount:   order.TotalAmount,
		PaymentStatus: string(order.PaymentStatus),
		OrderStatus:   string(order.OrderStatus),
		OrderDate:     formatTime(order.OrderDate),
		DeliveryDate:  formatTimePtr(order.DeliveryDate),
		Notes:         order.Notes,
	}

	if order.Payment != nil {
		payment := buildPaymentPayload(*order.Payment)
		payload.Payment = &payment
	}
	if order.User != nil {
		payload.User = &userSummaryPayload{FullName: order.User.FullName, Email: order.User.Email}
	}
	return payload
}

func buildOrderPayloads(orders []services.Order) []orderPayload {
	payloads := make([]orderPayload, 0, len(orders))
	for _, order := range orders {
		payloads = append(payloads, buildOrderPayload(order))
	}
	return payloads
}

func writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderInvalidTransition):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_transition", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "Order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderConflict):
		httpx.WriteError(ctx, w, httpx.NewError("order_conflict", err.Error(), http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "Failed to process order request", http.StatusInternalServerError))
	}
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("request_too_large", "request body too large", http.StatusRequestEntityTooLarge))
	case errors.Is(err, errEmptyBody):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "failed to read request body", http.StatusBadRequest))
	}
}
