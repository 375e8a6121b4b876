package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/quickcart/api/internal/domain"
	"github.com/quickcart/api/internal/repositories"
)

const (
	orderIDPrefix     = "ord_"
	orderNumberPrefix = "ORD"

	// amountTolerance absorbs float64 representation error when comparing
	// dollar amounts; anything under half a cent counts as equal.
	amountTolerance = 0.005
)

var (
	// ErrOrderInvalidInput signals the caller provided invalid data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the order could not be located.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderInvalidTransition indicates a status change not reachable from the current state.
	ErrOrderInvalidTransition = errors.New("order: invalid status transition")
	// ErrOrderConflict indicates a generated order number collided with an existing one.
	ErrOrderConflict = errors.New("order: conflict")
)

// orderStatusTransitions is the single transition table; both the generic
// status update and the cancel path consult it, so terminal states hold
// everywhere.
var orderStatusTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusProcessing: {domain.OrderStatusConfirmed, domain.OrderStatusShipped, domain.OrderStatusCancelled},
	domain.OrderStatusConfirmed:  {domain.OrderStatusShipped, domain.OrderStatusCancelled},
	domain.OrderStatusShipped:    {domain.OrderStatusDelivered},
	domain.OrderStatusDelivered:  {},
	domain.OrderStatusCancelled:  {},
}

func canTransition(from, to domain.OrderStatus) bool {
	return slices.Contains(orderStatusTransitions[from], to)
}

func amountsEqual(a, b float64) bool {
	return math.Abs(a-b) < amountTolerance
}

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders      repositories.OrderRepository
	Payments    repositories.PaymentRepository
	Users       repositories.UserRepository
	Clock       func() time.Time
	IDGenerator func() string
	RandInt     func(n int) int
}

type orderService struct {
	orders   repositories.OrderRepository
	payments repositories.PaymentRepository
	users    repositories.UserRepository
	clock    func() time.Time
	newID    func() string
	randInt  func(n int) int
}

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Payments == nil {
		return nil, errors.New("order service: payment repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}

	randInt := deps.RandInt
	if randInt == nil {
		randInt = rand.Intn
	}

	return &orderService{
		orders:   deps.Orders,
		payments: deps.Payments,
		users:    deps.Users,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:   idGen,
		randInt: randInt,
	}, nil
}

func (s *orderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (Order, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return Order{}, fmt.Errorf("%w: userId is required", ErrOrderInvalidInput)
	}
	if len(cmd.Items) == 0 {
		return Order{}, fmt.Errorf("%w: items must contain at least one entry", ErrOrderInvalidInput)
	}
	for i, item := range cmd.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return Order{}, fmt.Errorf("%w: items[%d].productId is required", ErrOrderInvalidInput, i)
		}
		if strings.TrimSpace(item.Name) == "" {
			return Order{}, fmt.Errorf("%w: items[%d].name is required", ErrOrderInvalidInput, i)
		}
		if item.Quantity < 1 {
			return Order{}, fmt.Errorf("%w: items[%d].quantity must be at least 1", ErrOrderInvalidInput, i)
		}
		if item.Price < 0 {
			return Order{}, fmt.Errorf("%w: items[%d].price must not be negative", ErrOrderInvalidInput, i)
		}
	}
	if !cmd.ShippingAddress.Complete() {
		return Order{}, fmt.Errorf("%w: shipping address requires all seven fields", ErrOrderInvalidInput)
	}
	if !domain.ValidOrderPaymentMethod(cmd.PaymentMethod) {
		return Order{}, fmt.Errorf("%w: unknown payment method %q", ErrOrderInvalidInput, cmd.PaymentMethod)
	}
	if cmd.Subtotal < 0 || cmd.ShippingCost < 0 {
		return Order{}, fmt.Errorf("%w: amounts must not be negative", ErrOrderInvalidInput)
	}
	if !amountsEqual(cmd.TotalAmount, cmd.Subtotal+cmd.ShippingCost) {
		return Order{}, fmt.Errorf("%w: totalAmount must equal subtotal plus shippingCost", ErrOrderInvalidInput)
	}

	paymentStatus := cmd.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = domain.PaymentStatusPending
	}
	if !domain.ValidPaymentStatus(paymentStatus) {
		return Order{}, fmt.Errorf("%w: unknown payment status %q", ErrOrderInvalidInput, cmd.PaymentStatus)
	}

	var linkedPayment *Payment
	paymentID := strings.TrimSpace(cmd.PaymentID)
	if paymentID != "" {
		payment, err := s.payments.FindByID(ctx, paymentID)
		if err != nil {
			var repoErr repositories.RepositoryError
			if errors.As(err, &repoErr) && repoErr.IsNotFound() {
				return Order{}, fmt.Errorf("%w: payment %s does not exist", ErrOrderInvalidInput, paymentID)
			}
			return Order{}, s.mapRepositoryError(err)
		}
		if !amountsEqual(payment.Amount, cmd.TotalAmount) {
			return Order{}, fmt.Errorf("%w: payment amount %.2f does not match order total %.2f",
				ErrOrderInvalidInput, payment.Amount, cmd.TotalAmount)
		}
		linkedPayment = &payment
	}

	now := s.clock()

	order := Order{
		ID:              orderIDPrefix + s.newID(),
		OrderNumber:     s.generateOrderNumber(now),
		UserID:          userID,
		Items:           slices.Clone(cmd.Items),
		ShippingAddress: cmd.ShippingAddress,
		PaymentMethod:   cmd.PaymentMethod,
		PaymentID:       paymentID,
		Subtotal:        cmd.Subtotal,
		ShippingCost:    cmd.ShippingCost,
		TotalAmount:     cmd.TotalAmount,
		PaymentStatus:   paymentStatus,
		OrderStatus:     domain.OrderStatusProcessing,
		OrderDate:       now,
		Notes:           strings.TrimSpace(cmd.Notes),
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		return Order{}, s.mapRepositoryError(err)
	}

	if linkedPayment != nil {
		linkedPayment.OrderID = order.ID
		order.Payment = linkedPayment
	}
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	s.resolvePayment(ctx, &order)
	return order, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID string) ([]Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrOrderInvalidInput)
	}
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	for i := range orders {
		s.resolvePayment(ctx, &orders[i])
	}
	return orders, nil
}

func (s *orderService) ListAllOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	for i := range orders {
		s.resolvePayment(ctx, &orders[i])
	}
	if err := s.resolveUsers(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, cmd UpdateOrderStatusCommand) (Order, error) {
	if cmd.OrderStatus == nil && cmd.PaymentStatus == nil {
		return Order{}, fmt.Errorf("%w: orderStatus or paymentStatus is required", ErrOrderInvalidInput)
	}
	if cmd.OrderStatus != nil && !domain.ValidOrderStatus(*cmd.OrderStatus) {
		return Order{}, fmt.Errorf("%w: unknown order status %q", ErrOrderInvalidInput, *cmd.OrderStatus)
	}
	if cmd.PaymentStatus != nil && !domain.ValidPaymentStatus(*cmd.PaymentStatus) {
		return Order{}, fmt.Errorf("%w: unknown payment status %q", ErrOrderInvalidInput, *cmd.PaymentStatus)
	}

	order, err := s.findOrder(ctx, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}

	update := repositories.OrderStatusUpdate{}
	if cmd.OrderStatus != nil && *cmd.OrderStatus != order.OrderStatus {
		target := *cmd.OrderStatus
		if !canTransition(order.OrderStatus, target) {
			return Order{}, fmt.Errorf("%w: %s cannot move to %s", ErrOrderInvalidTransition, order.OrderStatus, target)
		}
		update.OrderStatus = &target
		if target == domain.OrderStatusDelivered {
			delivered := s.clock()
			update.DeliveryDate = &delivered
		}
	}
	if cmd.PaymentStatus != nil && *cmd.PaymentStatus != order.PaymentStatus {
		status := *cmd.PaymentStatus
		update.PaymentStatus = &status
	}

	if update.OrderStatus != nil || update.PaymentStatus != nil {
		if err := s.orders.UpdateStatus(ctx, order.ID, update); err != nil {
			return Order{}, s.mapRepositoryError(err)
		}
	}

	if update.OrderStatus != nil {
		order.OrderStatus = *update.OrderStatus
	}
	if update.PaymentStatus != nil {
		order.PaymentStatus = *update.PaymentStatus
	}
	if update.DeliveryDate != nil {
		order.DeliveryDate = update.DeliveryDate
	}
	return order, nil
}

func (s *orderService) Cancel(ctx context.Context, orderID string) (Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}

	if !canTransition(order.OrderStatus, domain.OrderStatusCancelled) {
		return Order{}, fmt.Errorf("%w: %s order cannot be cancelled", ErrOrderInvalidTransition, order.OrderStatus)
	}

	target := domain.OrderStatusCancelled
	if err := s.orders.UpdateStatus(ctx, order.ID, repositories.OrderStatusUpdate{OrderStatus: &target}); err != nil {
		return Order{}, s.mapRepositoryError(err)
	}

	order.OrderStatus = target
	return order, nil
}

func (s *orderService) findOrder(ctx context.Context, orderID string) (Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return Order{}, s.mapRepositoryError(err)
	}
	return order, nil
}

// resolvePayment joins the cross-linked payment onto the order. The link is a
// weak reference, so a missing payment leaves the field nil rather than
// failing the read.
func (s *orderService) resolvePayment(ctx context.Context, order *Order) {
	if order.PaymentID == "" {
		return
	}
	payment, err := s.payments.FindByID(ctx, order.PaymentID)
	if err != nil {
		return
	}
	order.Payment = &payment
}

// resolveUsers attaches the account display projection to each order for the
// admin listing. Missing accounts leave the projection absent.
func (s *orderService) resolveUsers(ctx context.Context, orders []Order) error {
	if s.users == nil || len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.UserID)
	}
	summaries, err := s.users.SummariesByIDs(ctx, ids)
	if err != nil {
		return s.mapRepositoryError(err)
	}
	for i := range orders {
		if summary, ok := summaries[orders[i].UserID]; ok {
			orders[i].User = &summary
		}
	}
	return nil
}

func (s *orderService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrOrderConflict, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("order: repository unavailable: %w", err)
		}
	}

	return err
}

// generateOrderNumber builds the human-facing order number from the creation
// timestamp plus a zero-padded 3-digit random suffix. Collisions surface as a
// conflict from the insert transaction's uniqueness probe.
func (s *orderService) generateOrderNumber(now time.Time) string {
	return fmt.Sprintf("%s%d%03d", orderNumberPrefix, now.UnixMilli(), s.randInt(1000))
}
