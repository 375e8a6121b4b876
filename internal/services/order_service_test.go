package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	domain "github.com/quickcart/api/internal/domain"
	"github.com/quickcart/api/internal/repositories"
)

type repoError struct {
	msg         string
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *repoError) Error() string       { return e.msg }
func (e *repoError) IsNotFound() bool    { return e.notFound }
func (e *repoError) IsConflict() bool    { return e.conflict }
func (e *repoError) IsUnavailable() bool { return e.unavailable }

type stubOrderRepo struct {
	insertFn       func(context.Context, domain.Order) error
	findFn         func(context.Context, string) (domain.Order, error)
	updateStatusFn func(context.Context, string, repositories.OrderStatusUpdate) error
	listByUserFn   func(context.Context, string) ([]domain.Order, error)
	listAllFn      func(context.Context) ([]domain.Order, error)
}

func (s *stubOrderRepo) Insert(ctx context.Context, order domain.Order) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, order)
	}
	return nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if s.findFn != nil {
		return s.findFn(ctx, orderID)
	}
	return domain.Order{}, errors.New("not implemented")
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, orderID string, update repositories.OrderStatusUpdate) error {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, orderID, update)
	}
	return nil
}

func (s *stubOrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	if s.listByUserFn != nil {
		return s.listByUserFn(ctx, userID)
	}
	return nil, nil
}

func (s *stubOrderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	if s.listAllFn != nil {
		return s.listAllFn(ctx)
	}
	return nil, nil
}

func validCreateOrderCommand() CreateOrderCommand {
	return CreateOrderCommand{
		UserID: "usr_1",
		Items: []OrderItem{
			{ProductID: "prd_1", Name: "Bananas", Price: 3.49, Quantity: 2, Image: "bananas.jpg"},
		},
		ShippingAddress: ShippingAddress{
			FullName: "Dana Smith",
			Phone:    "555-0100",
			Address:  "1 Main St",
			City:     "Springfield",
			State:    "IL",
			ZipCode:  "62701",
			Country:  "USA",
		},
		PaymentMethod: domain.OrderPaymentCashOnDelivery,
		Subtotal:      6.98,
		ShippingCost:  0,
		TotalAmount:   6.98,
	}
}

func newTestOrderService(t *testing.T, orders *stubOrderRepo, payments *stubPaymentRepo, users repositories.UserRepository, now time.Time) OrderService {
	t.Helper()
	if payments == nil {
		payments = &stubPaymentRepo{}
	}
	svc, err := NewOrderService(OrderServiceDeps{
		Orders:      orders,
		Payments:    payments,
		Users:       users,
		Clock:       func() time.Time { return now },
		IDGenerator: func() string { return "000TEST" },
		RandInt:     func(int) int { return 7 },
	})
	if err != nil {
		t.Fatalf("new order service: %v", err)
	}
	return svc
}

func TestOrderServiceCreateOrder(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	var inserted []domain.Order
	orders := &stubOrderRepo{
		insertFn: func(_ context.Context, order domain.Order) error {
			inserted = append(inserted, order)
			return nil
		},
	}

	svc := newTestOrderService(t, orders, nil, nil, now)

	order, err := svc.CreateOrder(ctx, validCreateOrderCommand())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if order.ID != "ord_000TEST" {
		t.Fatalf("unexpected order id %s", order.ID)
	}
	wantNumber := fmt.Sprintf("ORD%d007", now.UnixMilli())
	if order.OrderNumber != wantNumber {
		t.Fatalf("expected order number %s got %s", wantNumber, order.OrderNumber)
	}
	if order.OrderStatus != domain.OrderStatusProcessing {
		t.Fatalf("expected status Processing got %s", order.OrderStatus)
	}
	if order.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("expected payment status Pending got %s", order.PaymentStatus)
	}
	if !order.OrderDate.Equal(now) {
		t.Fatalf("unexpected order date %v", order.OrderDate)
	}
	if len(inserted) != 1 {
		t.Fatalf("expected 1 inserted order got %d", len(inserted))
	}
	if inserted[0].TotalAmount != 6.98 {
		t.Fatalf("expected total 6.98 got %v", inserted[0].TotalAmount)
	}
}

func TestOrderServiceCreateOrderValidation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)

	cases := []struct {
		name   string
		mutate func(*CreateOrderCommand)
	}{
		{"missing user", func(cmd *CreateOrderCommand) { cmd.UserID = " " }},
		{"empty items", func(cmd *CreateOrderCommand) { cmd.Items = nil }},
		{"zero quantity", func(cmd *CreateOrderCommand) { cmd.Items[0].Quantity = 0 }},
		{"negative price", func(cmd *CreateOrderCommand) { cmd.Items[0].Price = -1 }},
		{"incomplete address", func(cmd *CreateOrderCommand) { cmd.ShippingAddress.City = "" }},
		{"unknown method", func(cmd *CreateOrderCommand) { cmd.PaymentMethod = "Barter" }},
		{"total mismatch", func(cmd *CreateOrderCommand) { cmd.TotalAmount = 9.99 }},
		{"unknown payment status", func(cmd *CreateOrderCommand) { cmd.PaymentStatus = "Settled" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orders := &stubOrderRepo{
				insertFn: func(context.Context, domain.Order) error {
					t.Fatalf("insert must not be called")
					return nil
				},
			}
			svc := newTestOrderService(t, orders, nil, nil, now)

			cmd := validCreateOrderCommand()
			tc.mutate(&cmd)
			if _, err := svc.CreateOrder(ctx, cmd); !errors.Is(err, ErrOrderInvalidInput) {
				t.Fatalf("expected invalid input got %v", err)
			}
		})
	}
}

func TestOrderServiceCreateOrderTotalsTolerance(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	svc := newTestOrderService(t, &stubOrderRepo{}, nil, nil, now)

	cmd := validCreateOrderCommand()
	cmd.Items[0].Price = 25.98
	cmd.Items[0].Quantity = 1
	cmd.Subtotal = 22.49
	cmd.ShippingCost = 3.49
	cmd.TotalAmount = 25.98

	if _, err := svc.CreateOrder(ctx, cmd); err != nil {
		t.Fatalf("expected representable sum to pass: %v", err)
	}
}

func TestOrderServiceCreateOrderPaymentLinkage(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)

	t.Run("matching amount links payment", func(t *testing.T) {
		payments := &stubPaymentRepo{
			findFn: func(_ context.Context, id string) (domain.Payment, error) {
				return domain.Payment{ID: id, Amount: 6.98, TransactionID: "TXN1"}, nil
			},
		}
		svc := newTestOrderService(t, &stubOrderRepo{}, payments, nil, now)

		cmd := validCreateOrderCommand()
		cmd.PaymentMethod = domain.OrderPaymentOnline
		cmd.PaymentID = "pay_1"

		order, err := svc.CreateOrder(ctx, cmd)
		if err != nil {
			t.Fatalf("create order: %v", err)
		}
		if order.Payment == nil || order.Payment.TransactionID != "TXN1" {
			t.Fatalf("expected resolved payment, got %+v", order.Payment)
		}
		if order.Payment.OrderID != order.ID {
			t.Fatalf("expected back-link to %s got %s", order.ID, order.Payment.OrderID)
		}
	})

	t.Run("amount mismatch rejected", func(t *testing.T) {
		payments := &stubPaymentRepo{
			findFn: func(_ context.Context, id string) (domain.Payment, error) {
				return domain.Payment{ID: id, Amount: 5.00}, nil
			},
		}
		svc := newTestOrderService(t, &stubOrderRepo{}, payments, nil, now)

		cmd := validCreateOrderCommand()
		cmd.PaymentID = "pay_1"
		if _, err := svc.CreateOrder(ctx, cmd); !errors.Is(err, ErrOrderInvalidInput) {
			t.Fatalf("expected invalid input got %v", err)
		}
	})

	t.Run("missing payment rejected", func(t *testing.T) {
		payments := &stubPaymentRepo{
			findFn: func(context.Context, string) (domain.Payment, error) {
				return domain.Payment{}, &repoError{msg: "missing", notFound: true}
			},
		}
		svc := newTestOrderService(t, &stubOrderRepo{}, payments, nil, now)

		cmd := validCreateOrderCommand()
		cmd.PaymentID = "pay_missing"
		if _, err := svc.CreateOrder(ctx, cmd); !errors.Is(err, ErrOrderInvalidInput) {
			t.Fatalf("expected invalid input got %v", err)
		}
	})
}

func TestOrderServiceCreateOrderNumberConflict(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	orders := &stubOrderRepo{
		insertFn: func(context.Context, domain.Order) error {
			return &repoError{msg: "duplicate order number", conflict: true}
		},
	}
	svc := newTestOrderService(t, orders, nil, nil, now)

	if _, err := svc.CreateOrder(ctx, validCreateOrderCommand()); !errors.Is(err, ErrOrderConflict) {
		t.Fatalf("expected conflict got %v", err)
	}
}

func TestOrderServiceUpdateStatusTransitions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		from    domain.OrderStatus
		to      domain.OrderStatus
		allowed bool
	}{
		{domain.OrderStatusProcessing, domain.OrderStatusConfirmed, true},
		{domain.OrderStatusProcessing, domain.OrderStatusShipped, true},
		{domain.OrderStatusProcessing, domain.OrderStatusCancelled, true},
		{domain.OrderStatusProcessing, domain.OrderStatusDelivered, false},
		{domain.OrderStatusConfirmed, domain.OrderStatusShipped, true},
		{domain.OrderStatusConfirmed, domain.OrderStatusDelivered, false},
		{domain.OrderStatusShipped, domain.OrderStatusDelivered, true},
		{domain.OrderStatusShipped, domain.OrderStatusCancelled, false},
		{domain.OrderStatusShipped, domain.OrderStatusProcessing, false},
		{domain.OrderStatusDelivered, domain.OrderStatusShipped, false},
		{domain.OrderStatusCancelled, domain.OrderStatusProcessing, false},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s to %s", tc.from, tc.to), func(t *testing.T) {
			updated := false
			orders := &stubOrderRepo{
				findFn: func(_ context.Context, id string) (domain.Order, error) {
					return domain.Order{ID: id, OrderStatus: tc.from, PaymentStatus: domain.PaymentStatusPending}, nil
				},
				updateStatusFn: func(_ context.Context, _ string, update repositories.OrderStatusUpdate) error {
					updated = true
					if update.OrderStatus == nil || *update.OrderStatus != tc.to {
						t.Fatalf("unexpected update %+v", update)
					}
					return nil
				},
			}
			svc := newTestOrderService(t, orders, nil, nil, now)

			target := tc.to
			order, err := svc.UpdateStatus(ctx, UpdateOrderStatusCommand{OrderID: "ord_1", OrderStatus: &target})
			if tc.allowed {
				if err != nil {
					t.Fatalf("expected transition to succeed: %v", err)
				}
				if order.OrderStatus != tc.to {
					t.Fatalf("expected status %s got %s", tc.to, order.OrderStatus)
				}
				if !updated {
					t.Fatalf("expected repository update")
				}
			} else {
				if !errors.Is(err, ErrOrderInvalidTransition) {
					t.Fatalf("expected invalid transition got %v", err)
				}
				if updated {
					t.Fatalf("repository must not be touched on a rejected transition")
				}
			}
		})
	}
}

func TestOrderServiceUpdateStatusSameStatusIsNoOp(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	orders := &stubOrderRepo{
		findFn: func(_ context.Context, id string) (domain.Order, error) {
			return domain.Order{ID: id, OrderStatus: domain.OrderStatusDelivered}, nil
		},
		updateStatusFn: func(context.Context, string, repositories.OrderStatusUpdate) error {
			t.Fatalf("no update expected")
			return nil
		},
	}
	svc := newTestOrderService(t, orders, nil, nil, now)

	target := domain.OrderStatusDelivered
	order, err := svc.UpdateStatus(ctx, UpdateOrderStatusCommand{OrderID: "ord_1", OrderStatus: &target})
	if err != nil {
		t.Fatalf("same-status update should be a no-op: %v", err)
	}
	if order.OrderStatus != domain.OrderStatusDelivered {
		t.Fatalf("unexpected status %s", order.OrderStatus)
	}
}

func TestOrderServiceUpdateStatusSetsDeliveryDate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	var captured repositories.OrderStatusUpdate
	orders := &stubOrderRepo{
		findFn: func(_ context.Context, id string) (domain.Order, error) {
			return domain.Order{ID: id, OrderStatus: domain.OrderStatusShipped}, nil
		},
		updateStatusFn: func(_ context.Context, _ string, update repositories.OrderStatusUpdate) error {
			captured = update
			return nil
		},
	}
	svc := newTestOrderService(t, orders, nil, nil, now)

	target := domain.OrderStatusDelivered
	order, err := svc.UpdateStatus(ctx, UpdateOrderStatusCommand{OrderID: "ord_1", OrderStatus: &target})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if captured.DeliveryDate == nil || !captured.DeliveryDate.Equal(now) {
		t.Fatalf("expected delivery date %v got %v", now, captured.DeliveryDate)
	}
	if order.DeliveryDate == nil {
		t.Fatalf("expected delivery date on returned order")
	}
}

func TestOrderServiceCancel(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("processing order cancels", func(t *testing.T) {
		orders := &stubOrderRepo{
			findFn: func(_ context.Context, id string) (domain.Order, error) {
				return domain.Order{ID: id, OrderStatus: domain.OrderStatusProcessing}, nil
			},
		}
		svc := newTestOrderService(t, orders, nil, nil, now)

		order, err := svc.Cancel(ctx, "ord_1")
		if err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if order.OrderStatus != domain.OrderStatusCancelled {
			t.Fatalf("expected Cancelled got %s", order.OrderStatus)
		}
	})

	for _, status := range []domain.OrderStatus{domain.OrderStatusShipped, domain.OrderStatusDelivered, domain.OrderStatusCancelled} {
		t.Run(fmt.Sprintf("%s order rejects cancel", status), func(t *testing.T) {
			orders := &stubOrderRepo{
				findFn: func(_ context.Context, id string) (domain.Order, error) {
					return domain.Order{ID: id, OrderStatus: status}, nil
				},
				updateStatusFn: func(context.Context, string, repositories.OrderStatusUpdate) error {
					t.Fatalf("no update expected")
					return nil
				},
			}
			svc := newTestOrderService(t, orders, nil, nil, now)

			if _, err := svc.Cancel(ctx, "ord_1"); !errors.Is(err, ErrOrderInvalidTransition) {
				t.Fatalf("expected invalid transition got %v", err)
			}
		})
	}
}

func TestOrderServiceGetOrderResolvesPayment(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	orders := &stubOrderRepo{
		findFn: func(_ context.Context, id string) (domain.Order, error) {
			return domain.Order{ID: id, PaymentID: "pay_1", TotalAmount: 25.98}, nil
		},
	}
	payments := &stubPaymentRepo{
		findFn: func(_ context.Context, id string) (domain.Payment, error) {
			return domain.Payment{ID: id, Amount: 25.98}, nil
		},
	}
	svc := newTestOrderService(t, orders, payments, nil, now)

	order, err := svc.GetOrder(ctx, "ord_1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Payment == nil || order.Payment.Amount != 25.98 {
		t.Fatalf("expected resolved payment, got %+v", order.Payment)
	}
}

func TestOrderServiceGetOrderToleratesMissingPayment(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	orders := &stubOrderRepo{
		findFn: func(_ context.Context, id string) (domain.Order, error) {
			return domain.Order{ID: id, PaymentID: "pay_gone"}, nil
		},
	}
	payments := &stubPaymentRepo{
		findFn: func(context.Context, string) (domain.Payment, error) {
			return domain.Payment{}, &repoError{msg: "missing", notFound: true}
		},
	}
	svc := newTestOrderService(t, orders, payments, nil, now)

	order, err := svc.GetOrder(ctx, "ord_1")
	if err != nil {
		t.Fatalf("weak reference must not fail the read: %v", err)
	}
	if order.Payment != nil {
		t.Fatalf("expected nil payment for dangling link")
	}
}

func TestOrderServiceGetOrderNotFound(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	orders := &stubOrderRepo{
		findFn: func(context.Context, string) (domain.Order, error) {
			return domain.Order{}, &repoError{msg: "missing", notFound: true}
		},
	}
	svc := newTestOrderService(t, orders, nil, nil, now)

	if _, err := svc.GetOrder(ctx, "ord_missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestOrderServiceListAllResolvesUsers(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	orders := &stubOrderRepo{
		listAllFn: func(context.Context) ([]domain.Order, error) {
			return []domain.Order{
				{ID: "ord_1", UserID: "usr_1"},
				{ID: "ord_2", UserID: "usr_ghost"},
			}, nil
		},
	}
	users := &stubUserRepo{
		summariesFn: func(_ context.Context, ids []string) (map[string]domain.UserSummary, error) {
			if len(ids) != 2 {
				t.Fatalf("expected 2 ids got %d", len(ids))
			}
			return map[string]domain.UserSummary{
				"usr_1": {FullName: "Dana Smith", Email: "dana@example.com"},
			}, nil
		},
	}
	svc := newTestOrderService(t, orders, nil, users, now)

	list, err := svc.ListAllOrders(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if list[0].User == nil || list[0].User.FullName != "Dana Smith" {
		t.Fatalf("expected resolved user on first order, got %+v", list[0].User)
	}
	if list[1].User != nil {
		t.Fatalf("missing account must leave the projection absent")
	}
}
