package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/quickcart/api/internal/domain"
	"github.com/quickcart/api/internal/repositories"
)

const (
	paymentIDPrefix     = "pay_"
	transactionIDPrefix = "TXN"

	transactionSuffixLen     = 9
	transactionSuffixCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var (
	// ErrPaymentInvalidInput signals the caller provided invalid data.
	ErrPaymentInvalidInput = errors.New("payment: invalid input")
	// ErrPaymentNotFound indicates the payment could not be located.
	ErrPaymentNotFound = errors.New("payment: not found")
	// ErrPaymentConflict indicates a generated transaction id collided with an existing one.
	ErrPaymentConflict = errors.New("payment: conflict")
)

// PaymentServiceDeps bundles collaborators required to construct the payment service.
type PaymentServiceDeps struct {
	Payments    repositories.PaymentRepository
	Orders      repositories.OrderRepository
	Users       repositories.UserRepository
	Clock       func() time.Time
	IDGenerator func() string
	RandInt     func(n int) int
}

type paymentService struct {
	payments repositories.PaymentRepository
	orders   repositories.OrderRepository
	users    repositories.UserRepository
	clock    func() time.Time
	newID    func() string
	randInt  func(n int) int
}

// NewPaymentService wires dependencies into a concrete PaymentService implementation.
func NewPaymentService(deps PaymentServiceDeps) (PaymentService, error) {
	if deps.Payments == nil {
		return nil, errors.New("payment service: payment repository is required")
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

	return &paymentService{
		payments: deps.Payments,
		orders:   deps.Orders,
		users:    deps.Users,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:   idGen,
		randInt: randInt,
	}, nil
}

func (s *paymentService) CreatePayment(ctx context.Context, cmd CreatePaymentCommand) (Payment, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return Payment{}, fmt.Errorf("%w: userId is required", ErrPaymentInvalidInput)
	}
	if cmd.Amount == nil {
		return Payment{}, fmt.Errorf("%w: amount is required", ErrPaymentInvalidInput)
	}
	if *cmd.Amount < 0 {
		return Payment{}, fmt.Errorf("%w: amount must not be negative", ErrPaymentInvalidInput)
	}
	if !domain.ValidPaymentMethod(cmd.PaymentMethod) {
		return Payment{}, fmt.Errorf("%w: unknown payment method %q", ErrPaymentInvalidInput, cmd.PaymentMethod)
	}
	cardLastFour := strings.TrimSpace(cmd.CardLastFour)
	if cardLastFour != "" && !validCardLastFour(cardLastFour) {
		return Payment{}, fmt.Errorf("%w: cardLastFour must be exactly four digits", ErrPaymentInvalidInput)
	}

	status := cmd.TransactionStatus
	if status == "" {
		status = domain.TransactionStatusPending
	}
	if !domain.ValidTransactionStatus(status) {
		return Payment{}, fmt.Errorf("%w: unknown transaction status %q", ErrPaymentInvalidInput, cmd.TransactionStatus)
	}

	now := s.clock()

	payment := Payment{
		ID:                paymentIDPrefix + s.newID(),
		UserID:            userID,
		Amount:            *cmd.Amount,
		PaymentMethod:     cmd.PaymentMethod,
		CardLastFour:      cardLastFour,
		TransactionID:     s.generateTransactionID(now),
		TransactionStatus: status,
		PaymentDate:       now,
		Notes:             strings.TrimSpace(cmd.Notes),
	}

	if err := s.payments.Insert(ctx, payment); err != nil {
		return Payment{}, s.mapRepositoryError(err)
	}
	return payment, nil
}

func (s *paymentService) GetPayment(ctx context.Context, paymentID string) (Payment, error) {
	payment, err := s.findPayment(ctx, paymentID)
	if err != nil {
		return Payment{}, err
	}
	s.resolveOrder(ctx, &payment)
	return payment, nil
}

func (s *paymentService) ListUserPayments(ctx context.Context, userID string) ([]Payment, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrPaymentInvalidInput)
	}
	payments, err := s.payments.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	for i := range payments {
		s.resolveOrder(ctx, &payments[i])
	}
	return payments, nil
}

func (s *paymentService) ListAllPayments(ctx context.Context, filter PaymentListFilter) ([]Payment, error) {
	payments, err := s.payments.ListAll(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	if filter.OrphanedOnly {
		orphans := payments[:0]
		for _, payment := range payments {
			if payment.OrderID == "" {
				orphans = append(orphans, payment)
			}
		}
		payments = orphans
	}
	for i := range payments {
		s.resolveOrder(ctx, &payments[i])
	}
	if err := s.resolveUsers(ctx, payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *paymentService) UpdateStatus(ctx context.Context, cmd UpdatePaymentStatusCommand) (Payment, error) {
	if !domain.ValidTransactionStatus(cmd.TransactionStatus) {
		return Payment{}, fmt.Errorf("%w: unknown transaction status %q", ErrPaymentInvalidInput, cmd.TransactionStatus)
	}

	payment, err := s.findPayment(ctx, cmd.PaymentID)
	if err != nil {
		return Payment{}, err
	}

	if payment.TransactionStatus != cmd.TransactionStatus {
		if err := s.payments.UpdateStatus(ctx, payment.ID, cmd.TransactionStatus); err != nil {
			return Payment{}, s.mapRepositoryError(err)
		}
		payment.TransactionStatus = cmd.TransactionStatus
	}
	return payment, nil
}

func (s *paymentService) findPayment(ctx context.Context, paymentID string) (Payment, error) {
	if strings.TrimSpace(paymentID) == "" {
		return Payment{}, fmt.Errorf("%w: payment id is required", ErrPaymentInvalidInput)
	}
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return Payment{}, s.mapRepositoryError(err)
	}
	return payment, nil
}

// resolveOrder joins the cross-linked order onto the payment. The back
// reference is weak, so a missing order leaves the field nil.
func (s *paymentService) resolveOrder(ctx context.Context, payment *Payment) {
	if payment.OrderID == "" || s.orders == nil {
		return
	}
	order, err := s.orders.FindByID(ctx, payment.OrderID)
	if err != nil {
		return
	}
	payment.Order = &order
}

// resolveUsers attaches the account display projection to each payment for the
// admin listing. Missing accounts leave the projection absent.
func (s *paymentService) resolveUsers(ctx context.Context, payments []Payment) error {
	if s.users == nil || len(payments) == 0 {
		return nil
	}
	ids := make([]string, 0, len(payments))
	for _, payment := range payments {
		ids = append(ids, payment.UserID)
	}
	summaries, err := s.users.SummariesByIDs(ctx, ids)
	if err != nil {
		return s.mapRepositoryError(err)
	}
	for i := range payments {
		if summary, ok := summaries[payments[i].UserID]; ok {
			payments[i].User = &summary
		}
	}
	return nil
}

func (s *paymentService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrPaymentNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrPaymentConflict, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("payment: repository unavailable: %w", err)
		}
	}

	return err
}

// generateTransactionID builds the human-facing transaction id from the
// creation timestamp plus nine random uppercase base-36 characters. Collisions
// surface as a conflict from the insert transaction's uniqueness probe.
func (s *paymentService) generateTransactionID(now time.Time) string {
	suffix := make([]byte, transactionSuffixLen)
	for i := range suffix {
		suffix[i] = transactionSuffixCharset[s.randInt(len(transactionSuffixCharset))]
	}
	return fmt.Sprintf("%s%d%s", transactionIDPrefix, now.UnixMilli(), suffix)
}

func validCardLastFour(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
