package repositories

import (
	"context"
	"time"

	domain "github.com/quickcart/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// OrderStatusUpdate carries the optional fields mutated by a status update.
// Nil fields are left untouched.
type OrderStatusUpdate struct {
	OrderStatus   *domain.OrderStatus
	PaymentStatus *domain.PaymentStatus
	DeliveryDate  *time.Time
}

// OrderRepository persists order documents.
//
// Insert is atomic: the uniqueness probe on orderNumber, the order write, and
// the payment back-link (when the order references a payment) commit in one
// storage transaction. A duplicate orderNumber surfaces as a conflict error.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, update OrderStatusUpdate) error
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
}

// PaymentRepository persists payment documents. Insert enforces transactionId
// uniqueness the same way OrderRepository.Insert does for orderNumber.
type PaymentRepository interface {
	Insert(ctx context.Context, payment domain.Payment) error
	FindByID(ctx context.Context, paymentID string) (domain.Payment, error)
	UpdateStatus(ctx context.Context, paymentID string, status domain.TransactionStatus) error
	ListByUser(ctx context.Context, userID string) ([]domain.Payment, error)
	ListAll(ctx context.Context) ([]domain.Payment, error)
}

// ProductListFilter narrows catalog listings.
type ProductListFilter struct {
	Category string
}

// ProductRepository persists catalog entries.
type ProductRepository interface {
	Insert(ctx context.Context, product domain.Product) error
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	List(ctx context.Context, filter ProductListFilter) ([]domain.Product, error)
}

// UserRepository persists account directory entries. Insert enforces email
// uniqueness and surfaces duplicates as a conflict error.
type UserRepository interface {
	Insert(ctx context.Context, user domain.User) error
	FindByID(ctx context.Context, userID string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	SummariesByIDs(ctx context.Context, userIDs []string) (map[string]domain.UserSummary, error)
}

// ContactRepository persists contact-form submissions.
type ContactRepository interface {
	Insert(ctx context.Context, message domain.ContactMessage) error
	ListAll(ctx context.Context) ([]domain.ContactMessage, error)
}
