package services

import (
	"context"

	domain "github.com/quickcart/api/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Order              = domain.Order
	OrderItem          = domain.OrderItem
	ShippingAddress    = domain.ShippingAddress
	OrderStatus        = domain.OrderStatus
	PaymentStatus      = domain.PaymentStatus
	OrderPaymentMethod = domain.OrderPaymentMethod
	Payment            = domain.Payment
	PaymentMethod      = domain.PaymentMethod
	TransactionStatus  = domain.TransactionStatus
	User               = domain.User
	UserSummary        = domain.UserSummary
	Product            = domain.Product
	ContactMessage     = domain.ContactMessage
)

// OrderService owns order creation, numbering, status transitions, and the
// order read surface.
type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (Order, error)
	GetOrder(ctx context.Context, orderID string) (Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]Order, error)
	ListAllOrders(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, cmd UpdateOrderStatusCommand) (Order, error)
	Cancel(ctx context.Context, orderID string) (Order, error)
}

// CreateOrderCommand carries the checkout payload. PaymentID links an already
// created payment; OrderStatus and PaymentStatus default to Processing and
// Pending when empty.
type CreateOrderCommand struct {
	UserID          string
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   OrderPaymentMethod
	PaymentID       string
	Subtotal        float64
	ShippingCost    float64
	TotalAmount     float64
	PaymentStatus   PaymentStatus
	Notes           string
}

// UpdateOrderStatusCommand applies the non-nil status fields to an order.
type UpdateOrderStatusCommand struct {
	OrderID       string
	OrderStatus   *OrderStatus
	PaymentStatus *PaymentStatus
}

// PaymentService owns (simulated) payment recording and its read surface.
type PaymentService interface {
	CreatePayment(ctx context.Context, cmd CreatePaymentCommand) (Payment, error)
	GetPayment(ctx context.Context, paymentID string) (Payment, error)
	ListUserPayments(ctx context.Context, userID string) ([]Payment, error)
	ListAllPayments(ctx context.Context, filter PaymentListFilter) ([]Payment, error)
	UpdateStatus(ctx context.Context, cmd UpdatePaymentStatusCommand) (Payment, error)
}

// CreatePaymentCommand carries the payment payload. Amount is a pointer so a
// missing field is distinguishable from zero; TransactionStatus defaults to
// Pending when empty.
type CreatePaymentCommand struct {
	UserID            string
	Amount            *float64
	PaymentMethod     PaymentMethod
	CardLastFour      string
	TransactionStatus TransactionStatus
	Notes             string
}

// PaymentListFilter narrows the admin payment listing.
type PaymentListFilter struct {
	// OrphanedOnly keeps only payments with no order back-reference.
	OrphanedOnly bool
}

// UpdatePaymentStatusCommand overwrites a payment's transaction status.
type UpdatePaymentStatusCommand struct {
	PaymentID         string
	TransactionStatus TransactionStatus
}

// CatalogService owns product reads and the admin/seeding create path.
type CatalogService interface {
	ListProducts(ctx context.Context, filter ProductSearchFilter) ([]Product, error)
	GetProduct(ctx context.Context, productID string) (Product, error)
	CreateProduct(ctx context.Context, cmd CreateProductCommand) (Product, error)
}

// ProductSearchFilter narrows catalog listings. Search matches name, category,
// and description case-insensitively.
type ProductSearchFilter struct {
	Category string
	Search   string
}

// CreateProductCommand carries the catalog create payload. InStock defaults to
// true when nil.
type CreateProductCommand struct {
	Name        string
	Category    string
	Price       *float64
	Unit        string
	Image       string
	Description string
	InStock     *bool
}

// AccountService owns signup and credential verification.
type AccountService interface {
	SignUp(ctx context.Context, cmd SignUpCommand) (User, error)
	LogIn(ctx context.Context, cmd LogInCommand) (User, error)
}

// SignUpCommand carries the registration payload.
type SignUpCommand struct {
	FullName string
	Email    string
	Password string
	Phone    string
}

// LogInCommand carries the credential pair.
type LogInCommand struct {
	Email    string
	Password string
}

// ContactService owns contact-form intake and the admin inbox listing.
type ContactService interface {
	Submit(ctx context.Context, cmd SubmitMessageCommand) (ContactMessage, error)
	ListMessages(ctx context.Context) ([]ContactMessage, error)
}

// SubmitMessageCommand carries the contact-form payload.
type SubmitMessageCommand struct {
	Name    string
	Email   string
	Subject string
	Message string
}
