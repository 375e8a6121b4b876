package domain

import (
	"time"
)

// OrderStatus enumerates the lifecycle states of an order.
type OrderStatus string

const (
	// OrderStatusProcessing is the initial state assigned at creation.
	OrderStatusProcessing OrderStatus = "Processing"
	// OrderStatusConfirmed indicates the order has been acknowledged for fulfilment.
	OrderStatusConfirmed OrderStatus = "Confirmed"
	// OrderStatusShipped indicates the order left the warehouse.
	OrderStatusShipped OrderStatus = "Shipped"
	// OrderStatusDelivered is a terminal state.
	OrderStatusDelivered OrderStatus = "Delivered"
	// OrderStatusCancelled is a terminal state.
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// PaymentStatus enumerates the payment progress recorded on an order.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusFailed   PaymentStatus = "Failed"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

// OrderPaymentMethod enumerates how an order is paid.
type OrderPaymentMethod string

const (
	OrderPaymentCashOnDelivery OrderPaymentMethod = "Cash on Delivery"
	OrderPaymentOnline         OrderPaymentMethod = "Online Payment"
)

// PaymentMethod enumerates the instrument recorded on a payment.
type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "Credit/Debit Card"
	PaymentMethodPayPal         PaymentMethod = "PayPal"
	PaymentMethodCashOnDelivery PaymentMethod = "Cash on Delivery"
	PaymentMethodOther          PaymentMethod = "Other"
)

// TransactionStatus enumerates the states of a payment transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "Pending"
	TransactionStatusCompleted TransactionStatus = "Completed"
	TransactionStatusFailed    TransactionStatus = "Failed"
	TransactionStatusRefunded  TransactionStatus = "Refunded"
)

// ValidOrderStatus reports whether the value belongs to the order status set.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusProcessing, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether the value belongs to the payment status set.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// ValidOrderPaymentMethod reports whether the value belongs to the order payment method set.
func ValidOrderPaymentMethod(m OrderPaymentMethod) bool {
	switch m {
	case OrderPaymentCashOnDelivery, OrderPaymentOnline:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether the value belongs to the payment method set.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCard, PaymentMethodPayPal, PaymentMethodCashOnDelivery, PaymentMethodOther:
		return true
	}
	return false
}

// ValidTransactionStatus reports whether the value belongs to the transaction status set.
func ValidTransactionStatus(s TransactionStatus) bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusRefunded:
		return true
	}
	return false
}

// OrderItem is a denormalised product snapshot captured at order creation.
type OrderItem struct {
	ProductID string
	Name      string
	Price     float64
	Quantity  int
	Image     string
}

// ShippingAddress is the delivery destination recorded on an order. All seven
// fields are required at order creation.
type ShippingAddress struct {
	FullName string
	Phone    string
	Address  string
	City     string
	State    string
	ZipCode  string
	Country  string
}

// Complete reports whether every address field is present.
func (a ShippingAddress) Complete() bool {
	return a.FullName != "" && a.Phone != "" && a.Address != "" &&
		a.City != "" && a.State != "" && a.ZipCode != "" && a.Country != ""
}

// Order is the aggregate persisted per checkout. OrderNumber and OrderDate are
// immutable once set; PaymentID is a weak reference to a Payment document.
type Order struct {
	ID              string
	OrderNumber     string
	UserID          string
	Items           []OrderItem
	ShippingAddress ShippingAddress
	PaymentMethod   OrderPaymentMethod
	PaymentID       string
	Subtotal        float64
	ShippingCost    float64
	TotalAmount     float64
	PaymentStatus   PaymentStatus
	OrderStatus     OrderStatus
	OrderDate       time.Time
	DeliveryDate    *time.Time
	Notes           string

	// Payment carries the resolved cross-link on read paths that request it.
	Payment *Payment
	// User carries the account projection on admin listings.
	User *UserSummary
}

// Payment records a (simulated) payment transaction. OrderID is a weak back
// reference set when the linked order is created; a payment with an empty
// OrderID is an orphan and is surfaced as such by the query layer.
type Payment struct {
	ID                string
	UserID            string
	OrderID           string
	Amount            float64
	PaymentMethod     PaymentMethod
	CardLastFour      string
	TransactionID     string
	TransactionStatus TransactionStatus
	PaymentDate       time.Time
	RefundDate        *time.Time
	RefundAmount      float64
	Notes             string

	// Order carries the resolved cross-link on read paths that request it.
	Order *Order
	// User carries the account projection on admin listings.
	User *UserSummary
}

// UserSummary is the display projection of an account used by admin listings.
type UserSummary struct {
	FullName string
	Email    string
}

// User is an account directory entry. PasswordHash holds a bcrypt digest;
// raw passwords are never persisted.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Phone        string
	CreatedAt    time.Time
}

// Product is a catalog entry. Orders embed snapshots of these fields rather
// than referencing them live.
type Product struct {
	ID          string
	Name        string
	Category    string
	Price       float64
	Unit        string
	Image       string
	Description string
	InStock     bool
	CreatedAt   time.Time
}

// ContactMessage is a stored contact-form submission.
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}
