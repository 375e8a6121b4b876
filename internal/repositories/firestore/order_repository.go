package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	domain "github.com/quickcart/api/internal/domain"
	pfirestore "github.com/quickcart/api/internal/platform/firestore"
	"github.com/quickcart/api/internal/repositories"
)

const orderCollection = "orders"

type orderItemDocument struct {
	ProductID string  `firestore:"productId"`
	Name      string  `firestore:"name"`
	Price     float64 `firestore:"price"`
	Quantity  int     `firestore:"quantity"`
	Image     string  `firestore:"image,omitempty"`
}

type shippingAddressDocument struct {
	FullName string `firestore:"fullName"`
	Phone    string `firestore:"phone"`
	Address  string `firestore:"address"`
	City     string `firestore:"city"`
	State    string `firestore:"state"`
	ZipCode  string `firestore:"zipCode"`
	Country  string `firestore:"country"`
}

type orderDocument struct {
	OrderNumber     string                  `firestore:"orderNumber"`
	UserID          string                  `firestore:"userId"`
	Items           []orderItemDocument     `firestore:"items"`
	ShippingAddress shippingAddressDocument `firestore:"shippingAddress"`
	PaymentMethod   string                  `firestore:"paymentMethod"`
	PaymentID       string                  `firestore:"paymentId"`
	Subtotal        float64                 `firestore:"subtotal"`
	ShippingCost    float64                 `firestore:"shippingCost"`
	TotalAmount     float64                 `firestore:"totalAmount"`
	PaymentStatus   string                  `firestore:"paymentStatus"`
	OrderStatus     string                  `firestore:"orderStatus"`
	OrderDate       time.Time               `firestore:"orderDate"`
	DeliveryDate    *time.Time              `firestore:"deliveryDate,omitempty"`
	Notes           string                  `firestore:"notes,omitempty"`
}

// OrderRepository persists orders within Firestore.
type OrderRepository struct {
	base     *pfirestore.BaseRepository[orderDocument]
	payments *pfirestore.BaseRepository[paymentDocument]
	provider *pfirestore.Provider
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	return &OrderRepository{
		base:     pfirestore.NewBaseRepository[orderDocument](provider, orderCollection, nil),
		payments: pfirestore.NewBaseRepository[paymentDocument](provider, paymentCollection, nil),
		provider: provider,
	}, nil
}

// Insert writes the order in a single transaction: it probes for an existing
// document with the same orderNumber (conflict on hit), creates the order, and
// back-links the referenced payment's orderId when one is set.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}

	orderRef, err := r.base.DocumentRef(ctx, order.ID)
	if err != nil {
		return err
	}
	coll, err := r.base.CollectionRef(ctx)
	if err != nil {
		return err
	}

	var paymentRef *firestore.DocumentRef
	if order.PaymentID != "" {
		paymentRef, err = r.payments.DocumentRef(ctx, order.PaymentID)
		if err != nil {
			return err
		}
	}

	doc := encodeOrder(order)

	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		dup := tx.Documents(coll.Where("orderNumber", "==", order.OrderNumber).Limit(1))
		defer dup.Stop()
		_, iterErr := dup.Next()
		if iterErr == nil {
			return pfirestore.NewConflictError("orders.insert",
				fmt.Errorf("order number %s already exists", order.OrderNumber))
		}
		if !errors.Is(iterErr, iterator.Done) {
			return pfirestore.WrapError("orders.insert", iterErr)
		}

		if paymentRef != nil {
			if _, err := tx.Get(paymentRef); err != nil {
				return pfirestore.WrapError("orders.insert", err)
			}
		}

		if err := tx.Create(orderRef, doc); err != nil {
			return pfirestore.WrapError("orders.insert", err)
		}
		if paymentRef != nil {
			if err := tx.Update(paymentRef, []firestore.Update{{Path: "orderId", Value: order.ID}}); err != nil {
				return pfirestore.WrapError("orders.insert", err)
			}
		}
		return nil
	})
}

// FindByID fetches a single order.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	doc, err := r.base.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return decodeOrder(doc.ID, doc.Data), nil
}

// UpdateStatus applies the non-nil status fields. Concurrent updates are
// last-write-wins; there is no version precondition.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, update repositories.OrderStatusUpdate) error {
	updates := make([]firestore.Update, 0, 3)
	if update.OrderStatus != nil {
		updates = append(updates, firestore.Update{Path: "orderStatus", Value: string(*update.OrderStatus)})
	}
	if update.PaymentStatus != nil {
		updates = append(updates, firestore.Update{Path: "paymentStatus", Value: string(*update.PaymentStatus)})
	}
	if update.DeliveryDate != nil {
		updates = append(updates, firestore.Update{Path: "deliveryDate", Value: update.DeliveryDate.UTC()})
	}
	if len(updates) == 0 {
		return nil
	}
	_, err := r.base.Update(ctx, orderID, updates)
	return err
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("userId", "==", userID).OrderBy("orderDate", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	return decodeOrders(docs), nil
}

// ListAll returns every order across users, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("orderDate", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	return decodeOrders(docs), nil
}

func encodeOrder(order domain.Order) orderDocument {
	items := make([]orderItemDocument, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemDocument{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
		})
	}

	doc := orderDocument{
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Items:       items,
		ShippingAddress: shippingAddressDocument{
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
		OrderDate:     order.OrderDate.UTC(),
		Notes:         order.Notes,
	}
	if order.DeliveryDate != nil {
		utc := order.DeliveryDate.UTC()
		doc.DeliveryDate = &utc
	}
	return doc
}

func decodeOrder(id string, doc orderDocument) domain.Order {
	items := make([]domain.OrderItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
		})
	}

	return domain.Order{
		ID:          id,
		OrderNumber: doc.OrderNumber,
		UserID:      doc.UserID,
		Items:       items,
		ShippingAddress: domain.ShippingAddress{
			FullName: doc.ShippingAddress.FullName,
			Phone:    doc.ShippingAddress.Phone,
			Address:  doc.ShippingAddress.Address,
			City:     doc.ShippingAddress.City,
			State:    doc.ShippingAddress.State,
			ZipCode:  doc.ShippingAddress.ZipCode,
			Country:  doc.ShippingAddress.Country,
		},
		PaymentMethod: domain.OrderPaymentMethod(doc.PaymentMethod),
		PaymentID:     doc.PaymentID,
		Subtotal:      doc.Subtotal,
		ShippingCost:  doc.ShippingCost,
		TotalAmount:   doc.TotalAmount,
		PaymentStatus: domain.PaymentStatus(doc.PaymentStatus),
		OrderStatus:   domain.OrderStatus(doc.OrderStatus),
		OrderDate:     doc.OrderDate,
		DeliveryDate:  doc.DeliveryDate,
		Notes:         doc.Notes,
	}
}

func decodeOrders(docs []pfirestore.Document[orderDocument]) []domain.Order {
	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, decodeOrder(doc.ID, doc.Data))
	}
	return orders
}
