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

const paymentCollection = "payments"

type paymentDocument struct {
	UserID            string     `firestore:"userId"`
	OrderID           string     `firestore:"orderId,omitempty"`
	Amount            float64    `firestore:"amount"`
	PaymentMethod     string     `firestore:"paymentMethod"`
	CardLastFour      string     `firestore:"cardLastFour,omitempty"`
	TransactionID     string     `firestore:"transactionId"`
	TransactionStatus string     `firestore:"transactionStatus"`
	PaymentDate       time.Time  `firestore:"paymentDate"`
	RefundDate        *time.Time `firestore:"refundDate,omitempty"`
	RefundAmount      float64    `firestore:"refundAmount,omitempty"`
	Notes             string     `firestore:"notes,omitempty"`
}

// PaymentRepository persists payments within Firestore.
type PaymentRepository struct {
	base     *pfirestore.BaseRepository[paymentDocument]
	provider *pfirestore.Provider
}

var _ repositories.PaymentRepository = (*PaymentRepository)(nil)

// NewPaymentRepository constructs a Firestore-backed payment repository.
func NewPaymentRepository(provider *pfirestore.Provider) (*PaymentRepository, error) {
	if provider == nil {
		return nil, errors.New("payment repository requires firestore provider")
	}
	return &PaymentRepository{
		base:     pfirestore.NewBaseRepository[paymentDocument](provider, paymentCollection, nil),
		provider: provider,
	}, nil
}

// Insert writes the payment in a transaction that first probes for an existing
// document with the same transactionId; a hit surfaces as a conflict error.
func (r *PaymentRepository) Insert(ctx context.Context, payment domain.Payment) error {
	if r == nil || r.base == nil {
		return errors.New("payment repository not initialised")
	}

	paymentRef, err := r.base.DocumentRef(ctx, payment.ID)
	if err != nil {
		return err
	}
	coll, err := r.base.CollectionRef(ctx)
	if err != nil {
		return err
	}

	doc := encodePayment(payment)

	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		dup := tx.Documents(coll.Where("transactionId", "==", payment.TransactionID).Limit(1))
		defer dup.Stop()
		_, iterErr := dup.Next()
		if iterErr == nil {
			return pfirestore.NewConflictError("payments.insert",
				fmt.Errorf("transaction id %s already exists", payment.TransactionID))
		}
		if !errors.Is(iterErr, iterator.Done) {
			return pfirestore.WrapError("payments.insert", iterErr)
		}
		return pfirestore.WrapError("payments.insert", tx.Create(paymentRef, doc))
	})
}

// FindByID fetches a single payment.
func (r *PaymentRepository) FindByID(ctx context.Context, paymentID string) (domain.Payment, error) {
	doc, err := r.base.Get(ctx, paymentID)
	if err != nil {
		return domain.Payment{}, err
	}
	return decodePayment(doc.ID, doc.Data), nil
}

// UpdateStatus overwrites the payment's transactionStatus. Last write wins.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, paymentID string, status domain.TransactionStatus) error {
	_, err := r.base.Update(ctx, paymentID, []firestore.Update{
		{Path: "transactionStatus", Value: string(status)},
	})
	return err
}

// ListByUser returns the user's payments, newest first.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID string) ([]domain.Payment, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("userId", "==", userID).OrderBy("paymentDate", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	return decodePayments(docs), nil
}

// ListAll returns every payment across users, newest first.
func (r *PaymentRepository) ListAll(ctx context.Context) ([]domain.Payment, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("paymentDate", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	return decodePayments(docs), nil
}

func encodePayment(payment domain.Payment) paymentDocument {
	doc := paymentDocument{
		UserID:            payment.UserID,
		OrderID:           payment.OrderID,
		Amount:            payment.Amount,
		PaymentMethod:     string(payment.PaymentMethod),
		CardLastFour:      payment.CardLastFour,
		TransactionID:     payment.TransactionID,
		TransactionStatus: string(payment.TransactionStatus),
		PaymentDate:       payment.PaymentDate.UTC(),
		RefundAmount:      payment.RefundAmount,
		Notes:             payment.Notes,
	}
	if payment.RefundDate != nil {
		utc := payment.RefundDate.UTC()
		doc.RefundDate = &utc
	}
	return doc
}

func decodePayment(id string, doc paymentDocument) domain.Payment {
	return domain.Payment{
		ID:                id,
		UserID:            doc.UserID,
		OrderID:           doc.OrderID,
		Amount:            doc.Amount,
		PaymentMethod:     domain.PaymentMethod(doc.PaymentMethod),
		CardLastFour:      doc.CardLastFour,
		TransactionID:     doc.TransactionID,
		TransactionStatus: domain.TransactionStatus(doc.TransactionStatus),
		PaymentDate:       doc.PaymentDate,
		RefundDate:        doc.RefundDate,
		RefundAmount:      doc.RefundAmount,
		Notes:             doc.Notes,
	}
}

func decodePayments(docs []pfirestore.Document[paymentDocument]) []domain.Payment {
	payments := make([]domain.Payment, 0, len(docs))
	for _, doc := range docs {
		payments = append(payments, decodePayment(doc.ID, doc.Data))
	}
	return payments
}
