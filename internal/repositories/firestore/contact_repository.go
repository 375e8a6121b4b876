package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/quickcart/api/internal/domain"
	pfirestore "github.com/quickcart/api/internal/platform/firestore"
	"github.com/quickcart/api/internal/repositories"
)

const contactCollection = "contactMessages"

type contactDocument struct {
	Name      string    `firestore:"name"`
	Email     string    `firestore:"email"`
	Subject   string    `firestore:"subject,omitempty"`
	Message   string    `firestore:"message"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// ContactRepository persists contact-form submissions within Firestore.
type ContactRepository struct {
	base *pfirestore.BaseRepository[contactDocument]
}

var _ repositories.ContactRepository = (*ContactRepository)(nil)

// NewContactRepository constructs a Firestore-backed contact repository.
func NewContactRepository(provider *pfirestore.Provider) (*ContactRepository, error) {
	if provider == nil {
		return nil, errors.New("contact repository requires firestore provider")
	}
	return &ContactRepository{
		base: pfirestore.NewBaseRepository[contactDocument](provider, contactCollection, nil),
	}, nil
}

// Insert creates the message document.
func (r *ContactRepository) Insert(ctx context.Context, message domain.ContactMessage) error {
	_, err := r.base.Create(ctx, message.ID, contactDocument{
		Name:      message.Name,
		Email:     message.Email,
		Subject:   message.Subject,
		Message:   message.Message,
		CreatedAt: message.CreatedAt.UTC(),
	})
	return err
}

// ListAll returns every stored message, newest first.
func (r *ContactRepository) ListAll(ctx context.Context) ([]domain.ContactMessage, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	messages := make([]domain.ContactMessage, 0, len(docs))
	for _, doc := range docs {
		messages = append(messages, domain.ContactMessage{
			ID:        doc.ID,
			Name:      doc.Data.Name,
			Email:     doc.Data.Email,
			Subject:   doc.Data.Subject,
			Message:   doc.Data.Message,
			CreatedAt: doc.Data.CreatedAt,
		})
	}
	return messages, nil
}
