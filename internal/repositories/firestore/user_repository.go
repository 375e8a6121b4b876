package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	domain "github.com/quickcart/api/internal/domain"
	pfirestore "github.com/quickcart/api/internal/platform/firestore"
	"github.com/quickcart/api/internal/repositories"
)

const userCollection = "users"

type userDocument struct {
	FullName     string    `firestore:"fullName"`
	Email        string    `firestore:"email"`
	PasswordHash string    `firestore:"passwordHash"`
	Phone        string    `firestore:"phone,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

// UserRepository persists account directory entries within Firestore.
type UserRepository struct {
	base     *pfirestore.BaseRepository[userDocument]
	provider *pfirestore.Provider
}

var _ repositories.UserRepository = (*UserRepository)(nil)

// NewUserRepository constructs a Firestore-backed user repository.
func NewUserRepository(provider *pfirestore.Provider) (*UserRepository, error) {
	if provider == nil {
		return nil, errors.New("user repository requires firestore provider")
	}
	return &UserRepository{
		base:     pfirestore.NewBaseRepository[userDocument](provider, userCollection, nil),
		provider: provider,
	}, nil
}

// Insert writes the user in a transaction that first probes for an existing
// document with the same email; a hit surfaces as a conflict error. Emails are
// stored lowercased so the probe is a plain equality match.
func (r *UserRepository) Insert(ctx context.Context, user domain.User) error {
	if r == nil || r.base == nil {
		return errors.New("user repository not initialised")
	}

	userRef, err := r.base.DocumentRef(ctx, user.ID)
	if err != nil {
		return err
	}
	coll, err := r.base.CollectionRef(ctx)
	if err != nil {
		return err
	}

	doc := encodeUser(user)

	return r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		dup := tx.Documents(coll.Where("email", "==", doc.Email).Limit(1))
		defer dup.Stop()
		_, iterErr := dup.Next()
		if iterErr == nil {
			return pfirestore.NewConflictError("users.insert",
				fmt.Errorf("email %s already registered", doc.Email))
		}
		if !errors.Is(iterErr, iterator.Done) {
			return pfirestore.WrapError("users.insert", iterErr)
		}
		return pfirestore.WrapError("users.insert", tx.Create(userRef, doc))
	})
}

// FindByID fetches a single user.
func (r *UserRepository) FindByID(ctx context.Context, userID string) (domain.User, error) {
	doc, err := r.base.Get(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	return decodeUser(doc.ID, doc.Data), nil
}

// FindByEmail looks a user up by lowercased email. A miss surfaces as a
// not-found error.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("email", "==", normalized).Limit(1)
	})
	if err != nil {
		return domain.User{}, err
	}
	if len(docs) == 0 {
		return domain.User{}, pfirestore.NewNotFoundError("users.find_by_email",
			fmt.Errorf("no user registered as %s", normalized))
	}
	return decodeUser(docs[0].ID, docs[0].Data), nil
}

// SummariesByIDs resolves the display projection for the given user IDs.
// Unknown IDs are silently absent from the result.
func (r *UserRepository) SummariesByIDs(ctx context.Context, userIDs []string) (map[string]domain.UserSummary, error) {
	summaries := make(map[string]domain.UserSummary, len(userIDs))
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if _, ok := summaries[id]; ok {
			continue
		}
		doc, err := r.base.Get(ctx, id)
		if err != nil {
			var repoErr repositories.RepositoryError
			if errors.As(err, &repoErr) && repoErr.IsNotFound() {
				continue
			}
			return nil, err
		}
		summaries[id] = domain.UserSummary{
			FullName: doc.Data.FullName,
			Email:    doc.Data.Email,
		}
	}
	return summaries, nil
}

func encodeUser(user domain.User) userDocument {
	return userDocument{
		FullName:     user.FullName,
		Email:        strings.ToLower(strings.TrimSpace(user.Email)),
		PasswordHash: user.PasswordHash,
		Phone:        user.Phone,
		CreatedAt:    user.CreatedAt.UTC(),
	}
}

func decodeUser(id string, doc userDocument) domain.User {
	return domain.User{
		ID:           id,
		FullName:     doc.FullName,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		Phone:        doc.Phone,
		CreatedAt:    doc.CreatedAt,
	}
}
