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

const productCollection = "products"

type productDocument struct {
	Name        string    `firestore:"name"`
	Category    string    `firestore:"category"`
	Price       float64   `firestore:"price"`
	Unit        string    `firestore:"unit,omitempty"`
	Image       string    `firestore:"image,omitempty"`
	Description string    `firestore:"description,omitempty"`
	InStock     bool      `firestore:"inStock"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

// ProductRepository persists catalog entries within Firestore.
type ProductRepository struct {
	base *pfirestore.BaseRepository[productDocument]
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository constructs a Firestore-backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository requires firestore provider")
	}
	return &ProductRepository{
		base: pfirestore.NewBaseRepository[productDocument](provider, productCollection, nil),
	}, nil
}

// Insert creates the product document, failing when the ID is taken.
func (r *ProductRepository) Insert(ctx context.Context, product domain.Product) error {
	_, err := r.base.Create(ctx, product.ID, encodeProduct(product))
	return err
}

// FindByID fetches a single product.
func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	doc, err := r.base.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	return decodeProduct(doc.ID, doc.Data), nil
}

// List returns catalog entries, optionally narrowed to a category, newest first.
func (r *ProductRepository) List(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		if filter.Category != "" {
			q = q.Where("category", "==", filter.Category)
		}
		return q.OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, decodeProduct(doc.ID, doc.Data))
	}
	return products, nil
}

func encodeProduct(product domain.Product) productDocument {
	return productDocument{
		Name:        product.Name,
		Category:    product.Category,
		Price:       product.Price,
		Unit:        product.Unit,
		Image:       product.Image,
		Description: product.Description,
		InStock:     product.InStock,
		CreatedAt:   product.CreatedAt.UTC(),
	}
}

func decodeProduct(id string, doc productDocument) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        doc.Name,
		Category:    doc.Category,
		Price:       doc.Price,
		Unit:        doc.Unit,
		Image:       doc.Image,
		Description: doc.Description,
		InStock:     doc.InStock,
		CreatedAt:   doc.CreatedAt,
	}
}
