package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/quickcart/api/internal/repositories"
)

const productIDPrefix = "prd_"

var (
	// ErrProductInvalidInput signals the caller provided invalid data.
	ErrProductInvalidInput = errors.New("product: invalid input")
	// ErrProductNotFound indicates the product could not be located.
	ErrProductNotFound = errors.New("product: not found")
)

// CatalogServiceDeps bundles collaborators required to construct the catalog service.
type CatalogServiceDeps struct {
	Products    repositories.ProductRepository
	Clock       func() time.Time
	IDGenerator func() string
}

type catalogService struct {
	products repositories.ProductRepository
	clock    func() time.Time
	newID    func() string
}

// NewCatalogService wires dependencies into a concrete CatalogService implementation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
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

	return &catalogService{
		products: deps.Products,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: idGen,
	}, nil
}

// ListProducts applies the category filter at the storage layer and the free
// text search in memory; the document store has no substring queries.
func (s *catalogService) ListProducts(ctx context.Context, filter ProductSearchFilter) ([]Product, error) {
	products, err := s.products.List(ctx, repositories.ProductListFilter{
		Category: strings.TrimSpace(filter.Category),
	})
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	if search == "" {
		return products, nil
	}

	matched := products[:0]
	for _, product := range products {
		if strings.Contains(strings.ToLower(product.Name), search) ||
			strings.Contains(strings.ToLower(product.Category), search) ||
			strings.Contains(strings.ToLower(product.Description), search) {
			matched = append(matched, product)
		}
	}
	return matched, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (Product, error) {
	if strings.TrimSpace(productID) == "" {
		return Product{}, fmt.Errorf("%w: product id is required", ErrProductInvalidInput)
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (Product, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return Product{}, fmt.Errorf("%w: name is required", ErrProductInvalidInput)
	}
	category := strings.TrimSpace(cmd.Category)
	if category == "" {
		return Product{}, fmt.Errorf("%w: category is required", ErrProductInvalidInput)
	}
	if cmd.Price == nil {
		return Product{}, fmt.Errorf("%w: price is required", ErrProductInvalidInput)
	}
	if *cmd.Price < 0 {
		return Product{}, fmt.Errorf("%w: price must not be negative", ErrProductInvalidInput)
	}

	inStock := true
	if cmd.InStock != nil {
		inStock = *cmd.InStock
	}

	product := Product{
		ID:          productIDPrefix + s.newID(),
		Name:        name,
		Category:    category,
		Price:       *cmd.Price,
		Unit:        strings.TrimSpace(cmd.Unit),
		Image:       strings.TrimSpace(cmd.Image),
		Description: strings.TrimSpace(cmd.Description),
		InStock:     inStock,
		CreatedAt:   s.clock(),
	}

	if err := s.products.Insert(ctx, product); err != nil {
		return Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrProductNotFound, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("product: repository unavailable: %w", err)
		}
	}

	return err
}
