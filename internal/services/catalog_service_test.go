package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/quickcart/api/internal/domain"
	"github.com/quickcart/api/internal/repositories"
)

type stubProductRepo struct {
	insertFn func(context.Context, domain.Product) error
	findFn   func(context.Context, string) (domain.Product, error)
	listFn   func(context.Context, repositories.ProductListFilter) ([]domain.Product, error)
}

func (s *stubProductRepo) Insert(ctx context.Context, product domain.Product) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, product)
	}
	return nil
}

func (s *stubProductRepo) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if s.findFn != nil {
		return s.findFn(ctx, productID)
	}
	return domain.Product{}, errors.New("not implemented")
}

func (s *stubProductRepo) List(ctx context.Context, filter repositories.ProductListFilter) ([]domain.Product, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, nil
}

func newTestCatalogService(t *testing.T, products *stubProductRepo) CatalogService {
	t.Helper()
	svc, err := NewCatalogService(CatalogServiceDeps{
		Products:    products,
		Clock:       func() time.Time { return time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC) },
		IDGenerator: func() string { return "000TEST" },
	})
	if err != nil {
		t.Fatalf("new catalog service: %v", err)
	}
	return svc
}

func TestCatalogServiceListProductsSearch(t *testing.T) {
	ctx := context.Background()
	products := &stubProductRepo{
		listFn: func(_ context.Context, filter repositories.ProductListFilter) ([]domain.Product, error) {
			if filter.Category != "" {
				t.Fatalf("no category expected, got %q", filter.Category)
			}
			return []domain.Product{
				{ID: "prd_1", Name: "Organic Bananas", Category: "Fruit", Description: "Sweet and ripe"},
				{ID: "prd_2", Name: "Whole Milk", Category: "Dairy", Description: "One gallon"},
				{ID: "prd_3", Name: "Banana Bread", Category: "Bakery", Description: "Fresh daily"},
			}, nil
		},
	}
	svc := newTestCatalogService(t, products)

	matched, err := svc.ListProducts(ctx, ProductSearchFilter{Search: "banana"})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(matched) != 2 || matched[0].ID != "prd_1" || matched[1].ID != "prd_3" {
		t.Fatalf("unexpected search results %+v", matched)
	}

	matched, err = svc.ListProducts(ctx, ProductSearchFilter{Search: "DAIRY"})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(matched) != 1 || matched[0].ID != "prd_2" {
		t.Fatalf("category text should match case-insensitively, got %+v", matched)
	}
}

func TestCatalogServiceListProductsCategoryPassthrough(t *testing.T) {
	ctx := context.Background()
	products := &stubProductRepo{
		listFn: func(_ context.Context, filter repositories.ProductListFilter) ([]domain.Product, error) {
			if filter.Category != "Fruit" {
				t.Fatalf("expected category Fruit got %q", filter.Category)
			}
			return nil, nil
		},
	}
	svc := newTestCatalogService(t, products)

	if _, err := svc.ListProducts(ctx, ProductSearchFilter{Category: "Fruit"}); err != nil {
		t.Fatalf("list products: %v", err)
	}
}

func TestCatalogServiceCreateProduct(t *testing.T) {
	ctx := context.Background()
	var inserted domain.Product
	products := &stubProductRepo{
		insertFn: func(_ context.Context, product domain.Product) error {
			inserted = product
			return nil
		},
	}
	svc := newTestCatalogService(t, products)

	price := 3.49
	product, err := svc.CreateProduct(ctx, CreateProductCommand{
		Name:     "Organic Bananas",
		Category: "Fruit",
		Price:    &price,
		Unit:     "lb",
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if product.ID != "prd_000TEST" {
		t.Fatalf("unexpected product id %s", product.ID)
	}
	if !inserted.InStock {
		t.Fatalf("in-stock should default to true")
	}
}

func TestCatalogServiceCreateProductValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestCatalogService(t, &stubProductRepo{
		insertFn: func(context.Context, domain.Product) error {
			t.Fatalf("insert must not be called")
			return nil
		},
	})

	price := 3.49
	negative := -1.0
	cases := []CreateProductCommand{
		{Category: "Fruit", Price: &price},
		{Name: "Bananas", Price: &price},
		{Name: "Bananas", Category: "Fruit"},
		{Name: "Bananas", Category: "Fruit", Price: &negative},
	}
	for _, cmd := range cases {
		if _, err := svc.CreateProduct(ctx, cmd); !errors.Is(err, ErrProductInvalidInput) {
			t.Fatalf("expected invalid input for %+v got %v", cmd, err)
		}
	}
}

func TestCatalogServiceGetProductNotFound(t *testing.T) {
	ctx := context.Background()
	products := &stubProductRepo{
		findFn: func(context.Context, string) (domain.Product, error) {
			return domain.Product{}, &repoError{msg: "missing", notFound: true}
		},
	}
	svc := newTestCatalogService(t, products)

	if _, err := svc.GetProduct(ctx, "prd_missing"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
}
