package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kimotaku1/Ecommerce-forever/internal/domain"
)

type stubProductRepository struct {
	insertFn   func(ctx context.Context, product domain.Product) error
	findByIDFn func(ctx context.Context, productID string) (domain.Product, error)
	deleteFn   func(ctx context.Context, productID string) error
	listAllFn  func(ctx context.Context) ([]domain.Product, error)
}

func (s *stubProductRepository) Insert(ctx context.Context, product domain.Product) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, product)
}

func (s *stubProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if s.findByIDFn == nil {
		return domain.Product{}, &stubRepoError{notFound: true}
	}
	return s.findByIDFn(ctx, productID)
}

func (s *stubProductRepository) Delete(ctx context.Context, productID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, productID)
}

func (s *stubProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx)
}

func newTestCatalogService(t *testing.T, products *stubProductRepository) CatalogService {
	t.Helper()
	svc, err := NewCatalogService(CatalogServiceDeps{
		Products:    products,
		Clock:       fixedClock(),
		IDGenerator: func() string { return "prod-new" },
	})
	if err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	return svc
}

func TestAddProductAssignsIDAndTimestamps(t *testing.T) {
	var inserted domain.Product
	products := &stubProductRepository{
		insertFn: func(_ context.Context, product domain.Product) error {
			inserted = product
			return nil
		},
	}
	svc := newTestCatalogService(t, products)

	product, err := svc.AddProduct(context.Background(), AddProductInput{
		Name:        "  Plain Tee  ",
		Description: "Cotton tee",
		Price:       1500,
		Category:    "Men",
		SubCategory: "Topwear",
		Sizes:       []string{"S", "M", "L"},
		Bestseller:  true,
	})
	if err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if product.ID != "prod-new" {
		t.Fatalf("id = %q", product.ID)
	}
	if inserted.Name != "Plain Tee" {
		t.Fatalf("name must be trimmed, got %q", inserted.Name)
	}
	if inserted.CreatedAt.IsZero() {
		t.Fatalf("created-at must be stamped")
	}
}

func TestAddProductRejectsInvalidInput(t *testing.T) {
	svc := newTestCatalogService(t, &stubProductRepository{})

	if _, err := svc.AddProduct(context.Background(), AddProductInput{Name: "  "}); !errors.Is(err, ErrProductInvalidInput) {
		t.Fatalf("err = %v, want ErrProductInvalidInput", err)
	}
	if _, err := svc.AddProduct(context.Background(), AddProductInput{Name: "Tee", Price: -1}); !errors.Is(err, ErrProductInvalidInput) {
		t.Fatalf("err = %v, want ErrProductInvalidInput", err)
	}
}

func TestGetProductMapsNotFound(t *testing.T) {
	svc := newTestCatalogService(t, &stubProductRepository{})

	if _, err := svc.GetProduct(context.Background(), "missing"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

func TestRemoveProductMapsNotFound(t *testing.T) {
	products := &stubProductRepository{
		deleteFn: func(context.Context, string) error {
			return &stubRepoError{notFound: true}
		},
	}
	svc := newTestCatalogService(t, products)

	if err := svc.RemoveProduct(context.Background(), "missing"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

func TestListProductsMapsUnavailable(t *testing.T) {
	products := &stubProductRepository{
		listAllFn: func(context.Context) ([]domain.Product, error) {
			return nil, &stubRepoError{unavailable: true}
		},
	}
	svc := newTestCatalogService(t, products)

	if _, err := svc.ListProducts(context.Background()); !errors.Is(err, ErrCatalogUnavailable) {
		t.Fatalf("err = %v, want ErrCatalogUnavailable", err)
	}
}
