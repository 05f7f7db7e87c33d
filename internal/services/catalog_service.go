package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kimotaku1/Ecommerce-forever/internal/domain"
	"github.com/kimotaku1/Ecommerce-forever/internal/platform/textutil"
	"github.com/kimotaku1/Ecommerce-forever/internal/repositories"
)

var (
	// ErrProductInvalidInput signals the caller provided invalid product data.
	ErrProductInvalidInput = errors.New("catalog: invalid input")
	// ErrProductNotFound indicates the product could not be located.
	ErrProductNotFound = errors.New("catalog: product not found")
	// ErrCatalogUnavailable indicates a transient persistence failure.
	ErrCatalogUnavailable = errors.New("catalog: repository unavailable")
)

// AddProductInput captures a new catalog entry.
type AddProductInput struct {
	Name        string
	Description string
	Price       int64
	Images      []string
	Category    string
	SubCategory string
	Sizes       []string
	Bestseller  bool
}

// CatalogService manages the product catalog consumed by the storefront.
type CatalogService interface {
	AddProduct(ctx context.Context, input AddProductInput) (domain.Product, error)
	RemoveProduct(ctx context.Context, productID string) error
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

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
	newID := deps.IDGenerator
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	return &catalogService{products: deps.Products, clock: clock, newID: newID}, nil
}

// AddProduct validates and stores a new catalog entry.
func (s *catalogService) AddProduct(ctx context.Context, input AddProductInput) (domain.Product, error) {
	name := textutil.NormalizeName(input.Name)
	if name == "" {
		return domain.Product{}, fmt.Errorf("%w: name is required", ErrProductInvalidInput)
	}
	if input.Price < 0 {
		return domain.Product{}, fmt.Errorf("%w: price must not be negative", ErrProductInvalidInput)
	}

	product := domain.Product{
		ID:          s.newID(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Images:      input.Images,
		Category:    strings.TrimSpace(input.Category),
		SubCategory: strings.TrimSpace(input.SubCategory),
		Sizes:       input.Sizes,
		Bestseller:  input.Bestseller,
		CreatedAt:   s.clock().UTC(),
	}

	if err := s.products.Insert(ctx, product); err != nil {
		return domain.Product{}, mapCatalogRepositoryError(err)
	}
	return product, nil
}

// RemoveProduct deletes the catalog entry.
func (s *catalogService) RemoveProduct(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return fmt.Errorf("%w: product id is required", ErrProductInvalidInput)
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return mapCatalogRepositoryError(err)
	}
	return nil
}

// GetProduct fetches a single catalog entry.
func (s *catalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", ErrProductInvalidInput)
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, mapCatalogRepositoryError(err)
	}
	return product, nil
}

// ListProducts returns the full catalog.
func (s *catalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, mapCatalogRepositoryError(err)
	}
	return products, nil
}

func mapCatalogRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrProductNotFound, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
}
