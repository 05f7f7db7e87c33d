package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/kimotaku1/Ecommerce-forever/internal/domain"
	pfirestore "github.com/kimotaku1/Ecommerce-forever/internal/platform/firestore"
)

const productsCollection = "products"

// ProductRepository persists catalog entries within Firestore.
type ProductRepository struct {
	base *pfirestore.BaseRepository[productDocument]
}

// NewProductRepository constructs a Firestore-backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[productDocument](provider, productsCollection, nil, nil)
	return &ProductRepository{base: base}, nil
}

// Insert upserts the catalog entry under its ID.
func (r *ProductRepository) Insert(ctx context.Context, product domain.Product) error {
	if r == nil || r.base == nil {
		return errors.New("product repository not initialised")
	}
	productID := strings.TrimSpace(product.ID)
	if productID == "" {
		return errors.New("product repository: product id is required")
	}
	_, err := r.base.Set(ctx, productID, productToDocument(product))
	return err
}

// FindByID fetches a single catalog entry.
func (r *ProductRepository) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	if r == nil || r.base == nil {
		return domain.Product{}, errors.New("product repository not initialised")
	}
	doc, err := r.base.Get(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	return doc.Data.toProduct(doc.ID), nil
}

// Delete removes the catalog entry.
func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	if r == nil || r.base == nil {
		return errors.New("product repository not initialised")
	}
	_, err := r.base.Delete(ctx, productID)
	return err
}

// ListAll returns the full catalog, newest first.
func (r *ProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("product repository not initialised")
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.Data.toProduct(doc.ID))
	}
	return products, nil
}

type productDocument struct {
	Name        string    `firestore:"name"`
	Description string    `firestore:"description"`
	Price       int64     `firestore:"price"`
	Images      []string  `firestore:"images"`
	Category    string    `firestore:"category"`
	SubCategory string    `firestore:"subCategory"`
	Sizes       []string  `firestore:"sizes"`
	Bestseller  bool      `firestore:"bestseller"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

func productToDocument(product domain.Product) productDocument {
	images := product.Images
	if images == nil {
		images = []string{}
	}
	sizes := product.Sizes
	if sizes == nil {
		sizes = []string{}
	}
	return productDocument{
		Name:        strings.TrimSpace(product.Name),
		Description: strings.TrimSpace(product.Description),
		Price:       product.Price,
		Images:      images,
		Category:    strings.TrimSpace(product.Category),
		SubCategory: strings.TrimSpace(product.SubCategory),
		Sizes:       sizes,
		Bestseller:  product.Bestseller,
		CreatedAt:   product.CreatedAt.UTC(),
	}
}

func (d productDocument) toProduct(id string) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Images:      d.Images,
		Category:    d.Category,
		SubCategory: d.SubCategory,
		Sizes:       d.Sizes,
		Bestseller:  d.Bestseller,
		CreatedAt:   d.CreatedAt,
	}
}
