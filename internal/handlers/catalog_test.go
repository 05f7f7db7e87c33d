package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kimotaku1/Ecommerce-forever/internal/domain"
	"github.com/kimotaku1/Ecommerce-forever/internal/services"
)

type stubCatalogService struct {
	addProductFn    func(ctx context.Context, input services.AddProductInput) (domain.Product, error)
	removeProductFn func(ctx context.Context, productID string) error
	getProductFn    func(ctx context.Context, productID string) (domain.Product, error)
	listProductsFn  func(ctx context.Context) ([]domain.Product, error)
}

func (s *stubCatalogService) AddProduct(ctx context.Context, input services.AddProductInput) (domain.Product, error) {
	return s.addProductFn(ctx, input)
}

func (s *stubCatalogService) RemoveProduct(ctx context.Context, productID string) error {
	return s.removeProductFn(ctx, productID)
}

func (s *stubCatalogService) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	return s.getProductFn(ctx, productID)
}

func (s *stubCatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.listProductsFn(ctx)
}

func TestListProductsHandler(t *testing.T) {
	service := &stubCatalogService{
		listProductsFn: func(context.Context) ([]domain.Product, error) {
			return []domain.Product{
				{ID: "prod-1", Name: "Tee", Price: 1500},
				{ID: "prod-2", Name: "Cap", Price: 500},
			}, nil
		},
	}
	router := chi.NewRouter()
	router.Route("/products", NewCatalogHandlers(service).Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decodeEnvelope(t, rr)
	products, ok := payload["products"].([]any)
	if !ok || len(products) != 2 {
		t.Fatalf("products = %v", payload["products"])
	}
}

func TestGetProductHandlerNotFound(t *testing.T) {
	service := &stubCatalogService{
		getProductFn: func(context.Context, string) (domain.Product, error) {
			return domain.Product{}, services.ErrProductNotFound
		},
	}
	router := chi.NewRouter()
	router.Route("/products", NewCatalogHandlers(service).Routes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decodeEnvelope(t, rr)
	if payload["error"] != "product_not_found" {
		t.Fatalf("code = %v", payload["error"])
	}
}

func TestAddProductHandler(t *testing.T) {
	service := &stubCatalogService{
		addProductFn: func(_ context.Context, input services.AddProductInput) (domain.Product, error) {
			if input.Name != "Tee" || input.Price != 1500 {
				t.Fatalf("input = %+v", input)
			}
			return domain.Product{ID: "prod-new", Name: input.Name, Price: input.Price}, nil
		},
	}
	router := chi.NewRouter()
	router.Route("/admin/products", NewCatalogHandlers(service).AdminRoutes)

	body := `{"name": "Tee", "price": 1500, "category": "Men", "sizes": ["S", "M"]}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body)))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	payload := decodeEnvelope(t, rr)
	product, ok := payload["product"].(map[string]any)
	if !ok || product["id"] != "prod-new" {
		t.Fatalf("product = %v", payload["product"])
	}
}

func TestRemoveProductHandler(t *testing.T) {
	removed := ""
	service := &stubCatalogService{
		removeProductFn: func(_ context.Context, productID string) error {
			removed = productID
			return nil
		},
	}
	router := chi.NewRouter()
	router.Route("/admin/products", NewCatalogHandlers(service).AdminRoutes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/admin/products/prod-1", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if removed != "prod-1" {
		t.Fatalf("removed = %q", removed)
	}
}
