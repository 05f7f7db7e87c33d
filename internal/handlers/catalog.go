package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kimotaku1/Ecommerce-forever/internal/domain"
	"github.com/kimotaku1/Ecommerce-forever/internal/platform/httpx"
	"github.com/kimotaku1/Ecommerce-forever/internal/services"
)

const maxProductBodySize = 256 * 1024

// CatalogHandlers exposes the public catalog plus the admin mutations.
type CatalogHandlers struct {
	catalog services.CatalogService
}

// NewCatalogHandlers constructs handlers backed by the catalog service.
func NewCatalogHandlers(catalog services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// Routes wires the public /products endpoints onto the provided router.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listProducts)
	r.Get("/{productID}", h.getProduct)
}

// AdminRoutes wires the admin catalog mutations onto the provided router.
func (h *CatalogHandlers) AdminRoutes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.addProduct)
	r.Delete("/{productID}", h.removeProduct)
}

type addProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Images      []string `json:"images"`
	Category    string   `json:"category"`
	SubCategory string   `json:"subCategory"`
	Sizes       []string `json:"sizes"`
	Bestseller  bool     `json:"bestseller"`
}

type productPayload struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       int64    `json:"price"`
	Images      []string `json:"images,omitempty"`
	Category    string   `json:"category,omitempty"`
	SubCategory string   `json:"subCategory,omitempty"`
	Sizes       []string `json:"sizes,omitempty"`
	Bestseller  bool     `json:"bestseller"`
	CreatedAt   string   `json:"createdAt,omitempty"`
}

func buildProductPayload(product domain.Product) productPayload {
	payload := productPayload{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Images:      product.Images,
		Category:    product.Category,
		SubCategory: product.SubCategory,
		Sizes:       product.Sizes,
		Bestseller:  product.Bestseller,
	}
	if !product.CreatedAt.IsZero() {
		payload.CreatedAt = formatTime(product.CreatedAt)
	}
	return payload
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}

	payload := make([]productPayload, 0, len(products))
	for _, product := range products {
		payload = append(payload, buildProductPayload(product))
	}
	httpx.WriteSuccess(ctx, w, http.StatusOK, map[string]any{"products": payload})
}

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	product, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "productID"))
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}

	httpx.WriteSuccess(ctx, w, http.StatusOK, map[string]any{"product": buildProductPayload(product)})
}

func (h *CatalogHandlers) addProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req addProductRequest
	if err := decodeJSONBody(r, maxProductBodySize, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	product, err := h.catalog.AddProduct(ctx, services.AddProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Images:      req.Images,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Sizes:       req.Sizes,
		Bestseller:  req.Bestseller,
	})
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}

	httpx.WriteSuccess(ctx, w, http.StatusCreated, map[string]any{"product": buildProductPayload(product)})
}

func (h *CatalogHandlers) removeProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	if err := h.catalog.RemoveProduct(ctx, chi.URLParam(r, "productID")); err != nil {
		h.writeCatalogError(w, r, err)
		return
	}

	httpx.WriteMessage(ctx, w, http.StatusOK, "product removed")
}

func (h *CatalogHandlers) writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, services.ErrProductInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("validation_error", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCatalogUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "catalog operation failed", http.StatusInternalServerError))
	}
}
