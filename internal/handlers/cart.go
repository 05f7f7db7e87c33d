package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kimotaku1/Ecommerce-forever/internal/platform/auth"
	"github.com/kimotaku1/Ecommerce-forever/internal/platform/httpx"
	"github.com/kimotaku1/Ecommerce-forever/internal/services"
)

const maxCartBodySize = 16 * 1024

// CartHandlers exposes authenticated cart endpoints for the current shopper.
type CartHandlers struct {
	carts services.CartService
}

// NewCartHandlers constructs handlers backed by the cart service.
func NewCartHandlers(carts services.CartService) *CartHandlers {
	return &CartHandlers{carts: carts}
}

// Routes wires the /cart endpoints onto the provided router. Authentication is
// applied by the router group, not here.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.getCart)
	r.Post("/items", h.addItem)
	r.Put("/items", h.updateItem)
}

type addCartItemRequest struct {
	ItemID string `json:"itemId"`
	Size   string `json:"size"`
}

type updateCartItemRequest struct {
	ItemID   string `json:"itemId"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	cart, err := h.carts.Get(ctx, identity.AccountID)
	if err != nil {
		h.writeCartError(w, r, err)
		return
	}

	httpx.WriteSuccess(ctx, w, http.StatusOK, map[string]any{"cartData": cart})
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req addCartItemRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	cart, err := h.carts.Add(ctx, identity.AccountID, req.ItemID, req.Size)
	if err != nil {
		h.writeCartError(w, r, err)
		return
	}

	httpx.WriteSuccess(ctx, w, http.StatusOK, map[string]any{
		"message":  "added to cart",
		"cartData": cart,
	})
}

func (h *CartHandlers) updateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req updateCartItemRequest
	if err := decodeJSONBody(r, maxCartBodySize, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	cart, err := h.carts.Update(ctx, identity.AccountID, req.ItemID, req.Size, req.Quantity)
	if err != nil {
		h.writeCartError(w, r, err)
		return
	}

	httpx.WriteSuccess(ctx, w, http.StatusOK, map[string]any{
		"message":  "cart updated",
		"cartData": cart,
	})
}

func (h *CartHandlers) writeCartError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, services.ErrCartInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("validation_error", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrAccountNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("account_not_found", "account not found", http.StatusNotFound))
	case errors.Is(err, services.ErrAccountUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "cart operation failed", http.StatusInternalServerError))
	}
}

// requireIdentity fetches the authenticated identity or writes a 401.
func requireIdentity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity.AccountID == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("unauthorized", "not authorized, login again", http.StatusUnauthorized))
		return nil, false
	}
	return identity, true
}
