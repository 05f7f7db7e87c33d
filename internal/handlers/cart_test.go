package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kimotaku1/Ecommerce-forever/internal/domain"
	"github.com/kimotaku1/Ecommerce-forever/internal/services"
)

type stubCartService struct {
	getFn    func(ctx context.Context, accountID string) (domain.CartData, error)
	addFn    func(ctx context.Context, accountID, itemID, size string) (domain.CartData, error)
	updateFn func(ctx context.Context, accountID, itemID, size string, quantity int) (domain.CartData, error)
}

func (s *stubCartService) Get(ctx context.Context, accountID string) (domain.CartData, error) {
	return s.getFn(ctx, accountID)
}

func (s *stubCartService) Add(ctx context.Context, accountID, itemID, size string) (domain.CartData, error) {
	return s.addFn(ctx, accountID, itemID, size)
}

func (s *stubCartService) Update(ctx context.Context, accountID, itemID, size string, quantity int) (domain.CartData, error) {
	return s.updateFn(ctx, accountID, itemID, size, quantity)
}

func newCartRouter(service services.CartService) chi.Router {
	router := chi.NewRouter()
	router.Route("/cart", NewCartHandlers(service).Routes)
	return router
}

func TestGetCartHandler(t *testing.T) {
	service := &stubCartService{
		getFn: func(_ context.Context, accountID string) (domain.CartData, error) {
			if accountID != "acct-1" {
				t.Fatalf("account id = %q", accountID)
			}
			return domain.CartData{"prod-1": {"M": 2}}, nil
		},
	}
	router := newCartRouter(service)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/cart", "", "acct-1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	payload := decodeEnvelope(t, rr)
	cart, ok := payload["cartData"].(map[string]any)
	if !ok {
		t.Fatalf("cartData = %v", payload["cartData"])
	}
	sizes, ok := cart["prod-1"].(map[string]any)
	if !ok || sizes["M"] != float64(2) {
		t.Fatalf("cart entry = %v", cart["prod-1"])
	}
}

func TestGetCartHandlerRequiresAuth(t *testing.T) {
	router := newCartRouter(&stubCartService{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodGet, "/cart", "", ""))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestAddCartItemHandler(t *testing.T) {
	service := &stubCartService{
		addFn: func(_ context.Context, accountID, itemID, size string) (domain.CartData, error) {
			if itemID != "prod-2" || size != "L" {
				t.Fatalf("args = %q %q", itemID, size)
			}
			return domain.CartData{"prod-2": {"L": 1}}, nil
		},
	}
	router := newCartRouter(service)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPost, "/cart/items", `{"itemId": "prod-2", "size": "L"}`, "acct-1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
}

func TestUpdateCartItemHandlerValidation(t *testing.T) {
	service := &stubCartService{
		updateFn: func(context.Context, string, string, string, int) (domain.CartData, error) {
			return nil, services.ErrCartInvalidInput
		},
	}
	router := newCartRouter(service)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authedRequest(http.MethodPut, "/cart/items", `{"itemId": "", "size": "M", "quantity": 1}`, "acct-1"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decodeEnvelope(t, rr)
	if payload["error"] != "validation_error" {
		t.Fatalf("code = %v", payload["error"])
	}
}
