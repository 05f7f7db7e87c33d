package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kimotaku1/Ecommerce-forever/internal/services"
)

type stubNewsletterService struct {
	subscribeFn func(ctx context.Context, email string) error
}

func (s *stubNewsletterService) Subscribe(ctx context.Context, email string) error {
	return s.subscribeFn(ctx, email)
}

func newNewsletterRouter(service services.NewsletterService) chi.Router {
	router := chi.NewRouter()
	router.Route("/newsletter", NewNewsletterHandlers(service).Routes)
	return router
}

func TestSubscribeHandlerSuccess(t *testing.T) {
	var got string
	service := &stubNewsletterService{
		subscribeFn: func(_ context.Context, email string) error {
			got = email
			return nil
		},
	}
	router := newNewsletterRouter(service)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/newsletter", strings.NewReader(`{"email": "reader@example.com"}`)))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if got != "reader@example.com" {
		t.Fatalf("email = %q", got)
	}
}

func TestSubscribeHandlerDuplicate(t *testing.T) {
	service := &stubNewsletterService{
		subscribeFn: func(context.Context, string) error {
			return services.ErrAlreadySubscribed
		},
	}
	router := newNewsletterRouter(service)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/newsletter", strings.NewReader(`{"email": "reader@example.com"}`)))

	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decodeEnvelope(t, rr)
	if payload["error"] != "already_subscribed" {
		t.Fatalf("code = %v", payload["error"])
	}
}

func TestSubscribeHandlerInvalidEmail(t *testing.T) {
	service := &stubNewsletterService{
		subscribeFn: func(context.Context, string) error {
			return services.ErrNewsletterInvalidInput
		},
	}
	router := newNewsletterRouter(service)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/newsletter", strings.NewReader(`{"email": "nope"}`)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}
