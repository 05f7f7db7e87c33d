package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouterNotFoundEnvelope(t *testing.T) {
	router := NewRouter()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/nowhere", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decodeEnvelope(t, rr)
	if payload["success"] != false || payload["error"] != "route_not_found" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestRouterHealthz(t *testing.T) {
	router := NewRouter()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decodeEnvelope(t, rr)
	if payload["status"] != "ok" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestRouterUnconfiguredGroupIsNotImplemented(t *testing.T) {
	router := NewRouter()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	if rr.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rr.Code)
	}
}
