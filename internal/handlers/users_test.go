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

type stubAccountService struct {
	registerFn   func(ctx context.Context, name, email, password string) (services.AuthResult, error)
	loginFn      func(ctx context.Context, email, password string) (services.AuthResult, error)
	adminLoginFn func(ctx context.Context, email, password string) (services.AuthResult, error)
	getAccountFn func(ctx context.Context, accountID string) (domain.Account, error)
}

func (s *stubAccountService) Register(ctx context.Context, name, email, password string) (services.AuthResult, error) {
	return s.registerFn(ctx, name, email, password)
}

func (s *stubAccountService) Login(ctx context.Context, email, password string) (services.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAccountService) AdminLogin(ctx context.Context, email, password string) (services.AuthResult, error) {
	return s.adminLoginFn(ctx, email, password)
}

func (s *stubAccountService) GetAccount(ctx context.Context, accountID string) (domain.Account, error) {
	return s.getAccountFn(ctx, accountID)
}

func newUserRouter(service services.AccountService) chi.Router {
	router := chi.NewRouter()
	router.Route("/users", NewUserHandlers(service).Routes)
	return router
}

func TestRegisterHandlerSuccess(t *testing.T) {
	service := &stubAccountService{
		registerFn: func(_ context.Context, name, email, password string) (services.AuthResult, error) {
			if name != "Asha" || email != "asha@example.com" {
				t.Fatalf("args = %q %q", name, email)
			}
			return services.AuthResult{Token: "tok-1", AccountID: "acct-1", Name: name, Email: email}, nil
		},
	}
	router := newUserRouter(service)

	body := `{"name": "Asha", "email": "asha@example.com", "password": "long enough pw"}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/users/register", strings.NewReader(body)))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	payload := decodeEnvelope(t, rr)
	if payload["token"] != "tok-1" || payload["user_id"] != "acct-1" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestRegisterHandlerConflict(t *testing.T) {
	service := &stubAccountService{
		registerFn: func(context.Context, string, string, string) (services.AuthResult, error) {
			return services.AuthResult{}, services.ErrEmailTaken
		},
	}
	router := newUserRouter(service)

	body := `{"name": "Asha", "email": "taken@example.com", "password": "long enough pw"}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/users/register", strings.NewReader(body)))

	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decodeEnvelope(t, rr)
	if payload["error"] != "email_taken" {
		t.Fatalf("code = %v", payload["error"])
	}
}

func TestLoginHandlerInvalidCredentials(t *testing.T) {
	service := &stubAccountService{
		loginFn: func(context.Context, string, string) (services.AuthResult, error) {
			return services.AuthResult{}, services.ErrInvalidCredentials
		},
	}
	router := newUserRouter(service)

	body := `{"email": "asha@example.com", "password": "wrong"}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(body)))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decodeEnvelope(t, rr)
	if payload["success"] != false || payload["error"] != "invalid_credentials" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestAdminLoginHandlerReturnsTokenOnly(t *testing.T) {
	service := &stubAccountService{
		adminLoginFn: func(context.Context, string, string) (services.AuthResult, error) {
			return services.AuthResult{Token: "admin-tok", AccountID: "admin"}, nil
		},
	}
	router := newUserRouter(service)

	body := `{"email": "admin@example.com", "password": "sekrit"}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/users/admin", strings.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decodeEnvelope(t, rr)
	if payload["token"] != "admin-tok" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestRegisterHandlerRejectsEmptyBody(t *testing.T) {
	router := newUserRouter(&stubAccountService{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/users/register", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}
