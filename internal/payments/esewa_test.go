package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kimotaku1/Ecommerce-forever/internal/platform/config"
)

func testGatewayConfig(initiateURL, statusURL string) config.GatewayConfig {
	return config.GatewayConfig{
		MerchantID:  "EPAYTEST",
		Secret:      "8gBm/:&EnhH.1/q",
		InitiateURL: initiateURL,
		StatusURL:   statusURL,
		SuccessURL:  "https://shop.example.com/payment/success",
		FailureURL:  "https://shop.example.com/payment/failure",
		Timeout:     5 * time.Second,
	}
}

func TestEsewaInitiateFollowsRedirect(t *testing.T) {
	var gotSignature, gotUUID, gotTotal string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed parsing form: %v", err)
		}
		gotSignature = r.PostForm.Get("signature")
		gotUUID = r.PostForm.Get("transaction_uuid")
		gotTotal = r.PostForm.Get("total_amount")
		w.Header().Set("Location", "https://pay.example.com/session/abc")
		w.WriteHeader(http.StatusFound)
	}))
	defer server.Close()

	gateway, err := NewEsewaGateway(testGatewayConfig(server.URL, server.URL+"/status"))
	if err != nil {
		t.Fatalf("NewEsewaGateway returned error: %v", err)
	}

	result, err := gateway.Initiate(context.Background(), InitiateRequest{OrderID: "order-1", Amount: 28})
	if err != nil {
		t.Fatalf("Initiate returned error: %v", err)
	}
	if result.RedirectURL != "https://pay.example.com/session/abc" {
		t.Fatalf("unexpected redirect URL: %q", result.RedirectURL)
	}

	if gotUUID != "order-1" {
		t.Fatalf("unexpected transaction uuid: %q", gotUUID)
	}
	if gotTotal != "28" {
		t.Fatalf("unexpected total amount: %q", gotTotal)
	}

	mac := hmac.New(sha256.New, []byte("8gBm/:&EnhH.1/q"))
	mac.Write([]byte(fmt.Sprintf("total_amount=%s,transaction_uuid=%s,product_code=%s", "28", "order-1", "EPAYTEST")))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if gotSignature != want {
		t.Fatalf("signature mismatch: got %q want %q", gotSignature, want)
	}
}

func TestEsewaInitiateBodyURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"url":"https://pay.example.com/session/xyz"}`)
	}))
	defer server.Close()

	gateway, err := NewEsewaGateway(testGatewayConfig(server.URL, server.URL+"/status"))
	if err != nil {
		t.Fatalf("NewEsewaGateway returned error: %v", err)
	}

	result, err := gateway.Initiate(context.Background(), InitiateRequest{OrderID: "order-1", Amount: 28})
	if err != nil {
		t.Fatalf("Initiate returned error: %v", err)
	}
	if result.RedirectURL != "https://pay.example.com/session/xyz" {
		t.Fatalf("unexpected redirect URL: %q", result.RedirectURL)
	}
}

func TestEsewaInitiateOKWithoutRedirectURLFails(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"error payload", `{"error_message":"invalid signature"}`},
		{"empty object", `{}`},
		{"non-json body", `<html>maintenance</html>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			gateway, err := NewEsewaGateway(testGatewayConfig(server.URL, server.URL+"/status"))
			if err != nil {
				t.Fatalf("NewEsewaGateway returned error: %v", err)
			}

			result, err := gateway.Initiate(context.Background(), InitiateRequest{OrderID: "order-1", Amount: 28})
			if !errors.Is(err, ErrGatewayUnreachable) {
				t.Fatalf("expected ErrGatewayUnreachable, got %v", err)
			}
			if result.RedirectURL != "" {
				t.Fatalf("no redirect URL must be returned on failure, got %q", result.RedirectURL)
			}
		})
	}
}

func TestEsewaInitiateServerErrorIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	gateway, err := NewEsewaGateway(testGatewayConfig(server.URL, server.URL+"/status"))
	if err != nil {
		t.Fatalf("NewEsewaGateway returned error: %v", err)
	}

	if _, err := gateway.Initiate(context.Background(), InitiateRequest{OrderID: "order-1", Amount: 28}); !errors.Is(err, ErrGatewayUnreachable) {
		t.Fatalf("expected ErrGatewayUnreachable, got %v", err)
	}
}

func TestEsewaInitiateConnectionRefusedIsUnreachable(t *testing.T) {
	gateway, err := NewEsewaGateway(testGatewayConfig("http://127.0.0.1:1/epay", "http://127.0.0.1:1/status"))
	if err != nil {
		t.Fatalf("NewEsewaGateway returned error: %v", err)
	}

	if _, err := gateway.Initiate(context.Background(), InitiateRequest{OrderID: "order-1", Amount: 28}); !errors.Is(err, ErrGatewayUnreachable) {
		t.Fatalf("expected ErrGatewayUnreachable, got %v", err)
	}
}

func TestEsewaCheckStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("transaction_uuid"); got != "order-1" {
			t.Fatalf("unexpected transaction uuid: %q", got)
		}
		if got := r.URL.Query().Get("total_amount"); got != "28" {
			t.Fatalf("unexpected total amount: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"COMPLETE","ref_id":"0001TX"}`)
	}))
	defer server.Close()

	gateway, err := NewEsewaGateway(testGatewayConfig(server.URL+"/epay", server.URL))
	if err != nil {
		t.Fatalf("NewEsewaGateway returned error: %v", err)
	}

	result, err := gateway.CheckStatus(context.Background(), "order-1", 28)
	if err != nil {
		t.Fatalf("CheckStatus returned error: %v", err)
	}
	if result.State != StateComplete {
		t.Fatalf("unexpected state: %q", result.State)
	}
	if result.RefID != "0001TX" {
		t.Fatalf("unexpected ref id: %q", result.RefID)
	}
	if !Paid(result.State) {
		t.Fatal("expected COMPLETE to count as paid")
	}
}

func TestEsewaCheckStatusNonOKFailsVerification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	gateway, err := NewEsewaGateway(testGatewayConfig(server.URL+"/epay", server.URL))
	if err != nil {
		t.Fatalf("NewEsewaGateway returned error: %v", err)
	}

	if _, err := gateway.CheckStatus(context.Background(), "order-1", 28); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}
}

func TestPaidOnlyForComplete(t *testing.T) {
	for _, state := range []string{StatePending, StateCanceled, StateNotFound, StateFullRefund, StateAmbiguous} {
		if Paid(state) {
			t.Fatalf("state %q should not count as paid", state)
		}
	}
}
