package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kimotaku1/Ecommerce-forever/internal/platform/config"
)

const defaultEsewaTimeout = 10 * time.Second

// EsewaGateway talks to the eSewa ePay endpoints. Form submissions are signed
// with HMAC-SHA256 over the total amount, transaction reference, and merchant
// code, matching what the provider verifies server-side.
type EsewaGateway struct {
	httpClient  *http.Client
	merchantID  string
	secret      string
	initiateURL string
	statusURL   string
	successURL  string
	failureURL  string
}

// NewEsewaGateway constructs a gateway client from configuration.
func NewEsewaGateway(cfg config.GatewayConfig) (*EsewaGateway, error) {
	if strings.TrimSpace(cfg.MerchantID) == "" {
		return nil, errors.New("payments: merchant id is required")
	}
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("payments: gateway secret is required")
	}
	if strings.TrimSpace(cfg.InitiateURL) == "" || strings.TrimSpace(cfg.StatusURL) == "" {
		return nil, errors.New("payments: gateway endpoints are required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultEsewaTimeout
	}

	return &EsewaGateway{
		httpClient: &http.Client{
			Timeout: timeout,
			// The initiate endpoint answers with a redirect to the hosted
			// payment page; the Location header is the result.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		merchantID:  strings.TrimSpace(cfg.MerchantID),
		secret:      cfg.Secret,
		initiateURL: strings.TrimSpace(cfg.InitiateURL),
		statusURL:   strings.TrimSpace(cfg.StatusURL),
		successURL:  strings.TrimSpace(cfg.SuccessURL),
		failureURL:  strings.TrimSpace(cfg.FailureURL),
	}, nil
}

// Initiate registers the transaction and returns the hosted payment page URL.
func (g *EsewaGateway) Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error) {
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		return InitiateResult{}, errors.New("payments: order id is required")
	}
	if req.Amount <= 0 {
		return InitiateResult{}, errors.New("payments: amount must be positive")
	}

	amount := strconv.FormatInt(req.Amount, 10)
	form := url.Values{}
	form.Set("amount", amount)
	form.Set("tax_amount", "0")
	form.Set("product_service_charge", "0")
	form.Set("product_delivery_charge", "0")
	form.Set("total_amount", amount)
	form.Set("transaction_uuid", orderID)
	form.Set("product_code", g.merchantID)
	form.Set("success_url", g.successURL)
	form.Set("failure_url", g.failureURL)
	form.Set("signed_field_names", "total_amount,transaction_uuid,product_code")
	form.Set("signature", g.sign(amount, orderID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.initiateURL, strings.NewReader(form.Encode()))
	if err != nil {
		return InitiateResult{}, fmt.Errorf("payments: build initiate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return InitiateResult{}, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusMultipleChoices && resp.StatusCode < http.StatusBadRequest:
		location := strings.TrimSpace(resp.Header.Get("Location"))
		if location == "" {
			return InitiateResult{}, fmt.Errorf("%w: redirect without location", ErrGatewayUnreachable)
		}
		return InitiateResult{RedirectURL: location}, nil
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		// Some environments answer 200 with the hosted page URL in the body.
		// A 200 without a url is a rejection (eSewa reports signature and
		// merchant errors this way), never a success.
		var payload struct {
			URL          string `json:"url"`
			ErrorMessage string `json:"error_message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return InitiateResult{}, fmt.Errorf("%w: decode initiate response: %v", ErrGatewayUnreachable, err)
		}
		if redirect := strings.TrimSpace(payload.URL); redirect != "" {
			return InitiateResult{RedirectURL: redirect}, nil
		}
		if msg := strings.TrimSpace(payload.ErrorMessage); msg != "" {
			return InitiateResult{}, fmt.Errorf("%w: initiate rejected: %s", ErrGatewayUnreachable, msg)
		}
		return InitiateResult{}, fmt.Errorf("%w: initiate response without redirect url", ErrGatewayUnreachable)
	default:
		return InitiateResult{}, fmt.Errorf("%w: initiate returned status %d", ErrGatewayUnreachable, resp.StatusCode)
	}
}

// CheckStatus queries the provider's transaction status API.
func (g *EsewaGateway) CheckStatus(ctx context.Context, orderID string, amount int64) (StatusResult, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return StatusResult{}, errors.New("payments: order id is required")
	}

	query := url.Values{}
	query.Set("product_code", g.merchantID)
	query.Set("total_amount", strconv.FormatInt(amount, 10))
	query.Set("transaction_uuid", orderID)

	statusURL := g.statusURL
	if strings.Contains(statusURL, "?") {
		statusURL += "&" + query.Encode()
	} else {
		statusURL += "?" + query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return StatusResult{}, fmt.Errorf("payments: build status request: %w", err)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return StatusResult{}, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return StatusResult{}, fmt.Errorf("%w: status API returned %d", ErrVerificationFailed, resp.StatusCode)
	}

	var payload struct {
		Status string `json:"status"`
		RefID  string `json:"ref_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return StatusResult{}, fmt.Errorf("%w: decode status response: %v", ErrVerificationFailed, err)
	}

	state := strings.ToUpper(strings.TrimSpace(payload.Status))
	if state == "" {
		return StatusResult{}, fmt.Errorf("%w: empty status", ErrVerificationFailed)
	}

	return StatusResult{State: state, RefID: strings.TrimSpace(payload.RefID)}, nil
}

func (g *EsewaGateway) sign(totalAmount, transactionUUID string) string {
	message := fmt.Sprintf("total_amount=%s,transaction_uuid=%s,product_code=%s", totalAmount, transactionUUID, g.merchantID)
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
