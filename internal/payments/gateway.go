package payments

import (
	"context"
	"errors"
)

// Gateway state labels reported by the payment provider's status API.
const (
	StateComplete    = "COMPLETE"
	StatePending     = "PENDING"
	StateFullRefund  = "FULL_REFUND"
	StateCanceled    = "CANCELED"
	StateNotFound    = "NOT_FOUND"
	StateAmbiguous   = "AMBIGUOUS"
	StateServiceDown = "SERVICE IS CURRENTLY UNAVAILABLE"
)

// ErrGatewayUnreachable is returned when the provider cannot be reached or
// responds with a non-success status during payment initiation.
var ErrGatewayUnreachable = errors.New("payments: gateway unreachable")

// ErrVerificationFailed is returned when the provider's status API cannot
// verify the transaction.
var ErrVerificationFailed = errors.New("payments: verification failed")

// InitiateRequest describes a checkout handed off to the payment provider.
// The order ID doubles as the provider-facing transaction reference.
type InitiateRequest struct {
	OrderID string
	Amount  int64
}

// InitiateResult carries the redirect target the shopper is sent to.
type InitiateResult struct {
	RedirectURL string
}

// StatusResult reports the provider's view of a transaction.
type StatusResult struct {
	State string
	RefID string
}

// Gateway abstracts the external payment provider used for non-COD checkouts.
type Gateway interface {
	// Initiate registers the transaction with the provider and returns the
	// redirect URL for the shopper. Nothing is persisted locally until
	// initiation succeeds.
	Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error)
	// CheckStatus queries the provider's status API for the transaction.
	CheckStatus(ctx context.Context, orderID string, amount int64) (StatusResult, error)
}

// Paid reports whether the gateway state label marks the transaction as settled.
func Paid(state string) bool {
	return state == StateComplete
}
