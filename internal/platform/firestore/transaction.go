package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
)

// Checkout and cart writes touch at most two documents, so transactions are
// kept short-lived and retried only a few times before surfacing the error.
const (
	defaultTxMaxAttempts = 3
	defaultTxDeadline    = 10 * time.Second
)

// TxFunc is executed inside a Firestore transaction.
type TxFunc func(ctx context.Context, tx *firestore.Transaction) error

// TxOption customises a single transaction run.
type TxOption func(*txSettings)

type txSettings struct {
	maxAttempts int
	deadline    time.Duration
}

// WithTxMaxAttempts overrides how many times a contended transaction is retried.
func WithTxMaxAttempts(attempts int) TxOption {
	return func(s *txSettings) {
		if attempts > 0 {
			s.maxAttempts = attempts
		}
	}
}

// WithTxDeadline bounds the transaction, including retries. A deadline already
// on the context wins when it is tighter.
func WithTxDeadline(deadline time.Duration) TxOption {
	return func(s *txSettings) {
		if deadline > 0 {
			s.deadline = deadline
		}
	}
}

// RunTransaction executes fn inside a Firestore transaction using the
// provider's client.
func (p *Provider) RunTransaction(ctx context.Context, fn TxFunc, opts ...TxOption) error {
	if fn == nil {
		return WrapError("transaction", errors.New("firestore: transaction function is nil"))
	}
	client, err := p.Client(ctx)
	if err != nil {
		return err
	}

	settings := txSettings{maxAttempts: defaultTxMaxAttempts, deadline: defaultTxDeadline}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}

	if settings.deadline > 0 {
		if existing, ok := ctx.Deadline(); !ok || time.Until(existing) > settings.deadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, settings.deadline)
			defer cancel()
		}
	}

	err = client.RunTransaction(ctx, fn, firestore.MaxAttempts(settings.maxAttempts))
	return WrapError("transaction", err)
}
