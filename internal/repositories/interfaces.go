package repositories

import (
	"context"

	"github.com/kimotaku1/Ecommerce-forever/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// OrderRepository persists checkout attempts and their payment/fulfillment state.
type OrderRepository interface {
	// Insert creates the order document, failing with a conflict error when an
	// order with the same ID already exists.
	Insert(ctx context.Context, order domain.Order) error
	// InsertAndClearCart atomically creates the order and empties the placing
	// account's cart. The order insert carries the same duplicate guard as Insert.
	InsertAndClearCart(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	// UpdatePayment stamps the payment flag and the gateway-reported status label.
	UpdatePayment(ctx context.Context, orderID string, paid bool, status string) error
	UpdateStatus(ctx context.Context, orderID string, status string) error
	ReplaceItems(ctx context.Context, orderID string, items []domain.LineItem) error
	Delete(ctx context.Context, orderID string) error
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListByAccount(ctx context.Context, accountID string) ([]domain.Order, error)
}

// AccountRepository persists registered shoppers and their cart snapshots.
type AccountRepository interface {
	Insert(ctx context.Context, account domain.Account) error
	FindByID(ctx context.Context, accountID string) (domain.Account, error)
	FindByEmail(ctx context.Context, email string) (domain.Account, error)
	UpdateCart(ctx context.Context, accountID string, cart domain.CartData) error
}

// ProductRepository persists catalog entries.
type ProductRepository interface {
	Insert(ctx context.Context, product domain.Product) error
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	Delete(ctx context.Context, productID string) error
	ListAll(ctx context.Context) ([]domain.Product, error)
}

// NewsletterRepository persists opted-in email addresses.
type NewsletterRepository interface {
	// Insert records the subscription, failing with a conflict error when the
	// email is already subscribed.
	Insert(ctx context.Context, sub domain.NewsletterSubscription) error
}
