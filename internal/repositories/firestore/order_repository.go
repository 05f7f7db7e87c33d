package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kimotaku1/Ecommerce-forever/internal/domain"
	pfirestore "github.com/kimotaku1/Ecommerce-forever/internal/platform/firestore"
)

const ordersCollection = "orders"

// OrderRepository persists orders within Firestore. The document ID equals the
// client-generated order ID so replays of the same checkout hit the existing
// document instead of creating a second order.
type OrderRepository struct {
	base     *pfirestore.BaseRepository[orderDocument]
	provider *pfirestore.Provider
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[orderDocument](provider, ordersCollection, nil, nil)
	return &OrderRepository{base: base, provider: provider}, nil
}

// Insert creates the order document, returning a conflict error when the ID is taken.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	orderID := strings.TrimSpace(order.ID)
	if orderID == "" {
		return errors.New("order repository: order id is required")
	}

	_, err := r.base.Create(ctx, orderID, orderToDocument(order))
	return err
}

// InsertAndClearCart atomically creates the order and empties the placing account's cart.
func (r *OrderRepository) InsertAndClearCart(ctx context.Context, order domain.Order) error {
	if r == nil || r.base == nil || r.provider == nil {
		return errors.New("order repository not initialised")
	}
	orderID := strings.TrimSpace(order.ID)
	if orderID == "" {
		return errors.New("order repository: order id is required")
	}
	accountID := strings.TrimSpace(order.AccountID)
	if accountID == "" {
		return errors.New("order repository: account id is required")
	}

	orderRef, err := r.base.DocumentRef(ctx, orderID)
	if err != nil {
		return err
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	accountRef := client.Collection(accountsCollection).Doc(accountID)

	return r.provider.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(orderRef, orderToDocument(order)); err != nil {
			return err
		}
		return tx.Update(accountRef, []firestore.Update{
			{Path: "cart", Value: map[string]map[string]int{}},
		})
	})
}

// FindByID fetches a single order.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if r == nil || r.base == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}
	doc, err := r.base.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return doc.Data.toOrder(doc.ID), nil
}

// UpdatePayment stamps the payment flag and the gateway-reported status label.
func (r *OrderRepository) UpdatePayment(ctx context.Context, orderID string, paid bool, orderStatus string) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	_, err := r.base.Update(ctx, orderID, []firestore.Update{
		{Path: "payment", Value: paid},
		{Path: "status", Value: orderStatus},
	})
	return err
}

// UpdateStatus overwrites the fulfillment status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, orderStatus string) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	_, err := r.base.Update(ctx, orderID, []firestore.Update{
		{Path: "status", Value: orderStatus},
	})
	return err
}

// ReplaceItems overwrites the order's line items.
func (r *OrderRepository) ReplaceItems(ctx context.Context, orderID string, items []domain.LineItem) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	if items == nil {
		items = []domain.LineItem{}
	}
	_, err := r.base.Update(ctx, orderID, []firestore.Update{
		{Path: "items", Value: items},
	})
	return err
}

// Delete removes the order. Deleting a missing order is reported as not found.
func (r *OrderRepository) Delete(ctx context.Context, orderID string) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	_, err := r.base.Delete(ctx, orderID, firestore.Exists)
	if err != nil {
		// The exists precondition surfaces a missing document as a failed
		// precondition; report it as not found for callers.
		var repoErr *pfirestore.Error
		if errors.As(err, &repoErr) && (repoErr.IsNotFound() || repoErr.IsConflict()) {
			return pfirestore.WrapError("orders.delete", status.Error(codes.NotFound, "order not found"))
		}
		return err
	}
	return nil
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("order repository not initialised")
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	return documentsToOrders(docs), nil
}

// ListByAccount returns the account's orders, newest first.
func (r *OrderRepository) ListByAccount(ctx context.Context, accountID string) ([]domain.Order, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("order repository not initialised")
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, errors.New("order repository: account id is required")
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("accountId", "==", accountID).OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	return documentsToOrders(docs), nil
}

func documentsToOrders(docs []pfirestore.Document[orderDocument]) []domain.Order {
	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, doc.Data.toOrder(doc.ID))
	}
	return orders
}

type orderDocument struct {
	AccountID     string            `firestore:"accountId"`
	Items         []domain.LineItem `firestore:"items"`
	Address       domain.Address    `firestore:"address"`
	Amount        int64             `firestore:"amount"`
	PaymentMethod string            `firestore:"paymentMethod"`
	Payment       bool              `firestore:"payment"`
	Status        string            `firestore:"status"`
	CreatedAt     time.Time         `firestore:"createdAt"`
}

func orderToDocument(order domain.Order) orderDocument {
	items := order.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	return orderDocument{
		AccountID:     order.AccountID,
		Items:         items,
		Address:       order.Address,
		Amount:        order.Amount,
		PaymentMethod: string(order.PaymentMethod),
		Payment:       order.Payment,
		Status:        order.Status,
		CreatedAt:     order.CreatedAt.UTC(),
	}
}

func (d orderDocument) toOrder(id string) domain.Order {
	return domain.Order{
		ID:            id,
		AccountID:     d.AccountID,
		Items:         d.Items,
		Address:       d.Address,
		Amount:        d.Amount,
		PaymentMethod: domain.PaymentMethod(d.PaymentMethod),
		Payment:       d.Payment,
		Status:        d.Status,
		CreatedAt:     d.CreatedAt,
	}
}
