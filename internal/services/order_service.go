package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/kimotaku1/Ecommerce-forever/internal/domain"
	"github.com/kimotaku1/Ecommerce-forever/internal/payments"
	"github.com/kimotaku1/Ecommerce-forever/internal/platform/events"
	"github.com/kimotaku1/Ecommerce-forever/internal/platform/requestctx"
	"github.com/kimotaku1/Ecommerce-forever/internal/repositories"
)

var (
	// ErrOrderInvalidInput signals the caller provided invalid data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrDuplicateOrder indicates an order with the same ID was already placed.
	ErrDuplicateOrder = errors.New("order: duplicate order")
	// ErrOrderNotFound indicates the order could not be located.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrGatewayUnavailable indicates the payment gateway could not be reached
	// during checkout. Nothing has been persisted when this is returned.
	ErrGatewayUnavailable = errors.New("order: payment gateway unavailable")
	// ErrPaymentVerificationFailed indicates the gateway status check did not succeed.
	ErrPaymentVerificationFailed = errors.New("order: payment verification failed")
	// ErrInvalidStatus indicates an unknown fulfillment status was requested.
	ErrInvalidStatus = errors.New("order: invalid status")
	// ErrOrderUnavailable indicates a transient persistence failure.
	ErrOrderUnavailable = errors.New("order: repository unavailable")
)

// OrderEventPublisher publishes order events for downstream consumers.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event events.OrderEvent) (string, error)
}

// PlaceOrderInput captures a checkout attempt.
type PlaceOrderInput struct {
	OrderID       string
	AccountID     string
	Items         []domain.LineItem
	Address       domain.Address
	PaymentMethod domain.PaymentMethod
}

// PlaceOrderResult carries the stored order plus the gateway redirect when applicable.
type PlaceOrderResult struct {
	Order       domain.Order
	RedirectURL string
}

// OrderService implements checkout, payment reconciliation, and fulfillment transitions.
type OrderService interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (PlaceOrderResult, error)
	ConfirmGatewayPayment(ctx context.Context, orderID string) (domain.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) (domain.Order, error)
	CancelItem(ctx context.Context, accountID, orderID, itemID string) (domain.Order, bool, error)
	DeleteOrder(ctx context.Context, orderID string) error
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListByAccount(ctx context.Context, accountID string) ([]domain.Order, error)
}

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders      repositories.OrderRepository
	Accounts    repositories.AccountRepository
	Gateway     payments.Gateway
	Events      OrderEventPublisher
	Clock       func() time.Time
	IDGenerator func() string
	DeliveryFee int64
}

type orderService struct {
	orders      repositories.OrderRepository
	accounts    repositories.AccountRepository
	gateway     payments.Gateway
	events      OrderEventPublisher
	clock       func() time.Time
	newID       func() string
	deliveryFee int64
}

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Accounts == nil {
		return nil, errors.New("order service: account repository is required")
	}
	if deps.DeliveryFee < 0 {
		return nil, errors.New("order service: delivery fee must not be negative")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.IDGenerator
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}

	return &orderService{
		orders:      deps.Orders,
		accounts:    deps.Accounts,
		gateway:     deps.Gateway,
		events:      deps.Events,
		clock:       clock,
		newID:       newID,
		deliveryFee: deps.DeliveryFee,
	}, nil
}

// PlaceOrder validates the checkout, computes the amount server-side, and
// persists the order. COD orders clear the cart in the same transaction as the
// insert. Gateway orders touch the provider first so a gateway outage leaves
// nothing behind.
func (s *orderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (PlaceOrderResult, error) {
	if err := validatePlaceOrder(input); err != nil {
		return PlaceOrderResult{}, err
	}

	orderID := strings.TrimSpace(input.OrderID)
	if orderID == "" {
		orderID = s.newID()
	}

	order := domain.Order{
		ID:            orderID,
		AccountID:     strings.TrimSpace(input.AccountID),
		Items:         cloneItems(input.Items),
		Address:       input.Address,
		Amount:        orderAmount(input.Items, s.deliveryFee),
		PaymentMethod: input.PaymentMethod,
		Payment:       false,
		Status:        string(domain.OrderStatusPlaced),
		CreatedAt:     s.clock().UTC(),
	}

	var redirectURL string
	switch input.PaymentMethod {
	case domain.PaymentMethodCOD:
		if err := s.orders.InsertAndClearCart(ctx, order); err != nil {
			return PlaceOrderResult{}, s.mapRepositoryError(err)
		}
	case domain.PaymentMethodEsewa:
		if s.gateway == nil {
			return PlaceOrderResult{}, fmt.Errorf("%w: no gateway configured", ErrGatewayUnavailable)
		}
		initiated, err := s.gateway.Initiate(ctx, payments.InitiateRequest{OrderID: order.ID, Amount: order.Amount})
		if err != nil {
			return PlaceOrderResult{}, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
		redirectURL = initiated.RedirectURL
		if err := s.orders.Insert(ctx, order); err != nil {
			return PlaceOrderResult{}, s.mapRepositoryError(err)
		}
	default:
		return PlaceOrderResult{}, fmt.Errorf("%w: unsupported payment method %q", ErrOrderInvalidInput, input.PaymentMethod)
	}

	s.publishEvent(ctx, events.OrderEvent{
		Type:       events.TypeOrderCreated,
		OrderID:    order.ID,
		AccountID:  order.AccountID,
		Status:     order.Status,
		Amount:     order.Amount,
		OccurredAt: order.CreatedAt,
	})

	return PlaceOrderResult{Order: order, RedirectURL: redirectURL}, nil
}

// ConfirmGatewayPayment reconciles the order against the gateway's status API.
// The order's payment flag is set only when the gateway reports the
// transaction as settled; the gateway state label overwrites the order status
// either way. Confirming an already settled order is a no-op.
func (s *orderService) ConfirmGatewayPayment(ctx context.Context, orderID string) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}
	if order.PaymentMethod != domain.PaymentMethodEsewa {
		return domain.Order{}, fmt.Errorf("%w: order %s was not placed through the gateway", ErrOrderInvalidInput, orderID)
	}
	if order.Payment {
		return order, nil
	}
	if s.gateway == nil {
		return domain.Order{}, fmt.Errorf("%w: no gateway configured", ErrPaymentVerificationFailed)
	}

	result, err := s.gateway.CheckStatus(ctx, order.ID, order.Amount)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", ErrPaymentVerificationFailed, err)
	}

	paid := payments.Paid(result.State)
	if err := s.orders.UpdatePayment(ctx, order.ID, paid, result.State); err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}
	order.Payment = paid
	order.Status = result.State

	if paid {
		if err := s.accounts.UpdateCart(ctx, order.AccountID, domain.CartData{}); err != nil {
			requestctx.Logger(ctx).Warn("failed to clear cart after payment",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
		s.publishEvent(ctx, events.OrderEvent{
			Type:       events.TypeOrderPaid,
			OrderID:    order.ID,
			AccountID:  order.AccountID,
			Status:     order.Status,
			Amount:     order.Amount,
			OccurredAt: s.clock().UTC(),
		})
	}

	return order, nil
}

// UpdateStatus overwrites the fulfillment status with one of the defined
// labels. Transitions are unordered so staff can correct mistakes.
func (s *orderService) UpdateStatus(ctx context.Context, orderID, status string) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}

	normalized, ok := domain.ValidFulfillmentStatus(status)
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}

	if err := s.orders.UpdateStatus(ctx, orderID, string(normalized)); err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}
	order.Status = string(normalized)

	s.publishEvent(ctx, events.OrderEvent{
		Type:       events.TypeOrderStatusChanged,
		OrderID:    order.ID,
		AccountID:  order.AccountID,
		Status:     order.Status,
		OccurredAt: s.clock().UTC(),
	})

	return order, nil
}

// CancelItem removes a single line item from the order. Removing the last
// item deletes the order entirely; the reported bool is true when that
// happened. The order amount keeps its as-placed value.
func (s *orderService) CancelItem(ctx context.Context, accountID, orderID, itemID string) (domain.Order, bool, error) {
	orderID = strings.TrimSpace(orderID)
	itemID = strings.TrimSpace(itemID)
	if orderID == "" || itemID == "" {
		return domain.Order{}, false, fmt.Errorf("%w: order id and item id are required", ErrOrderInvalidInput)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, false, s.mapRepositoryError(err)
	}
	if accountID != "" && order.AccountID != accountID {
		return domain.Order{}, false, fmt.Errorf("%w: order %s", ErrOrderNotFound, orderID)
	}

	remaining := make([]domain.LineItem, 0, len(order.Items))
	found := false
	for _, item := range order.Items {
		if item.ItemID == itemID {
			found = true
			continue
		}
		remaining = append(remaining, item)
	}
	if !found {
		return domain.Order{}, false, fmt.Errorf("%w: item %s not in order", ErrOrderInvalidInput, itemID)
	}

	if len(remaining) == 0 {
		if err := s.orders.Delete(ctx, orderID); err != nil {
			return domain.Order{}, false, s.mapRepositoryError(err)
		}
		s.publishEvent(ctx, events.OrderEvent{
			Type:       events.TypeOrderCancelled,
			OrderID:    order.ID,
			AccountID:  order.AccountID,
			OccurredAt: s.clock().UTC(),
		})
		order.Items = nil
		return order, true, nil
	}

	if err := s.orders.ReplaceItems(ctx, orderID, remaining); err != nil {
		return domain.Order{}, false, s.mapRepositoryError(err)
	}
	order.Items = remaining
	return order, false, nil
}

// DeleteOrder removes the order outright.
func (s *orderService) DeleteOrder(ctx context.Context, orderID string) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	if err := s.orders.Delete(ctx, orderID); err != nil {
		return s.mapRepositoryError(err)
	}
	s.publishEvent(ctx, events.OrderEvent{
		Type:       events.TypeOrderCancelled,
		OrderID:    orderID,
		OccurredAt: s.clock().UTC(),
	})
	return nil
}

// GetOrder fetches a single order.
func (s *orderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, s.mapRepositoryError(err)
	}
	return order, nil
}

// ListAll returns every order for the admin panel.
func (s *orderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return orders, nil
}

// ListByAccount returns the account's order history.
func (s *orderService) ListByAccount(ctx context.Context, accountID string) ([]domain.Order, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, fmt.Errorf("%w: account id is required", ErrOrderInvalidInput)
	}
	orders, err := s.orders.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return orders, nil
}

func (s *orderService) publishEvent(ctx context.Context, event events.OrderEvent) {
	if s.events == nil {
		return
	}
	if _, err := s.events.PublishOrderEvent(ctx, event); err != nil {
		requestctx.Logger(ctx).Warn("failed to publish order event",
			zap.String("event_type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}

func (s *orderService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrDuplicateOrder, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
}

func validatePlaceOrder(input PlaceOrderInput) error {
	if strings.TrimSpace(input.AccountID) == "" {
		return fmt.Errorf("%w: account id is required", ErrOrderInvalidInput)
	}
	if len(input.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrOrderInvalidInput)
	}
	for _, item := range input.Items {
		if strings.TrimSpace(item.ItemID) == "" {
			return fmt.Errorf("%w: item id is required", ErrOrderInvalidInput)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %s quantity must be positive", ErrOrderInvalidInput, item.ItemID)
		}
		if item.Product.Price < 0 {
			return fmt.Errorf("%w: item %s price must not be negative", ErrOrderInvalidInput, item.ItemID)
		}
	}
	if err := validateAddress(input.Address); err != nil {
		return err
	}
	switch input.PaymentMethod {
	case domain.PaymentMethodCOD, domain.PaymentMethodEsewa:
		return nil
	default:
		return fmt.Errorf("%w: unsupported payment method %q", ErrOrderInvalidInput, input.PaymentMethod)
	}
}

func validateAddress(addr domain.Address) error {
	required := []struct {
		name  string
		value string
	}{
		{"firstName", addr.FirstName},
		{"lastName", addr.LastName},
		{"street", addr.Street},
		{"city", addr.City},
		{"zipcode", addr.Zipcode},
		{"country", addr.Country},
		{"phone", addr.Phone},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: address field %s is required", ErrOrderInvalidInput, field.name)
		}
	}
	return nil
}

func orderAmount(items []domain.LineItem, deliveryFee int64) int64 {
	total := deliveryFee
	for _, item := range items {
		total += item.Product.Price * int64(item.Quantity)
	}
	return total
}

func cloneItems(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	copy(out, items)
	return out
}
