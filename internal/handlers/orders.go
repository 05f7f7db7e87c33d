package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kimotaku1/Ecommerce-forever/internal/domain"
	"github.com/kimotaku1/Ecommerce-forever/internal/platform/httpx"
	"github.com/kimotaku1/Ecommerce-forever/internal/services"
)

const maxOrderBodySize = 256 * 1024

// OrderHandlers exposes checkout and order history endpoints for shoppers,
// plus the admin fulfillment endpoints.
type OrderHandlers struct {
	orders services.OrderService
}

// NewOrderHandlers constructs handlers backed by the order service.
func NewOrderHandlers(orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{orders: orders}
}

// Routes wires the shopper-facing /orders endpoints onto the provided router.
// Authentication is applied by the router group, not here.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.placeOrder)
	r.Get("/", h.listOwnOrders)
	r.Post("/{orderID}/verify", h.verifyPayment)
	r.Delete("/{orderID}/items/{itemID}", h.cancelItem)
}

// AdminRoutes wires the admin order endpoints onto the provided router.
func (h *OrderHandlers) AdminRoutes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.listAllOrders)
	r.Patch("/{orderID}/status", h.updateStatus)
	r.Delete("/{orderID}", h.deleteOrder)
}

type placeOrderRequest struct {
	OrderID       string            `json:"orderId"`
	Items         []orderItemInput  `json:"items"`
	Address       domain.Address    `json:"address"`
	PaymentMethod string            `json:"paymentMethod"`
}

type orderItemInput struct {
	ItemID   string `json:"itemId"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Image    string `json:"image"`
	Category string `json:"category"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderPayload struct {
	ID            string            `json:"id"`
	AccountID     string            `json:"userId"`
	Items         []orderItemOutput `json:"items"`
	Address       domain.Address    `json:"address"`
	Amount        int64             `json:"amount"`
	PaymentMethod string            `json:"paymentMethod"`
	Payment       bool              `json:"payment"`
	Status        string            `json:"status"`
	CreatedAt     string            `json:"createdAt,omitempty"`
}

type orderItemOutput struct {
	ItemID   string `json:"itemId"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Image    string `json:"image,omitempty"`
	Category string `json:"category,omitempty"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

func buildOrderPayload(order domain.Order) orderPayload {
	items := make([]orderItemOutput, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemOutput{
			ItemID:   item.ItemID,
			Name:     item.Product.Name,
			Price:    item.Product.Price,
			Image:    item.Product.Image,
			Category: item.Product.Category,
			Size:     item.Size,
			Quantity: item.Quantity,
		})
	}
	payload := orderPayload{
		ID:            order.ID,
		AccountID:     order.AccountID,
		Items:         items,
		Address:       order.Address,
		Amount:        order.Amount,
		PaymentMethod: string(order.PaymentMethod),
		Payment:       order.Payment,
		Status:        order.Status,
	}
	if !order.CreatedAt.IsZero() {
		payload.CreatedAt = formatTime(order.CreatedAt)
	}
	return payload
}

func (h *OrderHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req placeOrderRequest
	if err := decodeJSONBody(r, maxOrderBodySize, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	items := make([]domain.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.LineItem{
			ItemID: item.ItemID,
			Product: domain.ProductSnapshot{
				ProductID: item.ItemID,
				Name:      item.Name,
				Price:     item.Price,
				Image:     item.Image,
				Category:  item.Category,
			},
			Size:     item.Size,
			Quantity: item.Quantity,
		})
	}

	result, err := h.orders.PlaceOrder(ctx, services.PlaceOrderInput{
		OrderID:       req.OrderID,
		AccountID:     identity.AccountID,
		Items:         items,
		Address:       req.Address,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	fields := map[string]any{
		"message": "order placed",
		"order":   buildOrderPayload(result.Order),
	}
	if result.RedirectURL != "" {
		fields["redirect_url"] = result.RedirectURL
	}
	httpx.WriteSuccess(ctx, w, http.StatusCreated, fields)
}

func (h *OrderHandlers) listOwnOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}

	orders, err := h.orders.ListByAccount(ctx, identity.AccountID)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	httpx.WriteSuccess(ctx, w, http.StatusOK, map[string]any{"orders": buildOrderList(orders)})
}

func (h *OrderHandlers) verifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}

	order, err := h.orders.ConfirmGatewayPayment(ctx, chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	message := "payment not settled"
	if order.Payment {
		message = "payment verified"
	}
	httpx.WriteSuccess(ctx, w, http.StatusOK, map[string]any{
		"message": message,
		"order":   buildOrderPayload(order),
	})
}

func (h *OrderHandlers) cancelItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}

	order, deleted, err := h.orders.CancelItem(ctx, identity.AccountID, chi.URLParam(r, "orderID"), chi.URLParam(r, "itemID"))
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	if deleted {
		httpx.WriteSuccess(ctx, w, http.StatusOK, map[string]any{
			"message":      "order cancelled",
			"orderDeleted": true,
		})
		return
	}
	httpx.WriteSuccess(ctx, w, http.StatusOK, map[string]any{
		"message":      "item cancelled",
		"orderDeleted": false,
		"order":        buildOrderPayload(order),
	})
}

func (h *OrderHandlers) listAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}

	orders, err := h.orders.ListAll(ctx)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	httpx.WriteSuccess(ctx, w, http.StatusOK, map[string]any{"orders": buildOrderList(orders)})
}

func (h *OrderHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req updateStatusRequest
	if err := decodeJSONBody(r, maxOrderBodySize, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	order, err := h.orders.UpdateStatus(ctx, chi.URLParam(r, "orderID"), req.Status)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	httpx.WriteSuccess(ctx, w, http.StatusOK, map[string]any{
		"message": "status updated",
		"order":   buildOrderPayload(order),
	})
}

func (h *OrderHandlers) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}

	if err := h.orders.DeleteOrder(ctx, chi.URLParam(r, "orderID")); err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	httpx.WriteMessage(ctx, w, http.StatusOK, "order deleted")
}

func buildOrderList(orders []domain.Order) []orderPayload {
	payload := make([]orderPayload, 0, len(orders))
	for _, order := range orders {
		payload = append(payload, buildOrderPayload(order))
	}
	return payload
}

func (h *OrderHandlers) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("validation_error", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrInvalidStatus):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_status", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrDuplicateOrder):
		httpx.WriteError(ctx, w, httpx.NewError("duplicate_order", "an order with this id already exists", http.StatusConflict))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrGatewayUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("gateway_unavailable", "payment gateway is unavailable", http.StatusBadGateway))
	case errors.Is(err, services.ErrPaymentVerificationFailed):
		httpx.WriteError(ctx, w, httpx.NewError("payment_verification_failed", "payment could not be verified", http.StatusBadGateway))
	case errors.Is(err, services.ErrOrderUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "order operation failed", http.StatusInternalServerError))
	}
}
