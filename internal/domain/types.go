package domain

import (
	"strings"
	"time"
)

// PaymentMethod identifies how an order is paid.
type PaymentMethod string

const (
	// PaymentMethodCOD means the amount is collected in cash on delivery.
	PaymentMethodCOD PaymentMethod = "cod"
	// PaymentMethodEsewa means the amount is collected through the eSewa gateway.
	PaymentMethodEsewa PaymentMethod = "esewa"
)

// OrderStatus enumerates the fulfillment progression an admin moves orders through.
// Gateway reconciliation may additionally stamp the gateway-reported state label
// (for example "COMPLETE") onto an order; see the order service.
type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "Order Placed"
	OrderStatusPacking        OrderStatus = "Packing"
	OrderStatusShipped        OrderStatus = "Shipped"
	OrderStatusOutForDelivery OrderStatus = "Out for delivery"
	OrderStatusDelivered      OrderStatus = "Delivered"
)

// FulfillmentStatuses lists the admin-settable statuses in progression order.
// Transitions are deliberately unordered: support staff correct mistakes by
// moving orders backwards, so no monotonicity is enforced.
var FulfillmentStatuses = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusPacking,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

// ValidFulfillmentStatus reports whether raw names a defined fulfillment status.
func ValidFulfillmentStatus(raw string) (OrderStatus, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, status := range FulfillmentStatuses {
		if strings.EqualFold(trimmed, string(status)) {
			return status, true
		}
	}
	return "", false
}

// Address is the fixed-shape shipping record captured with every order.
type Address struct {
	FirstName string `firestore:"firstName" json:"firstName"`
	LastName  string `firestore:"lastName" json:"lastName"`
	Email     string `firestore:"email" json:"email"`
	Street    string `firestore:"street" json:"street"`
	City      string `firestore:"city" json:"city"`
	State     string `firestore:"state" json:"state"`
	Zipcode   string `firestore:"zipcode" json:"zipcode"`
	Country   string `firestore:"country" json:"country"`
	Phone     string `firestore:"phone" json:"phone"`
}

// ProductSnapshot is the slice of catalog data frozen into a line item at
// order time. Later catalog edits never change a placed order.
type ProductSnapshot struct {
	ProductID string `firestore:"productId" json:"productId"`
	Name      string `firestore:"name" json:"name"`
	Price     int64  `firestore:"price" json:"price"`
	Image     string `firestore:"image,omitempty" json:"image,omitempty"`
	Category  string `firestore:"category,omitempty" json:"category,omitempty"`
}

// LineItem is one product/size/quantity entry within an order.
type LineItem struct {
	ItemID   string          `firestore:"itemId" json:"itemId"`
	Product  ProductSnapshot `firestore:"product" json:"product"`
	Size     string          `firestore:"size" json:"size"`
	Quantity int             `firestore:"quantity" json:"quantity"`
}

// Order is one checkout attempt and its payment/fulfillment state.
// The document ID equals the client-generated order ID, which doubles as the
// gateway-facing transaction reference.
type Order struct {
	ID            string
	AccountID     string
	Items         []LineItem
	Address       Address
	Amount        int64
	PaymentMethod PaymentMethod
	Payment       bool
	Status        string
	CreatedAt     time.Time
}

// CartData maps product ID -> size -> quantity. Entries with zero quantity are
// removed rather than stored.
type CartData map[string]map[string]int

// Clone returns an independent deep copy of the cart.
func (c CartData) Clone() CartData {
	if c == nil {
		return nil
	}
	out := make(CartData, len(c))
	for productID, sizes := range c {
		copied := make(map[string]int, len(sizes))
		for size, qty := range sizes {
			copied[size] = qty
		}
		out[productID] = copied
	}
	return out
}

// Account is a registered shopper, carrying the in-progress cart snapshot.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Cart         CartData
	CreatedAt    time.Time
}

// Product is a catalog entry.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       int64
	Images      []string
	Category    string
	SubCategory string
	Sizes       []string
	Bestseller  bool
	CreatedAt   time.Time
}

// NewsletterSubscription records one opted-in email address.
type NewsletterSubscription struct {
	Email        string
	SubscribedAt time.Time
}
