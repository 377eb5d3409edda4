// Package domain defines the normalized commerce types the provider
// clients translate into. Each provider's payload maps onto these shapes;
// optional provider fields are explicit pointers with their absence
// defaults documented here, not inferred at call sites.
package domain

import (
	"time"

	"github.com/storeflow/gateway/pkg/money"
)

// OrderStatus is a normalized order state.
type OrderStatus string

// Order status constants.
const (
	OrderOpen      OrderStatus = "open"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
	OrderUnknown   OrderStatus = "unknown"
)

// Order is a normalized order from any provider.
type Order struct {
	// Provider-native order ID, unique within the provider only.
	ID       string `json:"id"`
	Provider string `json:"provider"`
	TenantID string `json:"tenant_id,omitempty"`

	Status    OrderStatus `json:"status"`
	Total     money.Money `json:"total"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"created_at"`

	// BuyerEmail is absent for providers that withhold it; empty then.
	BuyerEmail string `json:"buyer_email,omitempty"`

	// TrackingNumber is set once the order ships; nil before.
	TrackingNumber *string `json:"tracking_number,omitempty"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	SKU      string      `json:"sku"`
	Title    string      `json:"title"`
	Quantity int         `json:"quantity"`
	Price    money.Money `json:"price"`
}

// Product is a normalized product listing.
type Product struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	TenantID string `json:"tenant_id,omitempty"`

	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Price       money.Money `json:"price"`
	SKU         string      `json:"sku,omitempty"`

	// Quantity is the available stock; -1 when the provider does not
	// report inventory on this payload.
	Quantity int `json:"quantity"`

	ImageURL  string    `json:"image_url,omitempty"`
	Variants  []Variant `json:"variants,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Variant is one purchasable variation of a product.
type Variant struct {
	ID       string      `json:"id"`
	SKU      string      `json:"sku,omitempty"`
	Title    string      `json:"title,omitempty"`
	Price    money.Money `json:"price"`
	Quantity int         `json:"quantity"`
}

// NewProductSpec describes a product to create on a provider.
type NewProductSpec struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Price       money.Money `json:"price"`
	SKU         string      `json:"sku,omitempty"`
	Quantity    int         `json:"quantity"`
	ImageURL    string      `json:"image_url,omitempty"`
}

// StockLevel is the result of a stock check for one SKU or variant.
type StockLevel struct {
	SKU       string    `json:"sku"`
	Provider  string    `json:"provider"`
	Available int       `json:"available"`
	CheckedAt time.Time `json:"checked_at"`
}

// ShippingQuote is one freight option for a prospective shipment.
type ShippingQuote struct {
	Carrier      string      `json:"carrier"`
	Service      string      `json:"service,omitempty"`
	Cost         money.Money `json:"cost"`
	EstimatedDay int         `json:"estimated_days"` // 0 when the provider gives no estimate
}
