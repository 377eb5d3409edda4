package shopify

import "time"

// Wire payloads for the Admin API. Shopify wraps every resource in a
// singular or plural envelope and reports prices as decimal strings.

type ordersEnvelope struct {
	Orders []orderPayload `json:"orders"`
}

type orderEnvelope struct {
	Order orderPayload `json:"order"`
}

type orderPayload struct {
	ID                int64                `json:"id"`
	Email             string               `json:"email"`
	CreatedAt         time.Time            `json:"created_at"`
	CancelledAt       *time.Time           `json:"cancelled_at"`
	TotalPrice        string               `json:"total_price"`
	Currency          string               `json:"currency"`
	FinancialStatus   string               `json:"financial_status"`
	FulfillmentStatus string               `json:"fulfillment_status"`
	LineItems         []lineItemPayload    `json:"line_items"`
	Fulfillments      []fulfillmentPayload `json:"fulfillments"`
}

type lineItemPayload struct {
	SKU      string `json:"sku"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

type fulfillmentPayload struct {
	TrackingNumber string `json:"tracking_number"`
	Status         string `json:"status"`
}

type productsEnvelope struct {
	Products []productPayload `json:"products"`
}

type productEnvelope struct {
	Product productPayload `json:"product"`
}

type productPayload struct {
	ID        int64            `json:"id,omitempty"`
	Title     string           `json:"title"`
	BodyHTML  string           `json:"body_html,omitempty"`
	CreatedAt time.Time        `json:"created_at,omitzero"`
	Image     *imagePayload    `json:"image,omitempty"`
	Images    []imagePayload   `json:"images,omitempty"`
	Variants  []variantPayload `json:"variants,omitempty"`
}

type imagePayload struct {
	Src string `json:"src"`
}

type variantPayload struct {
	ID                int64  `json:"id,omitempty"`
	Title             string `json:"title,omitempty"`
	SKU               string `json:"sku,omitempty"`
	Price             string `json:"price"`
	InventoryQuantity int    `json:"inventory_quantity,omitempty"`
}

type inventoryAdjustPayload struct {
	LocationID          int64 `json:"location_id"`
	InventoryItemID     int64 `json:"inventory_item_id"`
	AvailableAdjustment int   `json:"available_adjustment"`
}

type inventoryLevelEnvelope struct {
	InventoryLevel inventoryLevelPayload `json:"inventory_level"`
}

type inventoryLevelPayload struct {
	InventoryItemID int64 `json:"inventory_item_id"`
	LocationID      int64 `json:"location_id"`
	Available       int   `json:"available"`
}
