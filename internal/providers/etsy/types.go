package etsy

// Etsy v3 wire payloads. Amounts are {amount, divisor, currency_code}
// triples; timestamps are unix seconds.

type moneyPayload struct {
	Amount       int64  `json:"amount"`
	Divisor      int64  `json:"divisor"`
	CurrencyCode string `json:"currency_code"`
}

type shopPayload struct {
	ShopID       int64  `json:"shop_id"`
	ShopName     string `json:"shop_name"`
	Title        string `json:"title"`
	CurrencyCode string `json:"currency_code"`
	URL          string `json:"url"`
}

type receiptsPayload struct {
	Count   int              `json:"count"`
	Results []receiptPayload `json:"results"`
}

type receiptPayload struct {
	ReceiptID        int64                `json:"receipt_id"`
	Status           string               `json:"status"`
	BuyerEmail       string               `json:"buyer_email"`
	CreatedTimestamp int64                `json:"created_timestamp"`
	GrandTotal       moneyPayload         `json:"grandtotal"`
	Transactions     []transactionPayload `json:"transactions"`
	Shipments        []shipmentPayload    `json:"shipments"`
}

type transactionPayload struct {
	TransactionID int64        `json:"transaction_id"`
	Title         string       `json:"title"`
	SKU           string       `json:"sku"`
	Quantity      int          `json:"quantity"`
	Price         moneyPayload `json:"price"`
}

type shipmentPayload struct {
	TrackingCode string `json:"tracking_code"`
	CarrierName  string `json:"carrier_name"`
}

type listingsPayload struct {
	Count   int              `json:"count"`
	Results []listingPayload `json:"results"`
}

type listingPayload struct {
	ListingID        int64        `json:"listing_id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	State            string       `json:"state"`
	Quantity         int          `json:"quantity"`
	URL              string       `json:"url"`
	CreatedTimestamp int64        `json:"created_timestamp"`
	Price            moneyPayload `json:"price"`
	SKUs             []string     `json:"skus"`
}

type inventoryUpdatePayload struct {
	Products []inventoryProductPayload `json:"products"`
}

type inventoryProductPayload struct {
	SKU       string                     `json:"sku,omitempty"`
	Offerings []inventoryOfferingPayload `json:"offerings"`
}

type inventoryOfferingPayload struct {
	Quantity int `json:"quantity"`
}
