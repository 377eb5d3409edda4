package cj

import (
	"strconv"
	"strings"
	"time"

	"github.com/storeflow/gateway/internal/gateway"
	"github.com/storeflow/gateway/pkg/money"
	domain "github.com/storeflow/gateway/pkg/types"
)

const createTimeLayout = "2006-01-02 15:04:05"

func toProduct(p *productPayload) domain.Product {
	currency := p.CurrencyCode
	if currency == "" {
		currency = "USD"
	}

	prod := domain.Product{
		ID:          p.PID,
		Provider:    string(gateway.ProviderCJ),
		Title:       p.ProductName,
		Description: p.Description,
		Price:       money.FromDecimal(p.SellPrice, currency),
		SKU:         p.ProductSKU,
		Quantity:    -1, // stock is a separate warehouse query
		ImageURL:    p.ProductImage,
	}

	if ts, err := time.Parse(createTimeLayout, p.CreateTime); err == nil {
		prod.CreatedAt = ts
	}

	return prod
}

func toShippingQuote(p *freightOptionPayload) domain.ShippingQuote {
	return domain.ShippingQuote{
		Carrier:      p.LogisticName,
		Cost:         money.FromDecimal(p.LogisticPrice, "USD"),
		EstimatedDay: parseAging(p.LogisticAging),
	}
}

// parseAging reads CJ's delivery estimate ("5-8" days), keeping the upper
// bound. Zero means no estimate.
func parseAging(aging string) int {
	if aging == "" {
		return 0
	}
	parts := strings.Split(aging, "-")
	days, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return 0
	}
	return days
}

func toOrder(p *orderPayload) domain.Order {
	o := domain.Order{
		ID:       p.OrderID,
		Provider: string(gateway.ProviderCJ),
		Status:   orderStatus(p.OrderStatus),
		Total:    money.FromDecimal(p.OrderAmount, "USD"),
	}

	if p.TrackNumber != "" {
		tn := p.TrackNumber
		o.TrackingNumber = &tn
	}

	if ts, err := time.Parse(createTimeLayout, p.CreateDate); err == nil {
		o.CreatedAt = ts
	}

	return o
}

func orderStatus(s string) domain.OrderStatus {
	switch s {
	case "CREATED", "IN_CART", "UNPAID":
		return domain.OrderOpen
	case "UNSHIPPED":
		return domain.OrderPaid
	case "SHIPPED":
		return domain.OrderShipped
	case "DELIVERED":
		return domain.OrderDelivered
	case "CANCELLED":
		return domain.OrderCancelled
	default:
		return domain.OrderUnknown
	}
}
