package etsy

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storeflow/gateway/internal/gateway"
	"github.com/storeflow/gateway/pkg/money"
	domain "github.com/storeflow/gateway/pkg/types"
)

func toMoney(p moneyPayload) money.Money {
	if p.Divisor == 0 {
		return money.Money{Currency: p.CurrencyCode}
	}
	d := decimal.New(p.Amount, 0).Div(decimal.New(p.Divisor, 0))
	return money.FromDecimal(d, p.CurrencyCode)
}

func toOrder(p *receiptPayload, tenantID string) domain.Order {
	o := domain.Order{
		ID:         strconv.FormatInt(p.ReceiptID, 10),
		Provider:   string(gateway.ProviderEtsy),
		TenantID:   tenantID,
		Status:     receiptStatus(p.Status),
		Total:      toMoney(p.GrandTotal),
		BuyerEmail: p.BuyerEmail,
		CreatedAt:  time.Unix(p.CreatedTimestamp, 0).UTC(),
	}

	for _, s := range p.Shipments {
		if s.TrackingCode != "" {
			tc := s.TrackingCode
			o.TrackingNumber = &tc
			break
		}
	}

	o.Items = make([]domain.OrderItem, 0, len(p.Transactions))
	for _, tr := range p.Transactions {
		o.Items = append(o.Items, domain.OrderItem{
			SKU:      tr.SKU,
			Title:    tr.Title,
			Quantity: tr.Quantity,
			Price:    toMoney(tr.Price),
		})
	}

	return o
}

func receiptStatus(s string) domain.OrderStatus {
	switch s {
	case "open", "payment processing":
		return domain.OrderOpen
	case "paid":
		return domain.OrderPaid
	case "shipped":
		return domain.OrderShipped
	case "completed":
		return domain.OrderDelivered
	case "canceled", "cancelled":
		return domain.OrderCancelled
	default:
		return domain.OrderUnknown
	}
}

func toProduct(p *listingPayload, tenantID string) domain.Product {
	prod := domain.Product{
		ID:          strconv.FormatInt(p.ListingID, 10),
		Provider:    string(gateway.ProviderEtsy),
		TenantID:    tenantID,
		Title:       p.Title,
		Description: p.Description,
		Price:       toMoney(p.Price),
		Quantity:    p.Quantity,
		CreatedAt:   time.Unix(p.CreatedTimestamp, 0).UTC(),
	}
	if len(p.SKUs) > 0 {
		prod.SKU = p.SKUs[0]
	}
	return prod
}
