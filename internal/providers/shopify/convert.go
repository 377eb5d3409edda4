package shopify

import (
	"fmt"
	"strconv"

	"github.com/storeflow/gateway/internal/gateway"
	"github.com/storeflow/gateway/pkg/money"
	domain "github.com/storeflow/gateway/pkg/types"
)

func toOrder(p *orderPayload, tenantID string) (domain.Order, error) {
	total, err := money.Parse(p.TotalPrice, p.Currency)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: order %d total: %w", gateway.ErrMalformedResponse, p.ID, err)
	}

	o := domain.Order{
		ID:         strconv.FormatInt(p.ID, 10),
		Provider:   string(gateway.ProviderShopify),
		TenantID:   tenantID,
		Status:     orderStatus(p),
		Total:      total,
		BuyerEmail: p.Email,
		CreatedAt:  p.CreatedAt,
	}

	for _, f := range p.Fulfillments {
		if f.TrackingNumber != "" {
			tn := f.TrackingNumber
			o.TrackingNumber = &tn
			break
		}
	}

	o.Items = make([]domain.OrderItem, 0, len(p.LineItems))
	for _, li := range p.LineItems {
		price, err := money.Parse(li.Price, p.Currency)
		if err != nil {
			return domain.Order{}, fmt.Errorf("%w: order %d line %q: %w", gateway.ErrMalformedResponse, p.ID, li.SKU, err)
		}
		o.Items = append(o.Items, domain.OrderItem{
			SKU:      li.SKU,
			Title:    li.Title,
			Quantity: li.Quantity,
			Price:    price,
		})
	}

	return o, nil
}

func orderStatus(p *orderPayload) domain.OrderStatus {
	switch {
	case p.CancelledAt != nil:
		return domain.OrderCancelled
	case p.FulfillmentStatus == "fulfilled":
		return domain.OrderShipped
	case p.FinancialStatus == "paid" || p.FinancialStatus == "partially_refunded":
		return domain.OrderPaid
	case p.FinancialStatus == "pending" || p.FinancialStatus == "authorized":
		return domain.OrderOpen
	default:
		return domain.OrderUnknown
	}
}

func toProduct(p *productPayload, tenantID string) (domain.Product, error) {
	prod := domain.Product{
		ID:          strconv.FormatInt(p.ID, 10),
		Provider:    string(gateway.ProviderShopify),
		TenantID:    tenantID,
		Title:       p.Title,
		Description: p.BodyHTML,
		Quantity:    -1,
		CreatedAt:   p.CreatedAt,
	}

	if p.Image != nil {
		prod.ImageURL = p.Image.Src
	} else if len(p.Images) > 0 {
		prod.ImageURL = p.Images[0].Src
	}

	if len(p.Variants) > 0 {
		prod.Variants = make([]domain.Variant, 0, len(p.Variants))
		total := 0
		for _, v := range p.Variants {
			price, err := money.Parse(v.Price, "")
			if err != nil {
				return domain.Product{}, fmt.Errorf("%w: product %d variant %d price: %w",
					gateway.ErrMalformedResponse, p.ID, v.ID, err)
			}
			prod.Variants = append(prod.Variants, domain.Variant{
				ID:       strconv.FormatInt(v.ID, 10),
				SKU:      v.SKU,
				Title:    v.Title,
				Price:    price,
				Quantity: v.InventoryQuantity,
			})
			total += v.InventoryQuantity
		}
		prod.Price = prod.Variants[0].Price
		prod.SKU = prod.Variants[0].SKU
		prod.Quantity = total
	}

	return prod, nil
}

func fromProductSpec(spec domain.NewProductSpec) productPayload {
	p := productPayload{
		Title:    spec.Title,
		BodyHTML: spec.Description,
		Variants: []variantPayload{{
			SKU:               spec.SKU,
			Price:             spec.Price.ToDecimal().StringFixed(2),
			InventoryQuantity: spec.Quantity,
		}},
	}
	if spec.ImageURL != "" {
		p.Images = []imagePayload{{Src: spec.ImageURL}}
	}
	return p
}
