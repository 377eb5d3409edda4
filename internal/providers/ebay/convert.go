package ebay

import (
	"fmt"

	"github.com/storeflow/gateway/internal/gateway"
	"github.com/storeflow/gateway/pkg/money"
	domain "github.com/storeflow/gateway/pkg/types"
)

func toProduct(p *itemSummaryPayload) (domain.Product, error) {
	price, err := money.Parse(p.Price.Value, p.Price.Currency)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: item %s price: %w", gateway.ErrMalformedResponse, p.ItemID, err)
	}

	prod := domain.Product{
		ID:       p.ItemID,
		Provider: string(gateway.ProviderEbay),
		Title:    p.Title,
		Price:    price,
		Quantity: -1, // summaries do not report availability
	}
	if p.Image != nil {
		prod.ImageURL = p.Image.ImageURL
	}
	return prod, nil
}

func toProductDetail(p *itemPayload) (domain.Product, error) {
	price, err := money.Parse(p.Price.Value, p.Price.Currency)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: item %s price: %w", gateway.ErrMalformedResponse, p.ItemID, err)
	}

	prod := domain.Product{
		ID:          p.ItemID,
		Provider:    string(gateway.ProviderEbay),
		Title:       p.Title,
		Description: p.ShortDescription,
		Price:       price,
		Quantity:    -1,
	}
	if p.Image != nil {
		prod.ImageURL = p.Image.ImageURL
	}
	if len(p.EstimatedAvailabilities) > 0 {
		prod.Quantity = p.EstimatedAvailabilities[0].EstimatedAvailableQuantity
	}
	return prod, nil
}
