// Package registry builds per-tenant provider clients on demand and fans
// storefront operations out to them. Handlers and the CLI talk to the
// registry instead of constructing clients themselves, so provider wiring
// (base URLs, API versions, shop identifiers) lives in one place.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/storeflow/gateway/internal/config"
	"github.com/storeflow/gateway/internal/gateway"
	"github.com/storeflow/gateway/internal/providers/cj"
	"github.com/storeflow/gateway/internal/providers/ebay"
	"github.com/storeflow/gateway/internal/providers/etsy"
	"github.com/storeflow/gateway/internal/providers/shopify"
	"github.com/storeflow/gateway/internal/store"
	domain "github.com/storeflow/gateway/pkg/types"
)

// ErrUnsupported marks an operation a provider has no API for.
var ErrUnsupported = errors.New("operation not supported by provider")

// Registry resolves providers to configured clients.
type Registry struct {
	dispatch *gateway.Dispatcher
	store    store.Store
	cfg      config.ProvidersConfig
}

// New creates a Registry backed by the given dispatcher and settings store.
func New(dispatch *gateway.Dispatcher, st store.Store, cfg config.ProvidersConfig) *Registry {
	return &Registry{dispatch: dispatch, store: st, cfg: cfg}
}

// shopifyClient builds a Shopify Admin client from the tenant's settings.
func (r *Registry) shopifyClient(ctx context.Context, tenantID string) (*shopify.Client, error) {
	s, err := r.store.GetSettings(ctx, tenantID, gateway.ProviderShopify)
	if err != nil {
		return nil, fmt.Errorf("loading shopify settings for %q: %w", tenantID, err)
	}
	opts := []shopify.Option{}
	if s.APIVersion != "" {
		opts = append(opts, shopify.WithAPIVersion(s.APIVersion))
	}
	return shopify.New(r.dispatch, tenantID, s.StoreURL, opts...), nil
}

// etsyClient builds an Etsy client plus the tenant's numeric shop ID, which
// the settings row carries in the store_url column.
func (r *Registry) etsyClient(ctx context.Context, tenantID string) (*etsy.Client, int64, error) {
	s, err := r.store.GetSettings(ctx, tenantID, gateway.ProviderEtsy)
	if err != nil {
		return nil, 0, fmt.Errorf("loading etsy settings for %q: %w", tenantID, err)
	}
	shopID, err := strconv.ParseInt(s.StoreURL, 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("etsy settings for %q: store_url must hold the numeric shop ID: %w", tenantID, err)
	}
	opts := []etsy.Option{}
	if r.cfg.Etsy.BaseURL != "" {
		opts = append(opts, etsy.WithBaseURL(r.cfg.Etsy.BaseURL))
	}
	return etsy.New(r.dispatch, tenantID, opts...), shopID, nil
}

func (r *Registry) cjClient() *cj.Client {
	opts := []cj.Option{}
	if r.cfg.CJ.BaseURL != "" {
		opts = append(opts, cj.WithBaseURL(r.cfg.CJ.BaseURL))
	}
	return cj.New(r.dispatch, opts...)
}

func (r *Registry) ebayClient() *ebay.Client {
	opts := []ebay.Option{}
	if r.cfg.Ebay.BaseURL != "" {
		opts = append(opts, ebay.WithBaseURL(r.cfg.Ebay.BaseURL))
	}
	if r.cfg.Ebay.Marketplace != "" {
		opts = append(opts, ebay.WithMarketplace(r.cfg.Ebay.Marketplace))
	}
	return ebay.New(r.dispatch, opts...)
}

// ListOrders returns recent orders from one provider. The eBay Browse API
// is sourcing-only and has no order feed.
func (r *Registry) ListOrders(ctx context.Context, provider gateway.Provider, tenantID string, limit int) ([]domain.Order, error) {
	switch provider {
	case gateway.ProviderShopify:
		c, err := r.shopifyClient(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		return c.ListOrders(ctx, "any", limit)
	case gateway.ProviderEtsy:
		c, shopID, err := r.etsyClient(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		return c.ListReceipts(ctx, shopID, limit)
	case gateway.ProviderCJ:
		return r.cjClient().ListOrders(ctx, 1, limit)
	case gateway.ProviderEbay:
		return nil, fmt.Errorf("%w: ebay exposes no order listing", ErrUnsupported)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

// ListProducts returns the provider's product catalog for the tenant.
func (r *Registry) ListProducts(ctx context.Context, provider gateway.Provider, tenantID string, limit int) ([]domain.Product, error) {
	switch provider {
	case gateway.ProviderShopify:
		c, err := r.shopifyClient(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		return c.ListProducts(ctx, limit)
	case gateway.ProviderEtsy:
		c, shopID, err := r.etsyClient(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		return c.ListListings(ctx, shopID, limit)
	case gateway.ProviderCJ:
		return r.cjClient().ListProducts(ctx, 1, limit)
	case gateway.ProviderEbay:
		return nil, fmt.Errorf("%w: use the sourcing search for ebay", ErrUnsupported)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

// SearchSourcing queries the eBay Browse API for candidate supply.
func (r *Registry) SearchSourcing(ctx context.Context, req ebay.SearchRequest) (*ebay.SearchResult, error) {
	return r.ebayClient().Search(ctx, req)
}
