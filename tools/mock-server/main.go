// Package main implements a mock provider server for local development.
// It serves canned responses that mimic the Shopify Admin, Etsy Open API,
// CJ Dropshipping, and eBay Browse endpoints so the gateway can run
// end-to-end without real provider credentials.
//
// Point provider base URLs at the matching prefix, e.g.
//
//	providers.ebay.base_url:  http://localhost:8089/ebay/buy/browse/v1
//	providers.ebay.token_url: http://localhost:8089/ebay/identity/v1/oauth2/token
//	providers.etsy.base_url:  http://localhost:8089/etsy/v3/application
//	providers.etsy.token_url: http://localhost:8089/etsy/v3/public/oauth/token
//	providers.cj.base_url:    http://localhost:8089/cj/api2.0/v1
//
// and set a tenant's store_url to http://localhost:8089/shopify.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock provider server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, newMux(logger)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	// eBay: client-credentials token endpoint plus Browse search.
	mux.HandleFunc("POST /ebay/identity/v1/oauth2/token", ebayTokenHandler(logger))
	mux.HandleFunc("GET /ebay/buy/browse/v1/item_summary/search", ebaySearchHandler(logger))

	// Etsy: OAuth token endpoint (code exchange and refresh) plus shop data.
	mux.HandleFunc("POST /etsy/v3/public/oauth/token", etsyTokenHandler(logger))
	mux.HandleFunc("GET /etsy/v3/application/shops/{shopID}/receipts", etsyReceiptsHandler)
	mux.HandleFunc("GET /etsy/v3/application/shops/{shopID}/listings/active", etsyListingsHandler)

	// CJ: account login and refresh plus catalog and order list.
	mux.HandleFunc("POST /cj/api2.0/v1/authentication/getAccessToken", cjTokenHandler(logger))
	mux.HandleFunc("POST /cj/api2.0/v1/authentication/refreshAccessToken", cjTokenHandler(logger))
	mux.HandleFunc("GET /cj/api2.0/v1/product/list", cjProductListHandler)
	mux.HandleFunc("GET /cj/api2.0/v1/shopping/order/list", cjOrderListHandler)

	// Shopify: Admin API under a store-shaped prefix.
	mux.HandleFunc("GET /shopify/admin/api/{version}/orders.json", shopifyOrdersHandler)
	mux.HandleFunc("GET /shopify/admin/api/{version}/products.json", shopifyProductsHandler)

	return mux
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

// --- eBay ---

func ebayTokenHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Validate Basic Auth header is present (don't verify creds).
		if _, _, ok := r.BasicAuth(); !ok {
			logger.Warn("ebay token request missing Basic Auth header")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":             "invalid_client",
				"error_description": "client authentication failed",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "mock-ebay-token-" + strconv.FormatInt(time.Now().Unix(), 16),
			"expires_in":   7200,
			"token_type":   "Application Access Token",
		})
		logger.Info("issued mock ebay token")
	}
}

type ebayItem struct {
	ItemID string `json:"itemId"`
	Title  string `json:"title"`
	Price  struct {
		Value    string `json:"value"`
		Currency string `json:"currency"`
	} `json:"price"`
	ItemWebURL string `json:"itemWebUrl"`
	Condition  string `json:"condition"`
}

func ebayCatalog() []ebayItem {
	titles := []struct {
		id, title, price string
	}{
		{"v1|1001|0", "Handmade Ceramic Mug 12oz", "14.99"},
		{"v1|1002|0", "Ceramic Mug Set of 4", "39.99"},
		{"v1|1003|0", "Walnut Desk Lamp with USB Port", "54.50"},
		{"v1|1004|0", "Adjustable LED Desk Lamp", "22.00"},
		{"v1|1005|0", "Linen Throw Pillow Cover 18x18", "11.25"},
		{"v1|1006|0", "Cast Iron Plant Stand", "31.75"},
	}
	items := make([]ebayItem, 0, len(titles))
	for _, t := range titles {
		item := ebayItem{ItemID: t.id, Title: t.title, Condition: "NEW"}
		item.Price.Value = t.price
		item.Price.Currency = "USD"
		item.ItemWebURL = "https://www.ebay.com/itm/" + strings.TrimPrefix(t.id, "v1|")
		items = append(items, item)
	}
	return items
}

func ebaySearchHandler(logger *slog.Logger) http.HandlerFunc {
	catalog := ebayCatalog()

	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.ToLower(r.URL.Query().Get("q"))
		limit := queryInt(r, "limit", 50)
		offset := queryInt(r, "offset", 0)

		// Filter items by query substring match on title.
		var matched []ebayItem
		for _, item := range catalog {
			if q == "" || strings.Contains(strings.ToLower(item.Title), q) {
				matched = append(matched, item)
			}
		}
		total := len(matched)

		if offset >= len(matched) {
			matched = nil
		} else {
			end := min(offset+limit, len(matched))
			matched = matched[offset:end]
		}

		if matched == nil {
			matched = []ebayItem{}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"itemSummaries": matched,
			"total":         total,
			"offset":        offset,
			"limit":         limit,
		})
		logger.Info("ebay search", "query", q, "matched", total, "returned", len(matched))
	}
}

// --- Etsy ---

func etsyTokenHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
			return
		}

		grant := r.PostFormValue("grant_type")
		switch grant {
		case "authorization_code", "refresh_token":
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":             "unsupported_grant_type",
				"error_description": "grant_type must be authorization_code or refresh_token",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "mock-etsy-access-" + strconv.FormatInt(time.Now().Unix(), 16),
			"refresh_token": "mock-etsy-refresh",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
		logger.Info("issued mock etsy token", "grant_type", grant)
	}
}

func etsyMoney(cents int64) map[string]any {
	return map[string]any{"amount": cents, "divisor": 100, "currency_code": "USD"}
}

func etsyReceiptsHandler(w http.ResponseWriter, r *http.Request) {
	shopID := r.PathValue("shopID")
	receipts := []map[string]any{
		{
			"receipt_id":        3100001,
			"status":            "Paid",
			"buyer_email":       "buyer@example.com",
			"created_timestamp": time.Now().Add(-48 * time.Hour).Unix(),
			"grandtotal":        etsyMoney(2650),
			"transactions": []map[string]any{
				{
					"transaction_id": 9100001,
					"title":          "Handmade Ceramic Mug",
					"sku":            "MUG-" + shopID,
					"quantity":       2,
					"price":          etsyMoney(1325),
				},
			},
			"shipments": []map[string]any{},
		},
		{
			"receipt_id":        3100002,
			"status":            "Completed",
			"buyer_email":       "repeat@example.com",
			"created_timestamp": time.Now().Add(-240 * time.Hour).Unix(),
			"grandtotal":        etsyMoney(5450),
			"transactions": []map[string]any{
				{
					"transaction_id": 9100002,
					"title":          "Walnut Desk Lamp",
					"sku":            "LAMP-01",
					"quantity":       1,
					"price":          etsyMoney(5450),
				},
			},
			"shipments": []map[string]any{
				{"tracking_code": "9400100000000000000001", "carrier_name": "usps"},
			},
		},
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(receipts), "results": receipts})
}

func etsyListingsHandler(w http.ResponseWriter, _ *http.Request) {
	listings := []map[string]any{
		{
			"listing_id":        7100001,
			"title":             "Handmade Ceramic Mug",
			"description":       "Wheel-thrown stoneware mug, dishwasher safe.",
			"state":             "active",
			"quantity":          14,
			"url":               "https://www.etsy.com/listing/7100001",
			"created_timestamp": time.Now().Add(-2000 * time.Hour).Unix(),
			"price":             etsyMoney(1325),
			"skus":              []string{"MUG-8123456"},
		},
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(listings), "results": listings})
}

// --- CJ ---

func cjTokenHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusOK, map[string]any{
				"code": 1600001, "result": false, "message": "request body unreadable",
			})
			return
		}

		now := time.Now().UTC()
		writeJSON(w, http.StatusOK, map[string]any{
			"code":    200,
			"result":  true,
			"message": "",
			"data": map[string]string{
				"accessToken":            "mock-cj-access-" + strconv.FormatInt(now.Unix(), 16),
				"accessTokenExpiryDate":  now.Add(15 * 24 * time.Hour).Format(time.RFC3339),
				"refreshToken":           "mock-cj-refresh",
				"refreshTokenExpiryDate": now.Add(180 * 24 * time.Hour).Format(time.RFC3339),
			},
		})
		logger.Info("issued mock cj token", "path", r.URL.Path)
	}
}

func cjProductListHandler(w http.ResponseWriter, r *http.Request) {
	pageSize := queryInt(r, "pageSize", 20)
	products := []map[string]any{
		{
			"pid":           "CJ-PROD-0001",
			"productNameEn": "Ceramic Coffee Mug 350ml",
			"productSku":    "CJNS112233",
			"productImage":  "https://cf.cjdropshipping.com/img/CJNS112233.jpg",
			"sellPrice":     "3.42",
			"createTime":    "2025-11-02 08:15:00",
			"listedNum":     412,
			"categoryName":  "Home & Kitchen",
			"currencyCode":  "USD",
		},
		{
			"pid":           "CJ-PROD-0002",
			"productNameEn": "LED Desk Lamp Foldable",
			"productSku":    "CJDQ445566",
			"productImage":  "https://cf.cjdropshipping.com/img/CJDQ445566.jpg",
			"sellPrice":     "7.80",
			"createTime":    "2025-12-18 11:30:00",
			"listedNum":     96,
			"categoryName":  "Lighting",
			"currencyCode":  "USD",
		},
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code": 200, "result": true, "message": "",
		"data": map[string]any{
			"pageNum": 1, "pageSize": pageSize, "total": len(products), "list": products,
		},
	})
}

func cjOrderListHandler(w http.ResponseWriter, r *http.Request) {
	pageSize := queryInt(r, "pageSize", 20)
	orders := []map[string]any{
		{
			"orderId":      "CJ-ORD-220001",
			"orderNum":     "SF-1001",
			"orderStatus":  "TRACKING",
			"orderAmount":  "12.84",
			"createDate":   "2026-02-14 09:05:00",
			"trackNumber":  "CJPKG000001",
			"currencyCode": "USD",
		},
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code": 200, "result": true, "message": "",
		"data": map[string]any{
			"pageNum": 1, "pageSize": pageSize, "total": len(orders), "list": orders,
		},
	})
}

// --- Shopify ---

func shopifyOrdersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Shopify-Access-Token") == "" && r.Header.Get("Authorization") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"errors": "[API] Invalid API key or access token",
		})
		return
	}

	orders := []map[string]any{
		{
			"id":               4500001,
			"email":            "shopper@example.com",
			"created_at":       time.Now().Add(-6 * time.Hour).Format(time.RFC3339),
			"total_price":      "49.99",
			"currency":         "USD",
			"financial_status": "paid",
			"line_items": []map[string]any{
				{"sku": "MUG-8123456", "title": "Handmade Ceramic Mug", "quantity": 2, "price": "13.25"},
			},
			"fulfillments": []map[string]any{},
		},
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func shopifyProductsHandler(w http.ResponseWriter, _ *http.Request) {
	products := []map[string]any{
		{
			"id":    8800001,
			"title": "Handmade Ceramic Mug",
			"variants": []map[string]any{
				{"sku": "MUG-8123456", "price": "13.25", "inventory_quantity": 14},
			},
		},
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
