package cj

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// envelope is CJ's uniform response wrapper. result=false marks a failed
// call even under HTTP 200.
type envelope struct {
	Code    int             `json:"code"`
	Result  bool            `json:"result"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type productListData struct {
	PageNum  int              `json:"pageNum"`
	PageSize int              `json:"pageSize"`
	Total    int              `json:"total"`
	List     []productPayload `json:"list"`
}

// productPayload uses decimal.Decimal for prices: CJ sends them as bare
// JSON numbers, and decimal decodes the raw digits without a float64
// round trip.
type productPayload struct {
	PID          string          `json:"pid"`
	ProductName  string          `json:"productNameEn"`
	ProductSKU   string          `json:"productSku"`
	ProductImage string          `json:"productImage"`
	SellPrice    decimal.Decimal `json:"sellPrice"`
	CreateTime   string          `json:"createTime"`
	Description  string          `json:"description"`
	ListedNum    int             `json:"listedNum"`
	CategoryName string          `json:"categoryName"`
	CurrencyCode string          `json:"currencyCode"`
}

type stockPayload struct {
	VID         string `json:"vid"`
	AreaEn      string `json:"areaEn"`
	CountryCode string `json:"countryCode"`
	StorageNum  int    `json:"storageNum"`
}

type freightRequestPayload struct {
	StartCountryCode string                  `json:"startCountryCode"`
	EndCountryCode   string                  `json:"endCountryCode"`
	Products         []freightProductPayload `json:"products"`
}

type freightProductPayload struct {
	VID      string `json:"vid"`
	Quantity int    `json:"quantity"`
}

type freightOptionPayload struct {
	LogisticName  string          `json:"logisticName"`
	LogisticPrice decimal.Decimal `json:"logisticPrice"`
	LogisticAging string          `json:"logisticAging"`
}

type orderRequestPayload struct {
	OrderNumber     string                `json:"orderNumber"`
	ShippingName    string                `json:"shippingCustomerName"`
	ShippingCountry string                `json:"shippingCountryCode"`
	ShippingProv    string                `json:"shippingProvince"`
	ShippingCity    string                `json:"shippingCity"`
	ShippingAddress string                `json:"shippingAddress"`
	ShippingPhone   string                `json:"shippingPhone"`
	LogisticName    string                `json:"logisticName"`
	Products        []orderProductPayload `json:"products"`
}

type orderProductPayload struct {
	VID      string `json:"vid"`
	Quantity int    `json:"quantity"`
}

type orderCreateData struct {
	OrderID string `json:"orderId"`
}

type orderListData struct {
	PageNum  int            `json:"pageNum"`
	PageSize int            `json:"pageSize"`
	Total    int            `json:"total"`
	List     []orderPayload `json:"list"`
}

type orderPayload struct {
	OrderID     string          `json:"orderId"`
	OrderNum    string          `json:"orderNum"`
	OrderStatus string          `json:"orderStatus"`
	OrderAmount decimal.Decimal `json:"orderAmount"`
	CreateDate  string          `json:"createDate"`
	TrackNumber string          `json:"trackNumber"`
}
