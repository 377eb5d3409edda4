package ebay

// Browse API wire payloads. Prices are {value, currency} with the value as
// a decimal string.

type pricePayload struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type imagePayload struct {
	ImageURL string `json:"imageUrl"`
}

type itemSummaryPayload struct {
	ItemID     string        `json:"itemId"`
	Title      string        `json:"title"`
	Price      pricePayload  `json:"price"`
	Image      *imagePayload `json:"image"`
	Condition  string        `json:"condition"`
	ItemWebURL string        `json:"itemWebUrl"`
}

type searchPayload struct {
	ItemSummaries []itemSummaryPayload `json:"itemSummaries"`
	Total         int                  `json:"total"`
	Offset        int                  `json:"offset"`
	Limit         int                  `json:"limit"`
	Next          string               `json:"next"`
}

type availabilityPayload struct {
	EstimatedAvailableQuantity int `json:"estimatedAvailableQuantity"`
}

type itemPayload struct {
	ItemID                  string                `json:"itemId"`
	Title                   string                `json:"title"`
	ShortDescription        string                `json:"shortDescription"`
	Price                   pricePayload          `json:"price"`
	Image                   *imagePayload         `json:"image"`
	Condition               string                `json:"condition"`
	ItemWebURL              string                `json:"itemWebUrl"`
	EstimatedAvailabilities []availabilityPayload `json:"estimatedAvailabilities"`
}
