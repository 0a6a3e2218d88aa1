package steam

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const priceOverviewURL = "https://steamcommunity.com/market/priceoverview/"

var (
	// ErrQuoteAbsent means the market returned no usable price for the item.
	ErrQuoteAbsent = errors.New("no price data for item")
	// ErrMalformedQuote means the market returned a price string that does
	// not normalize to a number. Callers treat it the same as ErrQuoteAbsent.
	ErrMalformedQuote = errors.New("malformed price quote")
)

// Client queries the Steam Community Market price overview endpoint.
type Client struct {
	appID    int
	currency int
	baseURL  string
	client   *resty.Client
}

type priceOverview struct {
	Success     bool   `json:"success"`
	LowestPrice string `json:"lowest_price"`
	Volume      string `json:"volume"`
	MedianPrice string `json:"median_price"`
}

func NewClient(appID, currency int) *Client {
	client := resty.New()
	client.SetTimeout(10 * time.Second)

	return &Client{
		appID:    appID,
		currency: currency,
		baseURL:  priceOverviewURL,
		client:   client,
	}
}

// LowestPrice fetches the current lowest sell price for a market hash name.
// Returns ErrQuoteAbsent when the market has no listing, ErrMalformedQuote
// when the returned price string cannot be parsed.
func (c *Client) LowestPrice(marketHashName string) (float64, error) {
	resp, err := c.client.R().
		SetQueryParams(map[string]string{
			"appid":            strconv.Itoa(c.appID),
			"currency":         strconv.Itoa(c.currency),
			"market_hash_name": marketHashName,
		}).
		Get(c.baseURL)
	if err != nil {
		return 0, fmt.Errorf("price overview request: %w", err)
	}

	var overview priceOverview
	if err := json.Unmarshal(resp.Body(), &overview); err != nil {
		return 0, fmt.Errorf("decode price overview: %w", err)
	}

	if !overview.Success || overview.LowestPrice == "" {
		return 0, ErrQuoteAbsent
	}

	price, ok := NormalizeQuote(overview.LowestPrice)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMalformedQuote, overview.LowestPrice)
	}
	return price, nil
}

// EnsureListingURL turns an item name into its full market listings URL.
// Inputs that are already URLs pass through unchanged.
func EnsureListingURL(item string, appID int) string {
	if strings.HasPrefix(item, "https://") || strings.HasPrefix(item, "http://") {
		return item
	}
	return fmt.Sprintf("https://steamcommunity.com/market/listings/%d/%s", appID, url.PathEscape(item))
}

// MarketHashName extracts the decoded market hash name from a listings URL.
// Inputs that do not look like a listings URL for appID come back unchanged.
func MarketHashName(link string, appID int) string {
	marker := fmt.Sprintf("/%d/", appID)
	_, after, found := strings.Cut(link, marker)
	if !found || after == "" {
		return link
	}
	decoded, err := url.PathUnescape(after)
	if err != nil {
		return link
	}
	return decoded
}

// NormalizeQuote parses a locale-formatted market price string such as
// "12,34 zł" or "$1.23". The second return is false when the string does
// not hold a finite non-negative price.
func NormalizeQuote(raw string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, ",", "."))
	if cleaned == "" {
		return 0, false
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, false
	}
	return price, true
}
