package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultCryptoURL is the CoinGecko API base.
const DefaultCryptoURL = "https://api.coingecko.com/api/v3"

// CryptoProvider fetches coin prices from the CoinGecko markets endpoint.
type CryptoProvider struct {
	BaseURL string
	Coins   []string
	Client  *http.Client
}

// Name implements Source.
func (p *CryptoProvider) Name() string { return "crypto" }

type coinMarket struct {
	ID                       string  `json:"id"`
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	CurrentPrice             float64 `json:"current_price"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
}

// Fetch returns {<coin id>: {price, change, symbol, name}}.
func (p *CryptoProvider) Fetch(ctx context.Context) (any, error) {
	if len(p.Coins) == 0 {
		return map[string]any{}, nil
	}

	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("ids", strings.Join(p.Coins, ","))
	q.Set("order", "market_cap_desc")
	q.Set("sparkline", "false")
	endpoint := strings.TrimRight(p.BaseURL, "/") + "/coins/markets?" + q.Encode()

	var markets []coinMarket
	if err := getJSON(ctx, p.Client, endpoint, nil, &markets); err != nil {
		return nil, fmt.Errorf("failed to fetch crypto prices: %w", err)
	}

	out := make(map[string]any, len(markets))
	for _, m := range markets {
		out[m.ID] = coinQuote(m.CurrentPrice, m.PriceChangePercentage24h, strings.ToUpper(m.Symbol), m.Name)
	}
	return out, nil
}

// Demo returns fixed quotes for the configured coins.
func (p *CryptoProvider) Demo() any {
	out := make(map[string]any, len(p.Coins))
	for _, id := range p.Coins {
		if q, ok := demoCoins[id]; ok {
			out[id] = coinQuote(q.CurrentPrice, q.PriceChangePercentage24h, q.Symbol, q.Name)
		}
	}
	return out
}

func coinQuote(price, change float64, symbol, name string) map[string]any {
	return map[string]any{
		"price":  price,
		"change": change,
		"symbol": symbol,
		"name":   name,
	}
}

var demoCoins = map[string]coinMarket{
	"bitcoin":  {Symbol: "BTC", Name: "Bitcoin", CurrentPrice: 45230.5, PriceChangePercentage24h: 2.84},
	"ethereum": {Symbol: "ETH", Name: "Ethereum", CurrentPrice: 2890.75, PriceChangePercentage24h: -1.54},
	"cardano":  {Symbol: "ADA", Name: "Cardano", CurrentPrice: 0.58, PriceChangePercentage24h: 5.45},
	"solana":   {Symbol: "SOL", Name: "Solana", CurrentPrice: 98.42, PriceChangePercentage24h: 3.31},
	"ripple":   {Symbol: "XRP", Name: "XRP", CurrentPrice: 0.62, PriceChangePercentage24h: -3.12},
}
