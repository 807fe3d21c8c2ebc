package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/metrics"
)

// CoinGeckoClient client for CoinGecko API
type CoinGeckoClient struct {
	baseURL string
	coinID  string
	client  *http.Client
}

// NewCoinGeckoClient creates a new CoinGecko client quoting coinID
func NewCoinGeckoClient(baseURL, coinID string) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL: baseURL,
		coinID:  coinID,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// PriceResponse response from CoinGecko API, keyed by coin id then currency
type PriceResponse map[string]map[string]float64

// GetNativeUSDPrice gets the USD price of the native asset
func (c *CoinGeckoClient) GetNativeUSDPrice(ctx context.Context) (price string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveRequest("coingecko", "price", start, err) }()

	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, url.QueryEscape(c.coinID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to get rate: status %d", resp.StatusCode)
	}

	var priceResp PriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		return "", fmt.Errorf("failed to decode rate: %w", err)
	}

	usd, ok := priceResp[c.coinID]["usd"]
	if !ok {
		return "", fmt.Errorf("no usd price for %s", c.coinID)
	}

	return strconv.FormatFloat(usd, 'f', 2, 64), nil
}
