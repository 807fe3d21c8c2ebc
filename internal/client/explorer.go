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
	"github.com/AlexZinkM/evm-wallet/internal/model"

	"golang.org/x/time/rate"
)

// ExplorerTx is one row of a BscScan-compatible account listing
type ExplorerTx struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	IsError         string `json:"isError"`
	ContractAddress string `json:"contractAddress"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
}

// Time returns the block time of the row
func (t ExplorerTx) Time() time.Time {
	sec, _ := strconv.ParseInt(t.TimeStamp, 10, 64)
	return time.Unix(sec, 0).UTC()
}

// Block returns the block number of the row
func (t ExplorerTx) Block() uint64 {
	n, _ := strconv.ParseUint(t.BlockNumber, 10, 64)
	return n
}

// explorerResponse is the envelope of every explorer answer.
// Result is an array on success and a string on error.
type explorerResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// ExplorerClient is a client for the block explorer account API
type ExplorerClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewExplorerClient creates a client allowing rps requests per second.
// Free explorer keys are limited to a handful of calls per second.
func NewExplorerClient(baseURL, apiKey string, rps float64) *ExplorerClient {
	return &ExplorerClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// NativeTransfers lists the latest native transactions of address, newest first
func (c *ExplorerClient) NativeTransfers(ctx context.Context, address string, limit int) ([]ExplorerTx, error) {
	return c.list(ctx, "txlist", address, limit)
}

// TokenTransfers lists the latest token transfers of address, newest first
func (c *ExplorerClient) TokenTransfers(ctx context.Context, address string, limit int) ([]ExplorerTx, error) {
	return c.list(ctx, "tokentx", address, limit)
}

func (c *ExplorerClient) list(ctx context.Context, action, address string, limit int) (txs []ExplorerTx, err error) {
	// Wait for our turn
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, model.NewNetworkError("explorer request cancelled", err)
	}

	start := time.Now()
	defer func() { metrics.ObserveRequest("explorer", action, start, err) }()

	q := url.Values{}
	q.Set("module", "account")
	q.Set("action", action)
	q.Set("address", address)
	q.Set("startblock", "0")
	q.Set("endblock", "99999999")
	q.Set("page", "1")
	q.Set("offset", strconv.Itoa(limit))
	q.Set("sort", "desc")
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, model.NewNetworkError("explorer unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, model.NewNetworkError(fmt.Sprintf("explorer returned status %d", resp.StatusCode), nil)
	}

	var er explorerResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, model.NewNetworkError("failed to decode explorer response", err)
	}

	// An empty history is reported as status 0 with an empty array
	if err := json.Unmarshal(er.Result, &txs); err != nil {
		var reason string
		_ = json.Unmarshal(er.Result, &reason)
		if reason == "" {
			reason = er.Message
		}
		return nil, model.NewNetworkError("explorer error", fmt.Errorf("%s", reason))
	}

	log.Debugf("Explorer %s for %s returned %d rows", action, address, len(txs))
	return txs, nil
}
