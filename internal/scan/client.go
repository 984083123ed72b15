package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"pricescope/internal/model"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultMaxRetries   = 3
	defaultRetryBackoff = 300 * time.Millisecond
)

// Client is a chain gateway backed by a Blockscout-style explorer REST
// API. Numeric fields in explorer responses are treated as untrusted
// text and parsed explicitly.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	logger       *zap.Logger
	maxRetries   int
	retryBackoff time.Duration
}

// NewClient builds an explorer client for the given base URL.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: defaultTimeout},
		logger:       logger,
		maxRetries:   defaultMaxRetries,
		retryBackoff: defaultRetryBackoff,
	}
}

// blockNumber accepts both JSON number and string forms. A malformed
// value keeps the raw text and marks itself invalid instead of failing
// the surrounding page decode.
type blockNumber struct {
	value uint64
	valid bool
	raw   string
}

func (b *blockNumber) UnmarshalJSON(data []byte) error {
	b.raw = string(data)
	b.valid = false

	text := strings.Trim(b.raw, `"`)
	value, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return nil
	}

	b.value = value
	b.valid = true
	return nil
}

type logItem struct {
	Topics      []string    `json:"topics"`
	Data        string      `json:"data"`
	BlockNumber blockNumber `json:"block_number"`
	TxHash      string      `json:"transaction_hash"`
}

type logsResponse struct {
	Items       []logItem `json:"items"`
	HasNextPage bool      `json:"has_next_page"`
}

// GetLogs fetches one newest-first page of an address's logs. Items
// with a malformed block number are skipped, they never fail the page.
func (c *Client) GetLogs(ctx context.Context, address string, page, pageSize int) (model.LogPage, error) {
	url := fmt.Sprintf("%s/api/v2/addresses/%s/logs?page=%d&limit=%d", c.baseURL, address, page, pageSize)

	var resp logsResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return model.LogPage{}, fmt.Errorf("get logs page %d: %w", page, err)
	}

	items := make([]model.LogRecord, 0, len(resp.Items))
	for _, item := range resp.Items {
		if !item.BlockNumber.valid {
			c.logger.Warn("bad block number in log item", zap.String("block_number", item.BlockNumber.raw), zap.String("tx", item.TxHash))
			continue
		}
		items = append(items, model.LogRecord{
			Topics:      item.Topics,
			Data:        item.Data,
			BlockNumber: item.BlockNumber.value,
			TxHash:      item.TxHash,
		})
	}

	return model.LogPage{Items: items, HasNextPage: resp.HasNextPage}, nil
}

type blockResponse struct {
	Timestamp string `json:"timestamp"`
}

// BlockTime fetches a block and parses its ISO-8601 timestamp.
func (c *Client) BlockTime(ctx context.Context, blockNumber uint64) (time.Time, error) {
	url := fmt.Sprintf("%s/api/v2/blocks/%d", c.baseURL, blockNumber)

	var resp blockResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return time.Time{}, fmt.Errorf("get block %d: %w", blockNumber, err)
	}
	if resp.Timestamp == "" {
		return time.Time{}, fmt.Errorf("block %d has no timestamp", blockNumber)
	}

	ts, err := time.Parse(time.RFC3339, resp.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse block %d timestamp: %w", blockNumber, err)
	}
	return ts, nil
}

type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result string    `json:"result"`
	Error  *rpcError `json:"error"`
}

// EthCall performs a read-only contract call through the explorer's
// eth-rpc passthrough.
func (c *Client) EthCall(ctx context.Context, to string, data []byte) ([]byte, error) {
	body, err := json.Marshal(rpcRequest{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  "eth_call",
		Params: []interface{}{
			map[string]string{"to": to, "data": hexutil.Encode(data)},
			"latest",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal eth_call: %w", err)
	}

	var resp rpcResponse
	url := c.baseURL + "/api/eth-rpc"
	if err := c.postJSON(ctx, url, body, &resp); err != nil {
		return nil, fmt.Errorf("eth_call: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("eth_call: %s (code %d)", resp.Error.Message, resp.Error.Code)
	}

	out, err := hexutil.Decode(resp.Result)
	if err != nil {
		return nil, fmt.Errorf("decode eth_call result: %w", err)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	return withRetry(ctx, c.maxRetries, c.retryBackoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		return c.do(req, out)
	})
}

func (c *Client) postJSON(ctx context.Context, url string, body []byte, out interface{}) error {
	return withRetry(ctx, c.maxRetries, c.retryBackoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		return c.do(req, out)
	})
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
