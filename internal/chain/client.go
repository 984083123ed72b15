package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"pricescope/internal/model"
)

const (
	// defaultScanWindow is the block span of a single eth_getLogs query.
	defaultScanWindow = 50_000
	// defaultMaxLookback bounds the backward log scan, roughly seven
	// months of 3-second blocks.
	defaultMaxLookback = 6_400_000
)

// Client is a JSON-RPC chain gateway built on go-ethereum. Explorer
// style newest-first log pagination is emulated by scanning eth_getLogs
// backward from the chain head in fixed block windows.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client

	scanWindow  uint64
	maxLookback uint64

	mu      sync.RWMutex
	tsCache map[uint64]uint64
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient:   rpcClient,
		ethClient:   ethclient.NewClient(rpcClient),
		scanWindow:  defaultScanWindow,
		maxLookback: defaultMaxLookback,
		tsCache:     make(map[uint64]uint64),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// BlockTime returns the block timestamp, using an in-memory cache.
func (c *Client) BlockTime(ctx context.Context, number uint64) (time.Time, error) {
	c.mu.RLock()
	ts, ok := c.tsCache[number]
	c.mu.RUnlock()
	if ok {
		return time.Unix(int64(ts), 0).UTC(), nil
	}

	header, err := c.ethClient.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return time.Time{}, err
	}

	ts = header.Time
	c.mu.Lock()
	c.tsCache[number] = ts
	c.mu.Unlock()

	return time.Unix(int64(ts), 0).UTC(), nil
}

// EthCall performs a read-only contract call at the latest block.
func (c *Client) EthCall(ctx context.Context, to string, data []byte) ([]byte, error) {
	if !common.IsHexAddress(to) {
		return nil, fmt.Errorf("invalid address: %s", to)
	}
	addr := common.HexToAddress(to)
	msg := ethereum.CallMsg{To: &addr, Data: data}
	return c.ethClient.CallContract(ctx, msg, nil)
}

// GetLogs returns one newest-first page of an address's logs. Pages are
// 1-based. The scan walks backward from the chain head and gives up at
// the lookback ceiling, reporting no next page.
func (c *Client) GetLogs(ctx context.Context, address string, page, pageSize int) (model.LogPage, error) {
	if !common.IsHexAddress(address) {
		return model.LogPage{}, fmt.Errorf("invalid address: %s", address)
	}
	if page < 1 || pageSize < 1 {
		return model.LogPage{}, fmt.Errorf("invalid page %d size %d", page, pageSize)
	}

	latest, err := c.ethClient.BlockNumber(ctx)
	if err != nil {
		return model.LogPage{}, fmt.Errorf("get latest block: %w", err)
	}

	floor := uint64(0)
	if latest > c.maxLookback {
		floor = latest - c.maxLookback
	}

	// One extra record answers hasNextPage without another window.
	need := page*pageSize + 1
	collected := make([]model.LogRecord, 0, need)

	end := latest
	for len(collected) < need {
		start := floor
		if end >= floor+c.scanWindow {
			start = end - c.scanWindow + 1
		}

		query := ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(start),
			ToBlock:   new(big.Int).SetUint64(end),
			Addresses: []common.Address{common.HexToAddress(address)},
		}
		logs, err := c.ethClient.FilterLogs(ctx, query)
		if err != nil {
			return model.LogPage{}, fmt.Errorf("filter logs %d-%d: %w", start, end, err)
		}

		for i := len(logs) - 1; i >= 0; i-- {
			collected = append(collected, buildLogRecord(logs[i]))
		}

		if start == floor {
			break
		}
		end = start - 1
	}

	lo := (page - 1) * pageSize
	if lo >= len(collected) {
		return model.LogPage{Items: []model.LogRecord{}, HasNextPage: false}, nil
	}
	hi := lo + pageSize
	if hi > len(collected) {
		hi = len(collected)
	}

	return model.LogPage{
		Items:       collected[lo:hi],
		HasNextPage: len(collected) > hi,
	}, nil
}

func buildLogRecord(log types.Log) model.LogRecord {
	topics := make([]string, 0, len(log.Topics))
	for _, topic := range log.Topics {
		topics = append(topics, topic.Hex())
	}

	return model.LogRecord{
		Topics:      topics,
		Data:        hexutil.Encode(log.Data),
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
	}
}
