package series

import (
	"context"
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"pricescope/internal/dex"
	"pricescope/internal/model"
)

type fakeGateway struct {
	pages      map[int]model.LogPage
	pageErrs   map[int]error
	blockTimes map[uint64]time.Time
	blockErrs  map[uint64]error
	callFn     func(to string, data []byte) ([]byte, error)

	mu        sync.Mutex
	pageCalls []int
}

func (g *fakeGateway) GetLogs(_ context.Context, _ string, page, _ int) (model.LogPage, error) {
	g.mu.Lock()
	g.pageCalls = append(g.pageCalls, page)
	g.mu.Unlock()

	if err, ok := g.pageErrs[page]; ok {
		return model.LogPage{}, err
	}
	if logPage, ok := g.pages[page]; ok {
		return logPage, nil
	}
	return model.LogPage{}, fmt.Errorf("no page %d", page)
}

func (g *fakeGateway) BlockTime(_ context.Context, block uint64) (time.Time, error) {
	if err, ok := g.blockErrs[block]; ok {
		return time.Time{}, err
	}
	if ts, ok := g.blockTimes[block]; ok {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("no block %d", block)
}

func (g *fakeGateway) EthCall(_ context.Context, to string, data []byte) ([]byte, error) {
	if g.callFn == nil {
		return nil, fmt.Errorf("no call handler")
	}
	return g.callFn(to, data)
}

// pairMetaCall answers token0/token1/decimals eth_calls with fixed
// 18-decimal tokens.
func pairMetaCall(t *testing.T) func(string, []byte) ([]byte, error) {
	t.Helper()
	token0 := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	token1 := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	return func(_ string, data []byte) ([]byte, error) {
		if len(data) < 4 {
			return nil, fmt.Errorf("short calldata")
		}
		switch hex.EncodeToString(data[:4]) {
		case "0dfe1681":
			return common.LeftPadBytes(token0.Bytes(), 32), nil
		case "d21220a7":
			return common.LeftPadBytes(token1.Bytes(), 32), nil
		case "313ce567":
			return common.LeftPadBytes(big.NewInt(18).Bytes(), 32), nil
		default:
			return nil, fmt.Errorf("unexpected selector")
		}
	}
}

func syncEventTopic(t *testing.T) string {
	t.Helper()
	pairABI, err := dex.V2PairABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	return pairABI.Events["Sync"].ID.Hex()
}

const transferTopic = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"

func syncLog(topic string, block uint64, reserve0, reserve1 *big.Int) model.LogRecord {
	return model.LogRecord{
		Topics:      []string{topic},
		Data:        fmt.Sprintf("0x%064x%064x", reserve0, reserve1),
		BlockNumber: block,
		TxHash:      fmt.Sprintf("0xtx%d", block),
	}
}

func fillerLogs(n int, block uint64) []model.LogRecord {
	logs := make([]model.LogRecord, 0, n)
	for i := 0; i < n; i++ {
		logs = append(logs, model.LogRecord{
			Topics:      []string{transferTopic},
			Data:        "0x",
			BlockNumber: block,
			TxHash:      fmt.Sprintf("0xfiller%d", i),
		})
	}
	return logs
}

func reserves(price int64) (*big.Int, *big.Int) {
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	// price is in hundredths of token1 per token0.
	reserve1 := new(big.Int).Mul(unit, big.NewInt(price))
	reserve1.Div(reserve1, big.NewInt(100))
	return unit, reserve1
}

const testPair = "0x1111111111111111111111111111111111111111"

func newTestService(t *testing.T, gateway Gateway, now time.Time) *Service {
	t.Helper()
	service, err := NewService(Config{PageSize: 1000, MaxPages: 10, ResolveBatchSize: 50}, gateway, zap.NewNop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	service.now = func() time.Time { return now }
	return service
}

func TestReconstructEndToEnd(t *testing.T) {
	topic := syncEventTopic(t)
	now := time.Unix(1_700_000_000, 0).UTC()

	r0a, r1a := reserves(100)
	r0b, r1b := reserves(102)
	r0c, r1c := reserves(104)
	r0d, r1d := reserves(106)

	page1 := append([]model.LogRecord{
		syncLog(topic, 101, r0a, r1a),
		syncLog(topic, 102, r0b, r1b),
		syncLog(topic, 103, r0c, r1c),
	}, fillerLogs(997, 100)...)
	page2 := append([]model.LogRecord{
		syncLog(topic, 104, r0d, r1d),
	}, fillerLogs(399, 100)...)

	// Page 2 carries fewer items than the page size because the
	// gateway dropped malformed records; only has_next_page decides.

	gateway := &fakeGateway{
		pages: map[int]model.LogPage{
			1: {Items: page1, HasNextPage: true},
			2: {Items: page2, HasNextPage: false},
		},
		blockTimes: map[uint64]time.Time{
			101: now.Add(-40 * time.Minute),
			102: now.Add(-30 * time.Minute),
			103: now.Add(-20 * time.Minute),
			104: now.Add(-10 * time.Minute),
		},
		callFn: pairMetaCall(t),
	}

	service := newTestService(t, gateway, now)
	points, err := service.Reconstruct(context.Background(), testPair, RangeDay)
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}

	if len(points) != 4 {
		t.Fatalf("expected 4 buckets, got %d", len(points))
	}

	want := []float64{1.0, 1.02, 1.04, 1.06}
	for i, point := range points {
		if math.Abs(point.Value-want[i]) > 1e-9 {
			t.Fatalf("bucket %d value mismatch: %f != %f", i, point.Value, want[i])
		}
		if point.Volume != 0 {
			t.Fatalf("bucket volume should be zero")
		}
	}

	if len(gateway.pageCalls) != 2 {
		t.Fatalf("expected 2 page fetches, got %v", gateway.pageCalls)
	}
}

func TestReconstructShortPageKeepsPaginating(t *testing.T) {
	topic := syncEventTopic(t)
	now := time.Unix(1_700_000_000, 0).UTC()
	r0, r1 := reserves(100)

	// Both pages are short of the page size, the gateway filtered out
	// malformed records. Pagination must run until has_next_page flips.
	gateway := &fakeGateway{
		pages: map[int]model.LogPage{
			1: {Items: append([]model.LogRecord{syncLog(topic, 101, r0, r1)}, fillerLogs(500, 100)...), HasNextPage: true},
			2: {Items: []model.LogRecord{syncLog(topic, 102, r0, r1)}, HasNextPage: false},
		},
		blockTimes: map[uint64]time.Time{
			101: now.Add(-20 * time.Minute),
			102: now.Add(-10 * time.Minute),
		},
		callFn: pairMetaCall(t),
	}

	service := newTestService(t, gateway, now)
	points, err := service.Reconstruct(context.Background(), testPair, RangeDay)
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if len(gateway.pageCalls) != 2 {
		t.Fatalf("expected both pages fetched, got %v", gateway.pageCalls)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(points))
	}
}

func TestReconstructPairMetaFailureIsFatal(t *testing.T) {
	gateway := &fakeGateway{
		callFn: func(string, []byte) ([]byte, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}

	service := newTestService(t, gateway, time.Now())
	if _, err := service.Reconstruct(context.Background(), testPair, RangeDay); err == nil {
		t.Fatalf("expected error when pair metadata fails")
	}
}

func TestReconstructNoMatchingLogs(t *testing.T) {
	gateway := &fakeGateway{
		pages: map[int]model.LogPage{
			1: {Items: fillerLogs(10, 100), HasNextPage: false},
		},
		callFn: pairMetaCall(t),
	}

	service := newTestService(t, gateway, time.Now())
	points, err := service.Reconstruct(context.Background(), testPair, RangeDay)
	if err != nil {
		t.Fatalf("no activity should not error: %v", err)
	}
	if len(points) != 0 {
		t.Fatalf("expected empty series, got %d points", len(points))
	}
}

func TestReconstructPageErrorEndsScan(t *testing.T) {
	topic := syncEventTopic(t)
	now := time.Unix(1_700_000_000, 0).UTC()
	r0, r1 := reserves(100)

	gateway := &fakeGateway{
		pages: map[int]model.LogPage{
			1: {Items: append([]model.LogRecord{syncLog(topic, 101, r0, r1)}, fillerLogs(999, 100)...), HasNextPage: true},
		},
		pageErrs:   map[int]error{2: fmt.Errorf("rate limited")},
		blockTimes: map[uint64]time.Time{101: now.Add(-5 * time.Minute)},
		callFn:     pairMetaCall(t),
	}

	service := newTestService(t, gateway, now)
	points, err := service.Reconstruct(context.Background(), testPair, RangeDay)
	if err != nil {
		t.Fatalf("page failure should degrade, not error: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected the first page's point, got %d", len(points))
	}
}

func TestReconstructPartialTimestampFailure(t *testing.T) {
	topic := syncEventTopic(t)
	now := time.Unix(1_700_000_000, 0).UTC()
	r0, r1 := reserves(100)

	gateway := &fakeGateway{
		pages: map[int]model.LogPage{
			1: {Items: []model.LogRecord{
				syncLog(topic, 101, r0, r1),
				syncLog(topic, 102, r0, r1),
				syncLog(topic, 103, r0, r1),
			}, HasNextPage: false},
		},
		blockTimes: map[uint64]time.Time{
			101: now.Add(-30 * time.Minute),
			103: now.Add(-10 * time.Minute),
		},
		blockErrs: map[uint64]error{102: fmt.Errorf("not found")},
		callFn:    pairMetaCall(t),
	}

	service := newTestService(t, gateway, now)
	points, err := service.Reconstruct(context.Background(), testPair, RangeDay)
	if err != nil {
		t.Fatalf("partial timestamp failure should degrade: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
}

func TestReconstructInvalidPairAddress(t *testing.T) {
	service := newTestService(t, &fakeGateway{}, time.Now())
	if _, err := service.Reconstruct(context.Background(), "0xPAIR", RangeDay); err == nil {
		t.Fatalf("expected error for invalid pair address")
	}
}
