package series

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"pricescope/internal/dex"
	"pricescope/internal/model"
)

const (
	defaultPageSize         = 1000
	defaultMaxPages         = 10
	defaultResolveBatchSize = 50
)

// Config holds the pipeline tunables. Zero values take the defaults.
type Config struct {
	// PageSize is the log page size requested from the gateway.
	PageSize int
	// MaxPages caps the paginated log scan. Busy pairs truncate to
	// the most recent MaxPages*PageSize raw logs, which can
	// under-represent 1Y/ALL windows.
	MaxPages int
	// ResolveBatchSize bounds concurrent block timestamp lookups.
	ResolveBatchSize int
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	if c.MaxPages <= 0 {
		c.MaxPages = defaultMaxPages
	}
	if c.ResolveBatchSize <= 0 {
		c.ResolveBatchSize = defaultResolveBatchSize
	}
	return c
}

// Service reconstructs bucketed price series for AMM pairs. It holds
// no state between calls and is safe for concurrent use as long as the
// gateway is.
type Service struct {
	cfg     Config
	gateway Gateway
	decoder *dex.SyncDecoder
	logger  *zap.Logger
	now     func() time.Time
}

// NewService builds a Service around a gateway.
func NewService(cfg Config, gateway Gateway, logger *zap.Logger) (*Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	decoder, err := dex.NewSyncDecoder()
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:     cfg.withDefaults(),
		gateway: gateway,
		decoder: decoder,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Reconstruct builds the bucketed price series for a pair over the
// requested range. Only pair metadata failures are returned as errors,
// everything else degrades to a partial or empty series.
func (s *Service) Reconstruct(ctx context.Context, pair string, r Range) ([]model.PricePoint, error) {
	if !common.IsHexAddress(pair) {
		return nil, fmt.Errorf("invalid pair address: %s", pair)
	}

	meta, err := dex.FetchPairMeta(ctx, s.gateway, pair, s.logger)
	if err != nil {
		return nil, fmt.Errorf("pair metadata: %w", err)
	}

	fromTime := r.FromTime(s.now())

	s.logger.Info("price reconstruction start",
		zap.String("pair", pair),
		zap.String("range", string(r)),
		zap.Int64("from_time_ms", fromTime),
		zap.String("token0", meta.Token0),
		zap.String("token1", meta.Token1),
	)

	events := s.collectSyncEvents(ctx, pair)
	if len(events) == 0 {
		s.logger.Info("no sync events found", zap.String("pair", pair))
		return []model.PricePoint{}, nil
	}

	blockTimes, skipped := resolveTimestamps(ctx, s.gateway, uniqueBlocks(events), s.cfg.ResolveBatchSize, s.logger)
	if skipped > 0 {
		s.logger.Warn("blocks left unresolved", zap.Int("skipped", skipped), zap.Int("resolved", len(blockTimes)))
	}

	points, dropped := buildPricePoints(events, blockTimes, meta.Token0Decimals, meta.Token1Decimals, fromTime)
	if dropped > 0 {
		s.logger.Debug("events dropped", zap.Int("dropped", dropped), zap.Int("kept", len(points)))
	}
	if len(points) == 0 {
		s.logger.Info("no points in requested window", zap.String("pair", pair), zap.String("range", string(r)))
		return []model.PricePoint{}, nil
	}

	filtered := filterAnomalies(points)
	buckets := aggregateBuckets(filtered, r)

	s.logger.Info("price reconstruction complete",
		zap.String("pair", pair),
		zap.Int("events", len(events)),
		zap.Int("points", len(points)),
		zap.Int("filtered", len(filtered)),
		zap.Int("buckets", len(buckets)),
	)

	return buckets, nil
}

// collectSyncEvents pages through the pair's logs and decodes matching
// Sync events. A page fetch failure ends the scan, it does not abort
// the pipeline.
func (s *Service) collectSyncEvents(ctx context.Context, pair string) []model.ReserveSyncEvent {
	events := make([]model.ReserveSyncEvent, 0, s.cfg.PageSize)

	for page := 1; page <= s.cfg.MaxPages; page++ {
		logPage, err := s.gateway.GetLogs(ctx, pair, page, s.cfg.PageSize)
		if err != nil {
			s.logger.Warn("log page fetch failed, stopping scan", zap.Int("page", page), zap.Error(err))
			break
		}

		for _, record := range logPage.Items {
			if len(record.Topics) == 0 || !s.decoder.CanDecode(record.Topics[0]) {
				continue
			}
			if event, ok := s.decoder.Decode(record); ok {
				events = append(events, event)
			}
		}

		// Termination follows the gateway's pagination flag, not the
		// item count: gateways may drop malformed items from a page.
		if !logPage.HasNextPage {
			break
		}
	}

	return events
}

func uniqueBlocks(events []model.ReserveSyncEvent) []uint64 {
	seen := make(map[uint64]struct{}, len(events))
	blocks := make([]uint64, 0, len(events))
	for _, event := range events {
		if _, ok := seen[event.BlockNumber]; ok {
			continue
		}
		seen[event.BlockNumber] = struct{}{}
		blocks = append(blocks, event.BlockNumber)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })
	return blocks
}
