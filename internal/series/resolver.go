package series

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// resolveTimestamps maps unique block numbers to ms epoch timestamps.
// Lookups run concurrently within a batch, batches run sequentially.
// A failed block is omitted from the result, never an error. Returns
// the map and the number of blocks that could not be resolved.
func resolveTimestamps(ctx context.Context, gateway Gateway, blocks []uint64, batchSize int, logger *zap.Logger) (map[uint64]int64, int) {
	if batchSize <= 0 {
		batchSize = defaultResolveBatchSize
	}

	out := make(map[uint64]int64, len(blocks))
	var mu sync.Mutex

	for start := 0; start < len(blocks); start += batchSize {
		end := start + batchSize
		if end > len(blocks) {
			end = len(blocks)
		}

		group, groupCtx := errgroup.WithContext(ctx)
		for _, block := range blocks[start:end] {
			block := block
			group.Go(func() error {
				ts, err := gateway.BlockTime(groupCtx, block)
				if err != nil {
					logger.Warn("block timestamp fetch failed", zap.Uint64("block_number", block), zap.Error(err))
					return nil
				}
				mu.Lock()
				out[block] = ts.UnixMilli()
				mu.Unlock()
				return nil
			})
		}
		// Per-block failures are absorbed above.
		_ = group.Wait()

		if ctx.Err() != nil {
			break
		}
	}

	return out, len(blocks) - len(out)
}
