package series

import (
	"context"
	"time"

	"pricescope/internal/dex"
	"pricescope/internal/model"
)

// Gateway is the chain data capability the pipeline consumes. Pages
// returned by GetLogs are newest first. BlockTime may fail per block,
// the caller treats that as a per-item failure.
type Gateway interface {
	dex.Caller
	GetLogs(ctx context.Context, address string, page, pageSize int) (model.LogPage, error)
	BlockTime(ctx context.Context, blockNumber uint64) (time.Time, error)
}
