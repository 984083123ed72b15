package storage

import (
	"context"

	"pricescope/internal/model"
)

// Storage defines a sink for reconstructed price series.
type Storage interface {
	PutSeries(ctx context.Context, pair string, rangeKey string, points []model.PricePoint) error
}
