package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pricescope/internal/model"
)

// Store provides Postgres persistence for bucketed price series.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutSeries upserts bucketed price points for a pair and range.
func (s *Store) PutSeries(ctx context.Context, pair string, rangeKey string, points []model.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, point := range points {
		batch.Queue(`
			INSERT INTO pair_price_buckets (
				pair_address, range_key, bucket_ts, price, volume, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, now(), now())
			ON CONFLICT (pair_address, range_key, bucket_ts)
			DO UPDATE SET
				price = EXCLUDED.price,
				volume = EXCLUDED.volume,
				updated_at = now()
		`,
			pair,
			rangeKey,
			time.UnixMilli(point.TimestampMs).UTC(),
			point.Value,
			point.Volume,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range points {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
