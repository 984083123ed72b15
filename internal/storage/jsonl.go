package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"pricescope/internal/model"
)

// JsonlStorage appends price points to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

type seriesRow struct {
	PairAddress string  `json:"pair_address"`
	Range       string  `json:"range"`
	Timestamp   int64   `json:"timestamp"`
	Value       float64 `json:"value"`
	Volume      float64 `json:"volume"`
}

// PutSeries appends the series as JSON lines.
func (s *JsonlStorage) PutSeries(_ context.Context, pair string, rangeKey string, points []model.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, point := range points {
		line, err := json.Marshal(seriesRow{
			PairAddress: pair,
			Range:       rangeKey,
			Timestamp:   point.TimestampMs,
			Value:       point.Value,
			Volume:      point.Volume,
		})
		if err != nil {
			return fmt.Errorf("marshal series row: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write series row: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
