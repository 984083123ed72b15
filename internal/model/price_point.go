package model

// PricePoint is one observation of the pair price, token1 per token0.
// Volume is always zero in this pipeline: true volume is not derivable
// from reserve-sync events, the field exists for chart consumers that
// expect it.
type PricePoint struct {
	TimestampMs int64   `json:"timestamp"`
	Value       float64 `json:"value"`
	Volume      float64 `json:"volume"`
}
