package series

import (
	"math/big"
	"sort"

	"pricescope/internal/model"
)

// buildPricePoints converts decoded sync events into price points.
// Events without a resolved timestamp or older than fromTimeMs are
// dropped. Output is sorted ascending by timestamp. Returns the points
// and the number of dropped events.
func buildPricePoints(events []model.ReserveSyncEvent, blockTimes map[uint64]int64, decimals0, decimals1 uint8, fromTimeMs int64) ([]model.PricePoint, int) {
	points := make([]model.PricePoint, 0, len(events))
	dropped := 0

	for _, event := range events {
		ts, ok := blockTimes[event.BlockNumber]
		if !ok || ts < fromTimeMs {
			dropped++
			continue
		}
		points = append(points, model.PricePoint{
			TimestampMs: ts,
			Value:       reservePrice(event.Reserve0, event.Reserve1, decimals0, decimals1),
			Volume:      0,
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].TimestampMs < points[j].TimestampMs
	})

	return points, dropped
}

// reservePrice is token1 per token0 after decimal adjustment. A zero
// reserve0 yields 0, the anomaly filter drops it downstream.
func reservePrice(reserve0, reserve1 *big.Int, decimals0, decimals1 uint8) float64 {
	if reserve0 == nil || reserve0.Sign() == 0 || reserve1 == nil {
		return 0
	}

	adjusted0 := new(big.Float).Quo(new(big.Float).SetInt(reserve0), pow10(decimals0))
	adjusted1 := new(big.Float).Quo(new(big.Float).SetInt(reserve1), pow10(decimals1))

	price, _ := new(big.Float).Quo(adjusted1, adjusted0).Float64()
	return price
}

func pow10(decimals uint8) *big.Float {
	return new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
}
