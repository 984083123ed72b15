package series

import (
	"math"

	"pricescope/internal/model"
)

// maxRelativeJump rejects any single step that moves more than 1000%
// from the last accepted price.
const maxRelativeJump = 10.0

// filterAnomalies drops structurally invalid points and implausible
// single-step jumps, preserving order. Fewer than 3 points pass
// through unchanged.
func filterAnomalies(points []model.PricePoint) []model.PricePoint {
	if len(points) < 3 {
		return points
	}

	out := make([]model.PricePoint, 0, len(points))
	var last *model.PricePoint

	for _, point := range points {
		if point.Value <= 0 || math.IsNaN(point.Value) || math.IsInf(point.Value, 0) {
			continue
		}
		if last != nil {
			change := math.Abs(point.Value-last.Value) / last.Value
			if change > maxRelativeJump {
				continue
			}
		}
		out = append(out, point)
		last = &out[len(out)-1]
	}

	return out
}
