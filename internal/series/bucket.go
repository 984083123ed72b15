package series

import (
	"sort"

	"pricescope/internal/model"
)

// aggregateBuckets downsamples a filtered series into fixed-width time
// buckets, reducing each bucket to its median price. The median is the
// upper median for even-sized buckets, no averaging. Output is sorted
// ascending by bucket timestamp.
func aggregateBuckets(points []model.PricePoint, r Range) []model.PricePoint {
	if len(points) == 0 {
		return []model.PricePoint{}
	}

	width := r.BucketWidthMs()
	buckets := make(map[int64][]float64)
	for _, point := range points {
		key := (point.TimestampMs / width) * width
		buckets[key] = append(buckets[key], point.Value)
	}

	out := make([]model.PricePoint, 0, len(buckets))
	for key, values := range buckets {
		sort.Float64s(values)
		out = append(out, model.PricePoint{
			TimestampMs: key,
			Value:       values[len(values)/2],
			Volume:      0,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})

	return out
}
