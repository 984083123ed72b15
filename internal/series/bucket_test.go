package series

import (
	"reflect"
	"testing"

	"pricescope/internal/model"
)

func TestAggregateBucketsMedian(t *testing.T) {
	base := int64(1_700_000_100_000)
	got := aggregateBuckets([]model.PricePoint{
		{TimestampMs: base, Value: 3.0},
		{TimestampMs: base + 1000, Value: 1.0},
		{TimestampMs: base + 2000, Value: 2.0},
	}, RangeDay)

	if len(got) != 1 {
		t.Fatalf("expected one bucket, got %d", len(got))
	}
	if got[0].Value != 2.0 {
		t.Fatalf("median mismatch: %f", got[0].Value)
	}

	width := RangeDay.BucketWidthMs()
	if got[0].TimestampMs != (base/width)*width {
		t.Fatalf("bucket key mismatch: %d", got[0].TimestampMs)
	}
	if got[0].Volume != 0 {
		t.Fatalf("bucket volume should be zero")
	}
}

func TestAggregateBucketsUpperMedianEvenCount(t *testing.T) {
	got := aggregateBuckets([]model.PricePoint{
		{TimestampMs: 0, Value: 1.0},
		{TimestampMs: 1, Value: 2.0},
		{TimestampMs: 2, Value: 3.0},
		{TimestampMs: 3, Value: 4.0},
	}, RangeHour)

	if len(got) != 1 {
		t.Fatalf("expected one bucket, got %d", len(got))
	}
	// Upper median, no averaging.
	if got[0].Value != 3.0 {
		t.Fatalf("upper median mismatch: %f", got[0].Value)
	}
}

func TestAggregateBucketsSortedOutput(t *testing.T) {
	width := RangeHour.BucketWidthMs()
	got := aggregateBuckets([]model.PricePoint{
		{TimestampMs: 5 * width, Value: 5.0},
		{TimestampMs: 1 * width, Value: 1.0},
		{TimestampMs: 3 * width, Value: 3.0},
	}, RangeHour)

	wantKeys := []int64{1 * width, 3 * width, 5 * width}
	gotKeys := make([]int64, 0, len(got))
	for _, point := range got {
		gotKeys = append(gotKeys, point.TimestampMs)
	}
	if !reflect.DeepEqual(gotKeys, wantKeys) {
		t.Fatalf("bucket order mismatch: %v", gotKeys)
	}
}

func TestAggregateBucketsEmptyInput(t *testing.T) {
	got := aggregateBuckets(nil, RangeMonth)
	if len(got) != 0 {
		t.Fatalf("empty input should yield empty output")
	}
}

func TestAggregateBucketsUnknownRangeDefaultsToMonthWidth(t *testing.T) {
	got := aggregateBuckets([]model.PricePoint{
		{TimestampMs: 0, Value: 1.0},
		{TimestampMs: 3_599_999, Value: 2.0},
		{TimestampMs: 3_600_000, Value: 3.0},
	}, Range("6M"))

	if len(got) != 2 {
		t.Fatalf("expected two hourly buckets, got %d", len(got))
	}
}
