package series

import "time"

// Range selects the chart time window and its bucket width.
type Range string

const (
	RangeHour  Range = "1H"
	RangeDay   Range = "1D"
	RangeWeek  Range = "1W"
	RangeMonth Range = "1M"
	RangeYear  Range = "1Y"
	RangeAll   Range = "ALL"
)

// ALL is capped at two years rather than the full chain history.
const allRangeDays = 730

var rangeLookback = map[Range]time.Duration{
	RangeHour:  time.Hour,
	RangeDay:   24 * time.Hour,
	RangeWeek:  7 * 24 * time.Hour,
	RangeMonth: 30 * 24 * time.Hour,
	RangeYear:  365 * 24 * time.Hour,
	RangeAll:   allRangeDays * 24 * time.Hour,
}

var rangeBucketMs = map[Range]int64{
	RangeHour:  60_000,
	RangeDay:   300_000,
	RangeWeek:  1_800_000,
	RangeMonth: 3_600_000,
	RangeYear:  86_400_000,
	RangeAll:   604_800_000,
}

// FromTime returns the window lower bound in ms epoch for the range,
// relative to now. Unknown ranges get the 1M lookback.
func (r Range) FromTime(now time.Time) int64 {
	lookback, ok := rangeLookback[r]
	if !ok {
		lookback = rangeLookback[RangeMonth]
	}
	return now.Add(-lookback).UnixMilli()
}

// BucketWidthMs returns the aggregation bucket width in ms. Unknown
// ranges get the 1M width.
func (r Range) BucketWidthMs() int64 {
	width, ok := rangeBucketMs[r]
	if !ok {
		return rangeBucketMs[RangeMonth]
	}
	return width
}
