package elapsed

import (
	"math"
	"time"
)

const (
	millisecondsPerDayConstant    = 86_400_000
	millisecondsPerMinuteConstant = 60_000
	roundingOffsetConstant        = 0.5
)

// DaysBetween returns the whole days from earlierMilliseconds to laterMilliseconds,
// rounded half-up. The result is negative when laterMilliseconds precedes earlierMilliseconds.
func DaysBetween(laterMilliseconds int64, earlierMilliseconds int64) int {
	return roundHalfUp(float64(laterMilliseconds-earlierMilliseconds) / millisecondsPerDayConstant)
}

// MinutesBetween is DaysBetween at minute granularity.
func MinutesBetween(laterMilliseconds int64, earlierMilliseconds int64) int {
	return roundHalfUp(float64(laterMilliseconds-earlierMilliseconds) / millisecondsPerMinuteConstant)
}

// DaysSince reports the age of moment relative to now in whole days.
func DaysSince(now time.Time, moment time.Time) int {
	return DaysBetween(now.UnixMilli(), moment.UnixMilli())
}

// math.Round rounds halves away from zero; ages must round -1.5 up to -1.
func roundHalfUp(value float64) int {
	return int(math.Floor(value + roundingOffsetConstant))
}
