package stats

import (
	"strconv"
	"time"

	"github.com/chdb/chessmetrics/internal/models"
)

// Stock key functions for the grouping dimensions the reports use.
// Each returns KeyUnknown when the record lacks the field it needs.

func HourKey(rec models.GameRecord) GroupKey {
	if rec.Timestamp.IsZero() {
		return KeyUnknown
	}
	return GroupKey(strconv.Itoa(rec.Timestamp.UTC().Hour()))
}

func WeekdayKey(rec models.GameRecord) GroupKey {
	if rec.Timestamp.IsZero() {
		return KeyUnknown
	}
	return GroupKey(rec.Timestamp.UTC().Weekday().String())
}

func MonthKey(rec models.GameRecord) GroupKey {
	if rec.Timestamp.IsZero() {
		return KeyUnknown
	}
	return GroupKey(rec.Timestamp.UTC().Format("2006-01"))
}

func SeasonKey(rec models.GameRecord) GroupKey {
	if rec.Timestamp.IsZero() {
		return KeyUnknown
	}
	switch rec.Timestamp.UTC().Month() {
	case 12, 1, 2:
		return "Winter"
	case 3, 4, 5:
		return "Spring"
	case 6, 7, 8:
		return "Summer"
	default:
		return "Autumn"
	}
}

func TimePeriodKey(rec models.GameRecord) GroupKey {
	if rec.Timestamp.IsZero() {
		return KeyUnknown
	}
	hour := rec.Timestamp.UTC().Hour()
	switch {
	case hour >= 5 && hour < 9:
		return "Early Morning"
	case hour >= 9 && hour < 12:
		return "Late Morning"
	case hour >= 12 && hour < 14:
		return "Lunch Time"
	case hour >= 14 && hour < 17:
		return "Afternoon"
	case hour >= 17 && hour < 20:
		return "Evening"
	case hour >= 20 && hour < 23:
		return "Night"
	default:
		return "Late Night"
	}
}

func WeekendKey(rec models.GameRecord) GroupKey {
	if rec.Timestamp.IsZero() {
		return KeyUnknown
	}
	switch rec.Timestamp.UTC().Weekday() {
	case time.Saturday, time.Sunday:
		return "Weekend"
	default:
		return "Weekday"
	}
}

func OpeningKey(rec models.GameRecord) GroupKey {
	if rec.Opening == "" {
		return KeyUnknown
	}
	return GroupKey(rec.Opening)
}

// OpeningFamilyKey strips the variation: "Sicilian Defense: Najdorf"
// groups under "Sicilian Defense".
func OpeningFamilyKey(rec models.GameRecord) GroupKey {
	if rec.Opening == "" {
		return KeyUnknown
	}
	for i := 0; i < len(rec.Opening); i++ {
		if rec.Opening[i] == ':' {
			return GroupKey(rec.Opening[:i])
		}
	}
	return GroupKey(rec.Opening)
}

func TimeClassKey(rec models.GameRecord) GroupKey {
	if rec.TimeClass == "" {
		return KeyUnknown
	}
	return GroupKey(rec.TimeClass)
}

func ColorKey(rec models.GameRecord) GroupKey {
	if rec.Color == "" {
		return KeyUnknown
	}
	return GroupKey(rec.Color)
}

func TerminationKey(rec models.GameRecord) GroupKey {
	if rec.Termination == "" {
		return KeyUnknown
	}
	return GroupKey(rec.Termination)
}

func AccountKey(rec models.GameRecord) GroupKey {
	if rec.Account == "" {
		return KeyUnknown
	}
	return GroupKey(rec.Account)
}

// RatingDeltaBucket floors ratingDiff to a multiple of bucketWidth,
// rounding toward negative infinity for both signs:
// RatingDeltaBucket(-125, 50) == -150, RatingDeltaBucket(125, 50) == 100.
func RatingDeltaBucket(ratingDiff, bucketWidth int) int {
	q := ratingDiff / bucketWidth
	if ratingDiff%bucketWidth != 0 && (ratingDiff < 0) != (bucketWidth < 0) {
		q--
	}
	return q * bucketWidth
}

// RatingDiffKey buckets opponent-strength difference at the given width.
// The width must be positive; validate with CheckBucketWidth at the call
// boundary first.
func RatingDiffKey(bucketWidth int) KeyFunc {
	return func(rec models.GameRecord) GroupKey {
		return GroupKey(strconv.Itoa(RatingDeltaBucket(rec.RatingDiff(), bucketWidth)))
	}
}

func CheckBucketWidth(bucketWidth int) error {
	if bucketWidth <= 0 {
		return ErrInvalidBucketWidth
	}
	return nil
}
