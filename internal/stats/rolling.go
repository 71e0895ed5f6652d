package stats

import (
	"math"

	"github.com/chdb/chessmetrics/internal/models"
)

// RollingWindow summarizes every stride-1 window of windowSize
// consecutive records. The input must already be sorted by timestamp
// ascending; this is the caller's responsibility. Each window summary
// carries the timestamp of its last record as the key, so chart layers
// can label the x-axis directly. Fewer records than windowSize yields an
// empty slice.
func RollingWindow(records []models.GameRecord, windowSize int) ([]GroupSummary, error) {
	if windowSize <= 0 {
		return nil, ErrInvalidWindowSize
	}
	if len(records) < windowSize {
		return []GroupSummary{}, nil
	}

	windows := make([]GroupSummary, 0, len(records)-windowSize+1)
	for i := 0; i+windowSize <= len(records); i++ {
		window := records[i : i+windowSize]
		last := window[windowSize-1]

		key := KeyUnknown
		if !last.Timestamp.IsZero() {
			key = GroupKey(last.Timestamp.UTC().Format("2006-01-02 15:04"))
		}
		windows = append(windows, Summarize(window, key))
	}

	return windows, nil
}

// Volatility is the standard deviation of win rates across a window
// sequence, the measure behind the performance-volatility charts.
// Fewer than two windows have no spread and yield zero.
func Volatility(windows []GroupSummary) float64 {
	if len(windows) < 2 {
		return 0
	}

	var sum float64
	for _, w := range windows {
		sum += w.WinRate
	}
	mean := sum / float64(len(windows))

	var sq float64
	for _, w := range windows {
		d := w.WinRate - mean
		sq += d * d
	}

	return math.Sqrt(sq / float64(len(windows)))
}

// TrendSlope fits a least-squares line to own rating over game index and
// returns its slope in rating points per game. Records are expected in
// chronological order. Fewer than two records have no trend.
func TrendSlope(records []models.GameRecord) float64 {
	n := len(records)
	if n < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, rec := range records {
		x := float64(i)
		y := float64(rec.OwnRating)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}
