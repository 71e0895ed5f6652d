package stats

import (
	"errors"

	"github.com/chdb/chessmetrics/internal/models"
)

var (
	ErrInvalidMinSamples  = errors.New("stats: min samples must be non-negative")
	ErrInvalidWindowSize  = errors.New("stats: window size must be positive")
	ErrInvalidBucketWidth = errors.New("stats: bucket width must be positive")
)

// GroupKey buckets records for aggregation. Keys are opaque to the
// aggregator; the stock KeyFuncs in keys.go produce them.
type GroupKey string

// KeyUnknown collects records whose key could not be derived, so bad
// data shows up in report output instead of vanishing.
const KeyUnknown GroupKey = "unknown"

type KeyFunc func(models.GameRecord) GroupKey

type Options struct {
	MinSamples int
}

// GroupSummary holds the aggregate statistics for one bucket. Values are
// never mutated after Aggregate or RollingWindow returns them.
type GroupSummary struct {
	Key           GroupKey `json:"key"`
	Count         int      `json:"count"`
	Wins          int      `json:"wins"`
	Losses        int      `json:"losses"`
	Draws         int      `json:"draws"`
	WinRate       float64  `json:"win_rate"`
	AvgRatingDiff float64  `json:"avg_rating_diff"`
}

// Aggregate partitions records by keyFn and summarizes each partition.
// Input order is irrelevant; buckets with fewer than opts.MinSamples
// records are excluded. An empty input yields an empty map.
func Aggregate(records []models.GameRecord, keyFn KeyFunc, opts Options) (map[GroupKey]GroupSummary, error) {
	if opts.MinSamples < 0 {
		return nil, ErrInvalidMinSamples
	}

	counts := make(map[GroupKey]*accumulator)
	for _, rec := range records {
		key := keyFn(rec)
		if key == "" {
			key = KeyUnknown
		}
		acc := counts[key]
		if acc == nil {
			acc = &accumulator{}
			counts[key] = acc
		}
		acc.add(rec)
	}

	result := make(map[GroupKey]GroupSummary, len(counts))
	for key, acc := range counts {
		if acc.count < opts.MinSamples {
			continue
		}
		result[key] = acc.summary(key)
	}

	return result, nil
}

// Summarize collapses records into a single summary under the given key.
func Summarize(records []models.GameRecord, key GroupKey) GroupSummary {
	acc := &accumulator{}
	for _, rec := range records {
		acc.add(rec)
	}
	return acc.summary(key)
}

type accumulator struct {
	count, wins, losses, draws int
	ratingDiffSum              int
}

func (a *accumulator) add(rec models.GameRecord) {
	a.count++
	a.ratingDiffSum += rec.RatingDiff()
	switch rec.Result {
	case models.ResultWin:
		a.wins++
	case models.ResultLoss:
		a.losses++
	default:
		a.draws++
	}
}

func (a *accumulator) summary(key GroupKey) GroupSummary {
	s := GroupSummary{
		Key:    key,
		Count:  a.count,
		Wins:   a.wins,
		Losses: a.losses,
		Draws:  a.draws,
	}
	if a.count > 0 {
		s.WinRate = float64(a.wins) / float64(a.count)
		s.AvgRatingDiff = float64(a.ratingDiffSum) / float64(a.count)
	}
	return s
}
