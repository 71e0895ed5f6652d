package stats

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chdb/chessmetrics/internal/models"
)

func gameAt(hour int, result models.Result) models.GameRecord {
	return models.GameRecord{
		Account:   "tester",
		Timestamp: time.Date(2024, 3, 15, hour, 30, 0, 0, time.UTC),
		Result:    result,
	}
}

func TestAggregate_HourExample(t *testing.T) {
	t.Parallel()

	records := []models.GameRecord{
		gameAt(13, models.ResultWin),
		gameAt(13, models.ResultWin),
		gameAt(13, models.ResultLoss),
		gameAt(21, models.ResultWin),
	}

	result, err := Aggregate(records, HourKey, Options{})
	require.NoError(t, err)
	require.Len(t, result, 2)

	thirteen := result["13"]
	assert.Equal(t, 3, thirteen.Count)
	assert.Equal(t, 2, thirteen.Wins)
	assert.Equal(t, 1, thirteen.Losses)
	assert.Equal(t, 0, thirteen.Draws)
	assert.InDelta(t, 2.0/3.0, thirteen.WinRate, 1e-9)

	twentyOne := result["21"]
	assert.Equal(t, 1, twentyOne.Count)
	assert.Equal(t, 1.0, twentyOne.WinRate)
}

func TestAggregate_MinSamplesExcludesSmallBuckets(t *testing.T) {
	t.Parallel()

	records := []models.GameRecord{
		gameAt(13, models.ResultWin),
		gameAt(13, models.ResultWin),
		gameAt(13, models.ResultLoss),
		gameAt(21, models.ResultWin),
	}

	result, err := Aggregate(records, HourKey, Options{MinSamples: 2})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Contains(t, result, GroupKey("13"))
	assert.NotContains(t, result, GroupKey("21"))
}

func TestAggregate_EmptyInput(t *testing.T) {
	t.Parallel()

	result, err := Aggregate(nil, HourKey, Options{})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestAggregate_NegativeMinSamples(t *testing.T) {
	t.Parallel()

	_, err := Aggregate(nil, HourKey, Options{MinSamples: -1})
	assert.ErrorIs(t, err, ErrInvalidMinSamples)
}

func TestAggregate_UnknownBucketStaysVisible(t *testing.T) {
	t.Parallel()

	records := []models.GameRecord{
		{Result: models.ResultLoss}, // zero timestamp
		gameAt(10, models.ResultWin),
	}

	result, err := Aggregate(records, HourKey, Options{})
	require.NoError(t, err)
	require.Len(t, result, 2)

	unknown := result[KeyUnknown]
	assert.Equal(t, 1, unknown.Count)
	assert.Equal(t, 1, unknown.Losses)
}

func TestAggregate_CountConservation(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	records := make([]models.GameRecord, 500)
	results := []models.Result{models.ResultWin, models.ResultLoss, models.ResultDraw}
	for i := range records {
		records[i] = gameAt(rng.Intn(24), results[rng.Intn(3)])
	}

	result, err := Aggregate(records, HourKey, Options{})
	require.NoError(t, err)

	total := 0
	for _, s := range result {
		assert.Equal(t, s.Count, s.Wins+s.Losses+s.Draws)
		if s.Count > 0 {
			assert.InDelta(t, float64(s.Wins)/float64(s.Count), s.WinRate, 1e-9)
		}
		total += s.Count
	}
	assert.Equal(t, len(records), total)
}

func TestAggregate_OrderInsensitive(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	records := make([]models.GameRecord, 200)
	results := []models.Result{models.ResultWin, models.ResultLoss, models.ResultDraw}
	for i := range records {
		rec := gameAt(rng.Intn(24), results[rng.Intn(3)])
		rec.OwnRating = 1500 + rng.Intn(200)
		rec.OpponentRating = 1500 + rng.Intn(200)
		records[i] = rec
	}

	first, err := Aggregate(records, HourKey, Options{})
	require.NoError(t, err)

	shuffled := make([]models.GameRecord, len(records))
	copy(shuffled, records)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	second, err := Aggregate(shuffled, HourKey, Options{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAggregate_AvgRatingDiff(t *testing.T) {
	t.Parallel()

	records := []models.GameRecord{
		{Timestamp: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), Result: models.ResultWin, OwnRating: 1500, OpponentRating: 1600},
		{Timestamp: time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC), Result: models.ResultLoss, OwnRating: 1500, OpponentRating: 1400},
	}

	result, err := Aggregate(records, HourKey, Options{})
	require.NoError(t, err)

	nine := result["9"]
	assert.Equal(t, 2, nine.Count)
	assert.InDelta(t, 0.0, nine.AvgRatingDiff, 1e-9)
}

func TestRatingDeltaBucket(t *testing.T) {
	t.Parallel()

	assert.Equal(t, -150, RatingDeltaBucket(-125, 50))
	assert.Equal(t, 100, RatingDeltaBucket(125, 50))
	assert.Equal(t, -50, RatingDeltaBucket(-50, 50))
	assert.Equal(t, 0, RatingDeltaBucket(0, 50))
	assert.Equal(t, 0, RatingDeltaBucket(49, 50))
	assert.Equal(t, -50, RatingDeltaBucket(-1, 50))
}

func TestSeasonKey(t *testing.T) {
	t.Parallel()

	cases := map[time.Month]GroupKey{
		time.January: "Winter", time.December: "Winter",
		time.April: "Spring", time.July: "Summer", time.October: "Autumn",
	}
	for month, want := range cases {
		rec := models.GameRecord{Timestamp: time.Date(2024, month, 10, 12, 0, 0, 0, time.UTC)}
		assert.Equal(t, want, SeasonKey(rec), "month %s", month)
	}
}

func TestOpeningFamilyKey(t *testing.T) {
	t.Parallel()

	rec := models.GameRecord{Opening: "Sicilian Defense: Najdorf Variation"}
	assert.Equal(t, GroupKey("Sicilian Defense"), OpeningFamilyKey(rec))

	rec.Opening = "Italian Game"
	assert.Equal(t, GroupKey("Italian Game"), OpeningFamilyKey(rec))

	rec.Opening = ""
	assert.Equal(t, KeyUnknown, OpeningFamilyKey(rec))
}
