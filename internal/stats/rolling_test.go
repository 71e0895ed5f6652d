package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chdb/chessmetrics/internal/models"
)

func sequence(results ...models.Result) []models.GameRecord {
	records := make([]models.GameRecord, len(results))
	base := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	for i, r := range results {
		records[i] = models.GameRecord{
			Account:   "tester",
			Timestamp: base.Add(time.Duration(i) * 10 * time.Minute),
			Result:    r,
			OwnRating: 1500 + i,
		}
	}
	return records
}

func TestRollingWindow_Counts(t *testing.T) {
	t.Parallel()

	records := sequence(
		models.ResultWin, models.ResultWin, models.ResultLoss,
		models.ResultWin, models.ResultDraw,
	)

	windows, err := RollingWindow(records, 3)
	require.NoError(t, err)
	require.Len(t, windows, 3) // n - w + 1

	assert.Equal(t, 3, windows[0].Count)
	assert.Equal(t, 2, windows[0].Wins)
	assert.InDelta(t, 2.0/3.0, windows[0].WinRate, 1e-9)

	assert.Equal(t, 2, windows[1].Wins)
	assert.Equal(t, 1, windows[2].Wins)
	assert.Equal(t, 1, windows[2].Draws)
}

func TestRollingWindow_ShortInput(t *testing.T) {
	t.Parallel()

	records := sequence(models.ResultWin, models.ResultLoss)

	windows, err := RollingWindow(records, 5)
	require.NoError(t, err)
	assert.Empty(t, windows)
}

func TestRollingWindow_InvalidSize(t *testing.T) {
	t.Parallel()

	_, err := RollingWindow(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidWindowSize)

	_, err = RollingWindow(nil, -3)
	assert.ErrorIs(t, err, ErrInvalidWindowSize)
}

func TestRollingWindow_ExactFit(t *testing.T) {
	t.Parallel()

	records := sequence(models.ResultWin, models.ResultWin, models.ResultLoss)

	windows, err := RollingWindow(records, 3)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, 3, windows[0].Count)
}

func TestVolatility(t *testing.T) {
	t.Parallel()

	flat := []GroupSummary{{WinRate: 0.5}, {WinRate: 0.5}, {WinRate: 0.5}}
	assert.Equal(t, 0.0, Volatility(flat))

	swingy := []GroupSummary{{WinRate: 0.0}, {WinRate: 1.0}}
	assert.InDelta(t, 0.5, Volatility(swingy), 1e-9)

	assert.Equal(t, 0.0, Volatility(nil))
	assert.Equal(t, 0.0, Volatility([]GroupSummary{{WinRate: 0.7}}))
}

func TestTrendSlope(t *testing.T) {
	t.Parallel()

	// OwnRating climbs by one per game in sequence().
	records := sequence(models.ResultWin, models.ResultWin, models.ResultWin, models.ResultWin)
	assert.InDelta(t, 1.0, TrendSlope(records), 1e-9)

	flat := sequence(models.ResultWin, models.ResultWin)
	for i := range flat {
		flat[i].OwnRating = 1500
	}
	assert.InDelta(t, 0.0, TrendSlope(flat), 1e-9)

	assert.Equal(t, 0.0, TrendSlope(nil))
}
