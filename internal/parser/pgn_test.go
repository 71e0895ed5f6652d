package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chdb/chessmetrics/internal/models"
)

const samplePGN = `[Event "Rated Blitz game"]
[Site "https://lichess.org/abcd1234"]
[White "Tracked"]
[Black "SomeOpponent"]
[Result "1-0"]
[UTCDate "2024.03.15"]
[UTCTime "13:05:42"]
[WhiteElo "1512"]
[BlackElo "1480"]
[WhiteRatingDiff "+8"]
[ECO "C50"]
[Opening "Italian Game"]
[TimeControl "300+3"]
[Termination "Time forfeit"]

1. e4 e5 2. Nf3 Nc6 3. Bc4 Bc5 1-0

[Event "Rated Bullet game"]
[Site "https://lichess.org/efgh5678"]
[White "SomeOpponent"]
[Black "Tracked"]
[Result "0-1"]
[UTCDate "2024.03.16"]
[UTCTime "21:40:00"]
[WhiteElo "1530"]
[BlackElo "1520"]
[BlackRatingDiff "+9"]
[ECO "A00"]
[Opening "Bird Opening"]
[TimeControl "60+0"]
[Termination "Normal"]

1. f3 e5 2. g4 Qh4# 0-1

[Event "Rated Blitz game"]
[Site "https://lichess.org/zzzz9999"]
[White "StrangerA"]
[Black "StrangerB"]
[Result "1/2-1/2"]
[UTCDate "2024.03.16"]
[UTCTime "22:00:00"]
[TimeControl "300+0"]
[Termination "Normal"]

1. e4 e5 1/2-1/2
`

func TestParsePGN_PerspectiveNormalization(t *testing.T) {
	t.Parallel()

	p := New([]string{"Tracked"})
	records, report := p.ParsePGN(samplePGN)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Parsed)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Tracked", first.Account)
	assert.Equal(t, models.ColorWhite, first.Color)
	assert.Equal(t, models.ResultWin, first.Result)
	assert.Equal(t, 1512, first.OwnRating)
	assert.Equal(t, 1480, first.OpponentRating)
	assert.Equal(t, -32, first.RatingDiff())
	assert.Equal(t, 8, first.RatingChange)
	assert.Equal(t, "Italian Game", first.Opening)
	assert.Equal(t, models.TerminationTimeout, first.Termination)
	assert.Equal(t, 6, first.MoveCount)

	ts := time.Date(2024, 3, 15, 13, 5, 42, 0, time.UTC)
	assert.True(t, first.Timestamp.Equal(ts))

	second := records[1]
	assert.Equal(t, models.ColorBlack, second.Color)
	assert.Equal(t, models.ResultWin, second.Result)
	assert.Equal(t, 1520, second.OwnRating)
	assert.Equal(t, 1530, second.OpponentRating)
	assert.Equal(t, 9, second.RatingChange)
	assert.Equal(t, models.TerminationCheckmate, second.Termination)
	assert.Equal(t, 4, second.MoveCount)
}

func TestParsePGN_TimeControlClassification(t *testing.T) {
	t.Parallel()

	p := New([]string{"Tracked"})
	records, _ := p.ParsePGN(samplePGN)
	require.Len(t, records, 2)

	// 300+3 estimates to 420s -> blitz; 60+0 -> bullet.
	assert.Equal(t, models.TimeClassBlitz, records[0].TimeClass)
	assert.Equal(t, 300, records[0].BaseTime)
	assert.Equal(t, 3, records[0].Increment)
	assert.Equal(t, models.TimeClassBullet, records[1].TimeClass)
}

func TestClassifyTimeControl(t *testing.T) {
	t.Parallel()

	assert.Equal(t, models.TimeClassBullet, classifyTimeControl(60, 0))
	assert.Equal(t, models.TimeClassBlitz, classifyTimeControl(180, 0))
	assert.Equal(t, models.TimeClassBlitz, classifyTimeControl(300, 3))
	assert.Equal(t, models.TimeClassRapid, classifyTimeControl(600, 0))
	assert.Equal(t, models.TimeClassClassical, classifyTimeControl(1800, 0))
	assert.Equal(t, models.TimeClassClassical, classifyTimeControl(900, 30))
}

func TestParsePGN_BadTimestampStaysZero(t *testing.T) {
	t.Parallel()

	pgn := `[Event "Casual game"]
[White "Tracked"]
[Black "Foe"]
[Result "1-0"]
[Date "????.??.??"]
[TimeControl "-"]

1. e4 1-0
`

	p := New([]string{"Tracked"})
	records, report := p.ParsePGN(pgn)
	require.Len(t, records, 1)
	assert.Equal(t, 1, report.Parsed)
	assert.True(t, records[0].Timestamp.IsZero())
}

func TestParsePGN_MissingHeadersFail(t *testing.T) {
	t.Parallel()

	pgn := `[Event "Broken"]
[White "Tracked"]

1. e4 *
`

	p := New([]string{"Tracked"})
	records, report := p.ParsePGN(pgn)
	assert.Empty(t, records)
	assert.Equal(t, 1, report.Failed)
}

func TestParsePGN_CommentsAndVariationsCleaned(t *testing.T) {
	t.Parallel()

	pgn := `[Event "Annotated"]
[White "Tracked"]
[Black "Foe"]
[Result "1-0"]
[UTCDate "2024.01.01"]
[UTCTime "10:00:00"]
[TimeControl "600"]
[Termination "Normal"]

1. e4 {best by test} e5 (1... c5 2. Nf3) 2. Nf3 $1 Nc6 1-0
`

	p := New([]string{"Tracked"})
	records, _ := p.ParsePGN(pgn)
	require.Len(t, records, 1)
	assert.Equal(t, 4, records[0].MoveCount)
	assert.Equal(t, models.TerminationResignation, records[0].Termination)
}

func TestConcurrentParser_BatchOrderPreserved(t *testing.T) {
	t.Parallel()

	game := `[Event "Rated Blitz game"]
[White "Tracked"]
[Black "Foe"]
[Result "1-0"]
[UTCDate "2024.02.02"]
[UTCTime "09:00:00"]
[TimeControl "300+0"]
[Termination "Normal"]

1. e4 1-0
`

	cp := NewConcurrentParser([]string{"Tracked"}, 3)
	chunks := []string{game, game, game, game, game}

	records, reports := cp.ParsePGNBatch(chunks)
	require.Len(t, records, 5)
	for i := range chunks {
		require.Len(t, records[i], 1, "chunk %d", i)
		assert.Equal(t, 1, reports[i].Parsed)
	}
}

func TestStreamParsePGN(t *testing.T) {
	t.Parallel()

	game := `[Event "Rated Blitz game"]
[White "Tracked"]
[Black "Foe"]
[Result "0-1"]
[UTCDate "2024.02.02"]
[UTCTime "09:00:00"]
[TimeControl "300+0"]
[Termination "Normal"]

1. e4 0-1
`

	cp := NewConcurrentParser([]string{"Tracked"}, 2)
	pgnChannel := make(chan string, 2)
	pgnChannel <- game
	pgnChannel <- game
	close(pgnChannel)

	count := 0
	for rec := range cp.StreamParsePGN(pgnChannel) {
		assert.Equal(t, models.ResultLoss, rec.Result)
		count++
	}
	assert.Equal(t, 2, count)
}
