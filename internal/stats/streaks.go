package stats

import (
	"time"

	"github.com/chdb/chessmetrics/internal/models"
)

type Streak struct {
	Result models.Result `json:"result"`
	Length int           `json:"length"`
}

type StreakSummary struct {
	LongestWin  int      `json:"longest_win"`
	LongestLoss int      `json:"longest_loss"`
	Streaks     []Streak `json:"streaks"`
}

// Streaks walks chronologically ordered records and extracts every run
// of identical results. Draws break both win and loss streaks.
func Streaks(records []models.GameRecord) StreakSummary {
	summary := StreakSummary{}

	var current models.Result
	length := 0
	flush := func() {
		if length == 0 {
			return
		}
		summary.Streaks = append(summary.Streaks, Streak{Result: current, Length: length})
		switch current {
		case models.ResultWin:
			if length > summary.LongestWin {
				summary.LongestWin = length
			}
		case models.ResultLoss:
			if length > summary.LongestLoss {
				summary.LongestLoss = length
			}
		}
	}

	for _, rec := range records {
		if rec.Result == current {
			length++
			continue
		}
		flush()
		current = rec.Result
		length = 1
	}
	flush()

	return summary
}

// SplitSessions segments chronologically ordered records into play
// sessions: a gap longer than maxGap starts a new session. Records with
// a zero timestamp land in the session where they appear.
func SplitSessions(records []models.GameRecord, maxGap time.Duration) [][]models.GameRecord {
	if len(records) == 0 {
		return nil
	}

	var sessions [][]models.GameRecord
	start := 0
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1].Timestamp, records[i].Timestamp
		if prev.IsZero() || cur.IsZero() {
			continue
		}
		if cur.Sub(prev) > maxGap {
			sessions = append(sessions, records[start:i])
			start = i
		}
	}
	sessions = append(sessions, records[start:])

	return sessions
}
