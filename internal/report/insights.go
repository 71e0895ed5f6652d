package report

import (
	"fmt"
	"strings"

	"github.com/chdb/chessmetrics/internal/models"
	"github.com/chdb/chessmetrics/internal/stats"
)

// InsightsConfig carries the report thresholds explicitly; there is no
// ambient report state.
type InsightsConfig struct {
	MinSamples     int
	RecentGames    int
	OpeningMinN    int
	StrengthMargin int
}

func DefaultInsightsConfig() InsightsConfig {
	return InsightsConfig{
		MinSamples:     5,
		RecentGames:    50,
		OpeningMinN:    5,
		StrengthMargin: 50,
	}
}

// BuildInsights writes a markdown narrative over chronologically ordered
// records, one section per account.
func BuildInsights(records []models.GameRecord, cfg InsightsConfig) (string, error) {
	var b strings.Builder
	b.WriteString("# Chess Performance Insights\n")

	byAccount, err := stats.Aggregate(records, stats.AccountKey, stats.Options{})
	if err != nil {
		return "", err
	}

	for _, overall := range ByCount(byAccount) {
		account := string(overall.Key)
		var accountRecords []models.GameRecord
		for _, rec := range records {
			if rec.Account == account {
				accountRecords = append(accountRecords, rec)
			}
		}
		if err := writeAccountSection(&b, account, accountRecords, overall, cfg); err != nil {
			return "", err
		}
	}

	fmt.Fprintf(&b, "\n## Combined\n\n- Total games analyzed: %d\n", len(records))
	if len(byAccount) > 1 {
		fmt.Fprintf(&b, "- Accounts merged: %d\n", len(byAccount))
	}

	return b.String(), nil
}

func writeAccountSection(b *strings.Builder, account string, records []models.GameRecord, overall stats.GroupSummary, cfg InsightsConfig) error {
	fmt.Fprintf(b, "\n## %s\n\n", account)
	fmt.Fprintf(b, "- Total games: %d\n", overall.Count)
	fmt.Fprintf(b, "- Overall win rate: %.1f%% (%dW / %dL / %dD)\n",
		overall.WinRate*100, overall.Wins, overall.Losses, overall.Draws)

	if first, last, ok := ratingJourney(records); ok {
		fmt.Fprintf(b, "- Rating journey: %d -> %d (%+d)\n", first, last, last-first)
	}

	opts := stats.Options{MinSamples: cfg.MinSamples}

	if hourly, err := stats.Aggregate(records, stats.HourKey, opts); err != nil {
		return err
	} else if best, worst, ok := extremes(hourly); ok {
		fmt.Fprintf(b, "- Best playing hour: %s:00 (%.1f%% over %d games)\n",
			best.Key, best.WinRate*100, best.Count)
		fmt.Fprintf(b, "- Worst playing hour: %s:00 (%.1f%% over %d games)\n",
			worst.Key, worst.WinRate*100, worst.Count)
	}

	if byColor, err := stats.Aggregate(records, stats.ColorKey, stats.Options{}); err != nil {
		return err
	} else {
		white, black := byColor[stats.GroupKey(models.ColorWhite)], byColor[stats.GroupKey(models.ColorBlack)]
		if white.Count > 0 && black.Count > 0 {
			fmt.Fprintf(b, "- White: %.1f%%, Black: %.1f%%\n", white.WinRate*100, black.WinRate*100)
		}
	}

	if byClass, err := stats.Aggregate(records, stats.TimeClassKey, opts); err != nil {
		return err
	} else if best, _, ok := extremes(byClass); ok {
		fmt.Fprintf(b, "- Strongest format: %s (%.1f%% over %d games)\n",
			best.Key, best.WinRate*100, best.Count)
	}

	if err := writeOpeningLines(b, records, cfg); err != nil {
		return err
	}

	streaks := stats.Streaks(records)
	fmt.Fprintf(b, "- Longest win streak: %d games\n", streaks.LongestWin)
	fmt.Fprintf(b, "- Longest loss streak: %d games\n", streaks.LongestLoss)

	writeStrengthLines(b, records, cfg.StrengthMargin)

	if len(records) >= cfg.RecentGames {
		recent := stats.Summarize(records[len(records)-cfg.RecentGames:], "recent")
		fmt.Fprintf(b, "- Recent form (last %d games): %.1f%% win rate\n",
			cfg.RecentGames, recent.WinRate*100)
	}

	return nil
}

func writeOpeningLines(b *strings.Builder, records []models.GameRecord, cfg InsightsConfig) error {
	byOpening, err := stats.Aggregate(records, stats.OpeningKey, stats.Options{MinSamples: cfg.OpeningMinN})
	if err != nil {
		return err
	}
	delete(byOpening, stats.KeyUnknown)
	if len(byOpening) == 0 {
		return nil
	}

	b.WriteString("- Top openings (by win rate):\n")
	ordered := ByWinRate(byOpening)
	if len(ordered) > 3 {
		ordered = ordered[:3]
	}
	for i, s := range ordered {
		fmt.Fprintf(b, "  %d. %s: %.1f%% (%d games)\n", i+1, s.Key, s.WinRate*100, s.Count)
	}

	return nil
}

func writeStrengthLines(b *strings.Builder, records []models.GameRecord, margin int) {
	var stronger, weaker []models.GameRecord
	for _, rec := range records {
		switch {
		case rec.RatingDiff() > margin:
			stronger = append(stronger, rec)
		case rec.RatingDiff() < -margin:
			weaker = append(weaker, rec)
		}
	}

	if len(stronger) > 0 {
		s := stats.Summarize(stronger, "stronger")
		fmt.Fprintf(b, "- Vs stronger opponents (+%d): %.1f%% over %d games\n",
			margin, s.WinRate*100, s.Count)
	}
	if len(weaker) > 0 {
		s := stats.Summarize(weaker, "weaker")
		fmt.Fprintf(b, "- Vs weaker opponents (-%d): %.1f%% over %d games\n",
			margin, s.WinRate*100, s.Count)
	}
}

func ratingJourney(records []models.GameRecord) (first, last int, ok bool) {
	for _, rec := range records {
		if rec.OwnRating > 0 {
			if !ok {
				first = rec.OwnRating
				ok = true
			}
			last = rec.OwnRating
		}
	}
	return first, last, ok
}

// extremes picks the best and worst buckets by win rate, ignoring the
// unknown bucket.
func extremes(summaries map[stats.GroupKey]stats.GroupSummary) (best, worst stats.GroupSummary, ok bool) {
	for key, s := range summaries {
		if key == stats.KeyUnknown {
			continue
		}
		if !ok {
			best, worst, ok = s, s, true
			continue
		}
		if s.WinRate > best.WinRate {
			best = s
		}
		if s.WinRate < worst.WinRate {
			worst = s
		}
	}
	return best, worst, ok
}
