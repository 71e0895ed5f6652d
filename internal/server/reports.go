package server

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/chdb/chessmetrics/internal/config"
	"github.com/chdb/chessmetrics/internal/models"
	"github.com/chdb/chessmetrics/internal/report"
	"github.com/chdb/chessmetrics/internal/stats"
)

func keyFuncFor(by string, bucketWidth int) (stats.KeyFunc, error) {
	switch by {
	case "hour":
		return stats.HourKey, nil
	case "weekday":
		return stats.WeekdayKey, nil
	case "month":
		return stats.MonthKey, nil
	case "season":
		return stats.SeasonKey, nil
	case "period":
		return stats.TimePeriodKey, nil
	case "weekend":
		return stats.WeekendKey, nil
	case "opening":
		return stats.OpeningKey, nil
	case "family":
		return stats.OpeningFamilyKey, nil
	case "timeclass":
		return stats.TimeClassKey, nil
	case "color":
		return stats.ColorKey, nil
	case "termination":
		return stats.TerminationKey, nil
	case "account":
		return stats.AccountKey, nil
	case "ratingdiff":
		return stats.RatingDiffKey(bucketWidth), nil
	default:
		return nil, fmt.Errorf("unknown grouping dimension %q", by)
	}
}

// sortGroups orders buckets for display: ordinal dimensions by key,
// everything else by win rate descending.
func sortGroups(by string, summaries map[stats.GroupKey]stats.GroupSummary) []stats.GroupSummary {
	switch by {
	case "hour", "ratingdiff":
		return byNumericKey(summaries)
	case "month", "weekday", "season":
		ordered := make([]stats.GroupSummary, 0, len(summaries))
		for _, s := range summaries {
			ordered = append(ordered, s)
		}
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].Key < ordered[j].Key })
		return ordered
	default:
		return report.ByWinRate(summaries)
	}
}

func byNumericKey(summaries map[stats.GroupKey]stats.GroupSummary) []stats.GroupSummary {
	ordered := make([]stats.GroupSummary, 0, len(summaries))
	for _, s := range summaries {
		ordered = append(ordered, s)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, errA := strconv.Atoi(string(ordered[i].Key))
		b, errB := strconv.Atoi(string(ordered[j].Key))
		if errA != nil || errB != nil {
			// unknown bucket sorts last
			return errB != nil && errA == nil
		}
		return a < b
	})
	return ordered
}

// BuildChartsPage renders the standard report page: hourly win rate,
// opening performance, terminations, rolling trend, and one rating
// evolution chart per account.
func BuildChartsPage(records []models.GameRecord, cfg *config.AppConfig) ([]byte, error) {
	opts := stats.Options{MinSamples: cfg.MinSamples}

	hourly, err := stats.Aggregate(records, stats.HourKey, opts)
	if err != nil {
		return nil, err
	}
	openings, err := stats.Aggregate(records, stats.OpeningKey, opts)
	if err != nil {
		return nil, err
	}
	terminations, err := stats.Aggregate(records, stats.TerminationKey, stats.Options{})
	if err != nil {
		return nil, err
	}
	windows, err := stats.RollingWindow(records, cfg.WindowSize)
	if err != nil {
		return nil, err
	}

	chartList := []components.Charter{
		report.HourlyWinRateChart(hourly),
		report.GroupBar("Win Rate by Opening", openings, 10),
		report.TerminationPie(terminations),
		report.RollingWinRateChart(windows, cfg.WindowSize),
	}

	byAccount, err := stats.Aggregate(records, stats.AccountKey, stats.Options{})
	if err != nil {
		return nil, err
	}
	for key := range byAccount {
		if key == stats.KeyUnknown {
			continue
		}
		account := string(key)
		var accountRecords []models.GameRecord
		for _, rec := range records {
			if rec.Account == account {
				accountRecords = append(accountRecords, rec)
			}
		}
		chartList = append(chartList, report.RatingEvolutionChart(account, accountRecords))
	}

	var buf bytes.Buffer
	if err := report.WritePage(&buf, chartList...); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
