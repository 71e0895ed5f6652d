package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/chdb/chessmetrics/internal/models"
	"github.com/chdb/chessmetrics/internal/stats"
)

const (
	chartWidth  = "1100px"
	chartHeight = "500px"
)

// HourlyWinRateChart plots win rate across the 24 hours of the day.
// Hours absent from the summaries (filtered or never played) are skipped.
func HourlyWinRateChart(summaries map[stats.GroupKey]stats.GroupSummary) *charts.Line {
	var labels []string
	var data []opts.LineData

	for hour := 0; hour < 24; hour++ {
		key := stats.GroupKey(strconv.Itoa(hour))
		s, ok := summaries[key]
		if !ok {
			continue
		}
		labels = append(labels, fmt.Sprintf("%02d:00", hour))
		data = append(data, opts.LineData{Value: roundRate(s.WinRate)})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Win Rate by Hour of Day"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Win Rate (%)"}),
	)
	line.SetXAxis(labels)
	line.AddSeries("Win Rate", data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
	)

	return line
}

// GroupBar renders one bar per bucket, sorted by win rate descending and
// capped at topN (zero means no cap).
func GroupBar(title string, summaries map[stats.GroupKey]stats.GroupSummary, topN int) *charts.Bar {
	ordered := ByWinRate(summaries)
	if topN > 0 && len(ordered) > topN {
		ordered = ordered[:topN]
	}

	labels := make([]string, len(ordered))
	data := make([]opts.BarData, len(ordered))
	for i, s := range ordered {
		labels[i] = string(s.Key)
		data[i] = opts.BarData{Value: roundRate(s.WinRate)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Win Rate (%)"}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("Win Rate", data)

	return bar
}

func TerminationPie(summaries map[stats.GroupKey]stats.GroupSummary) *charts.Pie {
	var data []opts.PieData
	for _, s := range ByCount(summaries) {
		data = append(data, opts.PieData{Name: string(s.Key), Value: s.Count})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Game Termination Reasons"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("Terminations", data)

	return pie
}

// RatingEvolutionChart plots own rating over chronologically ordered
// records with a least-squares trend line over it.
func RatingEvolutionChart(account string, records []models.GameRecord) *charts.Line {
	labels := make([]string, len(records))
	data := make([]opts.LineData, len(records))
	for i, rec := range records {
		labels[i] = strconv.Itoa(i + 1)
		data[i] = opts.LineData{Value: rec.OwnRating}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: account + " - Rating Evolution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Game"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Rating"}),
	)
	line.SetXAxis(labels)
	line.AddSeries("Rating", data)

	if len(records) >= 2 {
		slope := stats.TrendSlope(records)
		intercept := float64(records[0].OwnRating)
		trend := make([]opts.LineData, len(records))
		for i := range records {
			trend[i] = opts.LineData{Value: intercept + slope*float64(i)}
		}
		line.AddSeries(fmt.Sprintf("Trend (%.1f/game)", slope), trend,
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}),
		)
	}

	return line
}

// RollingWinRateChart plots windowed win rate over time, the trend view
// behind the volatility measure.
func RollingWinRateChart(windows []stats.GroupSummary, windowSize int) *charts.Line {
	labels := make([]string, len(windows))
	data := make([]opts.LineData, len(windows))
	for i, w := range windows {
		labels[i] = string(w.Key)
		data[i] = opts.LineData{Value: roundRate(w.WinRate)}
	}

	title := fmt.Sprintf("Rolling Win Rate (%d-game window)", windowSize)
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Win Rate (%)"}),
	)
	line.SetXAxis(labels)
	line.AddSeries("Win Rate", data,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
	)

	return line
}

// WritePage renders the given charts as one static HTML page.
func WritePage(w io.Writer, chartList ...components.Charter) error {
	page := components.NewPage()
	page.PageTitle = "Chess Performance Report"
	page.AddCharts(chartList...)
	return page.Render(w)
}

// ByWinRate orders summaries by win rate descending, count as tiebreak.
func ByWinRate(summaries map[stats.GroupKey]stats.GroupSummary) []stats.GroupSummary {
	ordered := collect(summaries)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].WinRate != ordered[j].WinRate {
			return ordered[i].WinRate > ordered[j].WinRate
		}
		return ordered[i].Count > ordered[j].Count
	})
	return ordered
}

// ByCount orders summaries by game count descending.
func ByCount(summaries map[stats.GroupKey]stats.GroupSummary) []stats.GroupSummary {
	ordered := collect(summaries)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Count != ordered[j].Count {
			return ordered[i].Count > ordered[j].Count
		}
		return ordered[i].Key < ordered[j].Key
	})
	return ordered
}

func collect(summaries map[stats.GroupKey]stats.GroupSummary) []stats.GroupSummary {
	ordered := make([]stats.GroupSummary, 0, len(summaries))
	for _, s := range summaries {
		ordered = append(ordered, s)
	}
	return ordered
}

func roundRate(rate float64) float64 {
	return float64(int(rate*1000+0.5)) / 10
}
