package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chdb/chessmetrics/internal/config"
	"github.com/chdb/chessmetrics/internal/database"
	"github.com/chdb/chessmetrics/internal/models"
	"github.com/chdb/chessmetrics/internal/obslog"
	"github.com/chdb/chessmetrics/internal/parser"
	"github.com/chdb/chessmetrics/internal/report"
	"github.com/chdb/chessmetrics/internal/stats"
)

type Handler struct {
	db     *database.DB
	parser *parser.Parser
	cfg    *config.AppConfig
}

func NewHandler(db *database.DB, cfg *config.AppConfig) *Handler {
	return &Handler{
		db:     db,
		parser: parser.New(cfg.TrackedAccounts),
		cfg:    cfg,
	}
}

func (h *Handler) ImportGames(c *gin.Context) {
	var req struct {
		PGN string `json:"pgn" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startTime := time.Now()
	records, parseReport := h.parser.ParsePGN(req.PGN)

	result := &models.ImportResult{
		TotalGames:   parseReport.Total,
		SkippedGames: parseReport.Skipped,
		FailedGames:  parseReport.Failed,
	}

	for _, rec := range records {
		if _, err := h.db.InsertRecord(&rec); err != nil {
			result.FailedGames++
			result.Errors = append(result.Errors, fmt.Sprintf("failed to insert game: %v", err))
			continue
		}
		result.ImportedGames++
	}

	result.ProcessingTime = time.Since(startTime).Seconds()
	c.JSON(http.StatusOK, result)
}

// ImportFile streams a multipart PGN file through the concurrent parser
// into batched inserts, for archives too large for the JSON endpoint.
func (h *Handler) ImportFile(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to get file: " + err.Error()})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file: " + err.Error()})
		return
	}

	startTime := time.Now()

	cp := parser.NewConcurrentParser(h.cfg.TrackedAccounts, 4)
	pgnChannel := make(chan string, 1)
	pgnChannel <- string(content)
	close(pgnChannel)

	importer := database.NewBatchImporter(h.db, 100, 4)
	if err := importer.ImportStream(context.Background(), cp.StreamParsePGN(pgnChannel), nil); err != nil {
		obslog.L().Error("batch import failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	imported, failed := importer.GetStats()
	c.JSON(http.StatusOK, gin.H{
		"filename": header.Filename,
		"result": &models.ImportResult{
			TotalGames:     int(imported + failed),
			ImportedGames:  int(imported),
			FailedGames:    int(failed),
			ProcessingTime: time.Since(startTime).Seconds(),
		},
	})
}

func (h *Handler) ListGames(c *gin.Context) {
	filter := h.recordFilter(c)
	if filter.Limit == 0 {
		filter.Limit = 100
	}

	records, err := h.db.ListRecords(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"games": records,
		"count": len(records),
	})
}

func (h *Handler) GroupReport(c *gin.Context) {
	by := c.DefaultQuery("by", "hour")

	bucketWidth := h.cfg.BucketWidth
	if v := c.Query("bucket_width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || stats.CheckBucketWidth(n) != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bucket_width"})
			return
		}
		bucketWidth = n
	}

	keyFn, err := keyFuncFor(by, bucketWidth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	minSamples := h.cfg.MinSamples
	if v := c.Query("min_samples"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_samples"})
			return
		}
		minSamples = n
	}

	records, err := h.db.ListRecords(h.recordFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summaries, err := stats.Aggregate(records, keyFn, stats.Options{MinSamples: minSamples})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"by":          by,
		"min_samples": minSamples,
		"groups":      sortGroups(by, summaries),
	})
}

func (h *Handler) RollingReport(c *gin.Context) {
	windowSize := h.cfg.WindowSize
	if v := c.Query("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window"})
			return
		}
		windowSize = n
	}

	records, err := h.db.ListRecords(h.recordFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	windows, err := stats.RollingWindow(records, windowSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"window":     windowSize,
		"windows":    windows,
		"volatility": stats.Volatility(windows),
	})
}

func (h *Handler) StreaksReport(c *gin.Context) {
	records, err := h.db.ListRecords(h.recordFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats.Streaks(records))
}

func (h *Handler) SessionsReport(c *gin.Context) {
	records, err := h.db.ListRecords(h.recordFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sessions := stats.SplitSessions(records, h.cfg.SessionGap)
	summaries := make([]stats.GroupSummary, 0, len(sessions))
	for i, session := range sessions {
		summaries = append(summaries, stats.Summarize(session, stats.GroupKey(strconv.Itoa(i+1))))
	}

	c.JSON(http.StatusOK, gin.H{
		"session_count": len(sessions),
		"sessions":      summaries,
	})
}

func (h *Handler) InsightsReport(c *gin.Context) {
	records, err := h.db.ListRecords(h.recordFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	cfg := report.DefaultInsightsConfig()
	cfg.MinSamples = h.cfg.MinSamples

	markdown, err := report.BuildInsights(records, cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(markdown))
}

func (h *Handler) ChartsReport(c *gin.Context) {
	records, err := h.db.ListRecords(h.recordFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	page, err := BuildChartsPage(records, h.cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (h *Handler) SummaryReport(c *gin.Context) {
	records, err := h.db.ListRecords(h.recordFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	byAccount, err := stats.Aggregate(records, stats.AccountKey, stats.Options{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_games": len(records),
		"accounts":    sortGroups("account", byAccount),
		"trend_slope": stats.TrendSlope(records),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	dbStats, err := h.db.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dbStats)
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	account := c.Param("account")
	deleted, err := h.db.DeleteAccount(account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account, "deleted": deleted})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC(),
	})
}

func (h *Handler) recordFilter(c *gin.Context) *models.RecordFilter {
	filter := &models.RecordFilter{
		Account:   c.Query("account"),
		TimeClass: models.TimeClass(c.Query("time_class")),
		Result:    models.Result(c.Query("result")),
		Opening:   c.Query("opening"),
	}

	if v := c.Query("from"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = ts
		}
	}
	if v := c.Query("to"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = ts
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	return filter
}
