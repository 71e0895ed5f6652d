package main

import (
	"flag"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chdb/chessmetrics/internal/config"
	"github.com/chdb/chessmetrics/internal/database"
	"github.com/chdb/chessmetrics/internal/models"
	"github.com/chdb/chessmetrics/internal/obslog"
	"github.com/chdb/chessmetrics/internal/parser"
	"github.com/chdb/chessmetrics/internal/report"
	"github.com/chdb/chessmetrics/internal/server"
)

func main() {
	cfg := config.Load()

	var (
		port       = flag.String("port", cfg.Port, "Server port")
		dbPath     = flag.String("db", cfg.DBPath, "Database path")
		accounts   = flag.String("accounts", strings.Join(cfg.TrackedAccounts, ","), "Comma-separated tracked accounts")
		importPath = flag.String("import", "", "Import a PGN file and exit")
		chartsPath = flag.String("charts", "", "Write an HTML chart report and exit")
		insights   = flag.String("insights", "", "Write a markdown insights report and exit")
	)
	flag.Parse()

	obslog.Init(cfg.LogLevel)
	defer obslog.Sync()

	cfg.Port = *port
	cfg.DBPath = *dbPath
	if *accounts != "" {
		cfg.TrackedAccounts = splitAccounts(*accounts)
	}

	db, err := database.New(cfg.DBPath)
	if err != nil {
		obslog.L().Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	offline := false
	if *importPath != "" {
		importFile(db, cfg, *importPath)
		offline = true
	}
	if *chartsPath != "" {
		writeCharts(db, cfg, *chartsPath)
		offline = true
	}
	if *insights != "" {
		writeInsights(db, cfg, *insights)
		offline = true
	}
	if offline {
		return
	}

	gin.SetMode(gin.ReleaseMode)
	router := server.SetupRouter(db, cfg)

	obslog.L().Info("chess metrics server starting",
		zap.String("port", cfg.Port),
		zap.String("db", cfg.DBPath),
		zap.Strings("accounts", cfg.TrackedAccounts),
	)

	if err := router.Run(":" + cfg.Port); err != nil {
		obslog.L().Fatal("server failed", zap.Error(err))
	}
}

func importFile(db *database.DB, cfg *config.AppConfig, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		obslog.L().Fatal("failed to read PGN file", zap.String("path", path), zap.Error(err))
	}

	p := parser.New(cfg.TrackedAccounts)
	records, parseReport := p.ParsePGN(string(content))

	imported := 0
	for _, rec := range records {
		if _, err := db.InsertRecord(&rec); err != nil {
			obslog.L().Warn("failed to insert game", zap.Error(err))
			continue
		}
		imported++
	}

	obslog.L().Info("import complete",
		zap.String("path", path),
		zap.Int("total", parseReport.Total),
		zap.Int("imported", imported),
		zap.Int("skipped", parseReport.Skipped),
		zap.Int("failed", parseReport.Failed),
	)
}

func writeCharts(db *database.DB, cfg *config.AppConfig, path string) {
	records, err := db.ListRecords(&models.RecordFilter{})
	if err != nil {
		obslog.L().Fatal("failed to load records", zap.Error(err))
	}

	page, err := server.BuildChartsPage(records, cfg)
	if err != nil {
		obslog.L().Fatal("failed to build charts", zap.Error(err))
	}

	if err := os.WriteFile(path, page, 0o644); err != nil {
		obslog.L().Fatal("failed to write charts", zap.String("path", path), zap.Error(err))
	}

	obslog.L().Info("charts written", zap.String("path", path), zap.Int("games", len(records)))
}

func writeInsights(db *database.DB, cfg *config.AppConfig, path string) {
	records, err := db.ListRecords(&models.RecordFilter{})
	if err != nil {
		obslog.L().Fatal("failed to load records", zap.Error(err))
	}

	icfg := report.DefaultInsightsConfig()
	icfg.MinSamples = cfg.MinSamples

	markdown, err := report.BuildInsights(records, icfg)
	if err != nil {
		obslog.L().Fatal("failed to build insights", zap.Error(err))
	}

	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		obslog.L().Fatal("failed to write insights", zap.String("path", path), zap.Error(err))
	}

	obslog.L().Info("insights written", zap.String("path", path), zap.Int("games", len(records)))
}

func splitAccounts(s string) []string {
	var accounts []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			accounts = append(accounts, v)
		}
	}
	return accounts
}
