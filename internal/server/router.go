package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chdb/chessmetrics/internal/config"
	"github.com/chdb/chessmetrics/internal/database"
	"github.com/chdb/chessmetrics/internal/obslog"
)

func SetupRouter(db *database.DB, cfg *config.AppConfig) *gin.Engine {
	router := gin.New()
	handler := NewHandler(db, cfg)

	router.Use(gin.Recovery())
	router.Use(requestLogger())
	router.Use(corsMiddleware())

	api := router.Group("/api/v1")
	{
		api.GET("/health", handler.HealthCheck)
		api.GET("/stats", handler.GetStats)

		games := api.Group("/games")
		{
			games.POST("/import", handler.ImportGames)
			games.POST("/import/file", handler.ImportFile)
			games.GET("", handler.ListGames)
			games.DELETE("/account/:account", handler.DeleteAccount)
		}

		reports := api.Group("/reports")
		{
			reports.GET("/summary", handler.SummaryReport)
			reports.GET("/group", handler.GroupReport)
			reports.GET("/rolling", handler.RollingReport)
			reports.GET("/streaks", handler.StreaksReport)
			reports.GET("/sessions", handler.SessionsReport)
			reports.GET("/insights", handler.InsightsReport)
			reports.GET("/charts", handler.ChartsReport)
		}
	}

	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		obslog.L().Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
