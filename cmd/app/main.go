package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mauv0809/financial-explorer/internal/config"
	"github.com/mauv0809/financial-explorer/internal/explorer"
	"github.com/mauv0809/financial-explorer/internal/handlers"
	"github.com/mauv0809/financial-explorer/internal/ingest"
	"github.com/phuslu/log"
)

func main() {
	// Load .env file if it exists (local dev)
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using environment variables")
	}

	configPath := os.Getenv("EXPLORER_CONFIG")
	if configPath == "" {
		configPath = "explorer.toml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.DefaultLogger = log.Logger{
		Level:      log.ParseLevel(cfg.LogLevel),
		TimeFormat: "15:04:05",
		Writer:     &log.ConsoleWriter{ColorOutput: true},
	}

	// Missing keys are reported per query, not fatal
	for _, key := range cfg.MissingCredentials() {
		log.Warn().Str("env", key).Msg("API key not set, queries will report it as unavailable")
	}

	statements := ingest.NewStatementClient(cfg.Statements.APIKey, cfg.Statements.Limit,
		ingest.WithBaseURL(cfg.Statements.BaseURL),
		ingest.WithTimeout(cfg.Timeout()),
	)
	metricSource := ingest.NewMetricsClient(cfg.Metrics.APIKey,
		ingest.WithBaseURL(cfg.Metrics.BaseURL),
		ingest.WithTimeout(cfg.Timeout()),
	)
	explorerHandler := handlers.NewExplorerHandler(explorer.New(statements, metricSource))

	// Setup Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewRequestValidator()
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				log.Info().Int("status", v.Status).Str("uri", v.URI).Dur("latency", v.Latency).Msg("request")
			} else {
				log.Error().Int("status", v.Status).Str("uri", v.URI).Err(v.Error).Msg("request")
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	h := handlers.New()

	// Static files
	e.Static("/assets", "assets")

	// Routes
	e.GET("/health", h.Health)
	e.GET("/", h.Index)
	e.GET("/explore", explorerHandler.Explore)

	api := e.Group("/api")
	api.GET("/financials/:ticker", explorerHandler.Financials)
	api.GET("/query", explorerHandler.CurrentQuery)

	log.Info().Str("port", cfg.Port).Msg("Starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
