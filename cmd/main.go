package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"precision/internal/configuration"
	"precision/internal/dataset"
	"precision/internal/groupify"
	"precision/internal/hierarchy"
	"precision/internal/history"
	"precision/internal/score"
	"precision/internal/server"
	"precision/internal/telemetry"
)

var version = "dev"

// prepareLogger sets the default slog logger to JSON on os.Stdout with the given
// level ("debug", "info", "warn", "error"). Unknown levels fall back to info.
func prepareLogger(level string) {
	var logLevel slog.Level

	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)
}

// loadHierarchies reads the hierarchies file, if any, and orders the hierarchies
// by the table header. Columns without a hierarchy are never generalized.
func loadHierarchies(path string, header []string) ([]*hierarchy.Hierarchy, error) {
	set := hierarchy.Set{}
	if path != "" {
		var err error
		set, err = hierarchy.Load(path)
		if err != nil {
			return nil, err
		}
	}

	for attribute := range set {
		if !slices.Contains(header, attribute) {
			slog.Warn("Hierarchy for unknown attribute ignored", "attribute", attribute)
		}
	}

	return set.Ordered(header), nil
}

// The application exits with code 1 when configuration, input or component
// initialization fails.
func main() {
	configPath := flag.String("config", "/etc/precision/config.yaml", "configuration file")
	flag.Parse()
	config, err := configuration.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Unable to load configuration", "error", err)
		os.Exit(1)
	}
	prepareLogger(config.Logger.Level)

	appCtx, appCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer appCancel()

	var instruments score.Instrumentation = telemetry.NoopInstruments()
	if config.Telemetry.Enabled {
		provider, err := telemetry.Init(appCtx, config.Telemetry.Service, version)
		if err != nil {
			slog.Error("Unable to initialize telemetry", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				slog.Warn("Telemetry shutdown", "error", err)
			}
		}()
		instruments = telemetry.NewInstruments()
	}

	table, err := dataset.LoadCSV(config.Input.Data, config.Input.DelimiterRune())
	if err != nil {
		slog.Error("Unable to load data", "path", config.Input.Data, "error", err)
		os.Exit(1)
	}

	hierarchies, err := loadHierarchies(config.Input.Hierarchies, table.Header)
	if err != nil {
		slog.Error("Unable to load hierarchies", "path", config.Input.Hierarchies, "error", err)
		os.Exit(1)
	}

	rule, err := groupify.NewSuppressionRule(config.Anonymization.Suppress)
	if err != nil {
		slog.Error("Unable to compile suppression rule", "rule", config.Anonymization.Suppress, "error", err)
		os.Exit(1)
	}

	historyRepo := history.NewRepository[score.Evaluation](config.Evaluation.HistoryLength, config.Evaluation.HistoryTtl)
	go historyRepo.Serve()
	defer historyRepo.Stop()

	var results dataset.ResultRepository = dataset.NoopResultRepository{}
	if config.Results.File != "" {
		results = dataset.NewJsonResultRepository(config.Results.File, config.Results.Size, config.Results.Amount)
	}
	defer results.Close()

	scorer, err := score.NewScorer(table, hierarchies, rule, config.Anonymization.K, score.Options{
		Workers:     config.Evaluation.Workers,
		History:     historyRepo,
		Results:     results,
		Instruments: instruments,
	})
	if err != nil {
		slog.Error("Unable to initialize scorer", "error", err)
		os.Exit(1)
	}
	slog.Info("Metric initialized",
		"metric", scorer.Metric().String(),
		"attributes", scorer.Attributes(),
		"heights", scorer.Metric().Heights(),
		"cells", scorer.Metric().Cells(),
	)

	if len(config.Evaluation.Schemes) > 0 {
		evaluations, err := scorer.ScoreAll(appCtx, config.Evaluation.Schemes)
		if err != nil {
			slog.Error("Unable to score schemes", "error", err)
			os.Exit(1)
		}
		for _, e := range evaluations {
			slog.Info("Scheme scored",
				"scheme", score.SchemeKey(e.Scheme),
				"loss", e.Loss.Value(),
				"lowerBound", e.Loss.LowerBound(),
				"classes", e.Classes,
				"outliers", e.Outliers,
			)
		}
		summary := score.Summarize(evaluations)
		slog.Info("Schemes summary",
			"count", summary.Count,
			"min", summary.Min,
			"max", summary.Max,
			"mean", summary.Mean,
			"stdDev", summary.StdDev,
		)
	}

	if config.Server.Address == "" {
		return
	}

	srv := server.NewServer(config.Server.Address, scorer, historyRepo)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			appCancel()
		}
	}()
	slog.Info("Server listening " + config.Server.Address)
	<-appCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*10)
	defer shutdownCancel()

	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		slog.Error("Server shutdown", "error", err)
	}
	slog.Info("Server stopped")
}
