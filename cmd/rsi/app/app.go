package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kinelab/dropjump/internal/jump"
	"github.com/kinelab/dropjump/internal/loader"
	"github.com/kinelab/dropjump/internal/pipeline"
	"github.com/kinelab/dropjump/internal/storage"
)

const resultsDir = "results"

// Run executes the full batch: load trials, run the per-trial pipeline and
// persist every row (valid and rejected) into a timestamped results
// database.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	started := time.Now()

	sessions, err := loader.LoadSessions(config.Data.Dir, logger)
	if err != nil {
		return fmt.Errorf("loading sessions: %w", err)
	}

	var trialCount int
	for _, session := range sessions {
		trialCount += len(session.Trials)
	}
	logger.Info("loaded sessions",
		slog.Int("subjects", len(sessions)),
		slog.Int("trials", trialCount))

	aggregator := newAggregator(&config.Pipeline, logger)
	result := aggregator.Run(ctx, sessions)
	if err = ctx.Err(); err != nil {
		return err
	}

	store, dbPath, err := createStorage(&config.Results)
	if err != nil {
		return fmt.Errorf("creating storage: %w", err)
	}
	defer store.Close()

	runID, err := store.CreateRun(ctx, config.Data.Dir, config.Pipeline)
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}

	for chunk := range slices.Chunk(result.Rows, config.Results.MaxBatchSize) {
		if err = store.StoreResults(ctx, runID, chunk); err != nil {
			return fmt.Errorf("storing results: %w", err)
		}
	}

	for _, subject := range result.Subjects() {
		rows := result.BySubject()[subject]

		var valid int
		for _, row := range rows {
			if row.Valid {
				valid++
			}
		}
		logger.Info("subject processed",
			slog.String("subject", subject),
			slog.Int("rows", len(rows)),
			slog.Int("valid", valid),
			slog.Int("rejected", len(rows)-valid))
	}

	logger.Info("batch complete",
		slog.String("rows", humanize.Comma(int64(len(result.Rows)))),
		slog.Int("valid", result.ValidCount()),
		slog.Int("rejected", result.RejectedCount()),
		slog.Int64("run", runID),
		slog.String("db", dbPath),
		slog.String("elapsed", time.Since(started).Round(time.Millisecond).String()))

	return nil
}

func newAggregator(config *PipelineConfig, logger *slog.Logger) *pipeline.Aggregator {
	var detectorOptions []func(*jump.Detector)
	if config.RelThresholdM > 0 {
		detectorOptions = append(detectorOptions, jump.WithRelThreshold(config.RelThresholdM))
	}
	if config.MinVelocityPeak > 0 {
		detectorOptions = append(detectorOptions, jump.WithMinVelocityPeak(config.MinVelocityPeak))
	}
	if config.DebounceWindowS > 0 {
		detectorOptions = append(detectorOptions, jump.WithDebounceWindow(config.DebounceWindowS))
	}
	if config.LookbackWindowS > 0 {
		detectorOptions = append(detectorOptions, jump.WithLookbackWindow(config.LookbackWindowS))
	}

	var validatorOptions []func(*jump.Validator)
	if config.MinJumpHeightM > 0 {
		validatorOptions = append(validatorOptions, jump.WithMinJumpHeight(config.MinJumpHeightM))
	}
	if config.MinVelocityPeak > 0 {
		validatorOptions = append(validatorOptions, jump.WithValidatorVelocityPeak(config.MinVelocityPeak))
	}
	if config.LookbackWindowS > 0 {
		validatorOptions = append(validatorOptions, jump.WithPhaseWindow(config.LookbackWindowS))
	}
	if config.GravityMS2 > 0 {
		validatorOptions = append(validatorOptions, jump.WithGravity(config.GravityMS2))
	}

	var analyzerOptions []func(*jump.Analyzer)
	if config.GravityMS2 > 0 {
		analyzerOptions = append(analyzerOptions, jump.WithAnalyzerGravity(config.GravityMS2))
	}

	options := []func(*pipeline.Aggregator){
		pipeline.WithLogger(logger),
		pipeline.WithDetector(jump.NewDetector(detectorOptions...)),
		pipeline.WithValidator(jump.NewValidator(validatorOptions...)),
		pipeline.WithAnalyzer(jump.NewAnalyzer(analyzerOptions...)),
	}
	if config.Workers > 0 {
		options = append(options, pipeline.WithWorkers(config.Workers))
	}
	if config.LowpassCutoffHz > 0 {
		options = append(options, pipeline.WithLowpassCutoff(config.LowpassCutoffHz))
	}
	if config.GroundWindowS > 0 {
		options = append(options, pipeline.WithGroundWindow(config.GroundWindowS))
	}

	return pipeline.New(options...)
}

func createStorage(config *ResultsConfig) (storage.Store, string, error) {
	dir := config.Dir
	if dir == "" {
		dir = resultsDir
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("creating results directory '%s': %w", dir, err)
	}

	dbPath := filepath.Join(dir, fmt.Sprintf("rsi_results_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return storage.NewSqliteStore(dbPath), dbPath, nil
}
