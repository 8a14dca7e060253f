package app

import (
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/kinelab/dropjump/internal/kinematics"
	"github.com/kinelab/dropjump/internal/storage"
)

const (
	// Offsets spread the two limbs of one subject around the subject's
	// slot on the categorical axis of the RSI chart
	leftLimbOffset  = -0.15
	rightLimbOffset = 0.15

	axisPadding = 0.08
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	return renderChart(ctx, store, config, logger)
}

func renderChart(ctx context.Context, store storage.Store, config *Config, logger *slog.Logger) error {
	// Rejected rows carry no metrics, only valid ones can be plotted
	opts := []storage.ReaderOption{storage.WithValidOnly()}
	if config.Subject != "" {
		opts = append(opts, storage.WithSubject(config.Subject))
		logger.Info("reader configuration", slog.String("subject", config.Subject))
	}

	reader, err := store.ReadResults(ctx, config.RunID, opts...)
	if err != nil {
		return err
	}
	defer reader.Close()

	var data *ChartData
	switch config.Kind {
	case ChartGCT:
		data, err = buildGCTChart(ctx, reader)

	case ChartRSI:
		if config.BandsFile == "" {
			return errors.New("rsi chart requires a bands file, see -bands")
		}

		var bands []Band
		if bands, err = LoadBands(config.BandsFile); err != nil {
			return err
		}
		data, err = buildRSIChart(ctx, reader, bands)
	}
	if err != nil {
		return err
	}
	if err = reader.Error(); err != nil {
		return err
	}
	if data.Len() == 0 {
		return fmt.Errorf("run %d has no valid rows to plot", config.RunID)
	}

	data.Title = fmt.Sprintf("%s (run %d, %s)", data.Title, reader.Run().ID, reader.Run().CreatedAt.Format("2006-01-02"))
	data.Pad(axisPadding)

	renderer, err := NewChartRenderer(RenderConfig{})
	if err != nil {
		return fmt.Errorf("creating chart renderer: %w", err)
	}

	logger.Info("rendering chart",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("kind", string(config.Kind)),
			slog.Int("points", data.Len()),
			slog.Int("subjects", len(data.Subjects())),
		))

	img, err := renderer.Render(data)
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}

// buildGCTChart scatters ground contact time against peak jump height,
// one point per valid limb row
func buildGCTChart(ctx context.Context, reader storage.ResultReader) (*ChartData, error) {
	data := NewChartData()
	data.Title = "Ground contact time vs peak height"
	data.XLabel = "ground contact time"
	data.YLabel = "peak height"
	data.XUnit = "s"
	data.YUnit = "m"

	for reader.Next(ctx) {
		row := reader.Current()
		if row.Limb == kinematics.LimbBilateral || row.GCT == nil || row.HeightPeak == nil {
			continue
		}
		data.Add(row.Subject, *row.GCT, *row.HeightPeak)
	}

	return data, nil
}

// buildRSIChart plots flight-time RSI per subject over the normative
// bands. Subjects occupy categorical slots with left and right limbs
// offset around each slot.
func buildRSIChart(ctx context.Context, reader storage.ResultReader, bands []Band) (*ChartData, error) {
	data := NewChartData()
	data.Title = "Reactive strength index"
	data.XLabel = "subject"
	data.YLabel = "RSI (flight)"
	data.Bands = bands

	slots := make(map[string]float64)
	for reader.Next(ctx) {
		row := reader.Current()
		if row.RSIFlight == nil {
			continue
		}

		var offset float64
		switch row.Limb {
		case kinematics.LimbLeft:
			offset = leftLimbOffset
		case kinematics.LimbRight:
			offset = rightLimbOffset
		default:
			continue
		}

		slot, ok := slots[row.Subject]
		if !ok {
			slot = float64(len(slots))
			slots[row.Subject] = slot
			data.XTicks = append(data.XTicks, Tick{Value: slot, Label: row.Subject})
		}

		data.Add(row.Subject, slot+offset, *row.RSIFlight)
	}

	return data, nil
}
