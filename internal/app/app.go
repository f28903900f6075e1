package app

import (
	"context"
	"fmt"
	"log/slog"

	"mediawatch/internal/config"
	"mediawatch/internal/domain"
	"mediawatch/internal/filter"
	"mediawatch/internal/infrastructure/loader"
	"mediawatch/internal/infrastructure/storage"
	"mediawatch/internal/logging"
	"mediawatch/internal/ports"
	"mediawatch/internal/standardize"
	"mediawatch/internal/trend"
	"mediawatch/internal/usecase"
)

// Application wires the data source, one-time standardization, and the
// per-interaction report builder.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
}

// New builds a minimal runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	return &Application{cfg: cfg, logger: baseLogger}
}

// Run loads and standardizes the collection, then produces one unfiltered
// report so the serving layer has a warm snapshot to hand out.
func (a *Application) Run(ctx context.Context) error {
	builder, err := a.Warmup(ctx)
	if err != nil {
		return err
	}

	report := builder.Build(a.Params(filter.Spec{}))
	a.logger.Info("report ready",
		"records", len(report.Records),
		"highlights", len(report.Highlights),
		"pages", report.Pages)
	for _, summary := range report.Summaries {
		a.logger.Debug("filter state", "summary", summary)
	}
	return nil
}

// Warmup loads the raw collection and standardizes its categorical columns.
// The returned builder owns an immutable snapshot; a data refresh means
// calling Warmup again and swapping the builder reference.
func (a *Application) Warmup(ctx context.Context) (*usecase.Builder, error) {
	source, err := a.buildSource()
	if err != nil {
		return nil, err
	}

	raw, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}

	collection := standardize.Columns(raw, domain.CategoricalFields())
	a.logger.Info("collection standardized", "records", len(collection))

	return usecase.NewBuilder(collection, a.logger.With("component", "report")), nil
}

// Params assembles the per-interaction parameters around one filter spec.
func (a *Application) Params(spec filter.Spec) usecase.Params {
	groups := make([]trend.Group, 0, len(a.cfg.Trend.Groups))
	for _, g := range a.cfg.Trend.Groups {
		groups = append(groups, trend.Group{Label: g.Label, Color: g.Color, Values: g.Values})
	}

	return usecase.Params{
		Filter:     spec,
		WindowDays: a.cfg.Trend.WindowDays,
		Threshold:  a.cfg.Trend.ThresholdValue(),
		Groups:     groups,
		PageSize:   a.cfg.Table.PageSize,
		MaxWords:   a.cfg.Words.MaxWords,
		Stopwords:  a.cfg.Words.Stopwords,
	}
}

func (a *Application) buildSource() (ports.CollectionSource, error) {
	switch a.cfg.Data.Source {
	case "", "csv":
		return loader.NewDirectorySource(a.cfg.Data.Dir, a.logger.With("component", "loader")), nil
	case "postgres":
		start, end, err := a.cfg.Database.Window()
		if err != nil {
			return nil, err
		}
		db, err := storage.Open(a.cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		repo := storage.NewPostgresRepository(db, a.cfg.Database.Table)
		if start.IsZero() && end.IsZero() {
			return repo, nil
		}
		return repo.Window(start, end, nil), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", a.cfg.Data.Source)
	}
}
