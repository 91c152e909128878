// Package quality runs the analyzers over a patient table and builds the report.
package quality

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/patient-qc/pkg/models/domain"
	"github.com/de-tools/patient-qc/pkg/services/config"
	"github.com/de-tools/patient-qc/pkg/services/dates"
	"github.com/de-tools/patient-qc/pkg/services/filter"
	"github.com/de-tools/patient-qc/pkg/services/quality/analyzers"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Engine struct {
	filter       *filter.YearFilter
	filterColumn string
	parser       *dates.Parser
	analyzers    []analyzers.Analyzer
	now          func() time.Time
}

type Option func(*Engine)

// WithClock replaces the wall clock used for the report timestamp and the
// reference date of future-date checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates the analyzers enabled in cfg from the registry.
func NewEngine(cfg *config.Config, reg Registry, opts ...Option) (*Engine, error) {
	kinds, err := cfg.AnalyzerKinds()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		filter: filter.New(filter.Settings{
			DateColumn:   cfg.Filter.DateColumn,
			Layouts:      cfg.Dates.Layouts,
			CenturyPivot: cfg.Filter.CenturyPivot,
			MaxSpan:      cfg.Filter.MaxSpan,
		}),
		filterColumn: cfg.Filter.DateColumn,
		parser:       dates.NewParser(cfg.Dates.Layouts),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, kind := range kinds {
		a, err := reg.Create(kind, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s analyzer: %w", kind, err)
		}
		e.analyzers = append(e.analyzers, a)
	}
	return e, nil
}

// Analyzers returns the kinds the engine runs, in report order.
func (e *Engine) Analyzers() []domain.AnalyzerKind {
	kinds := make([]domain.AnalyzerKind, 0, len(e.analyzers))
	for _, a := range e.analyzers {
		kinds = append(kinds, a.Kind())
	}
	return kinds
}

// Run filters t by spec, runs every analyzer over the kept rows and
// aggregates their findings. Callers must not mutate t while Run executes.
func (e *Engine) Run(ctx context.Context, t *domain.Table, spec domain.YearFilterSpec) (*domain.AnalysisReport, error) {
	logger := zerolog.Ctx(ctx).With().Str("source", t.Source).Str("filter", spec.String()).Logger()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filtered, err := e.filter.Apply(t, spec)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Int("rows", len(t.Rows)).
		Int("analyzed", len(filtered.Table.Rows)).
		Int("out_of_range", filtered.ExcludedOutOfRange).
		Int("undated", filtered.ExcludedUndated).
		Msg("applied year filter")

	now := e.now()
	actx := analyzers.NewContext(now, e.parser)

	outputs := make([]AnalyzerOutput, len(e.analyzers))
	var g errgroup.Group
	for i, a := range e.analyzers {
		i, a := i, a
		g.Go(func() error {
			findings, err := a.Analyze(filtered.Table, actx)
			outputs[i] = AnalyzerOutput{Kind: a.Kind(), Findings: findings, Err: err}
			return nil
		})
	}
	// analyzer faults are carried in the outputs
	_ = g.Wait()

	for _, out := range outputs {
		ev := logger.Debug()
		if out.Err != nil {
			ev = logger.Error().Err(out.Err)
		}
		ev.Str("analyzer", string(out.Kind)).Int("findings", len(out.Findings)).Msg("analyzer finished")
	}

	report, err := Aggregate(outputs, RunContext{
		ID:                 uuid.NewString(),
		Source:             t.Source,
		Columns:            t.ColumnNames(),
		Filter:             spec,
		FilterColumn:       e.filterColumn,
		RowCountTotal:      len(t.Rows),
		RowCountAnalyzed:   len(filtered.Table.Rows),
		ExcludedOutOfRange: filtered.ExcludedOutOfRange,
		ExcludedUndated:    filtered.ExcludedUndated,
		GeneratedAt:        now.UTC(),
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("report_id", report.ID).
		Int("findings", len(report.Findings)).
		Msg("analysis completed")
	return report, nil
}
