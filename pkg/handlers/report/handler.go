package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/de-tools/patient-qc/pkg/adapters"
	"github.com/de-tools/patient-qc/pkg/models/api"
	"github.com/de-tools/patient-qc/pkg/models/domain"
	"github.com/de-tools/patient-qc/pkg/runtime/terminal/export"
	"github.com/de-tools/patient-qc/pkg/services/filter"
	"github.com/de-tools/patient-qc/pkg/store/table"
	"github.com/rs/zerolog"
)

const (
	defaultMaxUpload = 32 << 20 // 32 MiB
	formField        = "file"
)

// Engine runs an analysis over a loaded table
type Engine interface {
	Run(ctx context.Context, t *domain.Table, spec domain.YearFilterSpec) (*domain.AnalysisReport, error)
	Analyzers() []domain.AnalyzerKind
}

type Handler struct {
	engine    Engine
	options   table.Options
	maxUpload int64
}

// NewHandler creates the report handler. Uploads are parsed with the given
// table options; maxUpload of 0 selects the default limit.
func NewHandler(engine Engine, options table.Options, maxUpload int64) *Handler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &Handler{engine: engine, options: options, maxUpload: maxUpload}
}

// CreateReport analyzes the uploaded table. The year filter comes from the
// "year" query parameter; "format=markdown" returns the markdown document
// instead of JSON.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(ctx, w, http.StatusBadRequest, domain.NewConfigurationError("read upload", fmt.Errorf("invalid multipart upload: %w", err)))
		return
	}
	file, header, err := r.FormFile(formField)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, domain.NewConfigurationError("read upload", fmt.Errorf("missing %q form field: %w", formField, err)))
		return
	}
	defer file.Close()

	spec, err := filter.Parse(r.URL.Query().Get("year"))
	if err != nil {
		writeError(ctx, w, statusFor(err), err)
		return
	}

	format, err := table.DetectFormat(header.Filename)
	if err != nil {
		writeError(ctx, w, statusFor(err), err)
		return
	}
	tbl, err := table.Read(file, header.Filename, format, h.options)
	if err != nil {
		writeError(ctx, w, statusFor(err), err)
		return
	}

	report, err := h.engine.Run(ctx, tbl, spec)
	if err != nil {
		writeError(ctx, w, statusFor(err), err)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		if err := export.NewReporter(w).Handle(report); err != nil {
			logger.Error().Err(err).Str("report_id", report.ID).Msg("failed to render markdown report")
		}
		return
	}

	writeJSON(ctx, w, http.StatusOK, adapters.MapReportDomainToApi(report))
}

func (h *Handler) ListAnalyzers(w http.ResponseWriter, r *http.Request) {
	kinds := h.engine.Analyzers()
	response := make([]api.Analyzer, 0, len(kinds))
	for _, k := range kinds {
		response = append(response, adapters.MapAnalyzerDomainToApi(k))
	}
	writeJSON(r.Context(), w, http.StatusOK, response)
}

// statusFor maps configuration errors to 400 and analyzer faults to 500.
func statusFor(err error) int {
	switch {
	case domain.IsConfigurationError(err):
		return http.StatusBadRequest
	case domain.IsAggregationError(err):
		return http.StatusInternalServerError
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func errorKind(err error) string {
	switch {
	case domain.IsConfigurationError(err):
		return "configuration"
	case domain.IsAggregationError(err):
		return "aggregation"
	default:
		return "internal"
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	zerolog.Ctx(ctx).Warn().Err(err).Int("status", status).Msg("report request failed")
	writeJSON(ctx, w, status, api.Error{Error: err.Error(), Kind: errorKind(err)})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Msg("failed to encode response")
	}
}
