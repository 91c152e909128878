package quality

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/de-tools/patient-qc/pkg/models/domain"
	"github.com/de-tools/patient-qc/pkg/services/config"
	"github.com/de-tools/patient-qc/pkg/services/quality/analyzers"
)

// AnalyzerFactory creates an analyzer from the run configuration
type AnalyzerFactory func(cfg *config.Config) (analyzers.Analyzer, error)

// Registry manages analyzer factories
type Registry interface {
	// Register adds a new analyzer factory
	Register(kind domain.AnalyzerKind, factory AnalyzerFactory) error
	// Create instantiates the analyzer of the given kind using the provided config
	Create(kind domain.AnalyzerKind, cfg *config.Config) (analyzers.Analyzer, error)
	// ListKinds returns the registered kinds in report order
	ListKinds() []domain.AnalyzerKind
}

type registry struct {
	mu        sync.RWMutex
	factories map[domain.AnalyzerKind]AnalyzerFactory
}

// NewRegistry creates an empty analyzer registry
func NewRegistry() Registry {
	return &registry{
		factories: make(map[domain.AnalyzerKind]AnalyzerFactory),
	}
}

// NewDefaultRegistry creates a registry holding the built-in analyzers
func NewDefaultRegistry() Registry {
	r := NewRegistry()
	for kind, factory := range map[domain.AnalyzerKind]AnalyzerFactory{
		domain.AnalyzerIdentifier: newIdentifierAnalyzer,
		domain.AnalyzerDates:      newDateAnalyzer,
		domain.AnalyzerColumns:    newColumnAnalyzer,
		domain.AnalyzerCategories: newCategoryAnalyzer,
	} {
		// kinds are distinct and factories non-nil
		_ = r.Register(kind, factory)
	}
	return r
}

func (r *registry) Register(kind domain.AnalyzerKind, factory AnalyzerFactory) error {
	if kind == "" {
		return fmt.Errorf("analyzer kind cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("analyzer %q is already registered", kind)
	}

	r.factories[kind] = factory
	return nil
}

func (r *registry) Create(kind domain.AnalyzerKind, cfg *config.Config) (analyzers.Analyzer, error) {
	r.mu.RLock()
	factory, exists := r.factories[kind]
	r.mu.RUnlock()

	if !exists {
		return nil, domain.NewConfigurationError("create analyzer", fmt.Errorf("%w: %q", domain.ErrUnknownAnalyzer, kind))
	}

	return factory(cfg)
}

func (r *registry) ListKinds() []domain.AnalyzerKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]domain.AnalyzerKind, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	slices.SortFunc(kinds, func(a, b domain.AnalyzerKind) int {
		if c := cmp.Compare(a.Rank(), b.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return kinds
}

func newIdentifierAnalyzer(cfg *config.Config) (analyzers.Analyzer, error) {
	a, err := analyzers.NewIdentifierAnalyzer(analyzers.IdentifierSettings{
		Column:        cfg.Identifier.Column,
		Pattern:       cfg.Identifier.Pattern,
		PrefixLength:  cfg.Identifier.PrefixLength,
		CheckSequence: cfg.Identifier.CheckSequence,
		YearColumn:    cfg.Identifier.YearColumn,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func newDateAnalyzer(cfg *config.Config) (analyzers.Analyzer, error) {
	return analyzers.NewDateAnalyzer(analyzers.DateSettings{
		BirthColumn:     cfg.Dates.BirthColumn,
		AdmissionColumn: cfg.Dates.AdmissionColumn,
		DischargeColumn: cfg.Dates.DischargeColumn,
		MinAge:          cfg.Dates.MinAge,
		MaxAge:          cfg.Dates.MaxAge,
		LongStayDays:    cfg.Dates.LongStayDays,
		Statistics:      cfg.Dates.Statistics,
	}), nil
}

func newColumnAnalyzer(cfg *config.Config) (analyzers.Analyzer, error) {
	required := make([]analyzers.RequiredColumn, 0, len(cfg.Columns.Required))
	for _, c := range cfg.Columns.Required {
		required = append(required, analyzers.RequiredColumn{Name: c.Name, MaxMissing: c.MaxMissing})
	}
	return analyzers.NewColumnAnalyzer(required), nil
}

func newCategoryAnalyzer(cfg *config.Config) (analyzers.Analyzer, error) {
	settings := make([]analyzers.CategorySettings, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		settings = append(settings, analyzers.CategorySettings{
			Column:       c.Column,
			Allowed:      c.Allowed,
			Pattern:      c.Pattern,
			Distribution: c.Distribution,
		})
	}
	a, err := analyzers.NewCategoryAnalyzer(settings)
	if err != nil {
		return nil, err
	}
	return a, nil
}
