package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/de-tools/patient-qc/pkg/models/domain"
	"github.com/de-tools/patient-qc/pkg/services/dates"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "QC"

type Config struct {
	LogLevel   string           `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	ReportsDir string           `mapstructure:"reports_dir" validate:"required"`
	Analyzers  []string         `mapstructure:"analyzers" validate:"min=1,dive,oneof=identifier dates columns categories"`
	Input      InputConfig      `mapstructure:"input"`
	Filter     FilterConfig     `mapstructure:"filter"`
	Identifier IdentifierConfig `mapstructure:"identifier"`
	Dates      DatesConfig      `mapstructure:"dates"`
	Columns    ColumnsConfig    `mapstructure:"columns"`
	Categories []CategoryConfig `mapstructure:"categories" validate:"dive"`
}

type InputConfig struct {
	// Sheet selects the XLSX sheet; empty means the first sheet.
	Sheet string `mapstructure:"sheet"`
}

type FilterConfig struct {
	DateColumn   string `mapstructure:"date_column" validate:"required"`
	CenturyPivot int    `mapstructure:"century_pivot" validate:"min=0,max=99"`
	MaxSpan      int    `mapstructure:"max_span" validate:"min=1"`
}

type IdentifierConfig struct {
	Column        string `mapstructure:"column" validate:"required"`
	Pattern       string `mapstructure:"pattern"`
	PrefixLength  int    `mapstructure:"prefix_length" validate:"min=0"`
	CheckSequence bool   `mapstructure:"check_sequence"`
	YearColumn    string `mapstructure:"year_column"`
}

type DatesConfig struct {
	Layouts         []string `mapstructure:"layouts" validate:"min=1"`
	BirthColumn     string   `mapstructure:"birth_column"`
	AdmissionColumn string   `mapstructure:"admission_column"`
	DischargeColumn string   `mapstructure:"discharge_column"`
	MinAge          int      `mapstructure:"min_age"`
	// MaxAge of 0 disables the upper bound.
	MaxAge          int      `mapstructure:"max_age" validate:"omitempty,gtefield=MinAge"`
	LongStayDays    int      `mapstructure:"long_stay_days" validate:"min=0"`
	Statistics      bool     `mapstructure:"statistics"`
}

type ColumnsConfig struct {
	Required []RequiredColumn `mapstructure:"required" validate:"dive"`
}

type RequiredColumn struct {
	Name string `mapstructure:"name" validate:"required"`
	// MaxMissing is the tolerated fraction of empty cells, 0 flags every one.
	MaxMissing float64 `mapstructure:"max_missing" validate:"min=0,max=1"`
}

type CategoryConfig struct {
	Column       string   `mapstructure:"column" validate:"required"`
	Allowed      []string `mapstructure:"allowed"`
	Pattern      string   `mapstructure:"pattern"`
	Distribution bool     `mapstructure:"distribution"`
}

// Load reads the configuration file at path (optional, yaml/json/toml by
// extension), overlays QC_* environment variables and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration for the patients spreadsheet.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults only hold plain values, decoding cannot fail
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("reports_dir", "reports")
	v.SetDefault("analyzers", []string{"identifier", "dates", "columns", "categories"})

	v.SetDefault("input.sheet", "")

	v.SetDefault("filter.date_column", "data_ent")
	v.SetDefault("filter.century_pivot", dates.DefaultCenturyPivot)
	v.SetDefault("filter.max_span", 50)

	v.SetDefault("identifier.column", "ID")
	v.SetDefault("identifier.pattern", `^\d{3,5}$`)
	v.SetDefault("identifier.prefix_length", 2)
	v.SetDefault("identifier.check_sequence", true)
	v.SetDefault("identifier.year_column", "data_ent")

	v.SetDefault("dates.layouts", dates.DefaultLayouts)
	v.SetDefault("dates.birth_column", "data_nasc")
	v.SetDefault("dates.admission_column", "data_ent")
	v.SetDefault("dates.discharge_column", "data_alta")
	v.SetDefault("dates.min_age", 0)
	v.SetDefault("dates.max_age", 130)
	v.SetDefault("dates.long_stay_days", 60)
	v.SetDefault("dates.statistics", true)

	v.SetDefault("columns.required", []map[string]any{
		{"name": "ID", "max_missing": 0.0},
		{"name": "processo", "max_missing": 0.0},
		{"name": "nome", "max_missing": 0.0},
		{"name": "data_ent", "max_missing": 0.0},
		{"name": "data_nasc", "max_missing": 0.05},
		{"name": "sexo", "max_missing": 0.05},
	})
	v.SetDefault("categories", []map[string]any{
		{"column": "sexo", "allowed": []string{"M", "F"}, "distribution": true},
		{"column": "processo", "pattern": `^[\d\s\-]+$`},
		{"column": "destino", "distribution": true},
		{"column": "origem", "distribution": true},
	})
}

// Validate checks struct constraints and returns a ConfigurationError that
// lists every failing field.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewConfigurationError("validate config", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return domain.NewConfigurationError("validate config", errors.New(strings.Join(msgs, "; ")))
}

// AnalyzerKinds returns the enabled analyzers in report order.
func (c *Config) AnalyzerKinds() ([]domain.AnalyzerKind, error) {
	enabled := make(map[domain.AnalyzerKind]bool, len(c.Analyzers))
	for _, name := range c.Analyzers {
		kind, err := domain.ParseAnalyzerKind(name)
		if err != nil {
			return nil, domain.NewConfigurationError("enable analyzers", fmt.Errorf("%w: %v", domain.ErrUnknownAnalyzer, err))
		}
		enabled[kind] = true
	}
	kinds := make([]domain.AnalyzerKind, 0, len(enabled))
	for _, kind := range domain.AnalyzerKinds {
		if enabled[kind] {
			kinds = append(kinds, kind)
		}
	}
	if len(kinds) == 0 {
		return nil, domain.NewConfigurationError("enable analyzers", domain.ErrNoAnalyzers)
	}
	return kinds, nil
}

// Schema declares the column types implied by the configured roles.
func (c *Config) Schema() domain.Schema {
	s := domain.Schema{}
	for _, cat := range c.Categories {
		s[cat.Column] = domain.ColumnCategory
	}
	for _, col := range []string{c.Dates.BirthColumn, c.Dates.AdmissionColumn, c.Dates.DischargeColumn, c.Filter.DateColumn} {
		if col != "" {
			s[col] = domain.ColumnDate
		}
	}
	if c.Identifier.Column != "" {
		s[c.Identifier.Column] = domain.ColumnIdentifier
	}
	return s
}

// ApplyProfile overrides the column mapping with a named profile. Without an
// explicit required list, required entries that named a remapped column follow
// the new name.
func (c *Config) ApplyProfile(p domain.ColumnProfile) {
	renamed := make(map[string]string)
	remap := func(field *string, to string) {
		if to == "" || *field == to {
			return
		}
		if _, done := renamed[*field]; *field != "" && !done {
			renamed[*field] = to
		}
		*field = to
	}

	oldAdmission := c.Dates.AdmissionColumn
	remap(&c.Identifier.Column, p.IdentifierColumn)
	remap(&c.Dates.BirthColumn, p.BirthColumn)
	remap(&c.Dates.AdmissionColumn, p.AdmissionColumn)
	remap(&c.Dates.DischargeColumn, p.DischargeColumn)
	if p.AdmissionColumn != "" {
		if c.Identifier.YearColumn == oldAdmission {
			c.Identifier.YearColumn = p.AdmissionColumn
		}
		if c.Filter.DateColumn == oldAdmission && p.FilterColumn == "" {
			c.Filter.DateColumn = p.AdmissionColumn
		}
	}
	remap(&c.Filter.DateColumn, p.FilterColumn)

	if len(p.Required) > 0 {
		required := make([]RequiredColumn, 0, len(p.Required))
		for _, name := range p.Required {
			required = append(required, RequiredColumn{Name: name})
		}
		c.Columns.Required = required
		return
	}
	for i := range c.Columns.Required {
		if to, ok := renamed[c.Columns.Required[i].Name]; ok {
			c.Columns.Required[i].Name = to
		}
	}
}
