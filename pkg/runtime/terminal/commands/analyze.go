package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/de-tools/patient-qc/pkg/models/domain"
	"github.com/de-tools/patient-qc/pkg/runtime/terminal/export"
	"github.com/de-tools/patient-qc/pkg/services/config"
	"github.com/de-tools/patient-qc/pkg/services/filter"
	"github.com/de-tools/patient-qc/pkg/services/quality"
	"github.com/de-tools/patient-qc/pkg/store/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Reporter renders a finished report
type Reporter interface {
	Handle(report *domain.AnalysisReport) error
}

// ConsoleFactory builds the console reporter once the color setting is known
type ConsoleFactory func(w io.Writer, useColor bool) Reporter

type AnalyzeCmd struct {
	file         string
	year         string
	configPath   string
	profilesPath string
	profile      string
	reportsDir   string
	noColor      bool
	registry     quality.Registry
	console      ConsoleFactory
}

func NewAnalyzeCmd(registry quality.Registry, console ConsoleFactory) *cobra.Command {
	ac := &AnalyzeCmd{registry: registry, console: console}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the data quality of a patient table",
		RunE:  ac.run,
	}

	// Define flags
	cmd.Flags().StringVar(&ac.file, "file", "", "Path to the patient table (.csv or .xlsx)")
	cmd.Flags().StringVar(&ac.year, "year", "<none>", `Year filter: "<none>", "YY" or "YY-YY"`)
	cmd.Flags().StringVar(&ac.configPath, "config", "", "Path to the configuration file")
	cmd.Flags().StringVar(&ac.profilesPath, "profiles", "", "Path to the column profiles ini file")
	cmd.Flags().StringVar(&ac.profile, "profile", "", "Column profile to apply")
	cmd.Flags().StringVar(&ac.reportsDir, "reports-dir", "", "Directory for markdown reports (overrides the config)")
	cmd.Flags().BoolVar(&ac.noColor, "no-color", false, "Disable colored console output")

	// Mark required flags
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(ac.configPath)
	if err != nil {
		return err
	}
	if ac.profile != "" {
		if err := ac.applyProfile(cmd, cfg); err != nil {
			return err
		}
	}
	if ac.reportsDir != "" {
		cfg.ReportsDir = ac.reportsDir
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := zerolog.Ctx(cmd.Context()).Level(level)
	ctx := logger.WithContext(cmd.Context())

	spec, err := filter.Parse(ac.year)
	if err != nil {
		return err
	}

	engine, err := quality.NewEngine(cfg, ac.registry)
	if err != nil {
		return err
	}

	tbl, err := table.Load(ac.file, table.Options{Schema: cfg.Schema(), Sheet: cfg.Input.Sheet})
	if err != nil {
		return err
	}
	logger.Debug().Str("file", ac.file).Int("rows", len(tbl.Rows)).Msg("loaded table")

	report, err := engine.Run(ctx, tbl, spec)
	if err != nil {
		return err
	}

	// both outputs are attempted even if one fails
	var consoleErr, fileErr error
	if err := ac.console(cmd.OutOrStdout(), !ac.noColor).Handle(report); err != nil {
		consoleErr = fmt.Errorf("failed to render console report: %w", err)
	}
	path, err := export.WriteMarkdownFile(cfg.ReportsDir, report)
	if err != nil {
		fileErr = fmt.Errorf("failed to write markdown report: %w", err)
	} else {
		logger.Info().Str("path", path).Msg("markdown report written")
	}
	return errors.Join(consoleErr, fileErr)
}

func (ac *AnalyzeCmd) applyProfile(cmd *cobra.Command, cfg *config.Config) error {
	if ac.profilesPath == "" {
		return domain.NewConfigurationError("apply profile", fmt.Errorf("--profile %s requires --profiles", ac.profile))
	}
	profiles, err := config.NewProfileRegistry(ac.profilesPath)
	if err != nil {
		return err
	}
	p, err := profiles.GetProfile(cmd.Context(), ac.profile)
	if err != nil {
		return err
	}
	cfg.ApplyProfile(p)
	return cfg.Validate()
}
