package commands

import (
	"fmt"

	"github.com/de-tools/patient-qc/pkg/services/config"
	"github.com/de-tools/patient-qc/pkg/services/quality"
	"github.com/spf13/cobra"
)

type AnalyzersCmd struct {
	configPath string
	registry   quality.Registry
}

func NewAnalyzersCmd(registry quality.Registry) *cobra.Command {
	lc := &AnalyzersCmd{registry: registry}
	cmd := &cobra.Command{
		Use:   "analyzers",
		Short: "List the available analyzers and whether they are enabled",
		RunE:  lc.run,
	}

	cmd.Flags().StringVar(&lc.configPath, "config", "", "Path to the configuration file")

	return cmd
}

func (lc *AnalyzersCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(lc.configPath)
	if err != nil {
		return err
	}
	enabled, err := cfg.AnalyzerKinds()
	if err != nil {
		return err
	}
	on := make(map[string]bool, len(enabled))
	for _, kind := range enabled {
		on[string(kind)] = true
	}

	for _, kind := range lc.registry.ListKinds() {
		state := "disabled"
		if on[string(kind)] {
			state = "enabled"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-20s %s\n", kind, kind.Title(), state)
	}
	return nil
}
