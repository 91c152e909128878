package commands

import (
	"fmt"
	"strings"

	"github.com/de-tools/patient-qc/pkg/services/config"
	"github.com/spf13/cobra"
)

type ProfilesCmd struct {
	profilesPath string
}

func NewProfilesCmd() *cobra.Command {
	pc := &ProfilesCmd{}
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the column profiles of a profiles file",
		RunE:  pc.run,
	}

	cmd.Flags().StringVar(&pc.profilesPath, "profiles", "", "Path to the column profiles ini file")

	_ = cmd.MarkFlagRequired("profiles")

	return cmd
}

func (pc *ProfilesCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	registry, err := config.NewProfileRegistry(pc.profilesPath)
	if err != nil {
		return fmt.Errorf("failed to load profiles from %s: %w", pc.profilesPath, err)
	}

	names, err := registry.GetProfiles(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No profiles found in: %s\n", pc.profilesPath)
		return nil
	}

	var lines []string
	for _, name := range names {
		p, err := registry.GetProfile(ctx, name)
		if err != nil {
			return err
		}
		lines = append(lines, fmt.Sprintf("%s\tidentifier=%s admission=%s", name, orDefault(p.IdentifierColumn), orDefault(p.AdmissionColumn)))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Profiles in %s:\n%s\n", pc.profilesPath, strings.Join(lines, "\n"))

	return nil
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}
