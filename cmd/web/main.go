package main

import (
	"fmt"
	"net"
	"os"

	"github.com/de-tools/patient-qc/pkg/server"
	"github.com/de-tools/patient-qc/pkg/services/config"
	"github.com/de-tools/patient-qc/pkg/services/quality"
	"github.com/de-tools/patient-qc/pkg/store/table"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgPath      string
	profilesPath string
	profileName  string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the patient data quality API server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to the configuration file")
	rootCmd.Flags().StringVar(&profilesPath, "profiles", "", "Path to the column profiles ini file")
	rootCmd.Flags().StringVar(&profileName, "profile", "", "Column profile to apply")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	if profileName != "" {
		profiles, err := config.NewProfileRegistry(profilesPath)
		if err != nil {
			return fmt.Errorf("failed to create profile registry: %w", err)
		}
		profile, err := profiles.GetProfile(ctx, profileName)
		if err != nil {
			return err
		}
		cfg.ApplyProfile(profile)
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger.Info().Msgf("Column profile `%s` applied.", profileName)
	}

	engine, err := quality.NewEngine(cfg, quality.NewDefaultRegistry())
	if err != nil {
		return fmt.Errorf("failed to create analysis engine: %w", err)
	}
	for _, kind := range engine.Analyzers() {
		logger.Info().Msgf("Analyzer enabled: `%s`", kind)
	}

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	api := server.NewWebAPI(server.Config{
		Addr: net.JoinHostPort(host, port),
		Dependencies: server.Dependencies{
			Engine:       engine,
			TableOptions: table.Options{Schema: cfg.Schema(), Sheet: cfg.Input.Sheet},
			Logger:       logger,
		},
	})

	return api.Start()
}
