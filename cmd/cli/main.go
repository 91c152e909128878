package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/de-tools/patient-qc/pkg/runtime/terminal"
	"github.com/de-tools/patient-qc/pkg/services/quality"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

func main() {
	var logger zerolog.Logger
	if isatty.IsTerminal(os.Stderr.Fd()) {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logger.WithContext(ctx)

	cli := terminal.NewCLI(terminal.Options{
		Registry: quality.NewDefaultRegistry(),
		Output:   os.Stdout,
	})

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
