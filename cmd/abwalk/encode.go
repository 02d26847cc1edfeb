package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/five82/abwalk/internal/abav1"
	"github.com/five82/abwalk/internal/config"
	coreerrors "github.com/five82/abwalk/internal/errors"
	"github.com/five82/abwalk/internal/logging"
	"github.com/five82/abwalk/internal/processing"
	"github.com/five82/abwalk/internal/reporter"
	"github.com/five82/abwalk/internal/runlock"
)

func newEncodeCommand() *cobra.Command {
	var f jobFlags
	var eventsPath string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode every eligible video under a folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, &f)
			if err != nil {
				return err
			}
			return runEncode(cmd.Context(), cfg, f.json, eventsPath)
		},
	}
	bindJobFlags(cmd, &f)
	cmd.Flags().StringVar(&eventsPath, "events", "", "Also write NDJSON progress events to this file")
	return cmd
}

// reporterOptions selects the progress sinks for one run.
type reporterOptions struct {
	RunID       string
	JSON        bool
	ClearScreen bool
	Stdout      io.Writer
	Events      io.Writer
}

// newReporter returns the terminal or JSON reporter on stdout, fanned out
// to an NDJSON event stream when Events is set.
func newReporter(opts reporterOptions) reporter.Reporter {
	var primary reporter.Reporter
	if opts.JSON {
		primary = reporter.NewJSONReporterWithWriter(opts.Stdout, opts.RunID)
	} else {
		primary = reporter.NewTerminalReporterWithOptions(reporter.TerminalOptions{
			Out:         opts.Stdout,
			ClearScreen: opts.ClearScreen,
		})
	}
	if opts.Events == nil {
		return primary
	}
	return reporter.NewCompositeReporter(primary, reporter.NewJSONReporterWithWriter(opts.Events, opts.RunID))
}

func runEncode(parent context.Context, cfg *config.Config, jsonOutput bool, eventsPath string) error {
	if parent == nil {
		parent = context.Background()
	}
	runID := uuid.NewString()

	logger, err := logging.Setup(cfg.LogDir, cfg.Verbose, cfg.NoLog)
	if err != nil {
		return coreerrors.NewConfigError("failed to setup logging", err)
	}
	defer func() { _ = logger.Close() }()
	log := logger.With(zap.String("run_id", runID))

	tool, err := abav1.LocatorFor(cfg.ToolPath).Locate(cfg.ToolName)
	if err != nil {
		log.Error("%v", err)
		return err
	}
	cfg.ToolPath = tool

	root, err := cfg.ValidateRootDir()
	if err != nil {
		return coreerrors.NewConfigError("invalid --folder", err)
	}
	lock, err := runlock.Acquire(root)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	log.Info("Root: %s", root)
	log.Info("Tool: %s", tool)
	log.Info("Config: %s", describeConfig(cfg))

	repOpts := reporterOptions{
		RunID:       runID,
		JSON:        jsonOutput,
		ClearScreen: cfg.ClearScreen,
		Stdout:      os.Stdout,
	}
	if eventsPath != "" {
		events, err := os.Create(eventsPath)
		if err != nil {
			return coreerrors.NewIOError("failed to create events file", err)
		}
		defer func() { _ = events.Close() }()
		repOpts.Events = events
		log.Info("Events: %s", eventsPath)
	}
	rep := newReporter(repOpts)

	inv := abav1.NewInvoker(tool, cfg, log)
	if jsonOutput {
		// Keep stdout for events only
		inv.Stdout = os.Stderr
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = processing.ProcessDirectory(ctx, cfg, inv, rep, processing.Options{RunID: runID, Log: log})
	if err != nil {
		log.Error("Run ended with error: %v", err)
	}
	return err
}
