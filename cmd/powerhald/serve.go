package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/powerhald/internal/config"
	"codeberg.org/mutker/powerhald/internal/control"
	"codeberg.org/mutker/powerhald/internal/errors"
	"codeberg.org/mutker/powerhald/internal/logger"
	"codeberg.org/mutker/powerhald/internal/metrics"
	"codeberg.org/mutker/powerhald/internal/pid"
	"codeberg.org/mutker/powerhald/internal/power"
	"codeberg.org/mutker/powerhald/internal/sysfs"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the power HAL daemon",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	errFactory := errors.New()

	if err := pid.Write(cfg.PIDFile); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(cfg.PIDFile); err != nil {
			logger.Error().Err(err).Msg("Failed to remove PID file")
		}
	}()

	recorder, err := metrics.NewService(journalConfig(cfg), logger.Default())
	if err != nil {
		return errFactory.Wrap(errors.ErrInitMetrics, err)
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close transition journal")
		}
	}()

	nodes := sysfs.NewOS(cfg.SysfsRoot, logger.Default())
	module := power.New(nodes, moduleOptions(cfg, recorder))
	module.Init()
	defer func() {
		if err := module.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to release boost pulse node")
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go handleSignals(ctx, cancel)

	if cfg.File() != "" {
		if err := cfg.Watch(ctx, applyReload); err != nil {
			logger.Warn().Err(err).Msg("Config changes will not be picked up")
		}
	}

	server := control.NewServer(cfg.Socket, logger.Default())
	control.Register(server, module)

	if err := server.Serve(ctx); err != nil {
		return errFactory.Wrap(errors.ErrServe, err)
	}

	logger.Info().Msg("Exiting...")

	return nil
}

// applyReload re-applies the log level. Node paths are fixed after
// Init and are not reloaded.
func applyReload(next *config.Config) {
	logger.SetLogLevel(next.Level())
	logger.Info().Str("log_level", string(next.LogLevel)).Bool("debug", next.Debug).Msg("Config reloaded")
}

func handleSignals(ctx context.Context, cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-sigs:
		logger.Info().Msg("Received termination signal.")
		cancel()
	case <-ctx.Done():
	}
}
