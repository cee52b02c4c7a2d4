package main

import (
	"fmt"
	"os"

	"codeberg.org/mutker/powerhald/internal/config"
	"codeberg.org/mutker/powerhald/internal/logger"
	"codeberg.org/mutker/powerhald/internal/metrics"
	"codeberg.org/mutker/powerhald/internal/power"
	"codeberg.org/mutker/powerhald/internal/touch"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	rootCmd = &cobra.Command{
		Use:   "powerhald",
		Short: "Power HAL daemon for SC35-class mobile SoCs",
		Long: `powerhald applies screen on/off transitions, interaction boosts and
power profiles to the cpufreq governor and input-device nodes.

Run 'powerhald serve' as the daemon. The other subcommands talk to a
running daemon over its control socket.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}

			var err error
			cfg, err = config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
			logger.SetLogLevel(cfg.Level())
			logger.Debug().Str("file", cfg.File()).Msg("Config loaded")

			return nil
		},
	}
)

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func moduleOptions(c *config.Config, recorder metrics.EventRecorder) power.Options {
	return power.Options{
		Touch: touch.Options{
			InputRoot:       c.InputRoot,
			ScanCount:       c.InputScanCount,
			TouchKeyName:    c.TouchKeyName,
			TouchscreenName: c.TouchscreenName,
		},
		TapToWakeNode: c.TapToWakeNode,
		Recorder:      recorder,
		Logger:        logger.Default(),
	}
}

func journalConfig(c *config.Config) metrics.Config {
	return metrics.Config{
		DBPath:       c.Metrics.DBPath,
		BatchSize:    c.Metrics.BatchSize,
		BatchTimeout: c.Metrics.BatchTimeout,
		Enabled:      c.Metrics.Enabled,
	}
}
