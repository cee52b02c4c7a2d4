package main

import (
	"codeberg.org/mutker/powerhald/internal/control"
	"codeberg.org/mutker/powerhald/internal/logger"
	"codeberg.org/mutker/powerhald/internal/metrics"
	"codeberg.org/mutker/powerhald/internal/power"
	"codeberg.org/mutker/powerhald/internal/sysfs"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Resolve governor, frequency and touch nodes without writing",
	Long: `Run the daemon's initialization against the configured sysfs root and
print what was found. Nothing is written to any node.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		nodes := sysfs.NewOS(cfg.SysfsRoot, logger.Default())
		module := power.New(nodes, moduleOptions(cfg, metrics.Noop()))
		module.Init()
		defer module.Close()

		return printStatus(cmd.OutOrStdout(), control.NewStatusReply(module.Status()))
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
