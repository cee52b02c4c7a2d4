package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"codeberg.org/mutker/powerhald/internal/control"
	"codeberg.org/mutker/powerhald/internal/errors"
	"codeberg.org/mutker/powerhald/internal/power"
	"github.com/spf13/cobra"
)

const requestTimeout = 10 * time.Second

var interactiveCmd = &cobra.Command{
	Use:       "interactive on|off",
	Short:     "Signal a screen on or off transition",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := parseSwitch(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()

		return newClient().SetInteractive(ctx, on)
	},
}

var hintCmd = &cobra.Command{
	Use:   "hint <name|code> [data]",
	Short: "Send a power hint",
	Long: `Send a power hint by name (interaction, set_profile, vsync, ...) or by
numeric code. The optional data argument is passed as the hint payload.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hint, err := power.ParseHint(args[0])
		if err != nil {
			return err
		}

		var data *int32
		if len(args) == 2 {
			value, err := strconv.ParseInt(args[1], 0, 32)
			if err != nil {
				return errors.New().Wrap(errors.ErrInvalidArgument, err)
			}
			v := int32(value)
			data = &v
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()

		return newClient().PowerHint(ctx, uint32(hint), data)
	},
}

var profileCmd = &cobra.Command{
	Use:       "profile powersave|balanced|performance",
	Short:     "Switch the power profile",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"powersave", "balanced", "performance"},
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := power.ParseProfile(args[0])
		if err != nil {
			return err
		}
		data := int32(profile)

		ctx, cancel := requestContext(cmd)
		defer cancel()

		return newClient().PowerHint(ctx, uint32(power.HintSetProfile), &data)
	},
}

var featureCmd = &cobra.Command{
	Use:   "feature",
	Short: "Query or toggle HAL features",
}

var featureGetCmd = &cobra.Command{
	Use:   "get <feature>",
	Short: "Print a feature value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		feature, err := power.ParseFeature(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()

		value, err := newClient().GetFeature(ctx, uint32(feature))
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), value)

		return nil
	},
}

var featureSetCmd = &cobra.Command{
	Use:   "set <feature> on|off",
	Short: "Enable or disable a feature",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		feature, err := power.ParseFeature(args[0])
		if err != nil {
			return err
		}
		on, err := parseSwitch(args[1])
		if err != nil {
			return err
		}
		var state int32
		if on {
			state = 1
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()

		return newClient().SetFeature(ctx, uint32(feature), state)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the daemon's current state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := requestContext(cmd)
		defer cancel()

		st, err := newClient().Status(ctx)
		if err != nil {
			return err
		}

		return printStatus(cmd.OutOrStdout(), st)
	},
}

func init() {
	featureCmd.AddCommand(featureGetCmd, featureSetCmd)
	rootCmd.AddCommand(interactiveCmd, hintCmd, profileCmd, featureCmd, statusCmd)
}

func newClient() *control.Client {
	return control.NewClient(cfg.Socket)
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), requestTimeout)
}

func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "1", "true", "enable":
		return true, nil
	case "off", "0", "false", "disable":
		return false, nil
	}

	return false, errors.New().WithData(errors.ErrInvalidArgument, value)
}

func printStatus(out io.Writer, st control.StatusReply) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	rows := [][2]string{
		{"profile", st.Profile},
		{"interactive", strconv.FormatBool(st.Interactive)},
		{"touchkey blocked", strconv.FormatBool(st.TouchKeyBlocked)},
		{"boostpulse open", strconv.FormatBool(st.BoostPulseOpen)},
		{"governor", st.Governor},
		{"governor family", orNone(st.GovernorFamily)},
		{"hispeed_freq node", orNone(st.HispeedFreqPath)},
		{"io_is_busy node", orNone(st.IOIsBusyPath)},
		{"boostpulse node", orNone(st.BoostPulsePath)},
		{"min freq", orNone(strings.TrimSpace(st.MinFreq))},
		{"hispeed freq", orNone(strings.TrimSpace(st.HispeedFreq))},
		{"max freq", orNone(strings.TrimSpace(st.MaxFreq))},
		{"touchscreen", orNone(st.Touchscreen)},
		{"touchkey", orNone(st.TouchKey)},
		{"double tap to wake", orNone(st.TapToWakeNode)},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}

	return w.Flush()
}

func orNone(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
