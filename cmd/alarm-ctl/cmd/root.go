package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/client"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// options are shared by every subcommand.
	options client.Options
	// addOptions holds the flags of the add subcommand.
	addOptions client.AddOptions

	// rootCmd represents the base command for managing alarms.
	rootCmd = &cobra.Command{
		Use:   "alarm-ctl",
		Short: "Manage alarms of a running alarm clock daemon.",
		Long: `Lists, adds, toggles and removes alarms, shows the next alarm and inspects
the public-holiday calendar of a running alarm-clockd.`,
		SilenceUsage: true,
	}

	listCmd = &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List alarms.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, client.List())
		},
	}

	addCmd = &cobra.Command{
		Use:   "add [HH:MM]",
		Short: "Add an alarm.",
		Long: `Adds an enabled alarm. Without a time the next five-minute boundary is used.
Without --days the alarm rings every day; with --workday it follows the holiday calendar.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := addOptions
			if len(args) > 0 {
				opts.Time = args[0]
			}

			return run(cmd, client.Add(opts))
		},
	}

	toggleCmd = &cobra.Command{
		Use:   "toggle <id>",
		Short: "Turn an alarm on or off.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, client.Toggle(args[0]))
		},
	}

	removeCmd = &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove an alarm.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, client.Remove(args[0]))
		},
	}

	nextCmd = &cobra.Command{
		Use:   "next",
		Short: "Show the next alarm.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, client.Next())
		},
	}

	calendarCmd = &cobra.Command{
		Use:   "calendar",
		Short: "Inspect the public-holiday calendar.",
	}

	calendarStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the calendar sync state.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, client.CalendarStatus())
		},
	}

	calendarRefreshCmd = &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the calendar now.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, client.RefreshCalendar())
		},
	}

	calendarDayCmd = &cobra.Command{
		Use:   "day <YYYY-MM-DD>",
		Short: "Tell whether a date is a workday.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, client.CheckDay(args[0]))
		},
	}
)

// run executes an action with signal-aware cancellation.
func run(cmd *cobra.Command, action client.Action) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	opts := options
	opts.Out = cmd.OutOrStdout()

	return client.Run(ctx, &opts, action)
}

// Execute runs the alarm-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&options.ServerAddress, "server", "a", "", "daemon address, overrides server_addr")
	flags.BoolVarP(&options.Verbose, "verbose", "v", false, "log debug messages")

	addCmd.Flags().StringVarP(&addOptions.Label, "label", "l", "", "alarm label")
	addCmd.Flags().StringSliceVarP(&addOptions.Days, "days", "d", nil, "weekdays to ring on, e.g. mon,tue,fri")
	addCmd.Flags().BoolVarP(&addOptions.Workday, "workday", "w", false, "ring on workdays per the holiday calendar")

	calendarCmd.AddCommand(calendarStatusCmd, calendarRefreshCmd, calendarDayCmd)
	rootCmd.AddCommand(listCmd, addCmd, toggleCmd, removeCmd, nextCmd, calendarCmd)
}
