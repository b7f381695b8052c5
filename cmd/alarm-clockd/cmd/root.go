package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/server"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// storePath overrides the store location from the settings.
	storePath string
	// singleInstance refuses to start next to another daemon.
	singleInstance bool

	// rootCmd represents the base command for running the daemon.
	rootCmd = &cobra.Command{
		Use:   "alarm-clockd [listen-address]",
		Short: "Run the alarm clock daemon.",
		Long: `Starts the alarm clock daemon: it keeps the alarm list, rings alarms at their
minute and serves the AlarmClock gRPC API for alarm-ctl and alarm-watch.

Workday alarms follow the public-holiday calendar, which is fetched on start
and then on the calendar.refresh schedule. Until the first successful fetch
Monday to Friday count as workdays.

A loopback server_addr is used as is; for any other address only the port is
used and the daemon listens on all interfaces. Listen address can be provided
as argument to override config (e.g., :9090, 127.0.0.1:8080).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:     configPath,
				ListenAddress:  listenAddress,
				StorePath:      storePath,
				SingleInstance: singleInstance,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-clockd CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&storePath, "store", "s", "", "override store path (directory for file, database for sqlite)")
	rootCmd.Flags().BoolVar(&singleInstance, "single-instance", true, "refuse to start if another alarm-clockd is running")
}
