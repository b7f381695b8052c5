package watch

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/common"
)

// Options controls the watch polling behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional gRPC server address override.
	ServerAddress string
	// PollInterval defines the interval between checks.
	PollInterval time.Duration
	// Once reports a single time and exits.
	Once bool
}

// DefaultPollInterval defines the polling interval when none is given.
const DefaultPollInterval = 30 * time.Second

// NextSource is the part of the daemon client the watcher needs.
type NextSource interface {
	NextAlarm(ctx context.Context, from time.Time) (api.Next, error)
}

// Run polls the daemon and logs the nearest alarm whenever it changes.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-watch")

	// Load settings from configuration file.
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if err = logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}

	ctx = logger.WithName(logger.ToContext(ctx, logger.Logger()), "alarm-watch")

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	// Determine server address: command line argument overrides config.
	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	// Establish gRPC connection with timeout from configuration.
	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	// Ensure connection cleanup on function exit.
	defer func() {
		_ = client.Close()
	}()

	if opts.Once {
		_, err = check(ctx, client, "")

		return err
	}

	logger.InfoKV(ctx, "Watching next alarm", "server_address", serverAddress, "interval", opts.PollInterval.String())

	return Poll(ctx, client, opts.PollInterval)
}

// Poll checks the next alarm every interval until ctx is canceled.
// Failures are logged and polling continues.
func Poll(ctx context.Context, source NextSource, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last string

	for {
		current, err := check(ctx, source, last)
		if err != nil {
			logger.ErrorKV(ctx, "Check next alarm failed", "error", err)
		} else {
			last = current
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")

			return nil
		case <-ticker.C:
		}
	}
}

// check fetches the next alarm and logs it when the summary differs from last.
// It returns the new summary.
func check(ctx context.Context, source NextSource, last string) (string, error) {
	next, err := source.NextAlarm(ctx, time.Time{})
	if err != nil {
		if status.Code(err) != codes.NotFound {
			return "", err
		}

		if last != noAlarms {
			logger.Info(ctx, noAlarms)
		}

		return noAlarms, nil
	}

	summary := fmt.Sprintf("%s %s %s", next.Alarm.ID, next.At.Format(time.RFC3339), next.Relative)
	if summary != last {
		logger.InfoKV(ctx, "Next alarm",
			"alarm_id", next.Alarm.ID,
			"title", next.Alarm.Title(),
			"at", next.At.Local().Format(time.DateTime),
			"relative", next.Relative)
	}

	return summary, nil
}

// noAlarms is logged when nothing is scheduled.
const noAlarms = "No enabled alarms"
