package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap/zapcore"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/domain/calendar"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/common"
)

// Options configures how alarm-ctl reaches the daemon.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Verbose enables debug logging; otherwise only warnings are logged.
	Verbose bool
	// Out receives command output; nil means stdout.
	Out io.Writer
}

// API is the part of the daemon client the commands use.
type API interface {
	ListAlarms(ctx context.Context) ([]domain.Alarm, error)
	CreateAlarm(ctx context.Context, draft *domain.Draft) (domain.Alarm, error)
	ToggleAlarm(ctx context.Context, id string) (domain.Alarm, error)
	RemoveAlarm(ctx context.Context, id string) error
	NextAlarm(ctx context.Context, from time.Time) (api.Next, error)
	CalendarStatus(ctx context.Context) (calendar.Status, error)
	RefreshCalendar(ctx context.Context) (calendar.Status, error)
	CheckDay(ctx context.Context, date string) (api.DayInfo, error)
}

// Action is one alarm-ctl command.
type Action func(ctx context.Context, client API, out io.Writer) error

// Run loads the settings, connects to the daemon and performs the action.
func Run(ctx context.Context, opts *Options, action Action) error {
	// The CLI prints results itself; logs stay quiet unless asked for.
	level := zapcore.WarnLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	ctx = logger.ToContext(ctx, logger.Logger().WithOptions(logger.WithLevel(level)).Named("alarm-ctl"))

	// Load settings from configuration file, defaults when absent.
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// Use server address from options if provided, otherwise use config.
	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Connected to alarm clock", "server_address", serverAddress)

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return action(ctx, client, out)
}
