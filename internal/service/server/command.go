package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/mitchellh/go-ps"
	"google.golang.org/grpc"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/repository/holidays"
	"github.com/oshokin/alarm-clock/internal/repository/record"
	calsvc "github.com/oshokin/alarm-clock/internal/service/calendar"
	"github.com/oshokin/alarm-clock/internal/service/dispatcher"
	"github.com/oshokin/alarm-clock/internal/service/notify"
	"github.com/oshokin/alarm-clock/internal/service/registry"
)

// Options controls the alarm-clockd process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StorePath overrides store.path from the settings.
	StorePath string
	// SingleInstance refuses to start when another alarm-clockd is running.
	SingleInstance bool
	// Clock replaces the wall clock; nil uses the system clock.
	Clock dispatcher.Clock
	// Ready, when set, receives the bound listen address once the server accepts connections.
	Ready func(addr string)
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the scheduler and the gRPC server and blocks until ctx is canceled.
//
//nolint:funlen // Start-up wiring reads best top to bottom.
func Run(ctx context.Context, opts *Options) error {
	// Missing settings file means defaults.
	settings, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err = logger.Setup(settings.LogLevel, settings.LogFormat); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}

	// Set context with the configured logger and a name for tracking.
	ctx = logger.WithName(logger.ToContext(ctx, logger.Logger()), "alarm-clockd")

	if opts.SingleInstance {
		var name string

		if name, err = currentExecutableName(); err != nil {
			return err
		}

		if err = ensureSingleInstance(ps.Processes, name); err != nil {
			return err
		}
	}

	if opts.StorePath != "" {
		settings.Store.Path = opts.StorePath
	}

	// Determine listen address: CLI argument overrides config port extraction.
	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	store, closeStore, err := openStore(ctx, &settings.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	defer closeStore()

	scheduler, resyncer, err := buildScheduler(settings, store, opts.Clock)
	if err != nil {
		return err
	}

	defer scheduler.Close()

	// The list is in memory before the first request can change it.
	scheduler.Load(ctx)

	// Setup TCP listener for gRPC server.
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	api.RegisterAlarmClockServer(grpcServer, api.NewServer(scheduler))

	logger.InfoKV(ctx, "Alarm clock listening",
		"listen_address", lis.Addr().String(),
		"store", settings.Store.Backend,
		"store_path", settings.Store.Path,
		"calendar_url", settings.Calendar.URL)

	if err = resyncer.Start(ctx); err != nil {
		_ = lis.Close()

		return err
	}

	defer resyncer.Stop()

	var wg sync.WaitGroup

	wg.Go(func() { scheduler.Start(ctx) })

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if opts.Ready != nil {
		opts.Ready(lis.Addr().String())
	}

	if err = grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	wg.Wait()
	logger.Info(ctx, "Alarm clock stopped")

	return nil
}

// buildScheduler wires the registry, calendar cache, dispatcher and resync schedule.
func buildScheduler(
	settings *config.Config,
	store record.Store,
	clock dispatcher.Clock,
) (*Scheduler, *calsvc.Resyncer, error) {
	if clock == nil {
		clock = dispatcher.SystemClock{}
	}

	reg := registry.New(store, settings.Store.Record)

	source := holidays.NewHTTPSource(settings.Calendar.URL, holidays.WithTimeout(settings.Calendar.Timeout))
	cache := calsvc.NewCache(source, calsvc.WithNow(clock.Now))

	resyncer, err := calsvc.NewResyncer(cache, settings.Calendar.Refresh)
	if err != nil {
		return nil, nil, err
	}

	allowed := settings.Notifications.NotificationsAllowed()

	disp := dispatcher.New(reg, cache, notify.New(settings.Notifications),
		dispatcher.WithClock(clock),
		dispatcher.WithGate(func() bool { return allowed }),
	)

	return NewScheduler(reg, cache, disp, clock), resyncer, nil
}

// openStore opens the configured record store and returns its closer.
//
//nolint:ireturn // The backend is chosen at run time.
func openStore(ctx context.Context, cfg *config.StoreConfig) (record.Store, func(), error) {
	switch cfg.Backend {
	case config.StoreBackendSQLite:
		path := cfg.Path
		if path == "" || path == "." {
			path = config.DefaultSQLiteFilename
		}

		if filepath.Ext(path) == "" {
			path = filepath.Join(path, config.DefaultSQLiteFilename)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create store directory: %w", err)
		}

		db, err := record.OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}

		return db, func() {
			if closeErr := db.Close(); closeErr != nil {
				logger.WarnKV(ctx, "Failed to close store", "error", closeErr)
			}
		}, nil
	default:
		return record.NewFileStore(cfg.Path), func() {}, nil
	}
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
// Returns appropriate listen address (e.g., ":8080" for port-only binding).
func resolveListenAddress(configAddr, override string) (string, error) {
	// Use override address if provided (e.g., ":9090", "0.0.0.0:8080").
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	host, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// A loopback address stays loopback; anything else binds on all interfaces.
	if ip := net.ParseIP(host); host == "localhost" || (ip != nil && ip.IsLoopback()) {
		return configAddr, nil
	}

	return ":" + port, nil
}
