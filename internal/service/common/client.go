//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/domain/calendar"
	"github.com/oshokin/alarm-clock/internal/config"
)

// Client wraps the AlarmClock gRPC client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the daemon.
	conn *grpc.ClientConn
	// api is the AlarmClock client stub.
	api *api.AlarmClockClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errIDRequired is returned when an alarm id is blank.
	errIDRequired = errors.New("alarm id must be provided")
)

// Dial establishes a gRPC connection to the alarm-clock daemon.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial alarm clock: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewAlarmClockClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// ListAlarms returns every alarm.
func (c *Client) ListAlarms(ctx context.Context) ([]domain.Alarm, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ListAlarms(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}

	return api.AlarmsFromProto(resp), nil
}

// CreateAlarm adds an alarm.
func (c *Client) CreateAlarm(ctx context.Context, draft *domain.Draft) (domain.Alarm, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.CreateAlarm(callCtx, api.DraftToProto(draft))
	if err != nil {
		return domain.Alarm{}, fmt.Errorf("create alarm: %w", err)
	}

	return api.AlarmFromProto(resp)
}

// ToggleAlarm flips an alarm on or off.
func (c *Client) ToggleAlarm(ctx context.Context, id string) (domain.Alarm, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Alarm{}, errIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ToggleAlarm(callCtx, wrapperspb.String(id))
	if err != nil {
		return domain.Alarm{}, fmt.Errorf("toggle alarm: %w", err)
	}

	return api.AlarmFromProto(resp)
}

// RemoveAlarm deletes an alarm.
func (c *Client) RemoveAlarm(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.RemoveAlarm(callCtx, wrapperspb.String(id)); err != nil {
		return fmt.Errorf("remove alarm: %w", err)
	}

	return nil
}

// NextAlarm returns the nearest upcoming alarm after from; a zero from means the daemon's now.
func (c *Client) NextAlarm(ctx context.Context, from time.Time) (api.Next, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	var req *timestamppb.Timestamp
	if !from.IsZero() {
		req = timestamppb.New(from)
	}

	resp, err := c.api.NextAlarm(callCtx, req)
	if err != nil {
		return api.Next{}, fmt.Errorf("next alarm: %w", err)
	}

	return api.NextFromProto(resp)
}

// CalendarStatus reports the daemon's holiday calendar state.
func (c *Client) CalendarStatus(ctx context.Context) (calendar.Status, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetCalendarStatus(callCtx, new(emptypb.Empty))
	if err != nil {
		return calendar.Status{}, fmt.Errorf("get calendar status: %w", err)
	}

	return api.StatusFromProto(resp), nil
}

// RefreshCalendar asks the daemon to re-fetch the holiday calendar.
func (c *Client) RefreshCalendar(ctx context.Context) (calendar.Status, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.RefreshCalendar(callCtx, new(emptypb.Empty))
	if err != nil {
		return calendar.Status{}, fmt.Errorf("refresh calendar: %w", err)
	}

	return api.StatusFromProto(resp), nil
}

// CheckDay classifies a YYYY-MM-DD date.
func (c *Client) CheckDay(ctx context.Context, date string) (api.DayInfo, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.CheckDay(callCtx, wrapperspb.String(date))
	if err != nil {
		return api.DayInfo{}, fmt.Errorf("check day: %w", err)
	}

	return api.DayFromProto(resp), nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
