package alarm

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/domain/calendar"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	ListAlarms(ctx context.Context) []domain.Alarm
	CreateAlarm(ctx context.Context, draft domain.Draft) (domain.Alarm, error)
	ToggleAlarm(ctx context.Context, id string) (domain.Alarm, bool)
	RemoveAlarm(ctx context.Context, id string) bool
	NextAlarm(ctx context.Context, from time.Time) (*domain.Upcoming, bool)
	CalendarStatus(ctx context.Context) calendar.Status
	RefreshCalendar(ctx context.Context) (calendar.Status, error)
	CheckDay(ctx context.Context, date time.Time) (workday, holiday bool)
}

// Server implements the AlarmClock gRPC API.
type Server struct {
	// service provides the business logic for alarm operations.
	service Service
	// now supplies the default instant of NextAlarm.
	now func() time.Time
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
		now:     time.Now,
	}
}

// ListAlarms returns every alarm in insertion order.
func (s *Server) ListAlarms(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	alarms := s.service.ListAlarms(ctx)

	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(alarms))}
	for i := range alarms {
		list.Values = append(list.Values, structpb.NewStructValue(AlarmToProto(&alarms[i])))
	}

	return list, nil
}

// CreateAlarm validates the draft and adds a new alarm.
func (s *Server) CreateAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	draft, err := draftFromProto(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid alarm: %v", err)
	}

	created, err := s.service.CreateAlarm(ctx, draft)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTime) {
			return nil, status.Errorf(codes.InvalidArgument, "invalid alarm: %v", err)
		}

		return nil, status.Error(codes.Internal, "unable to create alarm")
	}

	return AlarmToProto(&created), nil
}

// ToggleAlarm flips the enabled flag of an existing alarm.
func (s *Server) ToggleAlarm(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, err
	}

	toggled, ok := s.service.ToggleAlarm(ctx, id)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "alarm %q not found", id)
	}

	return AlarmToProto(&toggled), nil
}

// RemoveAlarm deletes an alarm.
func (s *Server) RemoveAlarm(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id, err := requireID(req)
	if err != nil {
		return nil, err
	}

	if !s.service.RemoveAlarm(ctx, id) {
		return nil, status.Errorf(codes.NotFound, "alarm %q not found", id)
	}

	return new(emptypb.Empty), nil
}

// NextAlarm returns the nearest upcoming alarm.
func (s *Server) NextAlarm(ctx context.Context, req *timestamppb.Timestamp) (*structpb.Struct, error) {
	from := s.now()

	if req != nil && (req.GetSeconds() != 0 || req.GetNanos() != 0) {
		if err := req.CheckValid(); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid instant: %v", err)
		}

		from = req.AsTime().In(from.Location())
	}

	upcoming, ok := s.service.NextAlarm(ctx, from)
	if !ok {
		return nil, status.Error(codes.NotFound, "no enabled alarms")
	}

	return nextToProto(upcoming, from), nil
}

// GetCalendarStatus reports the holiday calendar state.
func (s *Server) GetCalendarStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st := s.service.CalendarStatus(ctx)

	return StatusToProto(&st), nil
}

// RefreshCalendar re-fetches the calendar; a failed fetch maps to Unavailable.
func (s *Server) RefreshCalendar(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st, err := s.service.RefreshCalendar(ctx)
	if err != nil {
		logger.WarnKV(ctx, "Calendar refresh requested by client failed", "error", err)

		return nil, status.Errorf(codes.Unavailable, "calendar refresh failed: %v", err)
	}

	return StatusToProto(&st), nil
}

// CheckDay classifies a date.
func (s *Server) CheckDay(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	raw := strings.TrimSpace(req.GetValue())

	date, err := time.ParseInLocation(calendar.DateKeyLayout, raw, s.now().Location())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "date must be YYYY-MM-DD: %q", raw)
	}

	// Noon keeps the date stable across DST transitions.
	date = date.Add(12 * time.Hour) //nolint:mnd // Midday.

	workday, holiday := s.service.CheckDay(ctx, date)

	return dayToProto(DayInfo{
		Date:    calendar.DateKey(date),
		Workday: workday,
		Holiday: holiday,
	}), nil
}

func requireID(req *wrapperspb.StringValue) (string, error) {
	id := strings.TrimSpace(req.GetValue())
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "alarm id is required")
	}

	return id, nil
}
