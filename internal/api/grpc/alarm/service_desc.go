package alarm

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "alarmclock.v1.AlarmClock"

// Full method names.
const (
	MethodListAlarms        = "/" + ServiceName + "/ListAlarms"
	MethodCreateAlarm       = "/" + ServiceName + "/CreateAlarm"
	MethodToggleAlarm       = "/" + ServiceName + "/ToggleAlarm"
	MethodRemoveAlarm       = "/" + ServiceName + "/RemoveAlarm"
	MethodNextAlarm         = "/" + ServiceName + "/NextAlarm"
	MethodGetCalendarStatus = "/" + ServiceName + "/GetCalendarStatus"
	MethodRefreshCalendar   = "/" + ServiceName + "/RefreshCalendar"
	MethodCheckDay          = "/" + ServiceName + "/CheckDay"
)

// AlarmClockServer is the server API of the AlarmClock service.
type AlarmClockServer interface {
	// ListAlarms returns every alarm as a list of records.
	ListAlarms(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
	// CreateAlarm adds an alarm from a draft record {label, time, days, mode}.
	CreateAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	// ToggleAlarm flips the enabled flag of the alarm with the given id.
	ToggleAlarm(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	// RemoveAlarm deletes the alarm with the given id.
	RemoveAlarm(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error)
	// NextAlarm returns the nearest upcoming alarm after the given instant, or now when unset.
	NextAlarm(ctx context.Context, req *timestamppb.Timestamp) (*structpb.Struct, error)
	// GetCalendarStatus reports the holiday calendar sync state.
	GetCalendarStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	// RefreshCalendar re-fetches the holiday calendar and waits for the result.
	RefreshCalendar(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	// CheckDay classifies a YYYY-MM-DD date.
	CheckDay(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

// RegisterAlarmClockServer registers srv on the gRPC server.
func RegisterAlarmClockServer(registrar grpc.ServiceRegistrar, srv AlarmClockServer) {
	registrar.RegisterService(&AlarmClockServiceDesc, srv)
}

// AlarmClockServiceDesc describes the AlarmClock service.
//
//nolint:gochecknoglobals // Service descriptors are package-level values by gRPC convention.
var AlarmClockServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlarmClockServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListAlarms",
			Handler:    unaryHandler(MethodListAlarms, AlarmClockServer.ListAlarms),
		},
		{
			MethodName: "CreateAlarm",
			Handler:    unaryHandler(MethodCreateAlarm, AlarmClockServer.CreateAlarm),
		},
		{
			MethodName: "ToggleAlarm",
			Handler:    unaryHandler(MethodToggleAlarm, AlarmClockServer.ToggleAlarm),
		},
		{
			MethodName: "RemoveAlarm",
			Handler:    unaryHandler(MethodRemoveAlarm, AlarmClockServer.RemoveAlarm),
		},
		{
			MethodName: "NextAlarm",
			Handler:    unaryHandler(MethodNextAlarm, AlarmClockServer.NextAlarm),
		},
		{
			MethodName: "GetCalendarStatus",
			Handler:    unaryHandler(MethodGetCalendarStatus, AlarmClockServer.GetCalendarStatus),
		},
		{
			MethodName: "RefreshCalendar",
			Handler:    unaryHandler(MethodRefreshCalendar, AlarmClockServer.RefreshCalendar),
		},
		{
			MethodName: "CheckDay",
			Handler:    unaryHandler(MethodCheckDay, AlarmClockServer.CheckDay),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "alarmclock/v1/alarm_clock.proto",
}

// unaryHandler adapts a typed server method to a grpc.MethodHandler,
// the way protoc-gen-go-grpc generated handlers do.
func unaryHandler[Req any, PReq interface {
	*Req
	proto.Message
}, Resp proto.Message](
	fullMethod string,
	call func(AlarmClockServer, context.Context, PReq) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(AlarmClockServer)

		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(PReq)

			return call(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}

// AlarmClockClient is the client stub of the AlarmClock service.
type AlarmClockClient struct {
	// cc is the connection the calls are made on.
	cc grpc.ClientConnInterface
}

// NewAlarmClockClient creates a client stub over cc.
func NewAlarmClockClient(cc grpc.ClientConnInterface) *AlarmClockClient {
	return &AlarmClockClient{cc: cc}
}

// ListAlarms calls AlarmClock.ListAlarms.
func (c *AlarmClockClient) ListAlarms(
	ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption,
) (*structpb.ListValue, error) {
	return invoke[structpb.ListValue](ctx, c.cc, MethodListAlarms, in, opts...)
}

// CreateAlarm calls AlarmClock.CreateAlarm.
func (c *AlarmClockClient) CreateAlarm(
	ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodCreateAlarm, in, opts...)
}

// ToggleAlarm calls AlarmClock.ToggleAlarm.
func (c *AlarmClockClient) ToggleAlarm(
	ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodToggleAlarm, in, opts...)
}

// RemoveAlarm calls AlarmClock.RemoveAlarm.
func (c *AlarmClockClient) RemoveAlarm(
	ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption,
) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodRemoveAlarm, in, opts...)
}

// NextAlarm calls AlarmClock.NextAlarm.
func (c *AlarmClockClient) NextAlarm(
	ctx context.Context, in *timestamppb.Timestamp, opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodNextAlarm, in, opts...)
}

// GetCalendarStatus calls AlarmClock.GetCalendarStatus.
func (c *AlarmClockClient) GetCalendarStatus(
	ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodGetCalendarStatus, in, opts...)
}

// RefreshCalendar calls AlarmClock.RefreshCalendar.
func (c *AlarmClockClient) RefreshCalendar(
	ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodRefreshCalendar, in, opts...)
}

// CheckDay calls AlarmClock.CheckDay.
func (c *AlarmClockClient) CheckDay(
	ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodCheckDay, in, opts...)
}

func invoke[Resp any](
	ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption,
) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
