// Package alarm implements the gRPC transport of the alarm-clock daemon.
//
// The alarmclock.v1.AlarmClock service is described by hand and carries
// protobuf well-known types (Struct, ListValue, StringValue, Timestamp, Empty),
// so no generated code is needed. The package provides both the server
// adapter over a business-service interface and a thin client stub.
package alarm
