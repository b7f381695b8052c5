// Package server runs the alarm-clock daemon.
//
// It loads the settings, opens the record store, assembles the Scheduler
// (registry, calendar cache and trigger dispatcher), schedules calendar
// resyncs and serves the AlarmClock gRPC API until the context is canceled.
package server
