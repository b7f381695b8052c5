// Package config defines the settings shared by the alarm-clock binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Settings cover the daemon gRPC address, the alarm store backend, the
// holiday feed and its refresh schedule, logging and notification delivery.
package config
