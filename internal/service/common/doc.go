// Package common holds helpers shared by the alarm-clock client binaries.
//
// It provides a lightweight gRPC client wrapper with per-call timeouts that
// decodes AlarmClock responses into domain values.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
