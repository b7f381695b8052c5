// Package client implements the alarm-ctl commands.
//
// Each command is an Action that runs against the daemon's AlarmClock API and
// prints a human-readable table or summary.
package client
