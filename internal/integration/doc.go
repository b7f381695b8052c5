// Package integration holds end-to-end tests that run the alarm-clock daemon
// on a loopback port and talk to it with the real clients.
package integration
