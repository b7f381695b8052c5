// Package watch implements alarm-watch, a poller that keeps reporting the
// nearest upcoming alarm and the calendar sync state of a running daemon.
package watch
