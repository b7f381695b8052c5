// Package notify delivers alarm notifications to the user.
//
// Two sinks exist: LogNotifier writes triggers to the zap logger and
// CommandNotifier shells out to the desktop notifier of the current platform
// (notify-send, osascript or a PowerShell toast) or to a configured command.
package notify
