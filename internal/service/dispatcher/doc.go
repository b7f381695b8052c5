// Package dispatcher turns clock ticks into alarm notifications.
//
// Every tick the dispatcher evaluates all alarms against the current minute,
// remembers the last minute it fired each alarm for, and hands new triggers to
// a notifier when the permission gate allows it.
package dispatcher
