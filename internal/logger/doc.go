// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with console or JSON encoding,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level configuration and parsing utilities (Setup, ParseLogLevel),
//   - convenience functions (Infof, WarnKV, ErrorKV, etc.).
//
// Services accept a context and extract the logger from it, so the scheduler,
// the calendar cache and the dispatcher all log with their component name.
package logger
