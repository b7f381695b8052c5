package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Placeholders substituted in configured command arguments.
const (
	titlePlaceholder = "{title}"
	bodyPlaceholder  = "{body}"
)

var (
	// ErrUnsupportedOS indicates the current OS has no built-in notifier.
	ErrUnsupportedOS = errors.New("unsupported operating system")
	// errEmptyCommand is returned when a configured command has no program.
	errEmptyCommand = errors.New("notification command is empty")
)

// Message is one notification.
type Message struct {
	// Title is the notification headline.
	Title string
	// Body is the notification text.
	Body string
}

// Notifier delivers messages.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// LogNotifier writes messages to the context logger.
type LogNotifier struct{}

// Notify logs the message at info level.
func (LogNotifier) Notify(ctx context.Context, msg Message) error {
	logger.InfoKV(ctx, "Alarm ringing", "title", msg.Title, "body", msg.Body)

	return nil
}

// CommandNotifier runs an external program for every message.
type CommandNotifier struct {
	// argv is the command template; empty means the platform default.
	argv []string
	// goos selects the platform default.
	goos string
	// timeout bounds one delivery.
	timeout time.Duration
}

// CommandOption configures a CommandNotifier.
type CommandOption func(*CommandNotifier)

// WithTimeout bounds how long one command may run before it is killed.
func WithTimeout(timeout time.Duration) CommandOption {
	return func(n *CommandNotifier) {
		if timeout > 0 {
			n.timeout = timeout
		}
	}
}

// NewCommandNotifier creates a notifier running argv, or the platform
// notifier when argv is empty.
func NewCommandNotifier(argv []string, opts ...CommandOption) *CommandNotifier {
	n := &CommandNotifier{
		argv:    append([]string(nil), argv...),
		goos:    runtime.GOOS,
		timeout: config.DefaultNotificationTimeout,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Notify runs the command and waits for it to finish, at most for the
// configured timeout.
func (n *CommandNotifier) Notify(ctx context.Context, msg Message) error {
	argv, err := n.Command(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	//nolint:gosec // The command comes from the operator's settings or a fixed platform tool.
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	// Children that inherited the output pipe must not hold Wait open after the kill.
	cmd.WaitDelay = time.Second

	out, err := cmd.CombinedOutput()
	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		return fmt.Errorf("run %s: %w", argv[0], ctxErr)
	}

	if err != nil {
		return fmt.Errorf("run %s: %w: %s", argv[0], err, strings.TrimSpace(string(out)))
	}

	return nil
}

// Command returns the argv executed for msg.
func (n *CommandNotifier) Command(msg Message) ([]string, error) {
	if len(n.argv) > 0 {
		if strings.TrimSpace(n.argv[0]) == "" {
			return nil, errEmptyCommand
		}

		replacer := strings.NewReplacer(titlePlaceholder, msg.Title, bodyPlaceholder, msg.Body)

		result := make([]string, len(n.argv))
		for i, arg := range n.argv {
			result[i] = replacer.Replace(arg)
		}

		return result, nil
	}

	return platformCommand(n.goos, msg)
}

// platformCommand builds the desktop notifier invocation using built-in tools:
// - Linux:   notify-send
// - macOS:   osascript display notification
// - Windows: PowerShell balloon tip.
func platformCommand(goos string, msg Message) ([]string, error) {
	switch strings.ToLower(goos) {
	case "linux", "freebsd", "openbsd", "netbsd":
		return []string{"notify-send", "--app-name=alarm-clock", msg.Title, msg.Body}, nil
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s sound name \"default\"",
			appleScriptString(msg.Body), appleScriptString(msg.Title))

		return []string{"osascript", "-e", script}, nil
	case "windows":
		script := fmt.Sprintf(windowsToastScript, powerShellString(msg.Title), powerShellString(msg.Body))

		return []string{"powershell.exe", "-NoProfile", "-NonInteractive", "-Command", script}, nil
	default:
		return nil, fmt.Errorf("unsupported operating system: %s: %w", goos, ErrUnsupportedOS)
	}
}

// windowsToastScript shows a tray balloon; arguments are title and body.
const windowsToastScript = `Add-Type -AssemblyName System.Windows.Forms; ` +
	`$n = New-Object System.Windows.Forms.NotifyIcon; ` +
	`$n.Icon = [System.Drawing.SystemIcons]::Information; $n.Visible = $true; ` +
	`$n.ShowBalloonTip(5000, %s, %s, 'Info'); Start-Sleep -Seconds 5; $n.Dispose()`

func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)

	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func powerShellString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// New builds the notifier selected by the settings.
//
//nolint:ireturn // Callers only need the interface.
func New(cfg config.NotificationsConfig) Notifier {
	if cfg.Sink == config.SinkCommand {
		return NewCommandNotifier(cfg.Command, WithTimeout(cfg.Timeout))
	}

	return LogNotifier{}
}
