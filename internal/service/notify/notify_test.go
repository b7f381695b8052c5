package notify

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
)

var testMessage = Message{Title: "Standup", Body: "09:30 · Standup is ringing"}

func TestLogNotifier(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core).Sugar())

	require.NoError(t, LogNotifier{}.Notify(ctx, testMessage))

	entries := logs.FilterMessage("Alarm ringing").All()
	require.Len(t, entries, 1)
	require.Equal(t, "Standup", entries[0].ContextMap()["title"])
}

func TestCommandNotifier_ConfiguredCommand(t *testing.T) {
	t.Parallel()

	n := NewCommandNotifier([]string{"my-notifier", "--title={title}", "{body}"})

	argv, err := n.Command(testMessage)
	require.NoError(t, err)
	require.Equal(t, []string{"my-notifier", "--title=Standup", "09:30 · Standup is ringing"}, argv)
}

func TestCommandNotifier_EmptyProgram(t *testing.T) {
	t.Parallel()

	_, err := NewCommandNotifier([]string{" "}).Command(testMessage)
	require.ErrorIs(t, err, errEmptyCommand)
}

func TestPlatformCommand(t *testing.T) {
	t.Parallel()

	argv, err := platformCommand("linux", testMessage)
	require.NoError(t, err)
	require.Equal(t, "notify-send", argv[0])
	require.Equal(t, []string{"Standup", "09:30 · Standup is ringing"}, argv[len(argv)-2:])

	argv, err = platformCommand("darwin", Message{Title: `Say "hi"`, Body: "now"})
	require.NoError(t, err)
	require.Equal(t, "osascript", argv[0])
	require.Contains(t, argv[2], `with title "Say \"hi\""`)

	argv, err = platformCommand("windows", Message{Title: "It's time", Body: "now"})
	require.NoError(t, err)
	require.Equal(t, "powershell.exe", argv[0])
	require.Contains(t, argv[len(argv)-1], "'It''s time'")

	_, err = platformCommand("plan9", testMessage)
	require.ErrorIs(t, err, ErrUnsupportedOS)
}

func TestCommandNotifier_NotifyFailure(t *testing.T) {
	t.Parallel()

	n := NewCommandNotifier([]string{"alarm-clock-notifier-that-does-not-exist", "{title}"})

	require.Error(t, n.Notify(context.Background(), testMessage))
}

func TestCommandNotifier_NotifyTimeout(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep is not available")
	}

	n := NewCommandNotifier([]string{"sleep", "5"}, WithTimeout(200*time.Millisecond))

	start := time.Now()
	err := n.Notify(context.Background(), testMessage)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 3*time.Second)
}

func TestNew(t *testing.T) {
	t.Parallel()

	require.IsType(t, LogNotifier{}, New(config.NotificationsConfig{Sink: config.SinkLog}))
	n := New(config.NotificationsConfig{Sink: config.SinkCommand, Timeout: time.Second})
	cmd, ok := n.(*CommandNotifier)
	require.True(t, ok)
	require.Equal(t, time.Second, cmd.timeout)

	require.Equal(t, config.DefaultNotificationTimeout, NewCommandNotifier(nil).timeout)
}
