package presence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sp4rkv/vscord-custom-image/internal/command"
	"github.com/sp4rkv/vscord-custom-image/internal/indicator"
	"github.com/sp4rkv/vscord-custom-image/internal/notify"
	"github.com/sp4rkv/vscord-custom-image/internal/settings"
	"github.com/sp4rkv/vscord-custom-image/internal/statusbar"
)

type nullItem struct {
	alignment statusbar.Alignment
	priority  int

	text, tooltip, color, command, accessibility string
	visible, disposed                            bool
}

func (i *nullItem) Alignment() statusbar.Alignment { return i.alignment }
func (i *nullItem) Priority() int                  { return i.priority }
func (i *nullItem) Text() string                   { return i.text }
func (i *nullItem) Tooltip() string                { return i.tooltip }
func (i *nullItem) Color() string                  { return i.color }
func (i *nullItem) Command() string                { return i.command }
func (i *nullItem) Accessibility() string          { return i.accessibility }
func (i *nullItem) Visible() bool                  { return i.visible }
func (i *nullItem) SetText(s string)               { i.text = s }
func (i *nullItem) SetTooltip(s string)            { i.tooltip = s }
func (i *nullItem) SetColor(s string)              { i.color = s }
func (i *nullItem) SetCommand(s string)            { i.command = s }
func (i *nullItem) SetAccessibility(s string)      { i.accessibility = s }
func (i *nullItem) Show()                          { i.visible = true }
func (i *nullItem) Hide()                          { i.visible = false }
func (i *nullItem) Dispose()                       { i.disposed = true }

var _ statusbar.Item = (*nullItem)(nil)

type nullFactory struct{}

func (nullFactory) New(a statusbar.Alignment, p int) statusbar.Item {
	return &nullItem{alignment: a, priority: p}
}

type silentPrompter struct{}

func (silentPrompter) Notify(title, message string)            {}
func (silentPrompter) Error(title, message string)             {}
func (silentPrompter) Entry(title, text string) (string, bool) { return "", false }
func (silentPrompter) Question(title, message string, buttons []string) (string, bool) {
	return "", false
}

func TestReconnectWhileIdleLeavesNoQueuedKick(t *testing.T) {
	st, err := settings.Load(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, st.SetBool(settings.KeyEnabled, false, settings.ScopeUser))

	ctrl := indicator.New(st, nullFactory{})
	n := notify.New(st, silentPrompter{}, command.NewDispatcher(), func() error { return nil })
	c := New("wss://127.0.0.1:1/ws/agent", "token", "test", st, ctrl, n)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	// Let the loop settle into the idle branch, then kick it. The loop
	// stays idle because the integration is disabled.
	time.Sleep(50 * time.Millisecond)
	c.Reconnect()

	// The idle branch must consume the kick; a token left queued would
	// skip the first backoff wait of the next outage and reset its
	// attempt count, producing a second prompt for the same outage.
	require.Eventually(t, func() bool {
		return len(c.kick) == 0
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestBackoffStaysWithinBounds(t *testing.T) {
	for attempt := 1; attempt <= 10; attempt++ {
		d := backoff(attempt)
		require.Greater(t, d, time.Duration(0), "attempt %d", attempt)
		require.LessOrEqual(t, d, maxDelay+maxDelay/4, "attempt %d", attempt)
	}
}
