package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sp4rkv/vscord-custom-image/internal/command"
	"github.com/sp4rkv/vscord-custom-image/internal/settings"
)

// fakePrompter records each prompt and plays back a canned selection.
type fakePrompter struct {
	calls     []promptCall
	selection string
	answered  bool
}

type promptCall struct {
	title   string
	message string
	buttons []string
}

func (f *fakePrompter) Notify(title, message string) {}
func (f *fakePrompter) Error(title, message string)  {}
func (f *fakePrompter) Entry(title, text string) (string, bool) {
	return "", false
}

func (f *fakePrompter) Question(title, message string, buttons []string) (string, bool) {
	f.calls = append(f.calls, promptCall{title: title, message: message, buttons: buttons})
	return f.selection, f.answered
}

type kindErr struct{ kind string }

func (e kindErr) Error() string { return "gateway: " + e.kind }
func (e kindErr) Kind() string  { return e.kind }

type fixture struct {
	store    *settings.Store
	prompter *fakePrompter
	notifier *Notifier

	reconnects int
	reveals    int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := settings.Load(t.TempDir())
	require.NoError(t, err)

	f := &fixture{store: st, prompter: &fakePrompter{}}
	d := command.NewDispatcher()
	d.Register("reconnect", func() { f.reconnects++ })
	f.notifier = New(st, f.prompter, d, func() error {
		f.reveals++
		return nil
	})
	return f
}

// notify fires a failure and waits for the prompt goroutine to finish, so
// assertions observe the completed dispatch.
func (f *fixture) notify(t *testing.T, err error) {
	t.Helper()
	f.notifier.NotifyConnectionFailure(err)
	f.notifier.inflight.Wait()
}

func TestNotify_NilErrorShowsGenericPrompt(t *testing.T) {
	f := newFixture(t)

	f.notify(t, nil)

	require.Len(t, f.prompter.calls, 1)
	call := f.prompter.calls[0]
	assert.Equal(t, "Failed to connect to the Discord gateway.", call.message)
	assert.Equal(t, []string{ButtonReconnect, ButtonShowOutput}, call.buttons,
		"no suppression key, no third button")
}

func TestNotify_UnrecognizedKindIsUnsuppressible(t *testing.T) {
	f := newFixture(t)

	f.notify(t, kindErr{kind: "handshake rejected"})

	require.Len(t, f.prompter.calls, 1)
	call := f.prompter.calls[0]
	assert.Contains(t, call.message, "handshake rejected")
	assert.Equal(t, []string{ButtonReconnect, ButtonShowOutput}, call.buttons)
}

func TestNotify_PlainErrorWithoutKindIsGeneric(t *testing.T) {
	f := newFixture(t)

	f.notify(t, errors.New("dial tcp: connection refused"))

	require.Len(t, f.prompter.calls, 1)
	assert.Equal(t, "Failed to connect to the Discord gateway.", f.prompter.calls[0].message)
}

func TestNotify_SuppressionRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.prompter.selection = ButtonDontShowAgain
	f.prompter.answered = true

	err := kindErr{kind: "could not connect"}
	f.notify(t, err)

	require.Len(t, f.prompter.calls, 1)
	assert.Equal(t,
		[]string{ButtonReconnect, ButtonShowOutput, ButtonDontShowAgain},
		f.prompter.calls[0].buttons)

	// The suppression flag is persisted at global scope...
	assert.True(t, f.store.Bool("notifications.suppress_could_not_connect"))

	// ...and a subsequent failure of the same kind produces no prompt.
	f.notify(t, err)
	assert.Len(t, f.prompter.calls, 1)
}

func TestNotify_GlobalSuppressionSilencesEverything(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetBool(settings.KeySuppressAll, true, settings.ScopeGlobal))

	f.notify(t, nil)
	f.notify(t, kindErr{kind: "could not connect"})

	assert.Empty(t, f.prompter.calls)
}

func TestDispatch_Reconnect(t *testing.T) {
	f := newFixture(t)
	f.prompter.selection = ButtonReconnect
	f.prompter.answered = true

	f.notify(t, nil)

	assert.Equal(t, 1, f.reconnects)
	assert.Zero(t, f.reveals)
}

func TestDispatch_ShowOutput(t *testing.T) {
	f := newFixture(t)
	f.prompter.selection = ButtonShowOutput
	f.prompter.answered = true

	f.notify(t, nil)

	assert.Equal(t, 1, f.reveals)
	assert.Zero(t, f.reconnects)
}

func TestDispatch_DismissalIsNoop(t *testing.T) {
	f := newFixture(t)
	f.prompter.answered = false

	f.notify(t, kindErr{kind: "could not connect"})

	assert.Zero(t, f.reconnects)
	assert.Zero(t, f.reveals)
	assert.False(t, f.store.Bool("notifications.suppress_could_not_connect"))
}

func TestDispatch_UnknownSelectionIsNoop(t *testing.T) {
	f := newFixture(t)
	f.prompter.selection = "Copy error"
	f.prompter.answered = true

	f.notify(t, nil)

	assert.Zero(t, f.reconnects)
	assert.Zero(t, f.reveals)
}
