// Package notify decides whether a gateway connection failure is shown to
// the user, which action buttons the prompt offers, and how "don't show
// again" decisions are persisted. Each recognizable failure kind maps to a
// suppression flag in global-scope configuration; a global flag silences
// everything.
package notify

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sp4rkv/vscord-custom-image/internal/command"
	"github.com/sp4rkv/vscord-custom-image/internal/settings"
	"github.com/sp4rkv/vscord-custom-image/internal/ui"
)

// Button labels offered on failure prompts.
const (
	ButtonReconnect     = "Reconnect"
	ButtonShowOutput    = "Show output"
	ButtonDontShowAgain = "Don't show again"
)

const promptTitle = "Discord Presence"

// KindError is implemented by failure values that carry a symbolic kind.
// The presence client's connection errors satisfy it.
type KindError interface {
	error
	Kind() string
}

// suppressionKeys maps a failure kind to the global-scope configuration flag
// that mutes it. Only kinds listed here are ever offered "Don't show again";
// everything else stays unsuppressible since no persistence key exists.
var suppressionKeys = map[string]string{
	"could not connect": "notifications.suppress_could_not_connect",
}

// Notifier shows deduplicated, dismissible failure prompts. It is stateless
// apart from the configuration it consults; dedup memory lives in the
// suppression flags.
type Notifier struct {
	settings *settings.Store
	prompter ui.Prompter
	commands *command.Dispatcher
	reveal   func() error

	// inflight tracks prompt goroutines so tests can wait for dispatch.
	inflight sync.WaitGroup
}

// New creates a Notifier. reveal focuses the diagnostic output surface and
// is called when the user picks "Show output".
func New(st *settings.Store, prompter ui.Prompter, commands *command.Dispatcher, reveal func() error) *Notifier {
	return &Notifier{
		settings: st,
		prompter: prompter,
		commands: commands,
		reveal:   reveal,
	}
}

// NotifyConnectionFailure shows a failure prompt for err, subject to the
// suppression policy. The prompt is fire-and-forget: this returns
// immediately and the user's eventual selection (if any) is handled on a
// separate goroutine.
func (n *Notifier) NotifyConnectionFailure(err error) {
	if n.settings.SuppressNotifications() {
		return
	}

	message := "Failed to connect to the Discord gateway."
	suppressionKey := ""

	var ke KindError
	if err != nil && errors.As(err, &ke) {
		kind := ke.Kind()
		message = fmt.Sprintf("Failed to connect to the Discord gateway: %s.", kind)
		if key, ok := suppressionKeys[kind]; ok {
			if n.settings.Bool(key) {
				// Already muted for this kind — drop silently.
				return
			}
			suppressionKey = key
		}
	}

	buttons := []string{ButtonReconnect, ButtonShowOutput}
	if suppressionKey != "" {
		buttons = append(buttons, ButtonDontShowAgain)
	}

	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		selection, ok := n.prompter.Question(promptTitle, message, buttons)
		if !ok {
			return
		}
		n.dispatch(suppressionKey, selection)
	}()
}

// dispatch routes the user's button choice. Unknown selections and
// dismissals are no-ops.
func (n *Notifier) dispatch(suppressionKey, selection string) {
	switch selection {
	case ButtonReconnect:
		if err := n.commands.Execute("reconnect"); err != nil {
			log.Printf("[notify] Reconnect failed: %v", err)
		}
	case ButtonShowOutput:
		if err := n.reveal(); err != nil {
			log.Printf("[notify] Could not reveal output: %v", err)
		}
	case ButtonDontShowAgain:
		if suppressionKey == "" {
			return
		}
		if err := n.settings.SetBool(suppressionKey, true, settings.ScopeGlobal); err != nil {
			log.Printf("[notify] Could not persist suppression: %v", err)
		}
	}
}
