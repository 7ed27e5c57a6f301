// Package indicator owns the single status bar entry that reflects the
// agent's connection to the Discord gateway. The controller maps the logical
// connection mode to rendered content, survives live configuration edits
// (including alignment changes, which force the item to be rebuilt), and
// guarantees at most one live item exists at any time.
package indicator

import (
	"log"
	"sync"

	"github.com/sp4rkv/vscord-custom-image/internal/settings"
	"github.com/sp4rkv/vscord-custom-image/internal/statusbar"
)

// Mode is the believed state of the gateway connection. It is supplied by
// the presence client; the controller never infers transitions itself.
type Mode int

const (
	Disabled Mode = iota
	Disconnected
	Pending
	Connected
)

func (m Mode) String() string {
	switch m {
	case Disabled:
		return "disabled"
	case Disconnected:
		return "disconnected"
	case Pending:
		return "pending"
	case Connected:
		return "connected"
	}
	return "unknown"
}

// Command names bound to indicator clicks.
const (
	CommandReconnect  = "reconnect"
	CommandDisconnect = "disconnect"
)

// content is the immutable per-mode template applied to the item.
type content struct {
	text    string
	tooltip string
	command string
}

// contentFor returns the template for a renderable mode. Disabled has no
// template — the item is hidden instead.
func contentFor(m Mode) content {
	switch m {
	case Disconnected:
		return content{
			text:    "$(warning) Reconnect to Discord",
			tooltip: "Connection to Discord lost — click to reconnect",
			command: CommandReconnect,
		}
	case Pending:
		return content{
			text:    "$(pulse) Connecting to Discord",
			tooltip: "Connecting to the Discord gateway…",
		}
	case Connected:
		return content{
			text:    "Discord Presence",
			tooltip: "Connected to Discord — click to disconnect",
			command: CommandDisconnect,
		}
	}
	return content{}
}

// Controller renders the connection mode into the one status bar item it
// owns. All operations are serialized by an internal mutex: presence
// transitions and config-change callbacks arrive on different goroutines,
// and the single-item invariant must hold across them.
type Controller struct {
	mu       sync.Mutex
	settings *settings.Store
	factory  statusbar.Factory

	mode Mode
	item statusbar.Item
}

// New creates a controller. No item is allocated until the first render.
func New(st *settings.Store, factory statusbar.Factory) *Controller {
	return &Controller{
		settings: st,
		factory:  factory,
	}
}

// Mode returns the last requested mode, regardless of whether the global
// enable flag allowed it to render.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode records mode and re-renders. When the integration is disabled in
// configuration the rendered mode collapses to Disabled, but the stored mode
// keeps the requested value so a later re-enable shows the true state.
func (c *Controller) SetMode(mode Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = mode
	c.render()
}

// SetAlignment persists alignment ("Left" or "Right") to user-scope
// configuration and returns it. The live item is untouched here — the
// config-change listener calls ReconcileFromConfig once the edit lands.
func (c *Controller) SetAlignment(alignment string) string {
	if err := c.settings.SetString(settings.KeyAlignment, alignment, settings.ScopeUser); err != nil {
		log.Printf("[indicator] Could not persist alignment: %v", err)
	}
	return alignment
}

// ReconcileFromConfig re-derives the desired item state from current
// configuration. Idempotent: with unchanged configuration a second call
// changes nothing. When the configured alignment differs from the live
// item's, a replacement is allocated, the mutable fields are copied over,
// and only then is the old item disposed — there is no window with zero or
// two renderable items.
func (c *Controller) ReconcileFromConfig() {
	c.mu.Lock()
	defer c.mu.Unlock()

	desired := statusbar.ParseAlignment(c.settings.Alignment())

	if c.item == nil {
		c.render()
		return
	}

	c.render()

	if c.item.Alignment() == desired {
		return
	}

	old := c.item
	replacement := c.factory.New(desired, statusbar.DefaultPriority)
	replacement.SetText(old.Text())
	replacement.SetTooltip(old.Tooltip())
	replacement.SetColor(old.Color())
	replacement.SetCommand(old.Command())
	replacement.SetAccessibility(old.Accessibility())
	if old.Visible() {
		replacement.Show()
	}
	c.item = replacement
	old.Dispose()

	log.Printf("[indicator] Rebuilt status item with alignment %s", desired)
}

// Dispose releases the owned item. Idempotent.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.item == nil {
		return
	}
	c.item.Dispose()
	c.item = nil
}

// render applies the effective mode to the item, creating it lazily.
// Fields are applied before the item is shown so a poll never observes a
// half-updated entry. Caller holds c.mu.
func (c *Controller) render() {
	effective := c.mode
	if !c.settings.Enabled() {
		effective = Disabled
	}

	if c.item == nil {
		align := statusbar.ParseAlignment(c.settings.Alignment())
		c.item = c.factory.New(align, statusbar.DefaultPriority)
	}

	if effective == Disabled {
		c.item.Hide()
		return
	}

	tpl := contentFor(effective)
	c.item.SetText(tpl.text)
	c.item.SetTooltip(tpl.tooltip)
	c.item.SetCommand(tpl.command)
	c.item.SetAccessibility(tpl.tooltip)
	c.item.Show()
}
