// Package command routes symbolic command names ("reconnect", "disconnect")
// to the handlers registered by the agent's wiring code. The indicator and
// notifier reference commands only by name, never by handler.
package command

import (
	"fmt"
	"sync"
)

// Dispatcher holds the registered command handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]func()
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]func())}
}

// Register binds a handler to a command name, replacing any previous one.
func (d *Dispatcher) Register(name string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = fn
}

// Execute invokes the handler for name. Unknown names return an error.
func (d *Dispatcher) Execute(name string) error {
	d.mu.RLock()
	fn := d.handlers[name]
	d.mu.RUnlock()

	if fn == nil {
		return fmt.Errorf("unknown command %q", name)
	}
	fn()
	return nil
}
