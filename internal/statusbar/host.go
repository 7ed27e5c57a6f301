package statusbar

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// DefaultAddr is the preferred listen address for the indicator endpoint.
// If the port is busy, Start binds to :0 and lets the OS pick a free port.
const DefaultAddr = "127.0.0.1:6463"

// Host serves the rendered indicator over a local HTTP endpoint that the
// editor extension polls to draw its status bar entry. Host is also the
// production Factory: items it creates publish their fields through it.
type Host struct {
	mu         sync.RWMutex
	version    string
	current    *hostItem
	listenAddr string

	mux    *http.ServeMux
	server *http.Server
}

type indicatorResponse struct {
	Visible       bool   `json:"visible"`
	Text          string `json:"text,omitempty"`
	Tooltip       string `json:"tooltip,omitempty"`
	Color         string `json:"color,omitempty"`
	Command       string `json:"command,omitempty"`
	Accessibility string `json:"accessibility,omitempty"`
	Alignment     string `json:"alignment,omitempty"`
	Priority      int    `json:"priority"`
	Version       string `json:"version"`
}

// NewHost creates an indicator host with a pre-built mux.
func NewHost(version string) *Host {
	h := &Host{
		version: version,
		mux:     http.NewServeMux(),
	}
	h.mux.HandleFunc("/", h.handleRoot)
	h.mux.HandleFunc("/api/indicator", h.handleIndicator)
	h.mux.HandleFunc("/health", h.handleHealth)
	return h
}

// HandleFunc registers an additional handler on the host's mux.
// Safe to call before or after Start.
func (h *Host) HandleFunc(pattern string, handler http.HandlerFunc) {
	h.mux.HandleFunc(pattern, handler)
}

// New creates a status bar item bound to this host. The item starts hidden.
// Alignment and priority are fixed for the item's lifetime.
func (h *Host) New(alignment Alignment, priority int) Item {
	it := &hostItem{
		host:      h,
		alignment: alignment,
		priority:  priority,
	}

	h.mu.Lock()
	if h.current == nil {
		h.current = it
	}
	h.mu.Unlock()

	return it
}

// Start begins listening. Tries DefaultAddr first; if busy, binds to :0.
func (h *Host) Start() {
	h.server = &http.Server{
		Handler:      h.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ln, err := net.Listen("tcp", DefaultAddr)
	if err != nil {
		// Default port busy — let OS assign a free port
		ln, err = net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Printf("[statusbar] Could not start indicator host: %v (non-fatal)", err)
			return
		}
	}

	h.mu.Lock()
	h.listenAddr = ln.Addr().String()
	h.mu.Unlock()

	go func() {
		if err := h.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[statusbar] Indicator host error: %v", err)
		}
	}()

	log.Printf("[statusbar] Indicator host listening on %s", h.Addr())
}

// Addr returns the actual listen address after binding, or "" before Start.
func (h *Host) Addr() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.listenAddr
}

// Port returns the actual port the host bound to, or 0 if not started.
func (h *Host) Port() int {
	addr := h.Addr()
	if addr == "" {
		return 0
	}
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	port, _ := strconv.Atoi(portStr)
	return port
}

// Stop shuts down the indicator host.
func (h *Host) Stop() {
	if h.server != nil {
		h.server.Close()
	}
}

func (h *Host) buildResponse() indicatorResponse {
	h.mu.RLock()
	defer h.mu.RUnlock()

	resp := indicatorResponse{Version: h.version}
	it := h.current
	if it == nil || it.disposed {
		return resp
	}
	resp.Visible = it.visible
	resp.Alignment = it.alignment.String()
	resp.Priority = it.priority
	if it.visible {
		resp.Text = it.text
		resp.Tooltip = it.tooltip
		resp.Color = it.color
		resp.Command = it.command
		resp.Accessibility = it.accessibility
	}
	return resp
}

func (h *Host) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.buildResponse())
}

// handleIndicator returns the current indicator state (polled by the editor).
func (h *Host) handleIndicator(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.buildResponse())
}

func (h *Host) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"ok":true}`)
}

// hostItem is the Host-backed Item implementation. All state is guarded by
// the host's mutex so a rendered response is always internally consistent.
type hostItem struct {
	host      *Host
	alignment Alignment
	priority  int

	text          string
	tooltip       string
	color         string
	command       string
	accessibility string
	visible       bool
	disposed      bool
}

func (it *hostItem) Alignment() Alignment { return it.alignment }
func (it *hostItem) Priority() int        { return it.priority }

func (it *hostItem) Text() string {
	it.host.mu.RLock()
	defer it.host.mu.RUnlock()
	return it.text
}

func (it *hostItem) Tooltip() string {
	it.host.mu.RLock()
	defer it.host.mu.RUnlock()
	return it.tooltip
}

func (it *hostItem) Color() string {
	it.host.mu.RLock()
	defer it.host.mu.RUnlock()
	return it.color
}

func (it *hostItem) Command() string {
	it.host.mu.RLock()
	defer it.host.mu.RUnlock()
	return it.command
}

func (it *hostItem) Accessibility() string {
	it.host.mu.RLock()
	defer it.host.mu.RUnlock()
	return it.accessibility
}

func (it *hostItem) Visible() bool {
	it.host.mu.RLock()
	defer it.host.mu.RUnlock()
	return it.visible
}

func (it *hostItem) SetText(s string)          { it.set(func() { it.text = s }) }
func (it *hostItem) SetTooltip(s string)       { it.set(func() { it.tooltip = s }) }
func (it *hostItem) SetColor(s string)         { it.set(func() { it.color = s }) }
func (it *hostItem) SetCommand(s string)       { it.set(func() { it.command = s }) }
func (it *hostItem) SetAccessibility(s string) { it.set(func() { it.accessibility = s }) }

func (it *hostItem) set(apply func()) {
	it.host.mu.Lock()
	defer it.host.mu.Unlock()
	if it.disposed {
		return
	}
	apply()
}

// Show makes the item visible and claims the host's render slot.
func (it *hostItem) Show() {
	it.host.mu.Lock()
	defer it.host.mu.Unlock()
	if it.disposed {
		return
	}
	it.visible = true
	it.host.current = it
}

// Hide keeps the item attached but stops rendering its fields.
func (it *hostItem) Hide() {
	it.host.mu.Lock()
	defer it.host.mu.Unlock()
	if it.disposed {
		return
	}
	it.visible = false
}

// Dispose detaches the item from the host. Idempotent.
func (it *hostItem) Dispose() {
	it.host.mu.Lock()
	defer it.host.mu.Unlock()
	if it.disposed {
		return
	}
	it.disposed = true
	it.visible = false
	if it.host.current == it {
		it.host.current = nil
	}
}
