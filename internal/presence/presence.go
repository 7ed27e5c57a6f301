// Package presence is the connection-lifecycle driver: it keeps the
// websocket session to the presence gateway alive, reports every mode
// transition to the status indicator, and routes connection failures to the
// failure notifier. Payloads themselves stay minimal — the interesting
// policy lives in the indicator and notifier, not here.
package presence

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sp4rkv/vscord-custom-image/internal/indicator"
	"github.com/sp4rkv/vscord-custom-image/internal/notify"
	"github.com/sp4rkv/vscord-custom-image/internal/settings"
)

// Activity is the presence payload sent to the gateway.
type Activity struct {
	Details    string `json:"details,omitempty"`
	State      string `json:"state,omitempty"`
	LargeImage string `json:"large_image,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
	StartedAt  int64  `json:"started_at,omitempty"`
}

// Client manages the gateway connection lifecycle.
type Client struct {
	gatewayURL string
	token      string
	version    string
	settings   *settings.Store
	indicator  *indicator.Controller
	notifier   *notify.Notifier

	mu     sync.Mutex
	conn   *websocket.Conn
	paused bool // user asked to disconnect; stay down until Reconnect
	kick   chan struct{}
}

// New creates a Client. Run must be called to start the connection loop.
func New(gatewayURL, token, version string, st *settings.Store, ind *indicator.Controller, n *notify.Notifier) *Client {
	return &Client{
		gatewayURL: gatewayURL,
		token:      token,
		version:    version,
		settings:   st,
		indicator:  ind,
		notifier:   n,
		kick:       make(chan struct{}, 1),
	}
}

// Run drives the connection loop with reconnection until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	attempt := 0

	for {
		select {
		case <-ctx.Done():
			log.Println("[presence] Context cancelled, stopping")
			return nil
		default:
		}

		if !c.settings.Enabled() || c.isPaused() {
			// Integration off or user disconnected — idle until kicked.
			c.indicator.SetMode(indicator.Disconnected)
			if !c.waitRetry(ctx, 5*time.Second) {
				return nil
			}
			// Consume the kick here: a token left queued would make the
			// first backoff wait of a later outage return immediately and
			// reset its attempt count.
			c.drainKick()
			continue
		}

		c.indicator.SetMode(indicator.Pending)

		connected, err := c.run(ctx)
		if err == nil {
			// Clean shutdown
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		c.indicator.SetMode(indicator.Disconnected)

		if c.isPaused() {
			// User asked to disconnect; the idle branch takes over.
			continue
		}

		if connected {
			// A new outage, not a retry of the previous one.
			attempt = 0
		}
		attempt++
		if attempt == 1 {
			// Prompt once per outage; retries only log.
			c.notifier.NotifyConnectionFailure(err)
		}

		delay := backoff(attempt)
		log.Printf("[presence] Connection lost: %v — reconnecting in %v (attempt %d)", err, delay, attempt)

		if !c.waitRetry(ctx, delay) {
			return nil
		}
		if c.drainKick() {
			attempt = 0
		}
	}
}

// run executes one connection lifecycle: dial, identify, then heartbeat and
// read until the session drops. The bool reports whether the session got past
// the handshake.
func (c *Client) run(ctx context.Context) (bool, error) {
	log.Printf("[presence] Connecting to gateway at %s", c.gatewayURL)
	conn, err := dial(ctx, c.gatewayURL, c.token, c.version)
	if err != nil {
		return false, connErr(KindCouldNotConnect, err)
	}
	defer conn.Close()

	if err := identify(conn, c.version); err != nil {
		return false, connErr(KindHandshakeRejected, err)
	}
	log.Println("[presence] Connected to gateway")

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
	}()

	c.indicator.SetMode(indicator.Connected)

	return true, c.session(ctx, conn)
}

// session pumps heartbeats and drains gateway frames until an error.
func (c *Client) session(ctx context.Context, conn *websocket.Conn) error {
	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				readErr <- err
				return
			}
		}
	}()

	ticker := time.NewTicker(heartbeatEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close()
			return nil
		case err := <-readErr:
			if c.isPaused() {
				// User-requested disconnect, not a failure.
				return fmt.Errorf("disconnected by user")
			}
			return fmt.Errorf("gateway read: %w", err)
		case <-ticker.C:
			if err := writeFrame(conn, opHeartbeat, nil); err != nil {
				return fmt.Errorf("heartbeat: %w", err)
			}
		}
	}
}

// SetActivity publishes an activity frame on the live session.
func (c *Client) SetActivity(a Activity) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}
	return writeFrame(conn, opActivity, a)
}

// ClearActivity removes the published presence.
func (c *Client) ClearActivity() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}
	return writeFrame(conn, opClear, nil)
}

// Reconnect resumes the loop immediately, clearing any user-requested pause.
// Bound to the "reconnect" command.
func (c *Client) Reconnect() {
	c.mu.Lock()
	c.paused = false
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		// Force a fresh session.
		conn.Close()
	}
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Disconnect drops the session and holds the loop down until Reconnect.
// Bound to the "disconnect" command.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.paused = true
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		// Best effort: leave no stale presence behind.
		if err := c.ClearActivity(); err != nil {
			log.Printf("[presence] Could not clear activity: %v", err)
		}
		conn.Close()
	}
}

func (c *Client) isPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// waitRetry sleeps for delay or until kicked. Returns false when ctx ended.
func (c *Client) waitRetry(ctx context.Context, delay time.Duration) bool {
	select {
	case <-time.After(delay):
		return true
	case <-c.kick:
		// Put the kick back so the caller can observe it.
		select {
		case c.kick <- struct{}{}:
		default:
		}
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Client) drainKick() bool {
	select {
	case <-c.kick:
		return true
	default:
		return false
	}
}
