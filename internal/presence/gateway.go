package presence

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Gateway wire ops. The protocol is a thin JSON framing over a websocket:
// the agent identifies, the gateway answers ready, then activity and
// heartbeat frames flow until either side closes.
const (
	opIdentify  = "identify"
	opReady     = "ready"
	opHeartbeat = "heartbeat"
	opActivity  = "activity"
	opClear     = "clear"
)

const (
	handshakeTimeout = 15 * time.Second
	writeTimeout     = 5 * time.Second
	heartbeatEvery   = 30 * time.Second
)

// frame is the gateway wire envelope. Every agent-originated frame carries a
// unique nonce so the gateway can acknowledge or reject it individually.
type frame struct {
	Op    string          `json:"op"`
	Nonce string          `json:"nonce,omitempty"`
	D     json.RawMessage `json:"d,omitempty"`
}

type identifyPayload struct {
	Version string `json:"version"`
}

// dial establishes a WSS connection to the gateway.
//
// - TLS 1.3 minimum (prevents downgrade attacks)
// - Token sent in header, not URL — never appears in server access logs
// - Read limit prevents memory exhaustion from malicious frames
func dial(ctx context.Context, gatewayURL, token, version string) (*websocket.Conn, error) {
	dialer := &websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS13,
		},
	}

	headers := http.Header{}
	headers.Set("X-Presence-Token", token)
	if version != "" {
		headers.Set("X-Agent-Version", version)
	}

	conn, resp, err := dialer.DialContext(ctx, gatewayURL, headers)
	if err != nil {
		if resp != nil {
			// Generic error — do not differentiate server-side failure modes
			return nil, fmt.Errorf("connection refused by gateway (HTTP %d)", resp.StatusCode)
		}
		return nil, fmt.Errorf("connection failed: %w", err)
	}

	// 256KB read limit — gateway frames are small, anything larger is suspicious
	conn.SetReadLimit(256 * 1024)

	return conn, nil
}

// identify performs the post-dial handshake: send identify, wait for ready.
func identify(conn *websocket.Conn, version string) error {
	if err := writeFrame(conn, opIdentify, identifyPayload{Version: version}); err != nil {
		return fmt.Errorf("send identify: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	defer conn.SetReadDeadline(time.Time{})

	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		return fmt.Errorf("read ready: %w", err)
	}
	if f.Op != opReady {
		return fmt.Errorf("unexpected op %q before ready", f.Op)
	}
	return nil
}

// writeFrame marshals payload into a nonce-tagged frame and sends it.
func writeFrame(conn *websocket.Conn, op string, payload interface{}) error {
	var d json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", op, err)
		}
		d = data
	}

	f := frame{
		Op:    op,
		Nonce: uuid.NewString(),
		D:     d,
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(f)
}
