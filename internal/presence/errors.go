package presence

import "fmt"

// Symbolic failure kinds reported to the notifier. Kinds are stable strings:
// the notifier keys its suppression flags on them.
const (
	KindCouldNotConnect   = "could not connect"
	KindHandshakeRejected = "handshake rejected"
)

// ConnectionError wraps a transport failure with its symbolic kind.
type ConnectionError struct {
	kind  string
	cause error
}

func (e *ConnectionError) Error() string {
	if e.cause == nil {
		return e.kind
	}
	return fmt.Sprintf("%s: %v", e.kind, e.cause)
}

// Kind returns the symbolic failure kind.
func (e *ConnectionError) Kind() string { return e.kind }

func (e *ConnectionError) Unwrap() error { return e.cause }

func connErr(kind string, cause error) *ConnectionError {
	return &ConnectionError{kind: kind, cause: cause}
}
