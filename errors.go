// Package tqsql implements the client side of establishing a session with a
// MySQL/MariaDB-compatible server: packet framing, the handshake, optional
// in-band TLS upgrade, and authentication. It stops at a live, authenticated
// connection — query execution and result decoding are out of scope.
package tqsql

import (
	"errors"
	"fmt"

	"github.com/mevdschee/tqsql/protocol/auth"
)

// Kind classifies what stage of connection establishment failed, mirroring
// the original driver's connection-error enum so callers can branch on
// failure class without string-matching error text.
type Kind int

const (
	// KindIO covers failures reading from or writing to the transport.
	KindIO Kind = iota
	// KindInitialHandshake covers failures decoding the server's initial
	// handshake packet.
	KindInitialHandshake
	// KindFraming covers failures in the packet codec itself (oversize
	// payloads, malformed headers).
	KindFraming
	// KindTLSCapability is returned when TLS was required but the server
	// did not advertise CapabilitySSL.
	KindTLSCapability
	// KindPluginNeedsTLS is returned when the negotiated auth plugin
	// requires an active TLS session and none is active.
	KindPluginNeedsTLS
	// KindUnsupportedAuthPlugin is returned when the server asked for an
	// auth plugin this driver cannot answer.
	KindUnsupportedAuthPlugin
	// KindAuthPlugin covers failures computing an auth plugin response.
	KindAuthPlugin
	// KindTLSUpgrade covers failures during the in-band TLS handshake.
	KindTLSUpgrade
	// KindTLS covers TLS configuration errors (bad certs, bad domain).
	KindTLS
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindInitialHandshake:
		return "initial handshake"
	case KindFraming:
		return "framing"
	case KindTLSCapability:
		return "tls capability"
	case KindPluginNeedsTLS:
		return "plugin needs tls"
	case KindUnsupportedAuthPlugin:
		return "unsupported auth plugin"
	case KindAuthPlugin:
		return "auth plugin"
	case KindTLSUpgrade:
		return "tls upgrade"
	case KindTLS:
		return "tls"
	default:
		return fmt.Sprintf("tqsql.Kind(%d)", int(k))
	}
}

// ConnectionError wraps a failure encountered while establishing a
// connection with the Kind of stage it happened at, so callers can branch
// on Kind with errors.As while still getting %w-wrapped causes in logs.
type ConnectionError struct {
	Kind Kind
	Err  error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("tqsql: %s", e.Kind)
	}
	return fmt.Sprintf("tqsql: %s: %v", e.Kind, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func newConnErr(kind Kind, err error) *ConnectionError {
	return &ConnectionError{Kind: kind, Err: err}
}

// ErrTLSCapability is wrapped by a KindTLSCapability ConnectionError.
var ErrTLSCapability = errors.New("server does not advertise TLS support")

// ErrPluginNeedsTLS is wrapped by a KindPluginNeedsTLS ConnectionError.
var ErrPluginNeedsTLS = errors.New("negotiated auth plugin requires an active TLS session")

// ErrUnsupportedAuthPlugin is wrapped by a KindUnsupportedAuthPlugin
// ConnectionError; compare against it with errors.Is. The plugin's wire name
// appears only in the error text.
var ErrUnsupportedAuthPlugin = auth.ErrUnsupportedPlugin
