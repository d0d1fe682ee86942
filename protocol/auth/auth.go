// Package auth implements the client side of the handshake's authentication
// plugin negotiation: the closed set of plugin names the server may ask for,
// and the one plugin (mysql_native_password) this driver can actually answer
// without a TLS channel underneath it.
package auth

import (
	"errors"
	"fmt"
)

// Type is the auth plugin the server asked the client to use, taken from
// the initial handshake's plugin name or a later auth-switch request.
type Type int

const (
	Native Type = iota
	Clear
	Sha256
	CachedSha2
	Parsec
	Gssapi
	Ed25519
)

// Name returns the wire plugin name the server advertises for t.
func (t Type) Name() string {
	switch t {
	case Native:
		return "mysql_native_password"
	case Clear:
		return "mysql_clear_password"
	case Sha256:
		return "sha256_password"
	case CachedSha2:
		return "caching_sha2_password"
	case Parsec:
		return "parsec"
	case Gssapi:
		return "auth_gssapi_client"
	case Ed25519:
		return "client_ed25519"
	default:
		return fmt.Sprintf("auth.Type(%d)", int(t))
	}
}

func (t Type) String() string {
	return t.Name()
}

// NeedsSSL reports whether t must only be used once a TLS session is
// active, since it otherwise discloses the password on the wire verbatim.
func (t Type) NeedsSSL() bool {
	return t == Clear
}

// Supported reports whether this driver can answer t's challenge. Only
// Native and Clear are implemented; every other plugin decodes for
// diagnostics but cannot complete a handshake.
func (t Type) Supported() bool {
	return t == Native || t == Clear
}

// ErrUnsupportedPlugin is returned by Encrypt, and by the handshake driver
// before it, when the server asked for a plugin this client cannot answer.
var ErrUnsupportedPlugin = errors.New("auth: unsupported authentication plugin")

// ParseType maps a wire plugin name to a Type. Unrecognized names are not
// an error here; the caller decides whether an unrecognized or unsupported
// plugin should fail the connection.
func ParseType(name string) (Type, bool) {
	switch name {
	case "mysql_native_password":
		return Native, true
	case "mysql_clear_password":
		return Clear, true
	case "sha256_password":
		return Sha256, true
	case "caching_sha2_password":
		return CachedSha2, true
	case "parsec":
		return Parsec, true
	case "auth_gssapi_client":
		return Gssapi, true
	case "client_ed25519":
		return Ed25519, true
	default:
		return 0, false
	}
}

// Encrypt computes the auth response this driver would send for t given
// password and the server's handshake seed. It returns ErrUnsupportedPlugin
// for any plugin Supported reports false for.
func Encrypt(t Type, password, seed []byte) ([]byte, error) {
	switch t {
	case Native:
		return nativePassword(password, seed), nil
	case Clear:
		out := make([]byte, len(password))
		copy(out, password)
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlugin, t)
	}
}
