// Package session holds the negotiated state a connection carries once the
// handshake completes: the intersection of client and server capabilities,
// server identity, the auth seed, and the fields the protocol layers need
// to encode further packets consistently with what was negotiated.
package session

import (
	"github.com/mevdschee/tqsql/packet"
	"github.com/mevdschee/tqsql/protocol"
	"github.com/mevdschee/tqsql/protocol/auth"
)

// Context is not safe for concurrent use: a connection's handshake and
// command phase always run on a single goroutine, so no internal locking
// is needed.
type Context struct {
	serverCapabilities protocol.Capability
	clientCapabilities protocol.Capability
	isMariaDB          bool
	maxPacketSize      uint32
	clientCollation    byte
	serverVersion      protocol.ServerVersion
	connectionID       uint32
	statusFlags        protocol.ServerStatus
	authType           auth.Type
	seed               []byte
}

// New builds a Context from the server's decoded initial handshake packet,
// seeding the client's default capability set.
func New(serverVersion protocol.ServerVersion, connectionID uint32, serverCapabilities protocol.Capability, statusFlags protocol.ServerStatus, collation byte, isMariaDB bool, authType auth.Type, seed []byte) *Context {
	return &Context{
		serverCapabilities: serverCapabilities,
		clientCapabilities: protocol.DefaultClient,
		isMariaDB:          isMariaDB,
		maxPacketSize:      packet.MaxPacketSize,
		clientCollation:    collation,
		serverVersion:      serverVersion,
		connectionID:       connectionID,
		statusFlags:        statusFlags,
		authType:           authType,
		seed:               append([]byte(nil), seed...),
	}
}

// IsMariaDB reports whether the server identified itself as MariaDB.
func (c *Context) IsMariaDB() bool {
	return c.isMariaDB
}

// SetClientCapability ORs capability into the client's requested
// capability set, e.g. to add CapabilitySSL once a TLS upgrade is decided.
func (c *Context) SetClientCapability(capability protocol.Capability) {
	c.clientCapabilities |= capability
}

// HasServerCapability reports whether the server advertised capability.
func (c *Context) HasServerCapability(capability protocol.Capability) bool {
	return c.serverCapabilities.Has(capability)
}

// HasClientCapability reports whether the client has requested capability.
func (c *Context) HasClientCapability(capability protocol.Capability) bool {
	return c.clientCapabilities.Has(capability)
}

// Negotiated returns the capability bits both the client requested and the
// server advertised — the only ones either side may actually rely on.
func (c *Context) Negotiated() protocol.Capability {
	return c.clientCapabilities & c.serverCapabilities
}

// MaxPacketSize is the maximum packet size this client advertises to the
// server.
func (c *Context) MaxPacketSize() uint32 {
	return c.maxPacketSize
}

// ClientCollation is the collation ID sent in the handshake response.
func (c *Context) ClientCollation() byte {
	return c.clientCollation
}

// ServerCapabilities returns the full capability set the server advertised.
func (c *Context) ServerCapabilities() protocol.Capability {
	return c.serverCapabilities
}

// ClientCapabilities returns the full capability set the client has
// requested so far.
func (c *Context) ClientCapabilities() protocol.Capability {
	return c.clientCapabilities
}

// ServerVersion is the server's parsed version.
func (c *Context) ServerVersion() protocol.ServerVersion {
	return c.serverVersion
}

// ConnectionID is the server-assigned connection/thread id.
func (c *Context) ConnectionID() uint32 {
	return c.connectionID
}

// StatusFlags is the status the server reported in the initial handshake.
func (c *Context) StatusFlags() protocol.ServerStatus {
	return c.statusFlags
}

// SetStatusFlags updates the status flags, e.g. after reading them from a
// later OK packet (parsing OK packets is outside this module's scope, but
// a caller that does so elsewhere can still keep the Context current).
func (c *Context) SetStatusFlags(status protocol.ServerStatus) {
	c.statusFlags = status
}

// AuthType is the auth plugin negotiated for this connection.
func (c *Context) AuthType() auth.Type {
	return c.authType
}

// SetAuthType updates the auth plugin, e.g. after an auth-switch request.
func (c *Context) SetAuthType(t auth.Type) {
	c.authType = t
}

// Seed is the server's handshake auth seed, used to scramble the password
// for plugins that need it.
func (c *Context) Seed() []byte {
	return c.seed
}

// SetSeed replaces the auth seed, e.g. after an auth-switch request sends a
// fresh one.
func (c *Context) SetSeed(seed []byte) {
	c.seed = append([]byte(nil), seed...)
}
