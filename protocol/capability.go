// Package protocol holds the wire vocabulary shared by every layer above the
// packet codec: capability and status bitsets, server version parsing, and
// the connection/session state enums the original protocol defines.
package protocol

// Capability is the 64-bit capability bitset negotiated during the
// handshake. The low 32 bits are the MySQL-compatible capabilities sent as
// two 16-bit halves in the initial handshake packet; the high 32 bits are
// MariaDB's extended capabilities, present only when both peers are
// MariaDB. See https://mariadb.com/kb/en/connection/#capabilities.
type Capability uint64

const (
	CapabilityMySQL                      Capability = 1
	CapabilityFoundRows                  Capability = 1 << 1
	CapabilityConnectWithDB              Capability = 1 << 3
	CapabilityCompress                   Capability = 1 << 5
	CapabilityLocalFiles                 Capability = 1 << 7
	CapabilityIgnoreSpace                Capability = 1 << 8
	CapabilityProtocol41                 Capability = 1 << 9
	CapabilityInteractive                Capability = 1 << 10
	CapabilitySSL                        Capability = 1 << 11
	CapabilityTransactions               Capability = 1 << 13
	CapabilitySecureConnection           Capability = 1 << 15
	CapabilityMultiStatements            Capability = 1 << 16
	CapabilityMultiResults               Capability = 1 << 17
	CapabilityPSMultiResults             Capability = 1 << 18
	CapabilityPluginAuth                 Capability = 1 << 19
	CapabilityConnectAttrs               Capability = 1 << 20
	CapabilityPluginAuthLenencClientData Capability = 1 << 21
	CapabilityCanHandleExpiredPasswords  Capability = 1 << 22
	CapabilitySessionTrack               Capability = 1 << 23
	CapabilityDeprecateEOF               Capability = 1 << 24
	CapabilityOptionalResultsetMetadata  Capability = 1 << 25
	CapabilityZstdCompressionAlgorithm   Capability = 1 << 26
	CapabilityExtension                  Capability = 1 << 29
	CapabilitySSLVerifyServerCert        Capability = 1 << 30
	CapabilityRememberOptions            Capability = 1 << 31

	// MariaDB-specific extended capabilities, carried in the high 32 bits.
	CapabilityProgress           Capability = 1 << 32
	CapabilityComMulti           Capability = 1 << 33
	CapabilityStmtBulkOperations Capability = 1 << 34
	CapabilityExtendedMetadata   Capability = 1 << 35
	CapabilityCacheMetadata      Capability = 1 << 36
	CapabilityBulkUnitResults    Capability = 1 << 37
)

// Has reports whether all bits set in want are also set in c.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// FromLower builds a Capability from the lower 16 bits sent at the start of
// the initial handshake packet.
func FromLower(lower uint16) Capability {
	return Capability(lower)
}

// MergeUpper ORs in the upper 16 bits of the low 32-bit capability word,
// sent as a second field once CLIENT_PROTOCOL_41 capability space is known.
func (c Capability) MergeUpper(upper uint16) Capability {
	return c | Capability(upper)<<16
}

// MergeExtended ORs in MariaDB's extended 32-bit capability word, valid
// only when the peer is MariaDB.
func (c Capability) MergeExtended(extended uint32) Capability {
	return c | Capability(extended)<<32
}

// Lower returns the low 32 bits, as sent back in a handshake response's
// capability fields.
func (c Capability) Lower() uint32 {
	return uint32(c)
}

// Extended returns the high 32 bits (MariaDB extended capabilities).
func (c Capability) Extended() uint32 {
	return uint32(c >> 32)
}

// DefaultClient is the capability set a new connection requests, mirroring
// the handshake crate's default_client_capabilities: protocol 4.1 framing,
// transactional awareness, plugin auth, session tracking, and the
// lenenc-encoded auth-data/connect-attrs extensions the rest of this
// package expects to be able to use once negotiated.
const DefaultClient = CapabilityIgnoreSpace |
	CapabilityProtocol41 |
	CapabilityTransactions |
	CapabilitySecureConnection |
	CapabilityMultiResults |
	CapabilityPSMultiResults |
	CapabilityPluginAuth |
	CapabilityConnectAttrs |
	CapabilityPluginAuthLenencClientData |
	CapabilitySessionTrack
