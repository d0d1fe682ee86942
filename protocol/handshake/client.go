package handshake

import (
	"github.com/mevdschee/tqsql/packet"
	"github.com/mevdschee/tqsql/protocol"
)

// reservedBytes is the 19-byte pad both the SSL request and the handshake
// response carry between the client collation byte and (for MariaDB peers)
// the extended capability word.
const reservedBytes = 19

// SSLRequestParams is everything the SSL request packet needs: the same
// 32-byte prelude as the handshake response, sent alone so the server can
// start a TLS handshake before any credentials cross the wire in the clear.
type SSLRequestParams struct {
	ClientCapabilities protocol.Capability
	IsMariaDB          bool
	MaxPacketSize      uint32
	Collation          byte
}

// EncodeSSLRequest builds the SSL request packet body.
func EncodeSSLRequest(p SSLRequestParams) []byte {
	var w packet.Writer
	writePrelude(&w, p.ClientCapabilities, p.IsMariaDB, p.MaxPacketSize, p.Collation)
	return w.Bytes()
}

// ResponseParams is everything the handshake response packet needs: the
// client's and the server's capability sets, the credentials to present,
// and the auth plugin response already computed for those credentials.
type ResponseParams struct {
	ClientCapabilities protocol.Capability
	ServerCapabilities protocol.Capability
	IsMariaDB          bool
	MaxPacketSize      uint32
	Collation          byte
	Username           string
	AuthResponse       []byte
	Database           string
	AuthPluginName     string
}

// EncodeResponse builds the handshake response packet body: the client's
// answer to the server's initial handshake, carrying username, auth
// response, and optionally a default database and the auth plugin name.
//
// The auth response is encoded one of three ways depending on what the
// server capabilities negotiated: length-encoded if
// CapabilityPluginAuthLenencClientData is set, a single length byte plus
// raw bytes if CapabilitySecureConnection is set, or NUL-terminated
// otherwise.
func EncodeResponse(p ResponseParams) []byte {
	var w packet.Writer
	writePrelude(&w, p.ClientCapabilities, p.IsMariaDB, p.MaxPacketSize, p.Collation)

	w.WriteCString([]byte(p.Username))

	switch {
	case p.ServerCapabilities.Has(protocol.CapabilityPluginAuthLenencClientData):
		w.WriteLenEncString(p.AuthResponse)
	case p.ServerCapabilities.Has(protocol.CapabilitySecureConnection):
		w.WriteByte(byte(len(p.AuthResponse)))
		w.Write(p.AuthResponse)
	default:
		w.WriteCString(p.AuthResponse)
	}

	switch {
	case p.Database != "" && p.ServerCapabilities.Has(protocol.CapabilityConnectWithDB):
		w.WriteCString([]byte(p.Database))
	case p.ClientCapabilities.Has(protocol.CapabilityConnectWithDB):
		w.WriteCString(nil)
	}

	if p.ServerCapabilities.Has(protocol.CapabilityPluginAuth) {
		w.WriteCString([]byte(p.AuthPluginName))
	}

	if p.ClientCapabilities.Has(protocol.CapabilityConnectAttrs) && p.ServerCapabilities.Has(protocol.CapabilityConnectAttrs) {
		// No client attributes are sent; a zero-length lenenc-int still
		// satisfies the wire format the server expects once the
		// capability is negotiated.
		w.WriteLenEncInt(0)
	}

	return w.Bytes()
}

// writePrelude writes the 32-byte header shared by the SSL request and the
// handshake response: capabilities, max packet size, collation, 19 bytes
// of reserved padding, and (MariaDB only) the extended capability word.
func writePrelude(w *packet.Writer, caps protocol.Capability, isMariaDB bool, maxPacketSize uint32, collation byte) {
	w.WriteUint32(caps.Lower())
	w.WriteUint32(maxPacketSize)
	w.WriteByte(collation)
	w.WriteZeros(reservedBytes)

	if isMariaDB {
		w.WriteUint32(caps.Extended())
	} else {
		w.WriteUint32(0)
	}
}

// EncodePing builds the COM_PING command packet body: a single 0x0E byte.
// COM_PING is a command-phase packet: sending it resets the connection's
// sequence number to 0 before this frame goes out.
func EncodePing() []byte {
	return []byte{0x0e}
}

// PingIsCommandPacket reports whether a packet built from EncodePing resets the
// sequence number, mirroring the original's is_command_packet hook. It is
// always true for COM_PING.
const PingIsCommandPacket = true
