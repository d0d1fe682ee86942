// Package handshake decodes the server's initial handshake packet and
// encodes the client-originated packets that answer it: the optional SSL
// request, the handshake response itself, and COM_PING.
package handshake

import (
	"fmt"

	"github.com/mevdschee/tqsql/packet"
	"github.com/mevdschee/tqsql/protocol"
	"github.com/mevdschee/tqsql/protocol/auth"
)

// protocolVersion10 is the only handshake protocol version this driver
// understands; it has been the only version in use since MySQL 3.21.
const protocolVersion10 = 0x0a

// Initial is the decoded initial handshake packet the server sends as soon
// as the TCP/Unix connection is established.
type Initial struct {
	ServerVersion       protocol.ServerVersion
	ConnectionID        uint32
	ServerCapabilities  protocol.Capability
	DefaultCollation    byte
	StatusFlags         protocol.ServerStatus
	AuthType            auth.Type
	HasAuthType         bool
	IsMariaDB           bool
	Seed                []byte
}

// DecodeInitial parses payload, the body of the server's first packet
// (sequence 0), per the MySQL/MariaDB handshake v10 layout.
func DecodeInitial(payload []byte) (Initial, error) {
	r := packet.NewReader(payload)

	version, err := r.ReadByte()
	if err != nil {
		return Initial{}, fmt.Errorf("handshake: reading protocol version: %w", err)
	}
	if version != protocolVersion10 {
		return Initial{}, fmt.Errorf("handshake: unsupported protocol version %#x", version)
	}

	versionString, err := r.ReadCString()
	if err != nil {
		return Initial{}, fmt.Errorf("handshake: reading server version: %w", err)
	}
	serverVersion, err := protocol.ParseServerVersion(string(versionString))
	if err != nil {
		return Initial{}, fmt.Errorf("handshake: %w", err)
	}

	connectionID, err := r.ReadUint32()
	if err != nil {
		return Initial{}, fmt.Errorf("handshake: reading connection id: %w", err)
	}

	seedPart1, err := r.ReadFixed(8)
	if err != nil {
		return Initial{}, fmt.Errorf("handshake: reading auth seed part 1: %w", err)
	}
	if err := r.Skip(1); err != nil { // filler byte
		return Initial{}, fmt.Errorf("handshake: skipping filler byte: %w", err)
	}

	capLower, err := r.ReadUint16()
	if err != nil {
		return Initial{}, fmt.Errorf("handshake: reading lower capabilities: %w", err)
	}
	capabilities := protocol.FromLower(capLower)

	collation, err := r.ReadByte()
	if err != nil {
		return Initial{}, fmt.Errorf("handshake: reading default collation: %w", err)
	}

	statusFlags, err := r.ReadUint16()
	if err != nil {
		return Initial{}, fmt.Errorf("handshake: reading status flags: %w", err)
	}

	capUpper, err := r.ReadUint16()
	if err != nil {
		return Initial{}, fmt.Errorf("handshake: reading upper capabilities: %w", err)
	}
	capabilities = capabilities.MergeUpper(capUpper)

	hasPluginAuth := capabilities.Has(protocol.CapabilityPluginAuth)

	var seedLen uint8
	if hasPluginAuth {
		b, err := r.ReadByte()
		if err != nil {
			return Initial{}, fmt.Errorf("handshake: reading auth seed length: %w", err)
		}
		seedLen = b
		if seedLen < 9 {
			seedLen = 12
		} else {
			seedLen -= 9
			if seedLen < 12 {
				seedLen = 12
			}
		}
	} else {
		if err := r.Skip(1); err != nil {
			return Initial{}, fmt.Errorf("handshake: skipping reserved byte: %w", err)
		}
	}

	if err := r.Skip(6); err != nil { // reserved
		return Initial{}, fmt.Errorf("handshake: skipping reserved bytes: %w", err)
	}

	isMySQL := capabilities.Has(protocol.CapabilityMySQL)
	isMariaDB := serverVersion.IsMariaDB && !isMySQL
	if isMySQL {
		if err := r.Skip(4); err != nil { // reserved
			return Initial{}, fmt.Errorf("handshake: skipping mysql reserved bytes: %w", err)
		}
	} else {
		extended, err := r.ReadUint32()
		if err != nil {
			return Initial{}, fmt.Errorf("handshake: reading extended capabilities: %w", err)
		}
		capabilities = capabilities.MergeExtended(extended)
	}

	hasSecureConnection := capabilities.Has(protocol.CapabilitySecureConnection)

	seed := make([]byte, 0, len(seedPart1)+int(seedLen))
	seed = append(seed, seedPart1...)

	if hasSecureConnection {
		seedPart2, err := r.ReadFixed(int(seedLen))
		if err != nil {
			return Initial{}, fmt.Errorf("handshake: reading auth seed part 2: %w", err)
		}
		seed = append(seed, seedPart2...)
		if err := r.Skip(1); err != nil { // trailing NUL
			return Initial{}, fmt.Errorf("handshake: skipping seed terminator: %w", err)
		}
	}

	var authType auth.Type
	var hasAuthType bool
	if hasPluginAuth {
		name, err := r.ReadCString()
		if err != nil {
			return Initial{}, fmt.Errorf("handshake: reading auth plugin name: %w", err)
		}
		t, ok := auth.ParseType(string(name))
		if !ok {
			return Initial{}, fmt.Errorf("handshake: %q is not a recognized auth plugin", name)
		}
		authType = t
		hasAuthType = true
	}

	return Initial{
		ServerVersion:      serverVersion,
		ConnectionID:       connectionID,
		ServerCapabilities: capabilities,
		DefaultCollation:   collation,
		StatusFlags:        protocol.ServerStatus(statusFlags),
		AuthType:           authType,
		HasAuthType:        hasAuthType,
		IsMariaDB:          isMariaDB,
		Seed:               seed,
	}, nil
}
