package handshake

import (
	"bytes"
	"testing"

	"github.com/mevdschee/tqsql/packet"
	"github.com/mevdschee/tqsql/protocol"
)

func TestEncodeResponseLenencAuthData(t *testing.T) {
	body := EncodeResponse(ResponseParams{
		ClientCapabilities: protocol.DefaultClient,
		ServerCapabilities: protocol.CapabilityPluginAuthLenencClientData | protocol.CapabilityPluginAuth | protocol.CapabilityConnectWithDB,
		MaxPacketSize:      1 << 24,
		Collation:          33,
		Username:           "root",
		AuthResponse:       []byte{1, 2, 3, 4, 5},
		Database:           "app",
		AuthPluginName:     "mysql_native_password",
	})

	r := packet.NewReader(body)
	caps, _ := r.ReadUint32()
	if caps != protocol.DefaultClient.Lower() {
		t.Fatalf("capabilities = %#x, want %#x", caps, protocol.DefaultClient.Lower())
	}
	maxPacket, _ := r.ReadUint32()
	if maxPacket != 1<<24 {
		t.Fatalf("max packet size = %d", maxPacket)
	}
	collation, _ := r.ReadByte()
	if collation != 33 {
		t.Fatalf("collation = %d", collation)
	}
	if err := r.Skip(19); err != nil {
		t.Fatalf("skip reserved: %v", err)
	}
	extended, _ := r.ReadUint32()
	if extended != 0 {
		t.Fatalf("non-MariaDB response must send zero extended capabilities, got %#x", extended)
	}

	username, err := r.ReadCString()
	if err != nil || string(username) != "root" {
		t.Fatalf("username = %q, %v", username, err)
	}

	authResponse, err := r.ReadLenEncString()
	if err != nil || !bytes.Equal(authResponse, []byte{1, 2, 3, 4, 5}) {
		t.Fatalf("auth response = %v, %v", authResponse, err)
	}

	database, err := r.ReadCString()
	if err != nil || string(database) != "app" {
		t.Fatalf("database = %q, %v", database, err)
	}

	pluginName, err := r.ReadCString()
	if err != nil || string(pluginName) != "mysql_native_password" {
		t.Fatalf("plugin name = %q, %v", pluginName, err)
	}

	if r.Remaining() != 0 {
		t.Fatalf("%d unexpected trailing bytes", r.Remaining())
	}
}

func TestEncodeResponseSecureConnectionAuthData(t *testing.T) {
	body := EncodeResponse(ResponseParams{
		ClientCapabilities: protocol.DefaultClient,
		ServerCapabilities: protocol.CapabilitySecureConnection,
		MaxPacketSize:      1 << 24,
		Collation:          33,
		Username:           "root",
		AuthResponse:       []byte{9, 9, 9},
	})

	r := packet.NewReader(body)
	r.ReadUint32()
	r.ReadUint32()
	r.ReadByte()
	r.Skip(19)
	r.ReadUint32()
	r.ReadCString()

	n, err := r.ReadByte()
	if err != nil || n != 3 {
		t.Fatalf("auth response length byte = %d, %v", n, err)
	}
	authResponse, err := r.ReadFixed(3)
	if err != nil || !bytes.Equal(authResponse, []byte{9, 9, 9}) {
		t.Fatalf("auth response = %v, %v", authResponse, err)
	}
}

func TestEncodeResponseMariaDBSendsExtendedCapabilities(t *testing.T) {
	caps := protocol.DefaultClient | protocol.CapabilityProgress
	body := EncodeResponse(ResponseParams{
		ClientCapabilities: caps,
		ServerCapabilities: protocol.CapabilitySecureConnection,
		IsMariaDB:          true,
		MaxPacketSize:      1 << 24,
		Collation:          33,
		Username:           "root",
		AuthResponse:       nil,
	})

	r := packet.NewReader(body)
	r.ReadUint32()
	r.ReadUint32()
	r.ReadByte()
	r.Skip(19)
	extended, err := r.ReadUint32()
	if err != nil {
		t.Fatalf("ReadUint32: %v", err)
	}
	if extended != caps.Extended() {
		t.Fatalf("extended capabilities = %#x, want %#x", extended, caps.Extended())
	}
}

func TestEncodeSSLRequestIsJustThePrelude(t *testing.T) {
	body := EncodeSSLRequest(SSLRequestParams{
		ClientCapabilities: protocol.DefaultClient | protocol.CapabilitySSL,
		MaxPacketSize:      1 << 24,
		Collation:          33,
	})
	if len(body) != 32 {
		t.Fatalf("SSL request body = %d bytes, want 32", len(body))
	}
}

func TestEncodePing(t *testing.T) {
	body := EncodePing()
	if !bytes.Equal(body, []byte{0x0e}) {
		t.Fatalf("EncodePing() = %v, want [0x0e]", body)
	}
	if !PingIsCommandPacket {
		t.Fatalf("COM_PING must reset the sequence number")
	}
}
