package session

import (
	"testing"

	"github.com/mevdschee/tqsql/protocol"
	"github.com/mevdschee/tqsql/protocol/auth"
)

func TestNewContextDefaults(t *testing.T) {
	serverCaps := protocol.CapabilityProtocol41 | protocol.CapabilitySecureConnection | protocol.CapabilitySSL
	ctx := New(protocol.ServerVersion{Major: 10, Minor: 6, Patch: 12}, 7, serverCaps, protocol.StatusAutocommit, 33, true, auth.Native, []byte("0123456789abcdefghij"))

	if ctx.ConnectionID() != 7 {
		t.Fatalf("ConnectionID = %d", ctx.ConnectionID())
	}
	if !ctx.IsMariaDB() {
		t.Fatalf("expected IsMariaDB = true")
	}
	if !ctx.HasClientCapability(protocol.CapabilityProtocol41) {
		t.Fatalf("default client capabilities should include protocol 4.1")
	}
	if ctx.HasClientCapability(protocol.CapabilitySSL) {
		t.Fatalf("SSL must not be requested until SetClientCapability is called")
	}
	if !ctx.HasServerCapability(protocol.CapabilitySSL) {
		t.Fatalf("server capability check should reflect what the server advertised")
	}
}

func TestSetClientCapabilityAndNegotiated(t *testing.T) {
	serverCaps := protocol.CapabilityProtocol41 | protocol.CapabilitySecureConnection | protocol.CapabilitySSL
	ctx := New(protocol.ServerVersion{}, 1, serverCaps, 0, 33, false, auth.Native, nil)

	ctx.SetClientCapability(protocol.CapabilitySSL)
	if !ctx.HasClientCapability(protocol.CapabilitySSL) {
		t.Fatalf("SetClientCapability should add the bit")
	}

	negotiated := ctx.Negotiated()
	if !negotiated.Has(protocol.CapabilitySSL) || !negotiated.Has(protocol.CapabilityProtocol41) {
		t.Fatalf("negotiated capabilities = %#x, want both SSL and protocol 4.1", negotiated)
	}

	// The server never advertised CapabilityCompress, so even requesting it
	// client-side must not make it negotiated.
	ctx.SetClientCapability(protocol.CapabilityCompress)
	if ctx.Negotiated().Has(protocol.CapabilityCompress) {
		t.Fatalf("negotiated capabilities must be the intersection, not the union")
	}
}

func TestSeedIsCopiedNotAliased(t *testing.T) {
	seed := []byte("mutable-seed-bytes..")
	ctx := New(protocol.ServerVersion{}, 1, 0, 0, 33, false, auth.Native, seed)

	seed[0] = 'X'
	if ctx.Seed()[0] == 'X' {
		t.Fatalf("Context must not alias the caller's seed slice")
	}
}
