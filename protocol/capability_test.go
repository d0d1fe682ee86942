package protocol

import "testing"

func TestCapabilitySplitAndMerge(t *testing.T) {
	full := CapabilityProtocol41 | CapabilitySecureConnection | CapabilityProgress

	lower := uint16(full.Lower())
	upper := uint16(full.Lower() >> 16)
	extended := full.Extended()

	got := FromLower(lower).MergeUpper(upper).MergeExtended(extended)
	if got != full {
		t.Fatalf("got %#x, want %#x", got, full)
	}
}

func TestCapabilityHas(t *testing.T) {
	c := CapabilityProtocol41 | CapabilitySecureConnection
	if !c.Has(CapabilityProtocol41) {
		t.Fatalf("expected CapabilityProtocol41 to be set")
	}
	if c.Has(CapabilitySSL) {
		t.Fatalf("did not expect CapabilitySSL to be set")
	}
	if !c.Has(CapabilityProtocol41 | CapabilitySecureConnection) {
		t.Fatalf("expected both bits to be set together")
	}
}

func TestDefaultClientCapabilities(t *testing.T) {
	if !DefaultClient.Has(CapabilityProtocol41) {
		t.Fatalf("DefaultClient should request protocol 4.1")
	}
	if !DefaultClient.Has(CapabilityPluginAuth) {
		t.Fatalf("DefaultClient should request plugin auth")
	}
	if DefaultClient.Has(CapabilitySSL) {
		t.Fatalf("DefaultClient should not request SSL by default")
	}
}

func TestServerStatusHas(t *testing.T) {
	s := StatusAutocommit | StatusInTransaction
	if !s.Has(StatusAutocommit) {
		t.Fatalf("expected StatusAutocommit to be set")
	}
	if s.Has(StatusCursorExists) {
		t.Fatalf("did not expect StatusCursorExists to be set")
	}
}
