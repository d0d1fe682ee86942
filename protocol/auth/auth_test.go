package auth

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"testing"
)

func TestNativePasswordEmptyPasswordIsEmptyResponse(t *testing.T) {
	got, err := Encrypt(Native, nil, []byte("some-20-byte-seed!!!"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("empty password should scramble to an empty response, got %d bytes", len(got))
	}
}

func TestNativePasswordMatchesReferenceComputation(t *testing.T) {
	password := []byte("hunter2")
	seed := []byte("01234567890123456789")

	stage1 := sha1.Sum(password)
	stage2 := sha1.Sum(stage1[:])
	h := sha1.New()
	h.Write(seed)
	h.Write(stage2[:])
	seedHash := h.Sum(nil)
	want := make([]byte, len(stage1))
	for i := range want {
		want[i] = stage1[i] ^ seedHash[i]
	}

	got, err := Encrypt(Native, password, seed)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Encrypt() = %x, want %x", got, want)
	}
	if len(got) != 20 {
		t.Fatalf("native password response must be 20 bytes, got %d", len(got))
	}
}

func TestClearPasswordPassesThrough(t *testing.T) {
	got, err := Encrypt(Clear, []byte("plain"), nil)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if string(got) != "plain" {
		t.Fatalf("Encrypt() = %q, want %q", got, "plain")
	}
}

func TestUnsupportedPluginRejected(t *testing.T) {
	_, err := Encrypt(CachedSha2, []byte("x"), nil)
	if !errors.Is(err, ErrUnsupportedPlugin) {
		t.Fatalf("Encrypt() error = %v, want ErrUnsupportedPlugin", err)
	}
}

func TestTypeProperties(t *testing.T) {
	if !Native.Supported() || !Clear.Supported() {
		t.Fatalf("Native and Clear must be supported")
	}
	if Sha256.Supported() || CachedSha2.Supported() || Parsec.Supported() || Gssapi.Supported() || Ed25519.Supported() {
		t.Fatalf("only Native and Clear should be supported")
	}
	if !Clear.NeedsSSL() {
		t.Fatalf("Clear must require SSL")
	}
	if Native.NeedsSSL() {
		t.Fatalf("Native must not require SSL")
	}
}

func TestParseType(t *testing.T) {
	cases := map[string]Type{
		"mysql_native_password": Native,
		"mysql_clear_password":  Clear,
		"caching_sha2_password": CachedSha2,
	}
	for name, want := range cases {
		got, ok := ParseType(name)
		if !ok || got != want {
			t.Fatalf("ParseType(%q) = %v, %v; want %v, true", name, got, ok, want)
		}
	}

	if _, ok := ParseType("made_up_plugin"); ok {
		t.Fatalf("ParseType should reject unrecognized plugin names")
	}
}
