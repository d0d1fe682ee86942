package packet

// Buffer is a growable byte accumulator fed by a transport reader. It mirrors
// the bytes.Buffer-with-reserve idiom the length+sequence decoder needs: the
// caller appends freshly-read bytes with Write and repeatedly calls
// Codec.Decode until it returns incomplete, then reads more.
type Buffer struct {
	data []byte
}

// Write appends p to the buffer. It never returns an error.
func (b *Buffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// Len reports how many unconsumed bytes remain buffered.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Reserve hints that at least n more bytes are needed before the next
// Decode call can succeed. The caller may use it to size its next read;
// Buffer itself grows on demand regardless.
func (b *Buffer) Reserve(n int) {
	if cap(b.data)-len(b.data) >= n {
		return
	}
	grown := make([]byte, len(b.data), len(b.data)+n)
	copy(grown, b.data)
	b.data = grown
}

func (b *Buffer) consume(n int) {
	b.data = b.data[n:]
}

// Codec frames and unframes payloads on top of the MySQL wire header
// (3-byte little-endian length, 1-byte sequence number). It holds no state
// of its own: decode and encode are independent, stateless transforms, and
// sequence bookkeeping belongs to the caller (the connection driver in the
// root package), not to the codec.
type Codec struct{}

// Decode consumes one complete frame from buf, if available. It returns
// (frame, true, nil) on success, (Frame{}, false, nil) if buf does not yet
// hold a complete frame (the caller should read more and try again).
func (Codec) Decode(buf *Buffer) (Frame, bool, error) {
	if buf.Len() < HeaderSize {
		return Frame{}, false, nil
	}

	length := int(buf.data[0]) | int(buf.data[1])<<8 | int(buf.data[2])<<16
	seq := buf.data[3]

	total := HeaderSize + length
	if buf.Len() < total {
		buf.Reserve(total - buf.Len())
		return Frame{}, false, nil
	}

	payload := make([]byte, length)
	copy(payload, buf.data[HeaderSize:total])
	buf.consume(total)

	return Frame{Seq: seq, Payload: payload}, true, nil
}

// chunkWriter is the minimal surface Encode needs from its destination.
type chunkWriter interface {
	Write(p []byte) (int, error)
}

// Encode writes frame to dst as one or more wire chunks of at most
// MaxChunkSize bytes each, incrementing (and wrapping) the sequence number
// between chunks. A payload whose length is a non-zero multiple of
// MaxChunkSize is followed by a trailing empty chunk so the peer can detect
// the end of reassembly.
func (Codec) Encode(dst chunkWriter, frame Frame) error {
	if len(frame.Payload) > MaxPacketSize {
		return ErrPayloadTooLarge
	}

	remaining := frame.Payload
	seq := frame.Seq

	for len(remaining) > 0 {
		n := len(remaining)
		if n > MaxChunkSize {
			n = MaxChunkSize
		}
		if err := writeHeader(dst, n, seq); err != nil {
			return err
		}
		if _, err := dst.Write(remaining[:n]); err != nil {
			return err
		}
		remaining = remaining[n:]
		seq++
	}

	if len(frame.Payload) > 0 && len(frame.Payload)%MaxChunkSize == 0 {
		if err := writeHeader(dst, 0, seq); err != nil {
			return err
		}
	}

	return nil
}

func writeHeader(dst chunkWriter, length int, seq uint8) error {
	header := [HeaderSize]byte{
		byte(length),
		byte(length >> 8),
		byte(length >> 16),
		seq,
	}
	_, err := dst.Write(header[:])
	return err
}
