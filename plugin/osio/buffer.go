package osio

import (
	"io"

	"github.com/jbvmio/bitpipe/fault"
)

// Buffer accumulates bytes until it is flushed to its writer.
type Buffer struct {
	buf  []byte
	fill int
	w    io.Writer
}

// NewBuffer returns a Buffer holding up to capacity bytes.
func NewBuffer(capacity int) (*Buffer, error) {
	if capacity < 1 {
		return nil, fault.InvalidArgument.Errorf("invalid buffer capacity %d", capacity)
	}
	return &Buffer{
		buf: make([]byte, capacity),
	}, nil
}

// UseWriter sets the destination of Flush.
func (b *Buffer) UseWriter(w io.Writer) {
	b.w = w
}

// IsFull returns true if no more bytes can be added before a Flush.
func (b *Buffer) IsFull() bool {
	return b.fill == len(b.buf)
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	return b.fill
}

// Cap returns the capacity.
func (b *Buffer) Cap() int {
	return len(b.buf)
}

// Add appends v, returning false if the Buffer is full.
func (b *Buffer) Add(v byte) bool {
	if b.IsFull() {
		return false
	}
	b.buf[b.fill] = v
	b.fill++
	return true
}

// Flush writes the buffered bytes and empties the Buffer.
// An empty Buffer writes nothing. On failure the buffered bytes are kept.
func (b *Buffer) Flush() error {
	if b.fill == 0 {
		return nil
	}
	if b.w == nil {
		return fault.InvalidOutput.New("no output to flush to")
	}
	n, err := b.w.Write(b.buf[:b.fill])
	if err == nil && n < b.fill {
		err = io.ErrShortWrite
	}
	if err != nil {
		return fault.Write.Wrapf(err, "could not write %d byte(s)", b.fill)
	}
	b.fill = 0
	return nil
}
