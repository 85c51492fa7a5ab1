package fileio

import (
	"bytes"
	"go_lan_speed/constants"
	"io"
)

// block is shared read-only filler content
var block = bytes.Repeat([]byte{constants.FILLER_BYTE}, constants.TCP_COPY_BUFFER_SIZE)

// Filler is a reader of synthetic content standing in for file data
type Filler struct {
	remaining uint64
}

// NewFiller returns a reader producing exactly size bytes
func NewFiller(size uint64) *Filler {
	return &Filler{remaining: size}
}

// Remaining returns the number of bytes not yet produced
func (f *Filler) Remaining() uint64 {
	return f.remaining
}

func (f *Filler) Read(p []byte) (int, error) {
	if f.remaining == 0 {
		return 0, io.EOF
	}
	n := len(p)
	if uint64(n) > f.remaining {
		n = int(f.remaining)
	}
	for i := 0; i < n; {
		i += copy(p[i:n], block)
	}
	f.remaining -= uint64(n)
	return n, nil
}

// WriteTo streams the remaining filler to w in bulk writes
func (f *Filler) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for f.remaining > 0 {
		chunk := block
		if uint64(len(chunk)) > f.remaining {
			chunk = chunk[:f.remaining]
		}
		written, err := w.Write(chunk)
		total += int64(written)
		f.remaining -= uint64(written)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Segment returns n bytes of filler. The result must not be modified.
func Segment(n int) []byte {
	if n <= len(block) {
		return block[:n]
	}
	return bytes.Repeat([]byte{constants.FILLER_BYTE}, n)
}
