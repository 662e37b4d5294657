// Package buffer provides the byte cursor primitives the UTXO record codecs read from and write to.
// Variable-length integers are Bitcoin CompactSize, the same encoding go-bt uses for script
// and input/output counts.
package buffer

import (
	"github.com/bsv-blockchain/go-bt/v2"
)

// Writer appends to a growing byte slice. All write methods return the writer for chaining.
type Writer struct {
	buf []byte
}

// NewWriter returns a writer with capacity for size bytes.
func NewWriter(size int) *Writer {
	if size < 0 {
		size = 0
	}

	return &Writer{buf: make([]byte, 0, size)}
}

func (w *Writer) WriteU8(b byte) *Writer {
	w.buf = append(w.buf, b)
	return w
}

func (w *Writer) WriteBytes(b []byte) *Writer {
	w.buf = append(w.buf, b...)
	return w
}

func (w *Writer) WriteVarint(v uint64) *Writer {
	w.buf = append(w.buf, bt.VarInt(v).Bytes()...)
	return w
}

// Bytes returns the written bytes. The slice aliases the writer's storage.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}
