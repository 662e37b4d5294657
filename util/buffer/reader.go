package buffer

import (
	"math"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/utxo-compressor/errors"
	"github.com/bsv-blockchain/utxo-compressor/util"
)

// Reader is a cursor over an immutable byte slice.
//
// Offset is exported so a decoder can step back over a byte it has just peeked at.
// Offset may point past the end of the data after a Seek; any read from there fails
// with ERR_BUFFER_UNDERFLOW.
type Reader struct {
	data   []byte
	Offset int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the total length of the underlying data.
func (r *Reader) Len() int {
	return len(r.data)
}

// Left returns the number of unread bytes.
func (r *Reader) Left() int {
	if r.Offset < 0 || r.Offset >= len(r.data) {
		return 0
	}

	return len(r.data) - r.Offset
}

func (r *Reader) check(n int) error {
	if n < 0 || r.Offset < 0 || r.Offset > len(r.data) || n > len(r.data)-r.Offset {
		return errors.NewBufferUnderflowError("need %d bytes at offset %d, %d available", n, r.Offset, r.Left())
	}

	return nil
}

func (r *Reader) ReadU8() (byte, error) {
	if err := r.check(1); err != nil {
		return 0, err
	}

	b := r.data[r.Offset]
	r.Offset++

	return b, nil
}

// ReadBytes reads n bytes. With zeroCopy the result aliases the reader's data and must
// not be modified; otherwise a fresh copy is returned.
func (r *Reader) ReadBytes(n int, zeroCopy bool) ([]byte, error) {
	if err := r.check(n); err != nil {
		return nil, err
	}

	var b []byte

	if zeroCopy {
		b = r.data[r.Offset : r.Offset+n : r.Offset+n]
	} else {
		b = make([]byte, n)
		copy(b, r.data[r.Offset:r.Offset+n])
	}

	r.Offset += n

	return b, nil
}

// ReadVarint reads a CompactSize integer. Encodings that are not the shortest possible
// for their value are rejected.
func (r *Reader) ReadVarint() (uint64, error) {
	size, err := r.varintSize()
	if err != nil {
		return 0, err
	}

	v, n := bt.NewVarIntFromBytes(r.data[r.Offset : r.Offset+size])

	if util.VarintSize(uint64(v)) != n {
		return 0, errors.NewStorageError("non-canonical varint at offset %d", r.Offset)
	}

	r.Offset += n

	return uint64(v), nil
}

// SkipVarint moves past a CompactSize integer without decoding it and returns its length.
func (r *Reader) SkipVarint() (int, error) {
	size, err := r.varintSize()
	if err != nil {
		return 0, err
	}

	r.Offset += size

	return size, nil
}

// Seek moves the cursor n bytes relative to its current position. Moving past the end
// of the data is allowed.
func (r *Reader) Seek(n int) error {
	if n > 0 && r.Offset > math.MaxInt-n {
		return errors.NewBufferUnderflowError("seek of %d bytes from offset %d overflows", n, r.Offset)
	}

	if r.Offset+n < 0 {
		return errors.NewBufferUnderflowError("seek of %d bytes from offset %d is before start of buffer", n, r.Offset)
	}

	r.Offset += n

	return nil
}

func (r *Reader) varintSize() (int, error) {
	if err := r.check(1); err != nil {
		return 0, err
	}

	size := util.VarintPrefixSize(r.data[r.Offset])

	if err := r.check(size); err != nil {
		return 0, err
	}

	return size, nil
}
