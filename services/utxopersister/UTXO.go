// Package utxopersister reads and writes UTXO set files. A file is a sequence of per-transaction
// records, each holding the unspent outputs of one transaction in compressed form, followed by
// the EOF marker and a footer with record and output counts.
package utxopersister

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/utxo-compressor/errors"
	"github.com/bsv-blockchain/utxo-compressor/model"
	"github.com/bsv-blockchain/utxo-compressor/stores/utxo/compressor"
	"github.com/bsv-blockchain/utxo-compressor/util"
	"github.com/bsv-blockchain/utxo-compressor/util/buffer"
)

var EOFMarker = make([]byte, 32) // 32 zero bytes

// A record is laid out as:
// - 32 bytes - txID
// - 4 bytes - encoded height and coinbase flag
// - varint - number of outputs
// - and then for each output:
//   - varint - index
//   - compressed output (varint value ++ compressed script)

type UTXOWrapper struct {
	TxID     chainhash.Hash
	Height   uint32
	Coinbase bool
	UTXOs    []*UTXO
}

type UTXO struct {
	Index  uint32
	Value  uint64
	Script []byte
}

// NewUTXOWrapperFromTx collects the outputs of tx that can be spent. Provably unspendable
// OP_RETURN outputs are left out.
func NewUTXOWrapperFromTx(tx *bt.Tx, height uint32) *UTXOWrapper {
	uw := &UTXOWrapper{
		TxID:     *tx.TxIDChainHash(),
		Height:   height,
		Coinbase: tx.IsCoinbase(),
		UTXOs:    make([]*UTXO, 0, len(tx.Outputs)),
	}

	for i, output := range tx.Outputs {
		o := model.NewOutputFromBt(output)

		if o.Script.IsNulldata() {
			continue
		}

		// nolint: gosec
		uw.UTXOs = append(uw.UTXOs, NewUTXOFromOutput(uint32(i), o))
	}

	return uw
}

// Size returns the length of the record Bytes would produce.
func (uw *UTXOWrapper) Size(c *compressor.Compressor) int {
	size := 32 + 4 + util.VarintSize(uint64(len(uw.UTXOs)))

	for _, u := range uw.UTXOs {
		size += util.VarintSize(uint64(u.Index)) + c.SizeOutput(u.Output())
	}

	return size
}

func (uw *UTXOWrapper) Bytes(c *compressor.Compressor) ([]byte, error) {
	w := buffer.NewWriter(uw.Size(c))

	w.WriteBytes(uw.TxID[:])

	// To store the height and coinbase flag in a single uint32:
	// 1.	Shift the height left by 1 bit to leave space for the flag.
	// 2.	Set the flag as the least significant bit.
	var b [4]byte

	binary.LittleEndian.PutUint32(b[:], encodeHeight(uw.Height, uw.Coinbase))
	w.WriteBytes(b[:])

	w.WriteVarint(uint64(len(uw.UTXOs)))

	for _, u := range uw.UTXOs {
		w.WriteVarint(uint64(u.Index))

		if err := c.CompressOutput(w, u.Output()); err != nil {
			return nil, errors.NewProcessingError("[UTXOWrapper] failed to compress output %s:%d", uw.TxID, u.Index, err)
		}
	}

	return w.Bytes(), nil
}

// NewUTXOWrapperFromReader reads one record from r. When r is positioned at the EOF marker an
// empty UTXOWrapper and io.EOF are returned.
func NewUTXOWrapperFromReader(ctx context.Context, c *compressor.Compressor, r *buffer.Reader) (*UTXOWrapper, error) {
	select {
	case <-ctx.Done():
		return nil, errors.NewContextCanceledError("[UTXOWrapper] context done", ctx.Err())
	default:
	}

	txID, err := r.ReadBytes(32, true)
	if err != nil {
		return nil, errors.NewStorageError("failed to read txid", err)
	}

	// Check if all the bytes are zero
	if bytes.Equal(txID, EOFMarker) {
		return &UTXOWrapper{}, io.EOF
	}

	uw := &UTXOWrapper{}
	copy(uw.TxID[:], txID)

	b, err := r.ReadBytes(4, true)
	if err != nil {
		return nil, errors.NewStorageError("failed to read height of %s", uw.TxID, err)
	}

	uw.Height, uw.Coinbase = decodeHeight(binary.LittleEndian.Uint32(b))

	numUTXOs, err := r.ReadVarint()
	if err != nil {
		return nil, errors.NewStorageError("failed to read number of utxos of %s", uw.TxID, err)
	}

	// every output takes at least 3 bytes, bound the allocation by what is left
	if numUTXOs > uint64(r.Left()/3) {
		return nil, errors.NewStorageError("%s declares %d utxos, only %d bytes left", uw.TxID, numUTXOs, r.Left())
	}

	uw.UTXOs = make([]*UTXO, numUTXOs)

	for i := range uw.UTXOs {
		if uw.UTXOs[i], err = newUTXOFromReader(c, r); err != nil {
			return nil, errors.NewStorageError("failed to read utxo %d of %s", i, uw.TxID, err)
		}
	}

	return uw, nil
}

func NewUTXOWrapperFromBytes(c *compressor.Compressor, b []byte) (*UTXOWrapper, error) {
	return NewUTXOWrapperFromReader(context.Background(), c, buffer.NewReader(b))
}

// SkipUTXOWrapper moves r past one record without decoding its scripts and returns the number
// of outputs it held. It returns io.EOF at the EOF marker.
func SkipUTXOWrapper(c *compressor.Compressor, r *buffer.Reader) (int, error) {
	txID, err := r.ReadBytes(32, true)
	if err != nil {
		return 0, errors.NewStorageError("failed to read txid", err)
	}

	if bytes.Equal(txID, EOFMarker) {
		return 0, io.EOF
	}

	if err = r.Seek(4); err != nil {
		return 0, err
	}

	numUTXOs, err := r.ReadVarint()
	if err != nil {
		return 0, errors.NewStorageError("failed to read number of utxos", err)
	}

	for i := uint64(0); i < numUTXOs; i++ {
		if _, err = r.SkipVarint(); err != nil {
			return 0, errors.NewStorageError("failed to skip index of utxo %d", i, err)
		}

		if _, err = c.SkipOutput(r); err != nil {
			return 0, errors.NewStorageError("failed to skip utxo %d", i, err)
		}
	}

	// SkipOutput may jump over an oversized script that is not there
	if r.Offset > r.Len() {
		return 0, errors.NewStorageError("record runs %d bytes past the end of the data", r.Offset-r.Len())
	}

	return int(numUTXOs), nil
}

func (uw *UTXOWrapper) String() string {
	s := strings.Builder{}

	if uw.Coinbase {
		s.WriteString(fmt.Sprintf("%s - (height %d coinbase) - %d output(s):\n", uw.TxID.String(), uw.Height, len(uw.UTXOs)))
	} else {
		s.WriteString(fmt.Sprintf("%s - (height %d) - %d output(s):\n", uw.TxID.String(), uw.Height, len(uw.UTXOs)))
	}

	for _, u := range uw.UTXOs {
		s.WriteString(fmt.Sprintf("\t%v\n", u))
	}

	return s.String()
}

// NewUTXOFromOutput takes the value and script of o. The script bytes are shared.
func NewUTXOFromOutput(index uint32, o *model.Output) *UTXO {
	return &UTXO{
		Index:  index,
		Value:  o.Value,
		Script: o.Script.Raw(),
	}
}

func newUTXOFromReader(c *compressor.Compressor, r *buffer.Reader) (*UTXO, error) {
	index, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}

	if index > uint64(^uint32(0)) {
		return nil, errors.NewStorageError("output index %d out of range", index)
	}

	o, err := c.DecompressOutput(r)
	if err != nil {
		return nil, err
	}

	return NewUTXOFromOutput(uint32(index), o), nil
}

// Output returns the UTXO as a model output sharing the script bytes.
func (u *UTXO) Output() *model.Output {
	return model.NewOutput(u.Value, model.NewScriptFromRaw(u.Script))
}

func (u *UTXO) String() string {
	return fmt.Sprintf("%d: %d - %x", u.Index, u.Value, u.Script)
}

func encodeHeight(height uint32, coinbase bool) uint32 {
	var flag uint32
	if coinbase {
		flag = 1
	}

	return (height << 1) | flag
}

func decodeHeight(encoded uint32) (uint32, bool) {
	return encoded >> 1, (encoded & 1) == 1
}
