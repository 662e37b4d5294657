package utxopersister

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"testing"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/utxo-compressor/errors"
	"github.com/bsv-blockchain/utxo-compressor/model"
	"github.com/bsv-blockchain/utxo-compressor/stores/utxo/compressor"
	"github.com/bsv-blockchain/utxo-compressor/ulogger"
	"github.com/bsv-blockchain/utxo-compressor/util/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hash1 = chainhash.HashH([]byte{0x00, 0x01, 0x02, 0x03, 0x04})
	hash2 = chainhash.HashH([]byte{0x05, 0x06, 0x07, 0x08, 0x09})

	pubKeyHash, _ = hex.DecodeString("89abcdefabbaabbaabbaabbaabbaabbaabbaabba")
	pubKey, _     = hex.DecodeString("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
)

func newTestCompressor() *compressor.Compressor {
	return compressor.New(ulogger.TestLogger{}, nil)
}

func testWrapper(t *testing.T, txID chainhash.Hash, coinbase bool) *UTXOWrapper {
	t.Helper()

	p2pkh, err := model.NewScriptFromPubkeyhash(pubKeyHash)
	require.NoError(t, err)

	p2pk, err := model.NewScriptFromPubkey(pubKey)
	require.NoError(t, err)

	return &UTXOWrapper{
		TxID:     txID,
		Height:   12345,
		Coinbase: coinbase,
		UTXOs: []*UTXO{
			NewUTXOFromOutput(0, model.NewOutput(5000000000, p2pkh)),
			NewUTXOFromOutput(3, model.NewOutput(1, p2pk)),
			{Index: 300, Value: 1234567890, Script: []byte{0x00, 0x01, 0x02, 0x03, 0x04}},
		},
	}
}

func TestBits(t *testing.T) {
	for _, coinbase := range []bool{false, true} {
		height, cb := decodeHeight(encodeHeight(12345, coinbase))
		assert.Equal(t, uint32(12345), height)
		assert.Equal(t, coinbase, cb)
	}

	assert.Equal(t, uint32(12345<<1|1), encodeHeight(12345, true))
}

func TestBytesNormalTX(t *testing.T) {
	c := newTestCompressor()
	uw := testWrapper(t, hash1, false)

	b, err := uw.Bytes(c)
	require.NoError(t, err)

	// txid + height + count + (index + value + script) per output
	assert.Len(t, b, 32+4+1+(1+9+21)+(1+1+33)+(3+5+1+5))
	assert.Equal(t, uw.Size(c), len(b))

	uw2, err := NewUTXOWrapperFromBytes(c, b)
	require.NoError(t, err)

	assert.Equal(t, uw.TxID, uw2.TxID)
	assert.Equal(t, uw.Height, uw2.Height)
	assert.Equal(t, uw.Coinbase, uw2.Coinbase)
	require.Len(t, uw2.UTXOs, len(uw.UTXOs))

	for i := range uw.UTXOs {
		assert.Equal(t, uw.UTXOs[i].Index, uw2.UTXOs[i].Index)
		assert.Equal(t, uw.UTXOs[i].Value, uw2.UTXOs[i].Value)
		assert.Equal(t, uw.UTXOs[i].Script, uw2.UTXOs[i].Script)
	}
}

func TestBytesCoinbaseTX(t *testing.T) {
	c := newTestCompressor()
	uw := testWrapper(t, hash2, true)

	b, err := uw.Bytes(c)
	require.NoError(t, err)

	uw2, err := NewUTXOWrapperFromBytes(c, b)
	require.NoError(t, err)

	assert.True(t, uw2.Coinbase)
	assert.Equal(t, uint32(12345), uw2.Height)
	assert.Contains(t, uw2.String(), "coinbase")
}

func TestUTXOWrapperEOF(t *testing.T) {
	c := newTestCompressor()

	uw, err := NewUTXOWrapperFromBytes(c, EOFMarker)
	assert.Equal(t, io.EOF, err)
	assert.Empty(t, uw.UTXOs)

	n, err := SkipUTXOWrapper(c, buffer.NewReader(EOFMarker))
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 0, n)
}

func TestUTXOWrapperCorrupt(t *testing.T) {
	c := newTestCompressor()

	b, err := testWrapper(t, hash1, false).Bytes(c)
	require.NoError(t, err)

	t.Run("truncated", func(t *testing.T) {
		for _, l := range []int{10, 32, 36, 37, 40, len(b) - 1} {
			_, err := NewUTXOWrapperFromBytes(c, b[:l])
			require.Error(t, err, "length %d", l)
			assert.True(t, errors.Is(err, errors.ErrStorageError))

			_, err = SkipUTXOWrapper(c, buffer.NewReader(b[:l]))
			require.Error(t, err, "length %d", l)
		}
	})

	t.Run("too many utxos", func(t *testing.T) {
		corrupt := bytes.Clone(b)
		corrupt[36] = 0xfc

		_, err := NewUTXOWrapperFromBytes(c, corrupt)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrStorageError))
	})

	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewUTXOWrapperFromReader(ctx, c, buffer.NewReader(b))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrContextCanceled))
	})
}

func TestSkipUTXOWrapper(t *testing.T) {
	c := newTestCompressor()

	b1, err := testWrapper(t, hash1, false).Bytes(c)
	require.NoError(t, err)

	b2, err := testWrapper(t, hash2, true).Bytes(c)
	require.NoError(t, err)

	data := append(append(append([]byte{}, b1...), b2...), EOFMarker...)
	r := buffer.NewReader(data)

	n, err := SkipUTXOWrapper(c, r)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, len(b1), r.Offset)

	n, err = SkipUTXOWrapper(c, r)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, len(b1)+len(b2), r.Offset)

	_, err = SkipUTXOWrapper(c, r)
	assert.Equal(t, io.EOF, err)
}

func TestNewUTXOWrapperFromTx(t *testing.T) {
	p2pkh, err := model.NewScriptFromPubkeyhash(pubKeyHash)
	require.NoError(t, err)

	nulldata, err := model.NewScriptFromNulldata([]byte("data"))
	require.NoError(t, err)

	tx := bt.NewTx()
	tx.AddOutput(&bt.Output{Satoshis: 1000, LockingScript: p2pkh.Bt()})
	tx.AddOutput(&bt.Output{Satoshis: 0, LockingScript: nulldata.Bt()})
	tx.AddOutput(&bt.Output{Satoshis: 2000, LockingScript: p2pkh.Bt()})

	uw := NewUTXOWrapperFromTx(tx, 42)
	assert.Equal(t, *tx.TxIDChainHash(), uw.TxID)
	assert.Equal(t, uint32(42), uw.Height)
	require.Len(t, uw.UTXOs, 2)
	assert.Equal(t, uint32(0), uw.UTXOs[0].Index)
	assert.Equal(t, uint32(2), uw.UTXOs[1].Index)
	assert.Equal(t, uint64(2000), uw.UTXOs[1].Value)
	assert.Equal(t, p2pkh.Raw(), uw.UTXOs[1].Script)
}
