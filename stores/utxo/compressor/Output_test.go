package compressor

import (
	"bytes"
	"testing"

	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/utxo-compressor/errors"
	"github.com/bsv-blockchain/utxo-compressor/model"
	"github.com/bsv-blockchain/utxo-compressor/util/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOutputs(t *testing.T) []*model.Output {
	t.Helper()

	p2pkh, err := model.NewScriptFromPubkeyhash(testHash)
	require.NoError(t, err)

	p2sh, err := model.NewScriptFromScripthash(testHash)
	require.NoError(t, err)

	p2pk, err := model.NewScriptFromPubkey(mustDecodeHex(t, generatorCompressed))
	require.NoError(t, err)

	p2pkUncompressed, err := model.NewScriptFromPubkey(mustDecodeHex(t, generatorUncompressed))
	require.NoError(t, err)

	nulldata, err := model.NewScriptFromNulldata(bytes.Repeat([]byte{0x42}, 80))
	require.NoError(t, err)

	return []*model.Output{
		model.NewOutput(0, p2pkh),
		model.NewOutput(1, p2sh),
		model.NewOutput(5000000000, p2pk),
		model.NewOutput(MaxSatoshis, p2pkUncompressed),
		model.NewOutput(0xfd, nulldata),
		model.NewOutput(0x10000, model.NewScriptFromRaw(bytes.Repeat([]byte{bscript.OpNOP}, 400))),
		model.NewOutput(42, model.NewScriptFromRaw(nil)),
	}
}

func TestOutputRoundTrip(t *testing.T) {
	c := newTestCompressor()

	for _, o := range testOutputs(t) {
		w := buffer.NewWriter(c.SizeOutput(o))
		require.NoError(t, c.CompressOutput(w, o))

		r := buffer.NewReader(w.Bytes())

		decoded, err := c.DecompressOutput(r)
		require.NoError(t, err)
		assert.Equal(t, o.Value, decoded.Value)
		assert.True(t, o.Script.Equals(decoded.Script), "script %s", o.Script)
		assert.Equal(t, 0, r.Left())
	}
}

func TestOutputValueIsPlainVarint(t *testing.T) {
	c := newTestCompressor()

	p2pkh, err := model.NewScriptFromPubkeyhash(testHash)
	require.NoError(t, err)

	w := buffer.NewWriter(0)
	require.NoError(t, c.CompressOutput(w, model.NewOutput(100000000, p2pkh)))

	want := []byte{0xfe, 0x00, 0xe1, 0xf5, 0x05, 0x00}
	want = append(want, testHash...)

	assert.Equal(t, want, w.Bytes())
}

func TestCoinRoundTrip(t *testing.T) {
	c := newTestCompressor()

	for _, o := range testOutputs(t) {
		coin := model.NewCoin(o.Value, o.Script, 700000, true)

		w := buffer.NewWriter(0)
		require.NoError(t, c.CompressCoin(w, coin))
		assert.Equal(t, c.SizeCoin(coin), w.Len())

		// coins and outputs share the record format
		ow := buffer.NewWriter(0)
		require.NoError(t, c.CompressOutput(ow, o))
		assert.Equal(t, ow.Bytes(), w.Bytes())

		decoded, err := c.DecompressCoin(buffer.NewReader(w.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, coin.Value, decoded.Value)
		assert.True(t, coin.Script.Equals(decoded.Script))
		assert.Equal(t, uint32(0), decoded.Height)
		assert.False(t, decoded.Coinbase)
	}
}

func TestSizeAndSkipConsistency(t *testing.T) {
	c := newTestCompressor()

	outputs := testOutputs(t)

	w := buffer.NewWriter(0)
	sizes := make([]int, 0, len(outputs))

	for _, o := range outputs {
		before := w.Len()
		require.NoError(t, c.CompressOutput(w, o))

		sizes = append(sizes, w.Len()-before)
		assert.Equal(t, c.SizeOutput(o), w.Len()-before, "output %s", o)
	}

	r := buffer.NewReader(w.Bytes())

	for i := range outputs {
		start := r.Offset

		n, err := c.SkipOutput(r)
		require.NoError(t, err)
		assert.Equal(t, sizes[i], n)
		assert.Equal(t, start+sizes[i], r.Offset)
	}

	assert.Equal(t, 0, r.Left())
}

func TestSkipOutputOversized(t *testing.T) {
	c := newTestCompressor(WithMaxScriptSize(100))

	w := buffer.NewWriter(0)
	w.WriteVarint(1000).WriteVarint(200 + 10).WriteBytes([]byte{0x51})

	r := buffer.NewReader(w.Bytes())

	n, err := c.SkipOutput(r)
	require.NoError(t, err)
	assert.Equal(t, 3+1+200, n)

	// decompression moves the cursor the same distance
	r = buffer.NewReader(w.Bytes())

	o, err := c.DecompressOutput(r)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), o.Value)
	assert.True(t, o.Script.IsNulldata())
	assert.Equal(t, n, r.Offset)
}

func TestSkipOutputErrors(t *testing.T) {
	c := newTestCompressor()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, errors.ErrBufferUnderflow},
		{"value only", []byte{0x01}, errors.ErrBufferUnderflow},
		{"truncated value", []byte{0xfe, 0x00}, errors.ErrBufferUnderflow},
		{"truncated hash", append([]byte{0x01, 0x00}, testHash[:10]...), errors.ErrBufferUnderflow},
		{"truncated key", append([]byte{0x01}, mustDecodeHex(t, generatorCompressed)[:20]...), errors.ErrBufferUnderflow},
		{"truncated raw", []byte{0x01, 0x0a + 3, 0x51}, errors.ErrBufferUnderflow},
		{"size inside the tag space", []byte{0x01, 0x07}, errors.ErrStorageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.SkipOutput(buffer.NewReader(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
		})
	}
}

func TestDecompressOutputErrors(t *testing.T) {
	c := newTestCompressor()

	_, err := c.DecompressOutput(buffer.NewReader([]byte{0xfd, 0x01, 0x00, 0x00}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStorageError), "non-canonical value varint")

	_, err = c.DecompressOutput(buffer.NewReader([]byte{0x05}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBufferUnderflow))
}
