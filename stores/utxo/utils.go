package utxo

import (
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/utxo-compressor/errors"
	"github.com/bsv-blockchain/utxo-compressor/model"
	"github.com/bsv-blockchain/utxo-compressor/stores/utxo/compressor"
	"github.com/bsv-blockchain/utxo-compressor/util"
	"github.com/bsv-blockchain/utxo-compressor/util/buffer"
)

// CoinKeyPrefix starts every coin key, as in the bitcoind chainstate.
const CoinKeyPrefix = 'C'

// CoinKey returns 'C' ++ txid ++ varint(index).
func CoinKey(txID *chainhash.Hash, index uint32) []byte {
	w := buffer.NewWriter(1 + chainhash.HashSize + util.VarintSize(uint64(index)))
	w.WriteU8(CoinKeyPrefix).WriteBytes(txID[:]).WriteVarint(uint64(index))

	return w.Bytes()
}

// ParseCoinKey is the inverse of CoinKey.
func ParseCoinKey(key []byte) (*chainhash.Hash, uint32, error) {
	r := buffer.NewReader(key)

	prefix, err := r.ReadU8()
	if err != nil || prefix != CoinKeyPrefix {
		return nil, 0, errors.NewStorageError("invalid coin key %x", key)
	}

	b, err := r.ReadBytes(chainhash.HashSize, false)
	if err != nil {
		return nil, 0, errors.NewStorageError("invalid coin key %x", key, err)
	}

	txID, err := chainhash.NewHash(b)
	if err != nil {
		return nil, 0, errors.NewStorageError("invalid coin key %x", key, err)
	}

	index, err := r.ReadVarint()
	if err != nil {
		return nil, 0, errors.NewStorageError("invalid coin key %x", key, err)
	}

	if index > uint64(^uint32(0)) || r.Left() != 0 {
		return nil, 0, errors.NewStorageError("invalid coin key %x", key)
	}

	return txID, uint32(index), nil
}

// EncodeCoin returns varint(height<<1 | coinbase) ++ the compressed coin.
func EncodeCoin(c *compressor.Compressor, coin *model.Coin) ([]byte, error) {
	code := uint64(coin.Height) << 1
	if coin.Coinbase {
		code |= 1
	}

	w := buffer.NewWriter(util.VarintSize(code) + c.SizeCoin(coin))
	w.WriteVarint(code)

	if err := c.CompressCoin(w, coin); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// DecodeCoin is the inverse of EncodeCoin. The whole of b must be consumed.
func DecodeCoin(c *compressor.Compressor, b []byte) (*model.Coin, error) {
	r := buffer.NewReader(b)

	height, coinbase, err := readHeightCode(r)
	if err != nil {
		return nil, err
	}

	coin, err := c.DecompressCoin(r)
	if err != nil {
		return nil, errors.NewStorageError("corrupt coin record", err)
	}

	if r.Offset != len(b) {
		return nil, errors.NewStorageError("coin record has %d bytes, decoded %d", len(b), r.Offset)
	}

	coin.Height = height
	coin.Coinbase = coinbase

	return coin, nil
}

// CheckCoin verifies the length of an encoded coin without decoding its script.
func CheckCoin(c *compressor.Compressor, b []byte) error {
	r := buffer.NewReader(b)

	if _, _, err := readHeightCode(r); err != nil {
		return err
	}

	if _, err := c.SkipOutput(r); err != nil {
		return errors.NewStorageError("corrupt coin record", err)
	}

	if r.Offset != len(b) {
		return errors.NewStorageError("coin record has %d bytes, skipped %d", len(b), r.Offset)
	}

	return nil
}

func readHeightCode(r *buffer.Reader) (uint32, bool, error) {
	code, err := r.ReadVarint()
	if err != nil {
		return 0, false, errors.NewStorageError("corrupt coin height", err)
	}

	if code>>1 > uint64(^uint32(0)) {
		return 0, false, errors.NewStorageError("coin height %d out of range", code>>1)
	}

	return uint32(code >> 1), code&1 == 1, nil
}
