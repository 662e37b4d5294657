package compressor

import (
	"github.com/bsv-blockchain/utxo-compressor/model"
	"github.com/bsv-blockchain/utxo-compressor/util"
	"github.com/bsv-blockchain/utxo-compressor/util/buffer"
)

// CompressOutput writes varint(value) followed by the compressed script.
// The value is written as a plain varint, CompressValue is not applied.
func (c *Compressor) CompressOutput(w *buffer.Writer, o *model.Output) error {
	w.WriteVarint(o.Value)

	return c.CompressScript(w, o.Script)
}

func (c *Compressor) DecompressOutput(r *buffer.Reader) (*model.Output, error) {
	value, script, err := c.decompressRecord(r)
	if err != nil {
		return nil, err
	}

	return model.NewOutput(value, script), nil
}

// SizeOutput returns the number of bytes CompressOutput would write for o.
func (c *Compressor) SizeOutput(o *model.Output) int {
	return util.VarintSize(o.Value) + c.SizeScript(o.Script)
}

// CompressCoin writes the value and script of coin in the same format as CompressOutput.
// Height and coinbase are not part of the record.
func (c *Compressor) CompressCoin(w *buffer.Writer, coin *model.Coin) error {
	w.WriteVarint(coin.Value)

	return c.CompressScript(w, coin.Script)
}

// DecompressCoin reads a record written by CompressCoin. Height and coinbase are left zero.
func (c *Compressor) DecompressCoin(r *buffer.Reader) (*model.Coin, error) {
	value, script, err := c.decompressRecord(r)
	if err != nil {
		return nil, err
	}

	return model.NewCoin(value, script, 0, false), nil
}

func (c *Compressor) SizeCoin(coin *model.Coin) int {
	return util.VarintSize(coin.Value) + c.SizeScript(coin.Script)
}

// SkipOutput moves r past one compressed record without building the script and returns
// the number of bytes it advanced. It follows the same cursor movement as DecompressOutput,
// including the unchecked jump over an oversized raw script.
func (c *Compressor) SkipOutput(r *buffer.Reader) (int, error) {
	start := r.Offset

	if _, err := r.SkipVarint(); err != nil {
		return 0, err
	}

	tag, err := r.ReadU8()
	if err != nil {
		return 0, err
	}

	switch tag {
	case tagPubkeyhash, tagScripthash:
		if _, err = r.ReadBytes(hashSize, true); err != nil {
			return 0, err
		}

	case 0x02, 0x03, 0x04, 0x05:
		if _, err = r.ReadBytes(compressedKeySize-1, true); err != nil {
			return 0, err
		}

	default:
		r.Offset--

		size, err := c.readScriptSize(r)
		if err != nil {
			return 0, err
		}

		if size > uint64(c.maxScriptSize) {
			if err = c.seekOversized(r, size); err != nil {
				return 0, err
			}
		} else if _, err = r.ReadBytes(int(size), true); err != nil {
			return 0, err
		}
	}

	return r.Offset - start, nil
}

func (c *Compressor) decompressRecord(r *buffer.Reader) (uint64, *model.Script, error) {
	value, err := r.ReadVarint()
	if err != nil {
		return 0, nil, err
	}

	script, err := c.DecompressScript(r)
	if err != nil {
		return 0, nil, err
	}

	return value, script, nil
}
