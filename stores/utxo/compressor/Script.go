package compressor

import (
	safeconversion "github.com/bsv-blockchain/go-safe-conversion"
	"github.com/bsv-blockchain/utxo-compressor/errors"
	"github.com/bsv-blockchain/utxo-compressor/model"
	"github.com/bsv-blockchain/utxo-compressor/util"
	"github.com/bsv-blockchain/utxo-compressor/util/buffer"
)

// CompressScript writes the shortest encoding of s to w.
//
// Shapes are tried in a fixed order: pay-to-pubkey-hash, pay-to-script-hash, pay-to-pubkey,
// raw. The pubkey-hash and pubkey shapes must be minimally encoded, since the decompressor
// always rebuilds the minimal form.
func (c *Compressor) CompressScript(w *buffer.Writer, s *model.Script) error {
	if s.IsPubkeyhash(true) {
		w.WriteU8(tagPubkeyhash).WriteBytes(s.GetPubkeyhash(true))
		prometheusScriptsP2PKH.Inc()

		return nil
	}

	if s.IsScripthash() {
		w.WriteU8(tagScripthash).WriteBytes(s.GetScripthash())
		prometheusScriptsP2SH.Inc()

		return nil
	}

	if s.IsPubkey(true) {
		key := s.GetPubkey(true)

		if c.PublicKeyVerify(key) {
			out, err := c.CompressKey(key)
			if err != nil {
				return err
			}

			w.WriteBytes(out)
			prometheusScriptsP2PK.Inc()

			return nil
		}
	}

	raw := s.Raw()

	w.WriteVarint(uint64(len(raw)) + compressTypes).WriteBytes(raw)
	prometheusScriptsRaw.Inc()

	return nil
}

// DecompressScript reads a compressed script from r.
//
// A raw script whose declared length exceeds the maximum script size is not read: the
// cursor moves past the declared length and an empty OP_RETURN script is returned.
// A pay-to-pubkey key that cannot be decompressed is reported as a storage error.
func (c *Compressor) DecompressScript(r *buffer.Reader) (*model.Script, error) {
	start := r.Offset

	tag, err := r.ReadU8()
	if err != nil {
		return nil, err
	}

	switch tag {
	case tagPubkeyhash:
		hash, err := r.ReadBytes(hashSize, false)
		if err != nil {
			return nil, err
		}

		return model.NewScriptFromPubkeyhash(hash)

	case tagScripthash:
		hash, err := r.ReadBytes(hashSize, false)
		if err != nil {
			return nil, err
		}

		return model.NewScriptFromScripthash(hash)

	case 0x02, 0x03, 0x04, 0x05:
		// the tag is the first byte of the key
		r.Offset--

		data, err := r.ReadBytes(compressedKeySize, true)
		if err != nil {
			return nil, err
		}

		key, err := c.DecompressKey(data)
		if err != nil {
			return nil, errors.NewStorageError("[DecompressScript] corrupt pay-to-pubkey script at offset %d", start, err)
		}

		return model.NewScriptFromPubkey(key)
	}

	r.Offset--

	size, err := c.readScriptSize(r)
	if err != nil {
		return nil, err
	}

	if size > uint64(c.maxScriptSize) {
		if err = c.seekOversized(r, size); err != nil {
			return nil, err
		}

		c.logger.Debugf("[DecompressScript] script at offset %d declares %d bytes, over the %d byte limit, replaced with nulldata", start, size, c.maxScriptSize)
		prometheusOversizedScripts.Inc()

		return model.NewScriptFromNulldata(nil)
	}

	// size is bounded by maxScriptSize, which is an int
	raw, err := r.ReadBytes(int(size), false)
	if err != nil {
		return nil, err
	}

	return model.NewScriptFromRaw(raw), nil
}

// SizeScript returns the number of bytes CompressScript would write for s.
func (c *Compressor) SizeScript(s *model.Script) int {
	if s.IsPubkeyhash(true) || s.IsScripthash() {
		return 1 + hashSize
	}

	if s.IsPubkey(true) && c.PublicKeyVerify(s.GetPubkey(true)) {
		return compressedKeySize
	}

	l := s.Len()

	return util.VarintSize(uint64(l)+compressTypes) + l
}

// readScriptSize reads the raw script length prefix. Values below compressTypes belong to
// the tag space and cannot start a raw script.
func (c *Compressor) readScriptSize(r *buffer.Reader) (uint64, error) {
	start := r.Offset

	v, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}

	if v < compressTypes {
		return 0, errors.NewStorageError("invalid script tag %d at offset %d", v, start)
	}

	return v - compressTypes, nil
}

// seekOversized moves r past a raw script that is too large to decode. The payload is not
// required to be present.
func (c *Compressor) seekOversized(r *buffer.Reader, size uint64) error {
	n, err := safeconversion.Uint64ToInt(size)
	if err != nil {
		return errors.NewStorageError("script size %d at offset %d out of range", size, r.Offset, err)
	}

	return r.Seek(n)
}
