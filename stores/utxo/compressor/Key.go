package compressor

import (
	"github.com/bsv-blockchain/utxo-compressor/errors"
)

// PublicKeyVerify reports whether key is a well-formed compressed key or an on-curve
// uncompressed key. Hybrid keys (0x06, 0x07) are rejected.
func (c *Compressor) PublicKeyVerify(key []byte) bool {
	if len(key) == 0 {
		return false
	}

	switch key[0] {
	case 0x02, 0x03:
		return len(key) == compressedKeySize
	case 0x04:
		return len(key) == uncompressedKeySize && c.curve.PointIsValid(key)
	default:
		return false
	}
}

// CompressKey returns the 33 byte form of key. Compressed keys are returned as is.
// Uncompressed keys are compressed and tagged 0x04 or 0x05 by the parity of y, so that
// DecompressKey restores the 65 byte original.
//
// The key must have passed PublicKeyVerify; any other prefix is a format error.
func (c *Compressor) CompressKey(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, errors.NewKeyFormatError("[CompressKey] empty public key")
	}

	switch key[0] {
	case 0x02, 0x03:
		if len(key) != compressedKeySize {
			return nil, errors.NewKeyFormatError("[CompressKey] compressed public key must be %d bytes, got %d", compressedKeySize, len(key))
		}

		return key, nil

	case 0x04:
		if len(key) != uncompressedKeySize {
			return nil, errors.NewKeyFormatError("[CompressKey] uncompressed public key must be %d bytes, got %d", uncompressedKeySize, len(key))
		}

		out, err := c.curve.PointCompress(key)
		if err != nil {
			return nil, errors.NewKeyFormatError("[CompressKey] failed to compress public key", err)
		}

		if len(out) != compressedKeySize {
			return nil, errors.NewKeyFormatError("[CompressKey] curve returned %d bytes for a compressed key", len(out))
		}

		out[0] = 0x04 | (key[64] & 0x01)

		return out, nil

	default:
		return nil, errors.NewKeyFormatError("[CompressKey] unknown public key prefix 0x%02x", key[0])
	}
}

// DecompressKey reverses CompressKey. Tags 0x02 and 0x03 are returned as is; tags 0x04
// and 0x05 are expanded to the 65 byte uncompressed key. key is never modified.
func (c *Compressor) DecompressKey(key []byte) ([]byte, error) {
	if len(key) != compressedKeySize {
		return nil, errors.NewKeyFormatError("[DecompressKey] compressed public key must be %d bytes, got %d", compressedKeySize, len(key))
	}

	format := key[0]

	switch format {
	case 0x02, 0x03:
		return key, nil
	case 0x04, 0x05:
	default:
		return nil, errors.NewKeyFormatError("[DecompressKey] unknown public key tag 0x%02x", format)
	}

	// the curve needs the standard 0x02/0x03 prefix, substitute it on a private copy
	var point [compressedKeySize]byte

	copy(point[:], key)
	point[0] = format - 2

	out, err := c.curve.PointDecompress(point[:])
	if err != nil {
		return nil, errors.NewKeyFormatError("[DecompressKey] failed to decompress public key", err)
	}

	if len(out) != uncompressedKeySize {
		return nil, errors.NewKeyFormatError("[DecompressKey] curve returned %d bytes for an uncompressed key", len(out))
	}

	return out, nil
}
