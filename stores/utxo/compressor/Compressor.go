// Package compressor implements the compact encoding used to store unspent outputs.
//
// A record is varint(value) followed by a compressed script. The script is reduced to a
// one byte tag plus payload when it is one of the standard shapes:
//
//	0x00 ++ hash160        pay-to-pubkey-hash (21 bytes)
//	0x01 ++ hash160        pay-to-script-hash (21 bytes)
//	0x02..0x05 ++ x        pay-to-pubkey, the tag is the key prefix (33 bytes)
//	varint(len+10) ++ raw  anything else
//
// Tags 0x04 and 0x05 mark a key that was 65 bytes uncompressed; the low bit holds the
// parity of y so the original key can be rebuilt exactly.
//
// Decoding never allocates more than the configured maximum script size for a raw script.
// A larger declared length is skipped and decodes to an empty OP_RETURN script.
package compressor

import (
	"github.com/bsv-blockchain/utxo-compressor/settings"
	"github.com/bsv-blockchain/utxo-compressor/ulogger"
)

const (
	tagPubkeyhash = 0x00
	tagScripthash = 0x01

	// compressTypes is the number of tag values reserved ahead of the raw script length.
	compressTypes = 10

	compressedKeySize   = 33
	uncompressedKeySize = 65
	hashSize            = 20
)

type Compressor struct {
	logger        ulogger.Logger
	curve         Curve
	maxScriptSize int
}

type Option func(*Compressor)

// WithCurve replaces the secp256k1 implementation used for key validation and (de)compression.
func WithCurve(curve Curve) Option {
	return func(c *Compressor) {
		c.curve = curve
	}
}

// WithMaxScriptSize overrides the limit taken from settings.
func WithMaxScriptSize(size int) Option {
	return func(c *Compressor) {
		c.maxScriptSize = size
	}
}

// New creates a Compressor. The maximum script size comes from tSettings when given,
// otherwise settings.DefaultMaxScriptSize applies. A nil logger discards log output.
func New(logger ulogger.Logger, tSettings *settings.Settings, opts ...Option) *Compressor {
	initPrometheusMetrics()

	if logger == nil {
		logger = ulogger.TestLogger{}
	}

	c := &Compressor{
		logger:        logger,
		curve:         Secp256k1{},
		maxScriptSize: settings.DefaultMaxScriptSize,
	}

	if tSettings != nil {
		c.maxScriptSize = tSettings.Compressor.MaxScriptSize
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.maxScriptSize < 0 {
		logger.Warnf("[Compressor] negative max script size %d, using %d", c.maxScriptSize, settings.DefaultMaxScriptSize)
		c.maxScriptSize = settings.DefaultMaxScriptSize
	}

	return c
}

func (c *Compressor) MaxScriptSize() int {
	return c.maxScriptSize
}
