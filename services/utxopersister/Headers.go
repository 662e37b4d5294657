package utxopersister

import (
	"encoding/binary"
	"io"
	"strings"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/utxo-compressor/errors"
)

// HeaderSize is the length of a UTXO set file header.
const HeaderSize = 44

// BuildHeaderBytes builds the file header:
// - an 8-byte magic number to indicate the file type and version (right padded with 0x00)
// - a 32-byte hash (little endian) of the block that the data is for
// - a 4-byte little endian height of the block
func BuildHeaderBytes(magic string, blockHash *chainhash.Hash, blockHeight uint32) ([]byte, error) {
	if len(magic) > 8 {
		return nil, errors.NewStorageError("magic number is too long")
	}

	b := make([]byte, HeaderSize)
	copy(b[:8], magic)
	copy(b[8:40], blockHash[:])
	binary.LittleEndian.PutUint32(b[40:44], blockHeight)

	return b, nil
}

// GetHeaderFromReader reads a header written by BuildHeaderBytes.
func GetHeaderFromReader(reader io.Reader) (string, *chainhash.Hash, uint32, error) {
	b := make([]byte, HeaderSize)

	if _, err := io.ReadFull(reader, b); err != nil {
		return "", nil, 0, errors.NewStorageError("error reading header", err)
	}

	magic := strings.TrimRight(string(b[:8]), "\x00")

	blockHash, err := chainhash.NewHash(b[8:40])
	if err != nil {
		return "", nil, 0, errors.NewStorageError("error reading block hash", err)
	}

	blockHeight := binary.LittleEndian.Uint32(b[40:44])

	return magic, blockHash, blockHeight, nil
}
