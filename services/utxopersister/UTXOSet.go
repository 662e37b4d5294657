package utxopersister

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/utxo-compressor/errors"
	"github.com/bsv-blockchain/utxo-compressor/stores/utxo/compressor"
	"github.com/bsv-blockchain/utxo-compressor/ulogger"
	"github.com/bsv-blockchain/utxo-compressor/util/buffer"
)

// UTXOSetMagic identifies a UTXO set file with compressed outputs.
const UTXOSetMagic = "U-S-2.0"

// The file format is as follows:
// - the header (see BuildHeaderBytes)
// - the records (see UTXOWrapper)
// - the footer (see GetFooter)

// UTXOSetWriter writes a UTXO set file. It is safe for concurrent use.
type UTXOSetWriter struct {
	logger     ulogger.Logger
	compressor *compressor.Compressor
	blockHash  chainhash.Hash
	w          *bufio.Writer
	txCount    uint64
	utxoCount  uint64
	closed     bool
	mu         sync.Mutex
}

// NewUTXOSetWriter writes the file header to w and returns a writer for the records.
func NewUTXOSetWriter(logger ulogger.Logger, c *compressor.Compressor, w io.Writer, blockHash *chainhash.Hash, blockHeight uint32) (*UTXOSetWriter, error) {
	header, err := BuildHeaderBytes(UTXOSetMagic, blockHash, blockHeight)
	if err != nil {
		return nil, err
	}

	bw := bufio.NewWriter(w)

	if _, err = bw.Write(header); err != nil {
		return nil, errors.NewStorageError("error writing header", err)
	}

	logger.Infof("[UTXOSetWriter] writing utxo set for block %s (height %d)", blockHash, blockHeight)

	return &UTXOSetWriter{
		logger:     logger,
		compressor: c,
		blockHash:  *blockHash,
		w:          bw,
	}, nil
}

// Write appends one record. Records without outputs are skipped.
func (us *UTXOSetWriter) Write(uw *UTXOWrapper) error {
	if len(uw.UTXOs) == 0 {
		return nil
	}

	if bytes.Equal(uw.TxID[:], EOFMarker) {
		return errors.NewInvalidArgumentError("txid collides with the EOF marker")
	}

	b, err := uw.Bytes(us.compressor)
	if err != nil {
		return err
	}

	us.mu.Lock()
	defer us.mu.Unlock()

	if us.closed {
		return errors.NewProcessingError("utxo set writer is closed")
	}

	if _, err = us.w.Write(b); err != nil {
		return errors.NewStorageError("error writing record %s", uw.TxID, err)
	}

	us.txCount++
	us.utxoCount += uint64(len(uw.UTXOs))

	return nil
}

// Close writes the EOF marker and footer and flushes the underlying writer.
func (us *UTXOSetWriter) Close() error {
	us.mu.Lock()
	defer us.mu.Unlock()

	if us.closed {
		return nil
	}

	us.closed = true

	if _, err := us.w.Write(footerBytes(us.txCount, us.utxoCount)); err != nil {
		return errors.NewStorageError("error writing footer", err)
	}

	if err := us.w.Flush(); err != nil {
		return errors.NewStorageError("error flushing utxo set writer", err)
	}

	us.logger.Infof("[UTXOSetWriter] wrote utxo set for block %s: %d records, %d utxos", us.blockHash, us.txCount, us.utxoCount)

	return nil
}

// Counts returns the number of records and utxos written so far.
func (us *UTXOSetWriter) Counts() (uint64, uint64) {
	us.mu.Lock()
	defer us.mu.Unlock()

	return us.txCount, us.utxoCount
}

// UTXOSetInfo describes a UTXO set file.
type UTXOSetInfo struct {
	Magic       string
	BlockHash   *chainhash.Hash
	BlockHeight uint32
	TxCount     uint64
	UTXOCount   uint64
}

// ReadUTXOSet decodes every record of a UTXO set file held in data and passes it to fn.
// The counts in the footer are checked against the records read.
func ReadUTXOSet(ctx context.Context, c *compressor.Compressor, data []byte, fn func(uw *UTXOWrapper) error) (*UTXOSetInfo, error) {
	info, r, err := openUTXOSet(data)
	if err != nil {
		return nil, err
	}

	var txCount, utxoCount uint64

	for {
		uw, err := NewUTXOWrapperFromReader(ctx, c, r)
		if err != nil {
			if err == io.EOF {
				break
			}

			return nil, err
		}

		if err = fn(uw); err != nil {
			return nil, err
		}

		txCount++
		utxoCount += uint64(len(uw.UTXOs))
	}

	return info, checkFooter(info, r, txCount, utxoCount)
}

// CountUTXOSet walks a UTXO set file without decoding scripts and checks the footer.
func CountUTXOSet(ctx context.Context, c *compressor.Compressor, data []byte) (*UTXOSetInfo, error) {
	info, r, err := openUTXOSet(data)
	if err != nil {
		return nil, err
	}

	var txCount, utxoCount uint64

	for {
		select {
		case <-ctx.Done():
			return nil, errors.NewContextCanceledError("[CountUTXOSet] context done", ctx.Err())
		default:
		}

		n, err := SkipUTXOWrapper(c, r)
		if err != nil {
			if err == io.EOF {
				break
			}

			return nil, err
		}

		txCount++
		utxoCount += uint64(n)
	}

	return info, checkFooter(info, r, txCount, utxoCount)
}

func openUTXOSet(data []byte) (*UTXOSetInfo, *buffer.Reader, error) {
	magic, blockHash, blockHeight, err := GetHeaderFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}

	if magic != UTXOSetMagic {
		return nil, nil, errors.NewStorageError("unexpected magic %q, expected %q", magic, UTXOSetMagic)
	}

	info := &UTXOSetInfo{
		Magic:       magic,
		BlockHash:   blockHash,
		BlockHeight: blockHeight,
	}

	r := buffer.NewReader(data)
	r.Offset = HeaderSize

	return info, r, nil
}

// checkFooter is called with r positioned just after the EOF marker.
func checkFooter(info *UTXOSetInfo, r *buffer.Reader, txCount, utxoCount uint64) error {
	r.Offset -= len(EOFMarker)

	b, err := r.ReadBytes(FooterSize, true)
	if err != nil {
		return errors.NewStorageError("error reading footer", err)
	}

	info.TxCount, info.UTXOCount, err = parseFooter(b)
	if err != nil {
		return err
	}

	if info.TxCount != txCount || info.UTXOCount != utxoCount {
		return errors.NewStorageError("footer counts %d/%d do not match records read %d/%d", info.TxCount, info.UTXOCount, txCount, utxoCount)
	}

	if r.Left() != 0 {
		return errors.NewStorageError("%d trailing bytes after footer", r.Left())
	}

	return nil
}
