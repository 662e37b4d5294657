package utxopersister

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/bsv-blockchain/utxo-compressor/errors"
)

// FooterSize is the length of the EOF marker plus the record and utxo counts.
const FooterSize = 48

// GetFooter retrieves the transaction and UTXO counts from the footer of a file.
// The end of the file should have the EOF marker (32 bytes) followed by the txCount uint64
// and the utxoCount uint64 (each 8 bytes).
func GetFooter(r io.ReadSeeker) (uint64, uint64, error) {
	if _, err := r.Seek(-FooterSize, io.SeekEnd); err != nil {
		return 0, 0, errors.NewProcessingError("error seeking to EOF marker", err)
	}

	b := make([]byte, FooterSize)
	if _, err := io.ReadFull(r, b); err != nil {
		return 0, 0, errors.NewProcessingError("error reading EOF marker", err)
	}

	return parseFooter(b)
}

func parseFooter(b []byte) (uint64, uint64, error) {
	if len(b) != FooterSize || !bytes.Equal(b[0:32], EOFMarker) {
		return 0, 0, errors.NewProcessingError("EOF marker not found")
	}

	txCount := binary.LittleEndian.Uint64(b[32:40])
	utxoCount := binary.LittleEndian.Uint64(b[40:48])

	return txCount, utxoCount, nil
}

func footerBytes(txCount, utxoCount uint64) []byte {
	b := make([]byte, FooterSize)

	binary.LittleEndian.PutUint64(b[32:40], txCount)
	binary.LittleEndian.PutUint64(b[40:48], utxoCount)

	return b
}

// PrintFooter prints the footer counts with the provided label.
func PrintFooter(w io.Writer, r io.ReadSeeker, label string) error {
	txCount, utxoCount, err := GetFooter(r)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "EOF marker found\n")
	_, _ = fmt.Fprintf(w, "record count: %16s\n", formatNumber(txCount))
	_, _ = fmt.Fprintf(w, "%s count:   %16s\n", label, formatNumber(utxoCount))

	return nil
}

// formatNumber formats a number with comma separators for better readability.
// For example: 1000000 becomes "1,000,000"
func formatNumber(n uint64) string {
	in := fmt.Sprintf("%d", n)
	out := make([]string, 0, len(in)+(len(in)-1)/3)

	for i, c := range in {
		if i > 0 && (len(in)-i)%3 == 0 {
			out = append(out, ",")
		}

		out = append(out, string(c))
	}

	return strings.Join(out, "")
}
