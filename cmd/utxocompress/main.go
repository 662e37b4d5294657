// Package main provides utxocompress, a command line tool for the compressed UTXO record format.
//
// Usage:
//
//	utxocompress script <hex>                  compress a locking script
//	utxocompress decode <hex>                  decode one compressed output record
//	utxocompress value compress|decompress <n> apply the amount transform
//	utxocompress import <utxo set file>        load a UTXO set file into the leveldb coin store
//	utxocompress stats                         summarize the leveldb coin store
//	utxocompress footer <utxo set file>        print the counts in a UTXO set file footer
package main

import (
	"os"

	"github.com/bsv-blockchain/utxo-compressor/settings"
	"github.com/bsv-blockchain/utxo-compressor/ulogger"
)

func main() {
	tSettings := settings.NewSettings()
	logger := ulogger.New("utxocompress",
		ulogger.WithLevel(tSettings.LogLevel),
		ulogger.WithLoggerType(tSettings.LoggerType),
	)

	app := newApp(logger, tSettings)

	if err := app.Run(os.Args); err != nil {
		logger.Fatalf("%v", err)
	}
}
