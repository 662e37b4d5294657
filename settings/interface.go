package settings

import (
	"github.com/bsv-blockchain/go-chaincfg"
)

type CompressorSettings struct {
	// MaxScriptSize is the largest raw script the decompressor will materialize.
	// Anything larger decodes to an empty nulldata placeholder.
	MaxScriptSize int
}

type UtxoStoreSettings struct {
	LevelDBPath   string
	BlockCacheMB  int
	WriteBufferMB int
	ImportWorkers int
}

type Settings struct {
	ClientName     string
	DataFolder     string
	LogLevel       string
	LoggerType     string
	ChainCfgParams *chaincfg.Params
	Compressor     CompressorSettings
	UtxoStore      UtxoStoreSettings
}
