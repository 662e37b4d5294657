package settings

import (
	"path/filepath"

	"github.com/bsv-blockchain/go-chaincfg"
)

// DefaultMaxScriptSize is the consensus script size limit applied when no override is configured.
const DefaultMaxScriptSize = 10000

func NewSettings() *Settings {
	params, err := chaincfg.GetChainParams(getString("network", "mainnet"))
	if err != nil {
		panic(err)
	}

	dataFolder := getString("dataFolder", "data")

	return &Settings{
		ClientName:     getString("clientName", "defaultClientName"),
		DataFolder:     dataFolder,
		LogLevel:       getString("logLevel", "INFO"),
		LoggerType:     getString("logger", "zerolog"),
		ChainCfgParams: params,
		Compressor: CompressorSettings{
			MaxScriptSize: getInt("compressor_maxScriptSize", DefaultMaxScriptSize),
		},
		UtxoStore: UtxoStoreSettings{
			LevelDBPath:   getString("utxostore_leveldbPath", filepath.Join(dataFolder, "coins")),
			BlockCacheMB:  getInt("utxostore_leveldbBlockCacheMB", 8),
			WriteBufferMB: getInt("utxostore_leveldbWriteBufferMB", 4),
			ImportWorkers: getInt("utxostore_importWorkers", 4),
		},
	}
}
