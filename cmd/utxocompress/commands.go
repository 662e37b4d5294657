package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/bsv-blockchain/go-bt/v2/bscript"
	"github.com/bsv-blockchain/utxo-compressor/errors"
	"github.com/bsv-blockchain/utxo-compressor/model"
	"github.com/bsv-blockchain/utxo-compressor/services/utxopersister"
	"github.com/bsv-blockchain/utxo-compressor/settings"
	"github.com/bsv-blockchain/utxo-compressor/stores/utxo/compressor"
	"github.com/bsv-blockchain/utxo-compressor/stores/utxo/leveldb"
	"github.com/bsv-blockchain/utxo-compressor/ulogger"
	"github.com/bsv-blockchain/utxo-compressor/util/buffer"
	"github.com/urfave/cli/v2"
)

type commands struct {
	logger     ulogger.Logger
	settings   *settings.Settings
	compressor *compressor.Compressor
}

func newApp(logger ulogger.Logger, tSettings *settings.Settings) *cli.App {
	cmds := &commands{
		logger:     logger,
		settings:   tSettings,
		compressor: compressor.New(logger, tSettings),
	}

	return &cli.App{
		Name:  "utxocompress",
		Usage: "Inspect and convert compressed UTXO records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "leveldb",
				Usage: "path of the leveldb coin store, overrides utxostore_leveldbPath",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "script",
				Usage:     "Compress a locking script given in hex",
				ArgsUsage: "<hex>",
				Action:    cmds.script,
			},
			{
				Name:      "decode",
				Usage:     "Decode one compressed output record given in hex",
				ArgsUsage: "<hex>",
				Action:    cmds.decode,
			},
			{
				Name:  "value",
				Usage: "Apply the amount transform",
				Subcommands: []*cli.Command{
					{
						Name:      "compress",
						ArgsUsage: "<satoshis>",
						Action:    cmds.valueCompress,
					},
					{
						Name:      "decompress",
						ArgsUsage: "<code>",
						Action:    cmds.valueDecompress,
					},
				},
			},
			{
				Name:      "import",
				Usage:     "Load a UTXO set file into the leveldb coin store",
				ArgsUsage: "<utxo set file>",
				Action:    cmds.importSet,
			},
			{
				Name:   "stats",
				Usage:  "Count the coins in the leveldb coin store",
				Action: cmds.stats,
			},
			{
				Name:      "footer",
				Usage:     "Print the counts in the footer of a UTXO set file",
				ArgsUsage: "<utxo set file>",
				Action:    cmds.footer,
			},
		},
	}
}

func (c *commands) script(cCtx *cli.Context) error {
	raw, err := hexArg(cCtx, 0)
	if err != nil {
		return err
	}

	s := model.NewScriptFromRaw(raw)
	w := buffer.NewWriter(c.compressor.SizeScript(s))

	if err = c.compressor.CompressScript(w, s); err != nil {
		return err
	}

	out := cCtx.App.Writer
	_, _ = fmt.Fprintf(out, "type:       %s\n", scriptType(c.compressor, s))
	_, _ = fmt.Fprintf(out, "size:       %d -> %d\n", s.Len(), w.Len())
	_, _ = fmt.Fprintf(out, "compressed: %x\n", w.Bytes())

	return nil
}

func (c *commands) decode(cCtx *cli.Context) error {
	b, err := hexArg(cCtx, 0)
	if err != nil {
		return err
	}

	r := buffer.NewReader(b)

	o, err := c.compressor.DecompressOutput(r)
	if err != nil {
		return err
	}

	out := cCtx.App.Writer
	_, _ = fmt.Fprintf(out, "value:  %d\n", o.Value)
	_, _ = fmt.Fprintf(out, "type:   %s\n", scriptType(c.compressor, o.Script))
	_, _ = fmt.Fprintf(out, "script: %s\n", o.Script)

	if hash := o.Script.GetPubkeyhash(true); hash != nil {
		address, err := bscript.NewAddressFromPublicKeyHash(hash, c.settings.ChainCfgParams.Name == "mainnet")
		if err != nil {
			return errors.NewProcessingError("failed to build address", err)
		}

		_, _ = fmt.Fprintf(out, "address: %s\n", address.AddressString)
	}

	if r.Left() > 0 {
		c.logger.Warnf("%d trailing bytes after the record", r.Left())
	}

	return nil
}

func (c *commands) valueCompress(cCtx *cli.Context) error {
	v, err := uintArg(cCtx, 0)
	if err != nil {
		return err
	}

	if v > compressor.MaxSatoshis {
		return errors.NewInvalidArgumentError("amount %d is over the %d satoshi supply", v, compressor.MaxSatoshis)
	}

	_, _ = fmt.Fprintf(cCtx.App.Writer, "%d\n", compressor.CompressValue(v))

	return nil
}

func (c *commands) valueDecompress(cCtx *cli.Context) error {
	v, err := uintArg(cCtx, 0)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cCtx.App.Writer, "%d\n", compressor.DecompressValue(v))

	return nil
}

func (c *commands) stats(cCtx *cli.Context) error {
	store, err := c.openStore(cCtx)
	if err != nil {
		return err
	}

	defer store.Close()

	stats, err := store.Stats(cCtx.Context)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cCtx.App.Writer, "coins: %d\nbytes: %d\n", stats.Count, stats.Bytes)

	return nil
}

func (c *commands) footer(cCtx *cli.Context) error {
	if cCtx.Args().Len() < 1 {
		return errors.NewInvalidArgumentError("missing file argument")
	}

	f, err := os.Open(cCtx.Args().First())
	if err != nil {
		return errors.NewProcessingError("couldn't open %s", cCtx.Args().First(), err)
	}

	defer f.Close()

	return utxopersister.PrintFooter(cCtx.App.Writer, f, "utxo")
}

func (c *commands) openStore(cCtx *cli.Context) (*leveldb.Store, error) {
	tSettings := *c.settings

	if path := cCtx.String("leveldb"); path != "" {
		tSettings.UtxoStore.LevelDBPath = path
	}

	ctx := cCtx.Context
	if ctx == nil {
		ctx = context.Background()
	}

	return leveldb.New(ctx, c.logger, &tSettings)
}

func scriptType(c *compressor.Compressor, s *model.Script) string {
	switch {
	case s.IsPubkeyhash(true):
		return "pubkeyhash"
	case s.IsScripthash():
		return "scripthash"
	case s.IsPubkey(true) && c.PublicKeyVerify(s.GetPubkey(true)):
		return "pubkey"
	case s.IsNulldata():
		return "nulldata"
	default:
		return "nonstandard"
	}
}

func hexArg(cCtx *cli.Context, i int) ([]byte, error) {
	if cCtx.Args().Len() <= i {
		return nil, errors.NewInvalidArgumentError("missing hex argument")
	}

	b, err := hex.DecodeString(cCtx.Args().Get(i))
	if err != nil {
		return nil, errors.NewInvalidArgumentError("invalid hex %q", cCtx.Args().Get(i), err)
	}

	return b, nil
}

func uintArg(cCtx *cli.Context, i int) (uint64, error) {
	if cCtx.Args().Len() <= i {
		return 0, errors.NewInvalidArgumentError("missing number argument")
	}

	v, err := strconv.ParseUint(cCtx.Args().Get(i), 10, 64)
	if err != nil {
		return 0, errors.NewInvalidArgumentError("invalid number %q", cCtx.Args().Get(i), err)
	}

	return v, nil
}

func fileArg(cCtx *cli.Context) ([]byte, error) {
	if cCtx.Args().Len() < 1 {
		return nil, errors.NewInvalidArgumentError("missing file argument")
	}

	data, err := os.ReadFile(cCtx.Args().First())
	if err != nil {
		return nil, errors.NewProcessingError("couldn't read %s", cCtx.Args().First(), err)
	}

	return data, nil
}
