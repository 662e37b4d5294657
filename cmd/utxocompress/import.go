package main

import (
	"context"
	"fmt"

	"github.com/bsv-blockchain/utxo-compressor/model"
	"github.com/bsv-blockchain/utxo-compressor/services/utxopersister"
	"github.com/bsv-blockchain/utxo-compressor/stores/utxo/leveldb"
	"github.com/bsv-blockchain/utxo-compressor/ulogger"
	"github.com/urfave/cli/v2"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

func (c *commands) importSet(cCtx *cli.Context) error {
	data, err := fileArg(cCtx)
	if err != nil {
		return err
	}

	store, err := c.openStore(cCtx)
	if err != nil {
		return err
	}

	defer store.Close()

	workerCount := c.settings.UtxoStore.ImportWorkers
	if workerCount < 1 {
		workerCount = 1
	}

	utxoWrapperCh := make(chan *utxopersister.UTXOWrapper, workerCount*16)
	utxosStored := atomic.NewUint64(0)

	g, gCtx := errgroup.WithContext(cCtx.Context)

	for i := 0; i < workerCount; i++ {
		workerID := i

		g.Go(func() error {
			return importWorker(gCtx, c.logger, store, workerID, utxoWrapperCh, utxosStored)
		})
	}

	var info *utxopersister.UTXOSetInfo

	g.Go(func() error {
		defer close(utxoWrapperCh)

		var err error

		info, err = utxopersister.ReadUTXOSet(gCtx, c.compressor, data, func(uw *utxopersister.UTXOWrapper) error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			case utxoWrapperCh <- uw:
				return nil
			}
		})

		return err
	})

	if err = g.Wait(); err != nil {
		return err
	}

	c.logger.Infof("stored %d utxos with %d workers", utxosStored.Load(), workerCount)

	_, _ = fmt.Fprintf(cCtx.App.Writer, "imported %d utxos from %d records of block %s (height %d)\n",
		info.UTXOCount, info.TxCount, info.BlockHash, info.BlockHeight)

	return nil
}

func importWorker(ctx context.Context, logger ulogger.Logger, store *leveldb.Store, id int,
	utxoWrapperCh <-chan *utxopersister.UTXOWrapper, utxosStored *atomic.Uint64) error {
	for {
		select {
		case <-ctx.Done():
			logger.Debugf("import worker %d stopping: %v", id, ctx.Err())
			return nil

		case uw, ok := <-utxoWrapperCh:
			if !ok {
				return nil
			}

			coins := make(map[uint32]*model.Coin, len(uw.UTXOs))

			for _, u := range uw.UTXOs {
				o := u.Output()
				coins[u.Index] = model.NewCoin(o.Value, o.Script, uw.Height, uw.Coinbase)
			}

			if err := store.PutBatch(ctx, &uw.TxID, coins); err != nil {
				logger.Errorf("import worker %d failed to store %s: %v", id, uw.TxID, err)
				return err
			}

			utxosStored.Add(uint64(len(coins)))
		}
	}
}
