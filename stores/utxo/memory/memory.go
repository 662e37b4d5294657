// Package memory implements utxo.Store in process memory. Coins are held in their encoded form
// in a swiss map keyed by outpoint, so the store exercises the same record layout as the
// persistent stores.
package memory

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/utxo-compressor/errors"
	"github.com/bsv-blockchain/utxo-compressor/model"
	"github.com/bsv-blockchain/utxo-compressor/settings"
	"github.com/bsv-blockchain/utxo-compressor/stores/utxo"
	"github.com/bsv-blockchain/utxo-compressor/stores/utxo/compressor"
	"github.com/bsv-blockchain/utxo-compressor/ulogger"
	"github.com/dolthub/swiss"
)

type outpoint struct {
	txID  chainhash.Hash
	index uint32
}

type Memory struct {
	logger     ulogger.Logger
	compressor *compressor.Compressor
	coins      *swiss.Map[outpoint, []byte]
	coinsMu    sync.RWMutex
}

func New(logger ulogger.Logger, tSettings *settings.Settings) *Memory {
	return &Memory{
		logger:     logger,
		compressor: compressor.New(logger, tSettings),
		coins:      swiss.NewMap[outpoint, []byte](1024),
	}
}

func (m *Memory) Health(_ context.Context, _ bool) (int, string, error) {
	return http.StatusOK, "Memory Store available", nil
}

func (m *Memory) Put(_ context.Context, txID *chainhash.Hash, index uint32, coin *model.Coin) error {
	b, err := utxo.EncodeCoin(m.compressor, coin)
	if err != nil {
		return errors.NewProcessingError("[Memory][Put] failed to encode coin %s:%d", txID, index, err)
	}

	m.coinsMu.Lock()
	m.coins.Put(outpoint{txID: *txID, index: index}, b)
	m.coinsMu.Unlock()

	return nil
}

func (m *Memory) Get(_ context.Context, txID *chainhash.Hash, index uint32) (*model.Coin, error) {
	m.coinsMu.RLock()
	b, ok := m.coins.Get(outpoint{txID: *txID, index: index})
	m.coinsMu.RUnlock()

	if !ok {
		return nil, errors.NewNotFoundError("[Memory][Get] coin %s:%d not found", txID, index)
	}

	return utxo.DecodeCoin(m.compressor, b)
}

func (m *Memory) Delete(_ context.Context, txID *chainhash.Hash, index uint32) error {
	m.coinsMu.Lock()
	m.coins.Delete(outpoint{txID: *txID, index: index})
	m.coinsMu.Unlock()

	return nil
}

// Iterate works on a snapshot, fn may call back into the store.
func (m *Memory) Iterate(ctx context.Context, fn func(txID *chainhash.Hash, index uint32, coin *model.Coin) error) error {
	type entry struct {
		op outpoint
		b  []byte
	}

	m.coinsMu.RLock()

	entries := make([]entry, 0, m.coins.Count())

	m.coins.Iter(func(op outpoint, b []byte) bool {
		entries = append(entries, entry{op: op, b: b})
		return false
	})

	m.coinsMu.RUnlock()

	for i := range entries {
		select {
		case <-ctx.Done():
			return errors.NewContextCanceledError("[Memory][Iterate] context done after %d of %d coins", i, len(entries), ctx.Err())
		default:
		}

		coin, err := utxo.DecodeCoin(m.compressor, entries[i].b)
		if err != nil {
			return err
		}

		if err = fn(&entries[i].op.txID, entries[i].op.index, coin); err != nil {
			return err
		}
	}

	return nil
}

func (m *Memory) Stats(ctx context.Context) (*utxo.Stats, error) {
	m.coinsMu.RLock()
	defer m.coinsMu.RUnlock()

	var err error

	stats := &utxo.Stats{}

	m.coins.Iter(func(op outpoint, b []byte) bool {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.NewContextCanceledError("[Memory][Stats] context done", ctxErr)
			return true
		}

		if checkErr := utxo.CheckCoin(m.compressor, b); checkErr != nil {
			err = errors.NewStorageError("[Memory][Stats] coin %s:%d", op.txID, op.index, checkErr)
			return true
		}

		stats.Count++
		stats.Bytes += len(b)

		return false
	})

	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) String() string {
	m.coinsMu.RLock()
	defer m.coinsMu.RUnlock()

	return fmt.Sprintf("memory store with %d coins", m.coins.Count())
}
