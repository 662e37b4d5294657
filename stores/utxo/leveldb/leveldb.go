// Package leveldb implements utxo.Store on goleveldb using the bitcoind chainstate key layout.
package leveldb

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/utxo-compressor/errors"
	"github.com/bsv-blockchain/utxo-compressor/model"
	"github.com/bsv-blockchain/utxo-compressor/settings"
	"github.com/bsv-blockchain/utxo-compressor/stores/utxo"
	"github.com/bsv-blockchain/utxo-compressor/stores/utxo/compressor"
	"github.com/bsv-blockchain/utxo-compressor/ulogger"
	"github.com/btcsuite/goleveldb/leveldb"
	"github.com/btcsuite/goleveldb/leveldb/opt"
	"github.com/btcsuite/goleveldb/leveldb/util"
)

const mib = 1024 * 1024

type Store struct {
	logger     ulogger.Logger
	compressor *compressor.Compressor
	path       string
	db         *leveldb.DB
}

// New opens (or creates) the store at tSettings.UtxoStore.LevelDBPath.
func New(ctx context.Context, logger ulogger.Logger, tSettings *settings.Settings) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewContextCanceledError("[LevelDB] context done before open", err)
	}

	path := tSettings.UtxoStore.LevelDBPath
	if path == "" {
		return nil, errors.NewConfigurationError("[LevelDB] utxostore_leveldbPath is not set")
	}

	opts := &opt.Options{
		BlockCacheCapacity: tSettings.UtxoStore.BlockCacheMB * mib,
		WriteBuffer:        tSettings.UtxoStore.WriteBufferMB * mib,
		// records are already compressed
		Compression: opt.NoCompression,
	}

	logger.Infof("[LevelDB] opening coin store at %s", path)

	db, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("[LevelDB] couldn't open %s", path, err)
	}

	return &Store{
		logger:     logger,
		compressor: compressor.New(logger, tSettings),
		path:       path,
		db:         db,
	}, nil
}

func (s *Store) Health(_ context.Context, checkLiveness bool) (int, string, error) {
	if checkLiveness {
		return http.StatusOK, "OK", nil
	}

	if _, err := s.db.GetProperty("leveldb.stats"); err != nil {
		return http.StatusServiceUnavailable, "LevelDB Store unavailable", errors.NewStorageUnavailableError("[LevelDB] %s", s.path, err)
	}

	return http.StatusOK, "LevelDB Store available", nil
}

func (s *Store) Put(ctx context.Context, txID *chainhash.Hash, index uint32, coin *model.Coin) error {
	b, err := utxo.EncodeCoin(s.compressor, coin)
	if err != nil {
		return errors.NewProcessingError("[LevelDB][Put] failed to encode coin %s:%d", txID, index, err)
	}

	if err = s.db.Put(utxo.CoinKey(txID, index), b, nil); err != nil {
		return errors.NewStorageError("[LevelDB][Put] failed to store coin %s:%d", txID, index, err)
	}

	return nil
}

// PutBatch stores all coins of one transaction in a single write. coins maps output index to coin.
func (s *Store) PutBatch(ctx context.Context, txID *chainhash.Hash, coins map[uint32]*model.Coin) error {
	batch := new(leveldb.Batch)

	for index, coin := range coins {
		b, err := utxo.EncodeCoin(s.compressor, coin)
		if err != nil {
			return errors.NewProcessingError("[LevelDB][PutBatch] failed to encode coin %s:%d", txID, index, err)
		}

		batch.Put(utxo.CoinKey(txID, index), b)
	}

	if err := s.db.Write(batch, nil); err != nil {
		return errors.NewStorageError("[LevelDB][PutBatch] failed to store %d coins of %s", len(coins), txID, err)
	}

	return nil
}

func (s *Store) Get(_ context.Context, txID *chainhash.Hash, index uint32) (*model.Coin, error) {
	b, err := s.db.Get(utxo.CoinKey(txID, index), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, errors.NewNotFoundError("[LevelDB][Get] coin %s:%d not found", txID, index)
		}

		return nil, errors.NewStorageError("[LevelDB][Get] failed to read coin %s:%d", txID, index, err)
	}

	coin, err := utxo.DecodeCoin(s.compressor, b)
	if err != nil {
		return nil, errors.NewStorageError("[LevelDB][Get] coin %s:%d", txID, index, err)
	}

	return coin, nil
}

func (s *Store) Delete(_ context.Context, txID *chainhash.Hash, index uint32) error {
	if err := s.db.Delete(utxo.CoinKey(txID, index), nil); err != nil {
		return errors.NewStorageError("[LevelDB][Delete] failed to delete coin %s:%d", txID, index, err)
	}

	return nil
}

func (s *Store) Iterate(ctx context.Context, fn func(txID *chainhash.Hash, index uint32, coin *model.Coin) error) error {
	return s.walk(ctx, "Iterate", func(key, value []byte) error {
		txID, index, err := utxo.ParseCoinKey(key)
		if err != nil {
			return err
		}

		coin, err := utxo.DecodeCoin(s.compressor, value)
		if err != nil {
			return errors.NewStorageError("[LevelDB][Iterate] coin %s:%d", txID, index, err)
		}

		return fn(txID, index, coin)
	})
}

func (s *Store) Stats(ctx context.Context) (*utxo.Stats, error) {
	stats := &utxo.Stats{}

	err := s.walk(ctx, "Stats", func(key, value []byte) error {
		if err := utxo.CheckCoin(s.compressor, value); err != nil {
			return errors.NewStorageError("[LevelDB][Stats] key %x", key, err)
		}

		stats.Count++
		stats.Bytes += len(value)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *Store) Close() error {
	s.logger.Infof("[LevelDB] closing coin store at %s", s.path)

	if err := s.db.Close(); err != nil {
		return errors.NewStorageError("[LevelDB] failed to close %s", s.path, err)
	}

	return nil
}

func (s *Store) String() string {
	return fmt.Sprintf("leveldb coin store at %s", s.path)
}

// walk visits every coin record. The key and value slices are only valid during fn.
func (s *Store) walk(ctx context.Context, caller string, fn func(key, value []byte) error) error {
	iter := s.db.NewIterator(util.BytesPrefix([]byte{utxo.CoinKeyPrefix}), nil)
	defer iter.Release()

	count := 0

	for iter.Next() {
		select {
		case <-ctx.Done():
			return errors.NewContextCanceledError("[LevelDB][%s] context done after %d coins", caller, count, ctx.Err())
		default:
		}

		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}

		count++
	}

	if err := iter.Error(); err != nil {
		return errors.NewStorageError("[LevelDB][%s] iterator failed after %d coins", caller, count, err)
	}

	s.logger.Debugf("[LevelDB][%s] visited %d coins", caller, count)

	return nil
}
