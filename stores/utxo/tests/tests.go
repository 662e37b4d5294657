// Package tests holds the behaviour every utxo.Store implementation must share. Each store
// package runs these against its own constructor.
package tests

import (
	"context"
	"testing"

	"github.com/bsv-blockchain/go-bt/v2"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/utxo-compressor/errors"
	"github.com/bsv-blockchain/utxo-compressor/model"
	utxostore "github.com/bsv-blockchain/utxo-compressor/stores/utxo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tx, _   = bt.NewTxFromString("010000000000000000ef0152a9231baa4e4b05dc30c8fbb7787bab5f460d4d33b039c39dd8cc006f3363e4020000006b483045022100ce3605307dd1633d3c14de4a0cf0df1439f392994e561b648897c4e540baa9ad02207af74878a7575a95c9599e9cdc7e6d73308608ee59abcd90af3ea1a5c0cca41541210275f8390df62d1e951920b623b8ef9c2a67c4d2574d408e422fb334dd1f3ee5b6ffffffff706b9600000000001976a914a32f7eaae3afd5f73a2d6009b93f91aa11d16eef88ac05404b4c00000000001976a914aabb8c2f08567e2d29e3a64f1f833eee85aaf74d88ac80841e00000000001976a914a4aff400bef2fa074169453e703c611c6b9df51588ac204e0000000000001976a9144669d92d46393c38594b2f07587f01b3e5289f6088ac204e0000000000001976a914a461497034343a91683e86b568c8945fb73aca0288ac99fe2a00000000001976a914de7850e419719258077abd37d4fcccdb0a659b9388ac00000000")
	TXHash  = tx.TxIDChainHash()
	Hash, _ = chainhash.NewHashFromStr("5e3bc5947f48cec766090aa17f309fd16259de029dcef5d306b514848c9687c7")

	p2pk, _ = model.NewScriptFromPubkey([]byte{
		0x04, 0x79, 0xbe, 0x66, 0x7e, 0xf9, 0xdc, 0xbb, 0xac, 0x55, 0xa0, 0x62, 0x95, 0xce, 0x87, 0x0b,
		0x07, 0x02, 0x9b, 0xfc, 0xdb, 0x2d, 0xce, 0x28, 0xd9, 0x59, 0xf2, 0x81, 0x5b, 0x16, 0xf8, 0x17,
		0x98, 0x48, 0x3a, 0xda, 0x77, 0x26, 0xa3, 0xc4, 0x65, 0x5d, 0xa4, 0xfb, 0xfc, 0x0e, 0x11, 0x08,
		0xa8, 0xfd, 0x17, 0xb4, 0x48, 0xa6, 0x85, 0x54, 0x19, 0x9c, 0x47, 0xd0, 0x8f, 0xfb, 0x10, 0xd4,
		0xb8,
	})
)

// coins returns one coin per output of the test transaction plus a pay-to-pubkey coinbase coin.
func coins() []*model.Coin {
	result := make([]*model.Coin, 0, len(tx.Outputs)+1)

	for _, output := range tx.Outputs {
		o := model.NewOutputFromBt(output)
		result = append(result, model.NewCoin(o.Value, o.Script, 1000, false))
	}

	return append(result, model.NewCoin(5000000000, p2pk, 1, true))
}

func requireCoinEqual(t *testing.T, want, got *model.Coin) {
	t.Helper()

	require.NotNil(t, got)
	assert.Equal(t, want.Value, got.Value)
	assert.Equal(t, want.Height, got.Height)
	assert.Equal(t, want.Coinbase, got.Coinbase)
	assert.True(t, want.Script.Equals(got.Script), "want script %s, got %s", want.Script, got.Script)
}

func Store(t *testing.T, db utxostore.Store) {
	ctx := context.Background()

	for i, coin := range coins() {
		// nolint: gosec
		err := db.Put(ctx, TXHash, uint32(i), coin)
		require.NoError(t, err)
	}

	for i, coin := range coins() {
		// nolint: gosec
		got, err := db.Get(ctx, TXHash, uint32(i))
		require.NoError(t, err)
		requireCoinEqual(t, coin, got)
	}

	_, err := db.Get(ctx, Hash, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// overwrite
	replacement := model.NewCoin(1, p2pk, 2000, false)
	require.NoError(t, db.Put(ctx, TXHash, 0, replacement))

	got, err := db.Get(ctx, TXHash, 0)
	require.NoError(t, err)
	requireCoinEqual(t, replacement, got)

	status, _, err := db.Health(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
}

func Delete(t *testing.T, db utxostore.Store) {
	ctx := context.Background()

	coin := coins()[0]

	require.NoError(t, db.Put(ctx, TXHash, 0, coin))
	require.NoError(t, db.Put(ctx, TXHash, 1, coin))

	require.NoError(t, db.Delete(ctx, TXHash, 0))

	_, err := db.Get(ctx, TXHash, 0)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = db.Get(ctx, TXHash, 1)
	require.NoError(t, err)

	// deleting a missing coin is fine
	require.NoError(t, db.Delete(ctx, Hash, 7))
}

func Iterate(t *testing.T, db utxostore.Store) {
	ctx := context.Background()

	all := coins()

	for i, coin := range all {
		// nolint: gosec
		require.NoError(t, db.Put(ctx, TXHash, uint32(i), coin))
	}

	require.NoError(t, db.Put(ctx, Hash, 300, all[0]))

	seen := make(map[chainhash.Hash]map[uint32]*model.Coin)

	err := db.Iterate(ctx, func(txID *chainhash.Hash, index uint32, coin *model.Coin) error {
		if seen[*txID] == nil {
			seen[*txID] = make(map[uint32]*model.Coin)
		}

		seen[*txID][index] = coin

		return nil
	})
	require.NoError(t, err)

	require.Len(t, seen[*TXHash], len(all))

	for i, coin := range all {
		// nolint: gosec
		requireCoinEqual(t, coin, seen[*TXHash][uint32(i)])
	}

	requireCoinEqual(t, all[0], seen[*Hash][300])

	t.Run("callback error stops iteration", func(t *testing.T) {
		calls := 0

		err := db.Iterate(ctx, func(txID *chainhash.Hash, index uint32, coin *model.Coin) error {
			calls++
			return errors.NewProcessingError("stop")
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrProcessing))
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := db.Iterate(cancelled, func(txID *chainhash.Hash, index uint32, coin *model.Coin) error {
			return nil
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrContextCanceled))
	})
}

func Stats(t *testing.T, db utxostore.Store) {
	ctx := context.Background()

	stats, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, 0, stats.Bytes)

	all := coins()

	for i, coin := range all {
		// nolint: gosec
		require.NoError(t, db.Put(ctx, TXHash, uint32(i), coin))
	}

	stats, err = db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(all), stats.Count)

	// p2pkh coins at height 1000: 3 byte height code, value varint, 21 byte script
	wantBytes := 0
	for _, coin := range all[:len(all)-1] {
		wantBytes += 3 + bt.VarInt(coin.Value).Length() + 21
	}

	// coinbase p2pk coin at height 1: 1 byte height code, 9 byte value, 33 byte key
	wantBytes += 1 + 9 + 33

	assert.Equal(t, wantBytes, stats.Bytes)
}

func Sanity(t *testing.T, db utxostore.Store) {
	ctx := context.Background()

	for i := uint64(0); i < 1_000; i++ {
		stx := bt.NewTx()
		err := stx.PayToAddress("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", i+2_000_000)
		require.NoError(t, err)

		o := model.NewOutputFromBt(stx.Outputs[0])

		// nolint: gosec
		err = db.Put(ctx, stx.TxIDChainHash(), 0, model.NewCoin(o.Value, o.Script, uint32(i), i%2 == 0))
		require.NoError(t, err)
	}

	for i := uint64(0); i < 1_000; i++ {
		stx := bt.NewTx()
		err := stx.PayToAddress("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", i+2_000_000)
		require.NoError(t, err)

		coin, err := db.Get(ctx, stx.TxIDChainHash(), 0)
		require.NoError(t, err)
		require.Equal(t, i+2_000_000, coin.Value)
		// nolint: gosec
		require.Equal(t, uint32(i), coin.Height)
		require.Equal(t, i%2 == 0, coin.Coinbase)
		require.True(t, coin.Script.IsPubkeyhash(true))
	}

	stats, err := db.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1_000, stats.Count)
}

func Benchmark(b *testing.B, db utxostore.Store) {
	ctx := context.Background()
	coin := coins()[0]

	for i := 0; i < b.N; i++ {
		err := db.Put(ctx, TXHash, 0, coin)
		if err != nil {
			b.Fatal(err)
		}

		_, err = db.Get(ctx, TXHash, 0)
		if err != nil {
			b.Fatal(err)
		}

		err = db.Delete(ctx, TXHash, 0)
		if err != nil {
			b.Fatal(err)
		}
	}
}
