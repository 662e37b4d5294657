package compressor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompressValue(t *testing.T) {
	tests := []struct {
		code  uint64
		value uint64
	}{
		{0, 0},
		{1, 1},
		{9, 100000000},
		{10, 1000000000},
		{27, 3000000},
		{50, 5000000000},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.value, DecompressValue(tt.code), "code %d", tt.code)
		assert.Equal(t, tt.code, CompressValue(tt.value), "value %d", tt.value)
	}
}

func TestValueRoundTrip(t *testing.T) {
	t.Run("small values", func(t *testing.T) {
		for v := uint64(0); v <= 100000; v++ {
			require.Equal(t, v, DecompressValue(CompressValue(v)), "value %d", v)
		}
	})

	t.Run("small codes", func(t *testing.T) {
		for c := uint64(0); c <= 100000; c++ {
			require.Equal(t, c, CompressValue(DecompressValue(c)), "code %d", c)
		}
	})

	t.Run("round amounts", func(t *testing.T) {
		for digit := uint64(1); digit <= 9; digit++ {
			for v := digit; v <= MaxSatoshis; v *= 10 {
				require.Equal(t, v, DecompressValue(CompressValue(v)), "value %d", v)

				if v > MaxSatoshis/10 {
					break
				}
			}
		}
	})

	t.Run("boundaries", func(t *testing.T) {
		for _, v := range []uint64{MaxSatoshis, MaxSatoshis - 1, 100000000 - 1, 100000000 + 1, 999999999, 1000000001} {
			assert.Equal(t, v, DecompressValue(CompressValue(v)), "value %d", v)
		}
	})

	t.Run("random", func(t *testing.T) {
		rnd := rand.New(rand.NewSource(1))

		for i := 0; i < 100000; i++ {
			v := rnd.Uint64() % (MaxSatoshis + 1)
			require.Equal(t, v, DecompressValue(CompressValue(v)), "value %d", v)
		}
	})
}

func TestCompressValueFavoursRoundAmounts(t *testing.T) {
	// one coin fits in a single varint byte
	assert.Less(t, CompressValue(100000000), uint64(0xfd))
	assert.Less(t, CompressValue(MaxSatoshis), MaxSatoshis)
}
