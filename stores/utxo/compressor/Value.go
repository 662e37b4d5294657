package compressor

// MaxSatoshis is the largest amount that can exist, 21 million coins of 1e8 satoshis.
const MaxSatoshis uint64 = 21_000_000 * 100_000_000

// CompressValue maps an amount to a smaller integer that favours round numbers.
//
// Trailing decimal zeros (up to 9) are moved into the low digit of the result, so
// 100000000 compresses to 9 and 5000000000 to 50. The mapping is a bijection over
// [0, MaxSatoshis] and is undone by DecompressValue.
//
// The record encoding does not use this transform; it is provided for callers that
// want it.
func CompressValue(value uint64) uint64 {
	if value == 0 {
		return 0
	}

	var exp uint64
	for value%10 == 0 && exp < 9 {
		value /= 10
		exp++
	}

	if exp < 9 {
		last := value % 10
		value /= 10

		return 1 + (value*9+last-1)*10 + exp
	}

	return 1 + (value-1)*10 + 9
}

// DecompressValue is the inverse of CompressValue.
func DecompressValue(code uint64) uint64 {
	if code == 0 {
		return 0
	}

	code--

	exp := code % 10
	code /= 10

	var value uint64

	if exp < 9 {
		last := code%9 + 1
		code /= 9
		value = code*10 + last
	} else {
		value = code + 1
	}

	for ; exp > 0; exp-- {
		value *= 10
	}

	return value
}
