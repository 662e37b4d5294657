package util

// VarintSize calculates the number of bytes required to store a value as a Bitcoin variable-length integer.
// Returns 1, 3, 5, or 9 bytes depending on the value size.
func VarintSize(x uint64) int {
	switch {
	case x < 0xfd:
		return 1
	case x <= 0xffff:
		return 3
	case x <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// VarintPrefixSize returns the total encoded length implied by the first byte of a varint.
func VarintPrefixSize(prefix byte) int {
	switch prefix {
	case 0xfd:
		return 3
	case 0xfe:
		return 5
	case 0xff:
		return 9
	default:
		return 1
	}
}
