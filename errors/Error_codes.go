package errors

import "strconv"

// ERR is the numeric error code carried by every *Error.
type ERR int32

const (
	ERR_UNKNOWN             ERR = 0
	ERR_INVALID_ARGUMENT    ERR = 1
	ERR_THRESHOLD_EXCEEDED  ERR = 2
	ERR_NOT_FOUND           ERR = 3
	ERR_PROCESSING          ERR = 4
	ERR_CONFIGURATION       ERR = 5
	ERR_CONTEXT_CANCELED    ERR = 6
	ERR_ERROR               ERR = 9
	ERR_STORAGE_UNAVAILABLE ERR = 59
	ERR_STORAGE_ERROR       ERR = 61
	ERR_BUFFER_UNDERFLOW    ERR = 90
	ERR_KEY_FORMAT          ERR = 91
)

// ERR_name maps codes to their names. New uses it to reject unknown codes.
var ERR_name = map[int32]string{
	0:  "UNKNOWN",
	1:  "INVALID_ARGUMENT",
	2:  "THRESHOLD_EXCEEDED",
	3:  "NOT_FOUND",
	4:  "PROCESSING",
	5:  "CONFIGURATION",
	6:  "CONTEXT_CANCELED",
	9:  "ERROR",
	59: "STORAGE_UNAVAILABLE",
	61: "STORAGE_ERROR",
	90: "BUFFER_UNDERFLOW",
	91: "KEY_FORMAT",
}

// Enum returns the symbolic name of the code.
func (c ERR) Enum() string {
	if name, ok := ERR_name[int32(c)]; ok {
		return name
	}

	return strconv.Itoa(int(c))
}

func (c ERR) String() string {
	return c.Enum()
}
