package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test_NewCustomError tests the creation of custom errors.
func Test_NewCustomError(t *testing.T) {
	err := New(ERR_NOT_FOUND, "resource not found")
	require.NotNil(t, err)
	require.Equal(t, ERR_NOT_FOUND, err.Code())
	require.Equal(t, "resource not found", err.Message())

	secondErr := New(ERR_INVALID_ARGUMENT, "[DecompressScript][%s] failed to read key: ", "_test_string_", err)
	thirdErr := New(ERR_STORAGE_ERROR, "[DecompressOutput][%s] corrupt record: ", "_test_string_", secondErr)
	anotherErr := New(ERR_STORAGE_ERROR, "Another ERR, record is corrupt")
	fourthErr := New(ERR_PROCESSING, "older error: ", thirdErr)

	require.True(t, anotherErr.Is(thirdErr))
	require.True(t, fourthErr.Is(New(ERR_STORAGE_ERROR, "")))
	require.True(t, fourthErr.Is(ErrStorageError))
	require.True(t, fourthErr.Is(err))

	require.False(t, anotherErr.Is(fourthErr))
	require.False(t, fourthErr.Is(ErrKeyFormat))
}

func Test_FmtErrorCustomError(t *testing.T) {
	err := New(ERR_NOT_FOUND, "resource not found")

	fmtError := fmt.Errorf("error: %w", err)
	secondErr := New(ERR_INVALID_ARGUMENT, "[Get][%s] failed: ", "_test_string_", fmtError)
	require.NotNil(t, secondErr)

	// If we FMT Err, then they won't be recognized as equal
	require.False(t, secondErr.Is(err))

	// the standard library still walks through the fmt wrapper
	require.True(t, errors.Is(secondErr, ErrNotFound))
}

func Test_ErrorIs(t *testing.T) {
	tests := []struct {
		name string
		code ERR
	}{
		{"not found", ERR_NOT_FOUND},
		{"storage", ERR_STORAGE_ERROR},
		{"buffer underflow", ERR_BUFFER_UNDERFLOW},
		{"key format", ERR_KEY_FORMAT},
		{"unknown", ERR_UNKNOWN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "some message")
			assert.True(t, errors.Is(err, New(tt.code, "")))
			assert.True(t, Is(err, New(tt.code, "")))
		})
	}
}

func Test_ErrorMessageFormatting(t *testing.T) {
	err := NewStorageError("record %d is corrupt", 42)
	assert.Equal(t, "Error: STORAGE_ERROR (error code: 61), Message: record 42 is corrupt", err.Error())

	wrapped := NewProcessingError("failed to decode", err)
	assert.Contains(t, wrapped.Error(), "Wrapped err: Error: STORAGE_ERROR")
}

func Test_InvalidCode(t *testing.T) {
	err := New(ERR(12345), "whatever")
	assert.Equal(t, "invalid error code", err.Message())
	assert.Equal(t, "12345", ERR(12345).Enum())
}

func Test_As(t *testing.T) {
	inner := NewKeyFormatError("unknown public key prefix 0x%02x", 0x07)
	outer := NewStorageError("corrupt p2pk record", inner)

	var tErr *Error
	require.True(t, As(outer, &tErr))
	assert.Equal(t, ERR_STORAGE_ERROR, tErr.Code())

	assert.True(t, errors.Is(outer, ErrKeyFormat))
}

func Test_Join(t *testing.T) {
	assert.Nil(t, Join(nil, nil))

	err := Join(NewNotFoundError("a"), nil, NewStorageError("b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Message: a, Error: STORAGE_ERROR")
}

func Test_NilError(t *testing.T) {
	var e *Error

	assert.Equal(t, "<nil>", e.Error())
	assert.Equal(t, ERR_UNKNOWN, e.Code())
	assert.Equal(t, "", e.Message())
	assert.Nil(t, e.Unwrap())
	assert.False(t, e.Is(ErrUnknown))
}
