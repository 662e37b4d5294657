package ulogger_test

import (
	"bytes"
	"testing"

	"github.com/bsv-blockchain/utxo-compressor/ulogger"
	"github.com/ordishs/gocore"
	"github.com/stretchr/testify/assert"
)

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level           string
		expectedOutputs map[string]bool
	}{
		{
			level: "DEBUG",
			expectedOutputs: map[string]bool{
				"DEBUG": true,
				"INFO":  true,
				"WARN":  true,
				"ERROR": true,
			},
		},
		{
			level: "INFO",
			expectedOutputs: map[string]bool{
				"DEBUG": false,
				"INFO":  true,
				"WARN":  true,
				"ERROR": true,
			},
		},
		{
			level: "ERROR",
			expectedOutputs: map[string]bool{
				"DEBUG": false,
				"INFO":  false,
				"WARN":  false,
				"ERROR": true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer

			logger := ulogger.New("compressor", ulogger.WithLevel(tt.level), ulogger.WithWriter(&buf))

			logger.Debugf("DEBUG message")
			logger.Infof("INFO message")
			logger.Warnf("WARN message")
			logger.Errorf("ERROR message")

			output := buf.String()

			for level, expected := range tt.expectedOutputs {
				assert.Equal(t, expected, bytes.Contains([]byte(output), []byte(level+" message")), "level %s", level)
			}
		})
	}
}

func TestZeroLoggerLogLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := ulogger.New("compressor", ulogger.WithLevel("DEBUG"), ulogger.WithWriter(&buf))
	assert.Equal(t, int(gocore.DEBUG), logger.LogLevel())

	logger.SetLogLevel("WARN")
	assert.Equal(t, int(gocore.WARN), logger.LogLevel())

	logger.SetLogLevel("nonsense")
	assert.Equal(t, int(gocore.INFO), logger.LogLevel())
}

func TestZeroLoggerNewKeepsWriter(t *testing.T) {
	var buf bytes.Buffer

	parent := ulogger.New("parent", ulogger.WithWriter(&buf))
	child := parent.New("child")

	child.Infof("hello from child")

	assert.Contains(t, buf.String(), "hello from child")
	assert.Contains(t, buf.String(), "child")
}

func TestTestLogger(t *testing.T) {
	var logger ulogger.Logger = ulogger.TestLogger{}

	// all calls are no-ops
	logger.Debugf("x")
	logger.Infof("x")
	logger.Warnf("x")
	logger.Errorf("x")
	logger.Fatalf("x")

	assert.Equal(t, 0, logger.LogLevel())
	assert.Equal(t, ulogger.TestLogger{}, logger.New("other"))
	assert.Equal(t, ulogger.TestLogger{}, logger.Duplicate())
}

func TestGoCoreLoggerSelectedByType(t *testing.T) {
	logger := ulogger.New("compressor", ulogger.WithLoggerType("gocore"), ulogger.WithLevel("DEBUG"))
	assert.IsType(t, &ulogger.GoCoreLogger{}, logger)

	logger.SetLogLevel("ERROR")
	logger.Debugf("suppressed")

	dup := logger.Duplicate(ulogger.WithLevel("WARN"))
	assert.IsType(t, &ulogger.GoCoreLogger{}, dup)
	assert.NotSame(t, logger, dup)

	child := logger.New("child")
	assert.IsType(t, &ulogger.GoCoreLogger{}, child)
}
