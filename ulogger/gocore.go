package ulogger

import (
	"github.com/ordishs/gocore"
)

// GoCoreLogger writes through the gocore logger. The log level is fixed per gocore logger,
// so changing it replaces the underlying logger.
type GoCoreLogger struct {
	*gocore.Logger
	service   string
	skipFrame int
}

func NewGoCoreLogger(service string, options ...Option) *GoCoreLogger {
	if service == "" {
		service = "utxocompress"
	}

	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	return &GoCoreLogger{
		Logger:    gocore.Log(service, gocore.NewLogLevelFromString(opts.logLevel)),
		service:   service,
		skipFrame: opts.skip,
	}
}

func (g *GoCoreLogger) New(service string, options ...Option) Logger {
	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	return &GoCoreLogger{
		Logger:    gocore.Log(service, g.Logger.GetLogLevel()),
		service:   service,
		skipFrame: opts.skip,
	}
}

func (g *GoCoreLogger) Duplicate(options ...Option) Logger {
	newLogger := &GoCoreLogger{
		Logger:    g.Logger,
		service:   g.service,
		skipFrame: g.skipFrame,
	}

	defaultOpts := DefaultOptions()
	opts := DefaultOptions()

	for _, o := range options {
		o(opts)
	}

	if opts.logLevel != defaultOpts.logLevel {
		newLogger.SetLogLevel(opts.logLevel)
	}

	if opts.skip != defaultOpts.skip {
		newLogger.skipFrame = opts.skip
	}

	return newLogger
}

func (g *GoCoreLogger) SetLogLevel(level string) {
	g.Logger = gocore.Log(g.service, gocore.NewLogLevelFromString(level))
}
