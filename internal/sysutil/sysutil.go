// Package sysutil holds process-level helpers used by the API binary:
// global logger setup and listen address handling.
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetLogLevel configures the global zerolog level from a string and returns
// the level applied. Supported values (case-insensitive): debug, info, warn,
// warning, error, fatal, panic. Anything else means info.
func SetLogLevel(lvl string) zerolog.Level {
	level := zerolog.InfoLevel
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn", "warning":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	case "fatal":
		level = zerolog.FatalLevel
	case "panic":
		level = zerolog.PanicLevel
	}
	zerolog.SetGlobalLevel(level)
	return level
}

// LoggerOptions describes the process logger.
type LoggerOptions struct {
	Level   string
	Pretty  bool // human readable console output
	Service string
	Version string
	Out     io.Writer // defaults to stdout
}

// SetupLogger builds the process logger, installs it as log.Logger and as
// the fallback for log.Ctx on contexts without a request logger.
func SetupLogger(opts LoggerOptions) zerolog.Logger {
	SetLogLevel(opts.Level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	if opts.Version != "" {
		ctx = ctx.Str("version", opts.Version)
	}
	lg := ctx.Logger()

	log.Logger = lg
	zerolog.DefaultContextLogger = &lg
	return lg
}

// ListenAddr turns a bare port ("8080") into a listen address (":8080").
// Values that already carry a host or colon are returned unchanged.
func ListenAddr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":8080"
	}
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
