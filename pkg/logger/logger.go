package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is attached to every log line written by New.
const ServiceName = "wallet-ledger"

// New returns the process logger: JSON on stdout, or a console writer when
// pretty is set. level is one of trace, debug, info, warn, error and
// defaults to info.
func New(level string, pretty bool) zerolog.Logger {
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return base(w, level).
		Str("service", ServiceName).
		Caller().
		Logger()
}

// NewWithWriter returns a JSON logger on w without service or caller fields.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	return base(w, level).Logger()
}

// Component tags log lines from one part of the ledger (store, service, http).
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// WithRequest returns a child logger tagged with the request id and source.
func WithRequest(log zerolog.Logger, requestID, source string) zerolog.Logger {
	ctx := log.With().Str("request_id", requestID)
	if source != "" {
		ctx = ctx.Str("source", source)
	}
	return ctx.Logger()
}

func base(w io.Writer, level string) zerolog.Context {
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp()
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
