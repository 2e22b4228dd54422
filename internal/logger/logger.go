// Package logger owns the process logger. Request handlers log through Ctx so every line
// carries the request id and, once signed in, the caller's role.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/careportal/internal/reqctx"
)

// Log is a no-op until Init runs.
var Log = zerolog.Nop()

// Init logs to stdout, configured by LOG_LEVEL (default info) and LOG_FORMAT
// ("console" default, or "json").
func Init() {
	InitWithWriter(os.Stdout)
}

func InitWithWriter(w io.Writer) {
	level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := w
	if !strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	Log = zerolog.New(out).Level(level).With().
		Timestamp().
		Str("service", "careportal").
		Logger()
	zlog.Logger = Log
}

// Ctx returns Log enriched with what the request context knows.
func Ctx(ctx context.Context) *zerolog.Logger {
	reqID := reqctx.GetRequestID(ctx)
	sess, signedIn := reqctx.GetSession(ctx)
	if reqID == "" && !signedIn {
		return &Log
	}

	c := Log.With()
	if reqID != "" {
		c = c.Str("request_id", reqID)
	}
	if signedIn && sess.Role != "" {
		c = c.Str("role", string(sess.Role))
	}
	l := c.Logger()
	return &l
}
