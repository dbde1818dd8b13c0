package attachcrypto

import (
	"os"

	"github.com/rs/zerolog"
)

// log is the engine's structured logger. Grounded on
// rescale-labs-Rescale_Interlink's zerolog usage: every non-aborted
// error is logged at error level with context (spec.md §7), while
// Aborted errors are re-raised without being logged here.
var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

// SetLogger lets callers (notably the CLI) swap in their own zerolog
// logger, e.g. to log as JSON instead of the console writer default.
func SetLogger(l zerolog.Logger) { log = l }

// logError logs err at error level unless it is an Aborted error, per
// spec.md §7's propagation policy.
func logError(op string, err error) {
	if err == nil || IsAborted(err) {
		return
	}
	ev := log.Error().Str("op", op)
	if ae, ok := err.(*Error); ok {
		ev = ev.Str("kind", ae.Kind.String())
		if ae.IDForLogging != "" {
			ev = ev.Str("id", ae.IDForLogging)
		}
	}
	ev.Err(err).Msg("attachcrypto operation failed")
}
