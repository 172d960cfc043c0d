package observability

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger wires up zerolog as cogmemd's process-wide logger. Every line
// carries service="cogmem" so a shared log sink can tell cogmemd apart from
// any other process writing to it. If logPath is non-empty, logs go to that
// file (append mode) instead of stdout; if the file can't be opened, logging
// falls back to stdout and the failure is printed to stderr rather than
// silently dropped. Every agent-scoped event the knowledge graph, context
// window, working memory, proposal queue, and reflection packages emit
// (decay sweeps, compression passes, proposal transitions, reflection runs)
// flows through this same global logger.
func InitLogger(logPath string, level string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	var w io.Writer = os.Stdout
	if logPath != "" {
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			// A configured log file means an interactive surface (TUI, CLI)
			// owns stdout; don't contend with it.
			w = f
		} else {
			_, _ = fmt.Fprintf(os.Stderr, "failed to open log file %q: %v\n", logPath, err)
		}
	}
	log.Logger = log.Output(w).With().Timestamp().Str("service", "cogmem").Logger()

	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	lvl := zerolog.InfoLevel
	if level != "" {
		if l, err := zerolog.ParseLevel(level); err == nil {
			lvl = l
		}
	}
	zerolog.SetGlobalLevel(lvl)

	// Redirect the standard library logger too, so any dependency that still
	// calls log.Print ends up in the same sink instead of bypassing it.
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
}
