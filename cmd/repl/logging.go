package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-rv32i/repl/pkg/rv32i"
)

// textHandler is a minimal slog.Handler that writes "time level message
// attrs" lines to a single writer, modeled on the idea that a REPL's
// logging needs (one fatal line at startup, one trace line per executed
// instruction at debug level) don't warrant a third-party logging
// library on top of slog itself.
type textHandler struct {
	out io.Writer
	mu  *sync.Mutex
	lvl slog.Leveler
}

func newTextHandler(out io.Writer, lvl slog.Leveler) *textHandler {
	return &textHandler{out: out, mu: &sync.Mutex{}, lvl: lvl}
}

func (h *textHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl.Level()
}

func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	parts := []string{r.Time.Format("15:04:05"), r.Level.String() + ":", r.Message}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.Key+"="+a.Value.String())
		return true
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, strings.Join(parts, " ")+"\n")
	return err
}

func (h *textHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *textHandler) WithGroup(_ string) slog.Handler {
	return h
}

// logDeltas traces each executed instruction at debug level, mirroring
// the teacher's verbose per-fetched-instruction log line.
func logDeltas(deltas []rv32i.StateDelta) {
	for _, d := range deltas {
		slog.Debug("executed", "mnemonic", d.Mnemonic, "delta", formatDelta(d))
	}
}
