package log

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// prettyHandler renders records for a developer terminal, one line per
// record:
//
//	15:04:05 INFO  answered question convention_id=3 intent=event
//
// Attributes added through WithAttrs are rendered once, up front, and
// reused for every record. WithGroup carries a dotted key prefix.
type prettyHandler struct {
	out    io.Writer
	mu     *sync.Mutex
	level  slog.Leveler
	preset string // pre-rendered WithAttrs attributes
	prefix string // dotted group path, "" at the root
}

func newTerminalHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	h := &prettyHandler{out: w, mu: &sync.Mutex{}, level: slog.LevelInfo}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var sb strings.Builder
	sb.WriteString(colorDim)
	sb.WriteString(ts.Format("15:04:05"))
	sb.WriteString(colorOff)
	sb.WriteByte(' ')
	sb.WriteString(levelTag(r.Level))
	sb.WriteByte(' ')
	sb.WriteString(r.Message)
	sb.WriteString(h.preset)
	r.Attrs(func(a slog.Attr) bool {
		renderAttr(&sb, h.prefix, a)
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var sb strings.Builder
	sb.WriteString(h.preset)
	for _, a := range attrs {
		renderAttr(&sb, h.prefix, a)
	}
	clone := *h
	clone.preset = sb.String()
	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

const (
	colorOff    = "\033[0m"
	colorDim    = "\033[2m"
	colorBlue   = "\033[34m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

func levelTag(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return colorBlue + "DEBUG" + colorOff
	case level < slog.LevelWarn:
		return colorGreen + "INFO " + colorOff
	case level < slog.LevelError:
		return colorYellow + "WARN " + colorOff
	default:
		return colorRed + "ERROR" + colorOff
	}
}

func renderAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		child := prefix
		if a.Key != "" {
			child += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			renderAttr(sb, child, ga)
		}
		return
	}

	sb.WriteByte(' ')
	sb.WriteString(colorDim)
	sb.WriteString(prefix)
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	sb.WriteString(colorOff)

	val := a.Value.String()
	if a.Value.Kind() == slog.KindString && strings.ContainsAny(val, " \t\n\"\\") {
		val = strconv.Quote(val)
	}
	sb.WriteString(val)
}
