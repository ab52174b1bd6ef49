package logger

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var (
	levelBadges = map[slog.Level]func(format string, a ...interface{}) string{
		slog.LevelDebug: color.HiBlackString,
		slog.LevelInfo:  color.CyanString,
		slog.LevelWarn:  color.YellowString,
		slog.LevelError: color.RedString,
	}

	// Attribute keys that get their own color; everything else is dimmed.
	keyColors = map[string]func(format string, a ...interface{}) string{
		"error":     color.RedString,
		"err":       color.RedString,
		"reset_at":  color.MagentaString,
		"delay":     color.MagentaString,
		"fetched":   color.GreenString,
		"total":     color.GreenString,
		"page":      color.GreenString,
		"prs":       color.GreenString,
		"author":    color.CyanString,
		"repo":      color.CyanString,
		"pr_number": color.CyanString,
	}
)

// PrettyHandler writes one colored line per record: level badge, message, then
// key=value pairs. Values containing spaces are quoted.
type PrettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	prefix string
	preset []string
}

func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	h := &PrettyHandler{w: w, mu: &sync.Mutex{}}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.opts.Level == nil {
		return level >= slog.LevelWarn
	}
	return level >= h.opts.Level.Level()
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(badge(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, attr := range h.preset {
		b.WriteByte(' ')
		b.WriteString(attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		b.WriteByte(' ')
		b.WriteString(h.render(h.prefix, a))
		return true
	})

	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		if frame.File != "" {
			b.WriteString(color.HiBlackString(" (%s:%d)", filepath.Base(frame.File), frame.Line))
		}
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = append([]string(nil), h.preset...)
	for _, a := range attrs {
		next.preset = append(next.preset, h.render(h.prefix, a))
	}
	return &next
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *PrettyHandler) render(prefix string, a slog.Attr) string {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		parts := make([]string, 0, len(a.Value.Group()))
		for _, g := range a.Value.Group() {
			parts = append(parts, h.render(prefix+a.Key+".", g))
		}
		return strings.Join(parts, " ")
	}

	key := prefix + a.Key
	val := a.Value.String()
	if strings.ContainsAny(val, " \t\n\"") {
		val = strconv.Quote(val)
	}

	paint, ok := keyColors[a.Key]
	if !ok {
		paint = color.HiBlackString
	}
	return paint("%s=%s", key, val)
}

func badge(level slog.Level) string {
	label := "[" + level.String() + "]"
	if len(label) < 7 {
		label += strings.Repeat(" ", 7-len(label))
	}
	if paint, ok := levelBadges[level]; ok {
		return paint("%s", label)
	}
	return label
}
