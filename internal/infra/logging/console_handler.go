package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

const (
	ansiCodeReset     = "\033[0m"
	ansiCodeRed       = "\033[31m"
	ansiCodeGreen     = "\033[32m"
	ansiCodeYellow    = "\033[33m"
	ansiCodeCyan      = "\033[36m"
	ansiCodeGray      = "\033[90m"
	ansiCodeUnderline = "\033[4m"
)

//nolint:gochecknoglobals
var ansiCodeMap = map[slog.Level]string{
	slog.LevelDebug: ansiCodeCyan,
	slog.LevelInfo:  ansiCodeGreen,
	slog.LevelWarn:  ansiCodeYellow,
	slog.LevelError: ansiCodeRed,
}

// ConsoleHandler implements slog.Handler with colored, human-readable output for
// terminals. Credential-bearing attributes are redacted.
type ConsoleHandler struct {
	// Output is the destination for log output (typically os.Stderr)
	Output io.Writer
	// Level is the minimum level for log records to be processed
	Level slog.Leveler
	// PkgLevels maps logger names (and their dotted prefixes) to minimum log levels
	PkgLevels map[string]slog.Level
	// ShowSource appends the calling function and file to every line
	ShowSource bool

	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*ConsoleHandler)(nil)

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, r.NumAttrs()+len(h.attrs))
	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)

		return true
	})

	if !h.pkgEnabled(loggerName(attrs), r.Level) {
		return nil
	}

	var sb strings.Builder

	sb.WriteString(ansiCodeGray + r.Time.Format("15:04:05.000") + ansiCodeReset)
	sb.WriteString(" " + ansiCodeMap[r.Level] + "[" + r.Level.String() + "]" + ansiCodeReset)
	sb.WriteString(" " + r.Message)

	var prefix string

	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}

	if len(attrs) > 0 {
		sb.WriteString(" " + ansiCodeGray + "|" + ansiCodeReset)
		h.renderAttrs(&sb, prefix, attrs)
	}

	if h.ShowSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		fn := frame.Function[strings.LastIndex(frame.Function, "/")+1:]

		sb.WriteString("\n-> " + ansiCodeGray + fn + "()")
		sb.WriteString(" in " + ansiCodeUnderline + frame.File + ":" + strconv.Itoa(frame.Line) + ansiCodeReset)
	}

	if h.mu != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
	}

	_, err := fmt.Fprintln(h.Output, sb.String())

	//nolint:wrapcheck
	return err
}

// pkgEnabled walks the dotted logger name from most to least specific and applies
// the first matching package level; the empty key acts as a catch-all.
func (h *ConsoleHandler) pkgEnabled(name string, level slog.Level) bool {
	if len(h.PkgLevels) == 0 {
		return true
	}

	parts := strings.Split(name, ".")

	for i := len(parts); i >= 0; i-- {
		threshold, ok := h.PkgLevels[strings.Join(parts[:i], ".")]
		if ok {
			return level >= threshold
		}
	}

	return true
}

func (h *ConsoleHandler) renderAttrs(sb *strings.Builder, prefix string, attrs []slog.Attr) {
	for _, attr := range attrs {
		if attr.Value.Kind() == slog.KindGroup {
			h.renderAttrs(sb, prefix+attr.Key+".", attr.Value.Group())

			continue
		}

		attr = RedactAttr(nil, attr)

		sb.WriteString(" " + prefix + attr.Key)
		sb.WriteString("=" + ansiCodeGray + attr.Value.String() + ansiCodeReset)
	}
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)

	return &clone
}

// WithGroup implements slog.Handler.WithGroup.
func (h *ConsoleHandler) WithGroup(name string) Handler {
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)

	return &clone
}

// Enabled implements slog.Handler.Enabled.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.Level.Level() <= level
}

func loggerName(attrs []slog.Attr) string {
	for _, attr := range attrs {
		if attr.Key == "logger" {
			return attr.Value.String()
		}
	}

	return ""
}
