package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/depcache/internal/ui/output"
	"go.trai.ch/depcache/internal/ui/style"
)

// subjectKeys name the top-level attributes rendered as a tag in front of the
// message, in tag order.
var subjectKeys = []string{"pass", "class"}

// PrettyHandler is a slog.Handler producing colored, human-readable lines.
// Top-level pass and class attributes become a "[pass 7 com/acme/Foo]" tag.
type PrettyHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	attrs  []groupedAttr
	groups []string
}

// groupedAttr is an attribute bound to the groups open when it was added.
type groupedAttr struct {
	group string
	attr  slog.Attr
}

// NewPrettyHandler creates a new PrettyHandler writing to w.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes the record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	icon, color := "", style.Slate
	switch {
	case r.Level >= slog.LevelError:
		icon, color = style.Cross, style.Red
	case r.Level >= slog.LevelWarn:
		icon, color = style.Warning, style.Yellow
	}

	line := lineAttrs{subjects: make(map[string]string)}
	for _, ga := range h.attrs {
		line.add(ga.group, ga.attr)
	}
	group := strings.Join(h.groups, ".")
	r.Attrs(func(attr slog.Attr) bool {
		line.add(group, attr)
		return true
	})

	var b strings.Builder
	if icon != "" {
		b.WriteString(h.paint(icon, color) + " ")
	}
	if tag := line.tag(); tag != "" {
		b.WriteString(h.paint(tag, style.Iris) + " ")
	}
	b.WriteString(h.paint(r.Message, color))
	if len(line.parts) > 0 {
		b.WriteString(" " + h.paint(strings.Join(line.parts, " "), style.Slate))
	}
	b.WriteString("\n")

	_, err := h.out.WriteString(b.String())
	return err
}

func (h *PrettyHandler) paint(s string, color lipgloss.Color) string {
	return h.out.String(s).Foreground(termenv.RGBColor(string(color))).String()
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	group := strings.Join(h.groups, ".")
	clone.attrs = slices.Clip(h.attrs)
	for _, attr := range attrs {
		clone.attrs = append(clone.attrs, groupedAttr{group: group, attr: attr})
	}
	return &clone
}

// WithGroup returns a new Handler that qualifies later attributes with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(slices.Clip(h.groups), name)
	return &clone
}

// lineAttrs collects the rendered attributes of one record.
type lineAttrs struct {
	subjects map[string]string
	parts    []string
}

func (l *lineAttrs) add(group string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	key := attr.Key
	if group != "" && key != "" {
		key = group + "." + key
	} else if key == "" {
		key = group
	}

	if attr.Value.Kind() == slog.KindGroup {
		for _, member := range attr.Value.Group() {
			l.add(key, member)
		}
		return
	}
	if group == "" && slices.Contains(subjectKeys, attr.Key) {
		l.subjects[attr.Key] = attr.Value.String()
		return
	}
	l.parts = append(l.parts, key+"="+attr.Value.String())
}

func (l *lineAttrs) tag() string {
	var fields []string
	if pass, ok := l.subjects["pass"]; ok {
		fields = append(fields, "pass "+pass)
	}
	if class, ok := l.subjects["class"]; ok {
		fields = append(fields, class)
	}
	if len(fields) == 0 {
		return ""
	}
	return "[" + strings.Join(fields, " ") + "]"
}
