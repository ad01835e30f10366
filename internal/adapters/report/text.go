package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/core/ports"
	"go.trai.ch/depcache/internal/ui/style"
)

// Text renders reports for humans.
type Text struct {
	out *termenv.Output
}

var _ ports.Reporter = (*Text)(nil)

// NewText creates a text reporter writing to out.
func NewText(out *termenv.Output) *Text {
	return &Text{out: out}
}

// Pass renders the header line followed by one line per affected class.
func (t *Text) Pass(result *domain.PassResult) error {
	var b strings.Builder

	icon, state, color := style.Check, "committed", style.Green
	switch {
	case result.Rebuild:
		icon, state, color = style.Warning, "rebuilt from scratch", style.Yellow
	case !result.Committed:
		icon, state, color = style.Tilde, "pending", style.Iris
	}
	fmt.Fprintf(&b, "%s pass %d %s: %d affected, %d removed, %s\n",
		t.paint(icon, color), result.Pass, state,
		len(result.Affected), len(result.Removed), plural(result.Rounds, "round"))

	if len(result.Affected) == 0 && len(result.Removed) == 0 {
		b.WriteString(t.paint("  nothing to recompile", style.Slate) + "\n")
	}

	width := 0
	for _, name := range result.Affected {
		width = max(width, len(name))
	}
	for _, name := range result.Affected {
		reason := result.Reasons[name]
		kind := reason.Kind.String()
		line := fmt.Sprintf("  %-*s  %s", width, name, t.paint(kind, style.ReasonColor(kind)))
		if reason.Via != "" {
			line += " " + t.paint(style.Arrow+" "+reason.Via, style.Slate)
		}
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	for _, name := range result.Removed {
		fmt.Fprintf(&b, "  %s %s\n", t.paint(style.Cross, style.Red), t.paint(name+" removed", style.Slate))
	}

	return t.write(b.String())
}

// Dependents renders one line per direct dependent.
func (t *Text) Dependents(class string, dependents []string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s has %s\n", t.paint(class, style.Iris), plural(len(dependents), "dependent"))
	for _, dep := range dependents {
		fmt.Fprintf(&b, "  %s %s\n", t.paint(style.Arrow, style.Slate), dep)
	}
	return t.write(b.String())
}

// Class renders a resolved class record.
func (t *Text) Class(view domain.ClassView) error {
	var b strings.Builder

	kind := "class"
	if view.Interface {
		kind = "interface"
	}
	fmt.Fprintf(&b, "%s %s\n", t.paint(view.Name, style.Iris), t.paint("("+kind+")", style.Slate))
	t.row(&b, "super", view.Super)
	t.row(&b, "interfaces", strings.Join(view.Interfaces, ", "))

	if len(view.Fields) > 0 {
		t.row(&b, "fields", "")
		for _, f := range view.Fields {
			line := "    " + f.Name + " " + f.Descriptor
			if f.Constant != "" {
				line += " = " + t.paint(f.Constant, style.Yellow)
			}
			b.WriteString(line + "\n")
		}
	}
	if len(view.Methods) > 0 {
		t.row(&b, "methods", "")
		for _, m := range view.Methods {
			line := "    " + m.Name + m.Descriptor
			if len(m.Exceptions) > 0 {
				line += " throws " + strings.Join(m.Exceptions, ", ")
			}
			b.WriteString(line + "\n")
		}
	}
	t.row(&b, "references", strings.Join(view.References, ", "))
	t.row(&b, "dependents", strings.Join(view.Dependents, ", "))

	return t.write(b.String())
}

// Supertype renders the common superclass of two classes.
func (t *Text) Supertype(a, b, common string) error {
	return t.write(fmt.Sprintf("%s %s %s %s\n",
		a, t.paint("+", style.Slate), b, t.paint(style.Arrow+" "+common, style.Green)))
}

// row writes a labeled line. Rows without a value are omitted unless they
// introduce a nested list.
func (t *Text) row(b *strings.Builder, label, value string) {
	switch {
	case value != "":
		fmt.Fprintf(b, "  %s %s\n", t.paint(fmt.Sprintf("%-11s", label), style.Slate), value)
	case label == "fields" || label == "methods":
		fmt.Fprintf(b, "  %s\n", t.paint(label, style.Slate))
	}
}

func (t *Text) paint(s string, color lipgloss.Color) string {
	return t.out.String(s).Foreground(t.out.Color(string(color))).String()
}

func (t *Text) write(s string) error {
	_, err := t.out.WriteString(s)
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
