// Package printer writes styled status lines for CLI commands.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/taskpilot/internal/core/styles"
)

type ctxKey struct{}

// Printer writes human-readable output lines.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored in ctx, or one writing to stdout.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout)
}

// Printf writes an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// Successf writes a line marked as a success.
func (p *Printer) Successf(format string, args ...any) {
	p.styled(styles.TextSuccess, "✔", format, args...)
}

// Infof writes a line marked as informational.
func (p *Printer) Infof(format string, args ...any) {
	p.styled(styles.TextWarning, "•", format, args...)
}

// Errorf writes a line marked as an error.
func (p *Printer) Errorf(format string, args ...any) {
	p.styled(styles.TextError, "✘", format, args...)
}

// Mutedf writes a dimmed line.
func (p *Printer) Mutedf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, styles.TextMuted.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) styled(style lipgloss.Style, mark, format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", style.Render(mark), fmt.Sprintf(format, args...))
}
