// Package printer writes styled status lines for CLI commands.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/colonyops/deskbell/internal/core/styles"
)

type ctxKey struct{}

// Printer writes human readable output.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w. A nil w writes to stdout.
func New(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
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

func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) Successf(format string, args ...any) {
	p.line(styles.SuccessStyle.Render(styles.IconSuccess), format, args...)
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(styles.InfoStyle.Render(styles.IconInfo), format, args...)
}

func (p *Printer) Warnf(format string, args ...any) {
	p.line(styles.WarnStyle.Render(styles.IconWarning), format, args...)
}

func (p *Printer) Errorf(format string, args ...any) {
	p.line(styles.ErrorStyle.Render(styles.IconCritical), format, args...)
}

// Header prints a bold section title followed by a divider.
func (p *Printer) Header(title string) {
	_, _ = fmt.Fprintln(p.w, styles.CommandHeaderStyle.Render(title))
	_, _ = fmt.Fprintln(p.w, styles.DividerStyle.Render("────────────────────────────────"))
}

// KV prints an aligned key/value row.
func (p *Printer) KV(key string, value any) {
	_, _ = fmt.Fprintf(p.w, "  %-18s %s\n", styles.SummaryLabelStyle.Render(key), styles.CommandStyle.Render(fmt.Sprint(value)))
}

func (p *Printer) line(icon, format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", icon, fmt.Sprintf(format, args...))
}
