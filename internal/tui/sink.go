package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/colonyops/deskbell/internal/core/push"
	"github.com/colonyops/deskbell/internal/core/render"
	"github.com/colonyops/deskbell/internal/core/styles"
)

const sinkBuffer = 64

// ProgramSink forwards render requests to a running bubbletea program. Calls
// never block: requests are queued and a full queue drops the request.
type ProgramSink struct {
	queue chan tea.Msg
	log   zerolog.Logger
}

func NewProgramSink(log zerolog.Logger) *ProgramSink {
	return &ProgramSink{
		queue: make(chan tea.Msg, sinkBuffer),
		log:   log,
	}
}

func (s *ProgramSink) ShowBanner(req render.BannerRequest) {
	s.enqueue(bannerMsg(req))
}

func (s *ProgramSink) RenderMenu(req render.MenuRequest) {
	s.enqueue(menuMsg(req))
}

// Focus moves the menu cursor to the notification behind a clicked alert.
func (s *ProgramSink) Focus(a push.Alert) {
	s.enqueue(focusMsg(a))
}

func (s *ProgramSink) enqueue(msg tea.Msg) {
	select {
	case s.queue <- msg:
	default:
		s.log.Warn().Str("msg", fmt.Sprintf("%T", msg)).Msg("render queue full, dropping request")
	}
}

// Forward delivers queued requests to p until ctx is done.
func (s *ProgramSink) Forward(ctx context.Context, p *tea.Program) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.queue:
			p.Send(msg)
		}
	}
}

// LineSink prints banners and menu changes as plain lines. It is used when
// stdout is not a terminal.
type LineSink struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{w: w}
}

func (s *LineSink) ShowBanner(req render.BannerRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := fmt.Sprintf("[%s] %s", req.Severity, req.Text)
	_, _ = fmt.Fprintln(s.w, lipgloss.NewStyle().Foreground(styles.SeverityColor(req.Severity)).Render(line))
}

// RenderMenu prints a one-line summary when it differs from the previous one.
func (s *LineSink) RenderMenu(req render.MenuRequest) {
	line := MenuSummary(req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if line == s.last {
		return
	}
	s.last = line
	_, _ = fmt.Fprintln(s.w, styles.StatusStyle.Render(line))
}

// MenuSummary renders req as a single line.
func MenuSummary(req render.MenuRequest) string {
	if req.Empty() {
		return render.EmptyMenuText
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d pending", len(req.Items))
	if req.ShowSummary() {
		sum := req.Summary()
		fmt.Fprintf(&b, " (mine %d, new %d, critical %d)", sum.Mine, sum.New, sum.Critical)
	}
	return b.String()
}
