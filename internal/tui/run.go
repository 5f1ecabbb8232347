package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, m Model, sink *ProgramSink) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	fwdCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go sink.Forward(fwdCtx, p)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
