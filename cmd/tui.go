package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/tally/internal/shared"
	"github.com/desertthunder/tally/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal browser for debits and products.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering.
	// Installed before connect so the monitor and scheduler log there too.
	// Debug level keeps the stale-page and superseded-task traces.
	fileLogger, err := shared.NewFileLogger("./tmp/tally-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, log.DebugLevel)
	r.SetLogger(fileLogger)

	if err := r.connect(); err != nil {
		return err
	}

	model := ui.NewModel(ui.ModelOpts{
		Translator: r.tr,
		Scheduler:  r.scheduler,
		Products:   r.products,
		Debits:     r.debits,
		UI:         r.config.UI,
		Logger:     shared.WithLogger(fileLogger, "component", "ui"),
	})
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
