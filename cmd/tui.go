package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mindmap/internal/repositories"
	"github.com/desertthunder/mindmap/internal/shared"
	"github.com/desertthunder/mindmap/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal browser for a user's saved CDs.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/mindmap-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, repositories.NewPlaylistRepository(db), cmd.String("user"), shared.OpenBrowser)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
