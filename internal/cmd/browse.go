package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/runger/histmcp/internal/history"
	"github.com/runger/histmcp/internal/picker"
)

var browseLayout string

var browseCmd = &cobra.Command{
	Use:     "browse [query...]",
	Short:   "Pick a command interactively",
	GroupID: groupCore,
	Long: `Open an interactive picker over the history file.

Type to filter, Up/Down to move, Tab to switch between all and unique
commands, Enter to print the selected command to stdout, Ctrl+C to copy it
to the clipboard, Esc to quit. The picker draws on /dev/tty, so the output
can be captured:

  cmd=$(histmcp browse docker)`,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&browseLayout, "layout", "top", "List orientation: top (newest first at the top) or bottom")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	layout, err := parseLayout(browseLayout)
	if err != nil {
		return err
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	source, err := s.openSource(cmd)
	if err != nil {
		if !errors.Is(err, history.ErrMissingFile) {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	// stdin and stdout may carry data, so the picker talks to the terminal.
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("cannot open /dev/tty: %w", err)
	}
	defer tty.Close()

	// Package-level picker styles use the default renderer; point it at the tty.
	lipgloss.SetColorProfile(colorProfile(tty, s.cfg.Display.Color))

	model := picker.NewModel(picker.DefaultTabs(), picker.NewStoreProvider(source)).
		WithLayout(layout).
		WithMaxWidth(s.cfg.Display.MaxWidth)
	if len(args) > 0 {
		model = model.WithQuery(strings.Join(args, " "))
	}

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithInput(tty),
		tea.WithOutput(tty),
	)
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("picker failed: %w", err)
	}

	m, ok := finalModel.(picker.Model)
	if !ok {
		return errors.New("picker returned an unexpected model")
	}
	if rec, ok := m.Result(); ok {
		fmt.Fprintln(cmd.OutOrStdout(), rec.Command)
	}
	return nil
}

func parseLayout(name string) (picker.Layout, error) {
	switch name {
	case "top":
		return picker.LayoutTopDown, nil
	case "bottom":
		return picker.LayoutBottomUp, nil
	default:
		return picker.LayoutTopDown, fmt.Errorf("invalid layout %q (must be top or bottom)", name)
	}
}
