package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/runger/histmcp/internal/config"
	"github.com/runger/histmcp/internal/history"
	"github.com/runger/histmcp/internal/picker"
)

// colorProfile maps a display.color mode to a termenv profile for w.
// "auto" honours NO_COLOR and CLICOLOR_FORCE and detects whether w is a
// terminal.
func colorProfile(w io.Writer, mode string) termenv.Profile {
	switch mode {
	case "always":
		return termenv.ANSI256
	case "never":
		return termenv.Ascii
	default:
		return termenv.NewOutput(w).EnvColorProfile()
	}
}

// printer writes human-readable command output.
type printer struct {
	w     io.Writer
	width int

	id    lipgloss.Style
	key   lipgloss.Style
	dim   lipgloss.Style
	title lipgloss.Style
}

func newPrinter(w io.Writer, cfg *config.Config) *printer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(colorProfile(w, cfg.Display.Color))

	width := cfg.Display.MaxWidth
	if width == 0 {
		width = terminalWidth(w)
	}

	return &printer{
		w:     w,
		width: width,
		id:    r.NewStyle().Foreground(lipgloss.Color("8")),
		key:   r.NewStyle().Foreground(lipgloss.Color("6")),
		dim:   r.NewStyle().Faint(true),
		title: r.NewStyle().Bold(true),
	}
}

// records prints one "[id] command" line per record. When the width is
// known, commands are flattened to one line and truncated in the middle;
// otherwise they are printed verbatim.
func (p *printer) records(recs []history.Record) {
	for _, r := range recs {
		p.record(r)
	}
}

func (p *printer) record(r history.Record) {
	prefix := "[" + strconv.Itoa(r.ID) + "] "
	command := r.Command
	if p.width > 0 {
		command = picker.DisplayCommand(command)
		if avail := p.width - len(prefix); avail > 0 {
			command = picker.MiddleTruncate(command, avail)
		}
	}
	fmt.Fprintf(p.w, "%s%s\n", p.id.Render(prefix), command)
}

func (p *printer) notice(msg string) {
	fmt.Fprintln(p.w, p.dim.Render(msg))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// terminalWidth returns the width of w in cells, or 0 when w is not a
// terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	return termWidth(f)
}
