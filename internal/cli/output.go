package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#059669", Dark: "#10B981"}).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"})
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"})
	styleHeading = lipgloss.NewStyle().Bold(true)
)

// printer writes command output, styling it only when w is a terminal.
type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer) *printer {
	p := &printer{w: w}
	if f, ok := w.(*os.File); ok {
		p.color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return p
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) success(format string, args ...any) {
	fmt.Fprintln(p.w, p.style(styleSuccess, fmt.Sprintf(format, args...)))
}

func (p *printer) heading(format string, args ...any) {
	fmt.Fprintln(p.w, p.style(styleHeading, fmt.Sprintf(format, args...)))
}

func (p *printer) item(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+fmt.Sprintf(format, args...))
}

func (p *printer) muted(format string, args ...any) {
	fmt.Fprintln(p.w, p.style(styleMuted, fmt.Sprintf(format, args...)))
}

func (p *printer) warnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.style(styleWarning, "Warnings:"))
	for _, w := range warnings {
		fmt.Fprintf(p.w, "  - %s\n", w)
	}
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
