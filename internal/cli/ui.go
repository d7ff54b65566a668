package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pinbump/pkg/bump"
	"github.com/matzehuels/pinbump/pkg/manifest"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - headings
	colorGreen  = lipgloss.Color("35")  // Green - current
	colorYellow = lipgloss.Color("220") // Amber - bumped
	colorRed    = lipgloss.Color("167") // Soft red - not bumpable
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconCurrent = "✓"
	iconReject  = "𐄂"
	iconBumped  = "↑"
)

// =============================================================================
// Printer
// =============================================================================

// printer renders status lines to one writer. Styles are bound to a
// renderer for that writer so color is only emitted to terminals.
type printer struct {
	w io.Writer

	title   lipgloss.Style
	value   lipgloss.Style
	dim     lipgloss.Style
	current lipgloss.Style
	reject  lipgloss.Style
	bumped  lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:       w,
		title:   r.NewStyle().Bold(true).Foreground(colorCyan),
		value:   r.NewStyle().Foreground(colorWhite),
		dim:     r.NewStyle().Foreground(colorDim),
		current: r.NewStyle().Foreground(colorGreen),
		reject:  r.NewStyle().Foreground(colorRed),
		bumped:  r.NewStyle().Foreground(colorYellow),
	}
}

func (p *printer) println(s string) {
	fmt.Fprintln(p.w, s)
}

// evaluating prints the run header.
func (p *printer) evaluating(dir string) {
	p.println("\n" + p.title.Render("Evaluating") + " " + p.value.Render(dir))
}

// file prints the header of a file about to be processed.
func (p *printer) file(rel string) {
	p.println("\n" + p.title.Render(rel))
}

// missing reports a file that does not exist.
func (p *printer) missing(rel string) {
	p.println("\n" + p.dim.Render(fmt.Sprintf("Skipping %s; not found", rel)))
}

// section prints the name of a dependency group within a file.
func (p *printer) section(name string) {
	p.println(" " + p.value.Render(name))
}

// result prints one requirement decision. Comment lines print nothing.
func (p *printer) result(r bump.Result) {
	switch r.Outcome {
	case bump.Skipped:
		return
	case bump.Invalid:
		p.rejected(r.Input, "invalid requirement")
	case bump.Unknown:
		p.rejected(r.Input, "cannot determine latest version")
	case bump.Ambiguous:
		p.rejected(r.Input, fmt.Sprintf("requires exactly one specifier (latest: %s)", r.Latest))
	case bump.WrongOperator:
		p.rejected(r.Input, fmt.Sprintf("must use == operator (latest: %s)", r.Latest))
	case bump.Current:
		p.println("  " + p.current.Render(iconCurrent) + " " + r.Input + " is already the latest version")
	case bump.Bumped:
		p.println(fmt.Sprintf("  %s %s from %s to %s",
			p.bumped.Render(iconBumped), r.Name, r.From, p.bumped.Render(r.Latest)))
	}
}

func (p *printer) rejected(req, reason string) {
	p.println("  " + p.reject.Render(iconReject) + " " + req + "; " + reason)
}

// summary prints the per-file tally.
func (p *printer) summary(report *manifest.Report, dryRun bool) {
	bumped, current, skipped := report.Tally()
	line := fmt.Sprintf("%d bumped, %d unchanged, %d skipped", bumped, current, skipped)
	if dryRun && report.Changed {
		line += " (dry run, not written)"
	}
	p.println("  " + p.dim.Render(line))
}
