package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ayusman/heroswap/internal/tuning"
)

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleStored      = lipgloss.NewStyle().Foreground(colorCyan)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconArrow   = "→"
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// tuningRow is one template in the tuning table.
type tuningRow struct {
	ID      tuning.TemplateID
	Profile tuning.Profile
	Stored  *tuning.Override
}

// renderTuningTable lays out resolved profiles. Values overridden in the
// database are highlighted.
func renderTuningTable(rows []tuningRow) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("TEMPLATE", "MASK", "CLIP", "SCALE", "OFFSET X", "OFFSET Y", "REMOVE")

	for _, r := range rows {
		var stored tuning.Override
		if r.Stored != nil {
			stored = *r.Stored
		}
		p := r.Profile
		t.Row(
			string(r.ID),
			cell(formatFloat(p.MaskScale), stored.MaskScale != nil),
			cell(formatFloat(p.ClipScale), stored.ClipScale != nil),
			cell(formatFloat(p.UniformScale), stored.UniformScale != nil),
			cell(formatFloat(p.OffsetX), stored.OffsetX != nil),
			cell(formatFloat(p.OffsetY), stored.OffsetY != nil),
			cell(strconv.FormatBool(p.RemoveOriginal), stored.RemoveOriginal != nil),
		)
	}
	return t.Render()
}

func cell(v string, stored bool) string {
	if stored {
		return styleStored.Render(v + "*")
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}
