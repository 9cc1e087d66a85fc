package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pixelsort/pkg/errors"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorAccent = lipgloss.Color("36")  // teal
	colorOK     = lipgloss.Color("35")  // green
	colorWarn   = lipgloss.Color("220") // amber
	colorFail   = lipgloss.Color("167") // soft red
	colorCmd    = lipgloss.Color("75")  // light blue
	colorValue  = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

// StyleDim renders secondary text.
var StyleDim = lipgloss.NewStyle().Foreground(colorFaint)

// StyleValue renders file names, sizes and other data.
var StyleValue = lipgloss.NewStyle().Foreground(colorValue)

var (
	styleOK      = lipgloss.NewStyle().Foreground(colorOK)
	styleFail    = lipgloss.NewStyle().Foreground(colorFail)
	styleWarn    = lipgloss.NewStyle().Foreground(colorWarn)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleAccent  = lipgloss.NewStyle().Foreground(colorAccent)
	styleCommand = lipgloss.NewStyle().Foreground(colorCmd)
	styleBarOff  = lipgloss.NewStyle().Foreground(colorFaint)
)

// styleIconSpinner is shared by the spinner and the progress display.
var styleIconSpinner = styleAccent

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// printer
// =============================================================================

// printer writes the human-facing lines of a command. Logs go elsewhere;
// everything a user is meant to read after a command finishes goes here.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) printer {
	return printer{w: w}
}

func (p printer) line(s string) {
	fmt.Fprintln(p.w, s)
}

func (p printer) success(format string, args ...any) {
	p.line(styleOK.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func (p printer) warning(format string, args ...any) {
	p.line(styleWarn.Render(iconWarning) + " " + styleWarn.Render(fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	p.line(styleMuted.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// detail prints an indented, dimmed line under the previous message.
func (p printer) detail(format string, args ...any) {
	p.line("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints "→ path" for a file a command wrote.
func (p printer) file(path string) {
	p.line("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// sortSummary prints "WxH · N pixels moved · cached|fresh". The moved count
// is left out when nothing moved or the result came from the cache.
func (p printer) sortSummary(width, height, moved int, cached bool) {
	parts := []string{StyleDim.Render(fmt.Sprintf("%dx%d", width, height))}
	if moved > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d pixels moved", moved)))
	}
	if cached {
		parts = append(parts, styleOK.Render(iconCached))
	} else {
		parts = append(parts, styleMuted.Render(iconFresh))
	}
	p.line("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// nextStep suggests a follow-up command.
func (p printer) nextStep(description, cmd string) {
	p.line(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func (p printer) blank() {
	p.line("")
}

// PrintError writes err to w as "✗ message". Structured errors print their
// message without the code prefix; validation errors add a usage hint.
func PrintError(w io.Writer, err error) {
	fmt.Fprintln(w, styleFail.Render(iconError)+" "+errors.UserMessage(err))
	if errors.IsValidation(err) {
		fmt.Fprintln(w, "  "+StyleDim.Render("Run with --help for usage"))
	}
}

// renderBar draws a fixed-width progress bar for done of total.
func renderBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(width, done*width/total)
	}
	return styleAccent.Render(strings.Repeat("█", filled)) +
		styleBarOff.Render(strings.Repeat("░", width-filled))
}
