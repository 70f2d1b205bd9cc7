package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives every status line; tests swap it.
var stdout io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan    = lipgloss.Color("36")  // Teal - primary actions
	colorGreen   = lipgloss.Color("35")  // Green - success
	colorYellow  = lipgloss.Color("220") // Amber - warnings, collapsed branches
	colorRed     = lipgloss.Color("167") // Soft red - errors
	colorBlue    = lipgloss.Color("75")  // Light blue - commands
	colorWhite   = lipgloss.Color("255") // Bright white - values, persons
	colorGray    = lipgloss.Color("245") // Gray - secondary text
	colorDim     = lipgloss.Color("240") // Dim gray - muted text, unknowns
	colorBronze  = lipgloss.Color("130") // Bronze - family lines
	colorCrimson = lipgloss.Color("160") // Crimson - marriage markers
	colorGold    = lipgloss.Color("226") // Gold - selection
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printLine(s string) { fmt.Fprintln(stdout, s) }

func printSuccess(format string, args ...any) {
	printLine(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printLine(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printLine(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printLine(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	printLine("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	printLine("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value in a fixed-width key column.
func printKeyValue(key, value string) {
	printLine(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints tree statistics on one line. Hidden persons are only
// mentioned when some are collapsed away.
func printStats(visible, total, couples int, cached bool) {
	parts := []string{fmt.Sprintf("%d persons", visible)}
	if hidden := total - visible; hidden > 0 {
		parts = append(parts, fmt.Sprintf("%d hidden", hidden))
	}
	if couples > 0 {
		parts = append(parts, fmt.Sprintf("%d couples", couples))
	}

	status := styleComputed.Render("fresh")
	if cached {
		status = styleCached.Render("cached")
	}
	sep := StyleDim.Render(" · ")
	printLine("  " + StyleDim.Render(strings.Join(parts, " · ")) + sep + status)
}

// printNextStep prints a suggested follow-up command.
func printNextStep(description, cmd string) {
	printLine(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { printLine("") }
