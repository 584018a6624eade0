package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Color styles for terminal output
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#4F46E5")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// Writer is where all output goes; tests swap it
var Writer io.Writer = os.Stdout

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Fprint(Writer, successStyle.Render("✓ "))
	fmt.Fprintf(Writer, format+"\n", args...)
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Fprint(Writer, warningStyle.Render("⚠ "))
	fmt.Fprintf(Writer, format+"\n", args...)
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Fprint(Writer, errorStyle.Render("✗ "))
	fmt.Fprintf(Writer, format+"\n", args...)
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Fprint(Writer, infoStyle.Render("ℹ "))
	fmt.Fprintf(Writer, format+"\n", args...)
}

// Muted prints a muted message
func Muted(format string, args ...interface{}) {
	fmt.Fprintln(Writer, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Header prints a section title
func Header(format string, args ...interface{}) {
	fmt.Fprintln(Writer, headerStyle.Render(fmt.Sprintf(format, args...)))
}

// JSON prints v indented
func JSON(v interface{}) error {
	enc := json.NewEncoder(Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table prints rows aligned under the given columns. Cells are left unstyled
// since escape codes would throw off the column widths.
func Table(columns []string, rows [][]string) {
	w := tabwriter.NewWriter(Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(columns, "\t")))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}
