package helpers

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/compozy/unitgen/engine/unitconfig"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F4A261")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2A9D8F")).Bold(true)
	bulletStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// ShouldUseColor reports whether output written to w may carry ANSI styling
func ShouldUseColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != "" {
		return false
	}
	if term := os.Getenv("TERM"); term == "dumb" {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func render(style lipgloss.Style, styled bool, text string) string {
	if !styled {
		return text
	}
	return style.Render(text)
}

// RenderReport prints every problem grouped by category
func RenderReport(report *unitconfig.Report, styled bool) string {
	if report.Valid() {
		return render(successStyle, styled, "Configs are valid.")
	}
	grouped := report.Grouped()
	sections := make([]string, 0, len(unitconfig.Categories))
	for _, category := range unitconfig.Categories {
		messages := grouped[category]
		if len(messages) == 0 {
			continue
		}
		var b strings.Builder
		b.WriteString(render(titleStyle, styled, fmt.Sprintf("%s (%d):", category.Title(), len(messages))))
		for _, msg := range messages {
			b.WriteString("\n")
			b.WriteString(render(bulletStyle, styled, "  - "))
			b.WriteString(msg)
		}
		sections = append(sections, b.String())
	}
	return strings.Join(sections, "\n\n")
}

// FormatError renders err for a terminal or a log stream
func FormatError(err error, styled bool) string {
	cliErr := Categorize(err)
	if cliErr == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(render(errorStyle, styled, "Error: "+cliErr.Message))
	if cliErr.Details != "" {
		b.WriteString("\n")
		b.WriteString(render(detailStyle, styled, cliErr.Details))
	}
	if cliErr.Report != nil {
		b.WriteString("\n\n")
		b.WriteString(RenderReport(cliErr.Report, styled))
	}
	return b.String()
}

// OutputError writes a formatted error to stderr
func OutputError(err error) {
	WriteError(os.Stderr, err, ShouldUseColor(os.Stderr))
}

func WriteError(w io.Writer, err error, styled bool) {
	if text := FormatError(err, styled); text != "" {
		fmt.Fprintln(w, text)
	}
}
