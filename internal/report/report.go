// Package report renders a short human-readable summary of a diff run.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"icsdiff/internal/diff"
)

// Colors
var (
	added   = lipgloss.Color("#00CC66")
	removed = lipgloss.Color("#FF0000")
	updated = lipgloss.Color("#FFAA00")
	muted   = lipgloss.Color("#666666")
	white   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	addedStyle   = lipgloss.NewStyle().Foreground(added).Bold(true)
	removedStyle = lipgloss.NewStyle().Foreground(removed).Bold(true)
	updatedStyle = lipgloss.NewStyle().Foreground(updated).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
)

// Summary is what a single diff run produced.
type Summary struct {
	BasePath    string
	ChangedPath string
	Policy      diff.Policy
	Result      diff.Result
	// OutputPath is empty for dry runs.
	OutputPath string
}

// Write prints the summary to w.
func Write(w io.Writer, s Summary) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("icsdiff"))
	b.WriteString(" ")
	b.WriteString(mutedStyle.Render(s.BasePath + " → " + s.ChangedPath))
	b.WriteString("\n")

	fmt.Fprintf(&b, "  %s %s\n", addedStyle.Render(fmt.Sprintf("+%d", len(s.Result.Added))), "added")
	fmt.Fprintf(&b, "  %s %s\n", removedStyle.Render(fmt.Sprintf("-%d", len(s.Result.Removed))), "removed")
	fmt.Fprintf(&b, "  %s %s\n", updatedStyle.Render(fmt.Sprintf("~%d", len(s.Result.Modified))), "modified")
	b.WriteString(mutedStyle.Render("  policy: " + s.Policy.String()))
	b.WriteString("\n")

	switch {
	case s.OutputPath != "":
		fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render("Exported results to"), s.OutputPath)
	default:
		b.WriteString(mutedStyle.Render("  dry run; nothing written"))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
