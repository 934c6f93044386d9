// Package ui renders command output for the terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	renderer = lipgloss.NewRenderer(os.Stdout)

	accentColor = lipgloss.AdaptiveColor{Light: "#0366d6", Dark: "#58a6ff"}
	passColor   = lipgloss.AdaptiveColor{Light: "#1a7f37", Dark: "#3fb950"}
	warnColor   = lipgloss.AdaptiveColor{Light: "#9a6700", Dark: "#d29922"}
	failColor   = lipgloss.AdaptiveColor{Light: "#cf222e", Dark: "#f85149"}
	mutedColor  = lipgloss.AdaptiveColor{Light: "#6e7781", Dark: "#8b949e"}
)

// SetOutput renders for w instead of stdout. Colors are only emitted when w
// is a terminal that supports them.
func SetOutput(w io.Writer) {
	renderer = lipgloss.NewRenderer(w)
}

// DisableColor turns off all styling.
func DisableColor() {
	renderer.SetColorProfile(termenv.Ascii)
}

func style(c lipgloss.AdaptiveColor) lipgloss.Style {
	return renderer.NewStyle().Foreground(c)
}

// RenderAccent highlights s (names, paths, ids).
func RenderAccent(s string) string {
	return style(accentColor).Bold(true).Render(s)
}

// RenderPass marks s as a success.
func RenderPass(s string) string {
	return style(passColor).Render(s)
}

// RenderWarn marks s as a warning.
func RenderWarn(s string) string {
	return style(warnColor).Render(s)
}

// RenderFail marks s as an error.
func RenderFail(s string) string {
	return style(failColor).Bold(true).Render(s)
}

// RenderMuted de-emphasizes s.
func RenderMuted(s string) string {
	return style(mutedColor).Render(s)
}

// KeyValues renders pairs as aligned "key: value" lines, indented by two
// spaces.
func KeyValues(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0]))
	}

	key := renderer.NewStyle().Width(width + 1)

	var b strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&b, "  %s %s\n", key.Render(p[0]+":"), p[1])
	}
	return b.String()
}
