package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// DefaultStyle is the glamour style used when none is configured.
const DefaultStyle = "dark"

// DefaultWidth is the word wrap width for terminal output.
const DefaultWidth = 80

// Terminal renders markdown for display in a terminal.
func Terminal(markdown string, style string, width int) (string, error) {
	if style == "" {
		style = DefaultStyle
	}
	if width <= 0 {
		width = DefaultWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
