package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jonathan/skincare-intake/internal/config"
	"github.com/jonathan/skincare-intake/internal/render"
	"github.com/jonathan/skincare-intake/internal/report"
	"github.com/spf13/cobra"
)

// Output formats shared by normalize and submit.
const (
	formatMarkdown = "markdown"
	formatHTML     = "html"
	formatTerminal = "terminal"
)

var (
	normalizeInputFile string
	normalizeFormat    string
	normalizeStyle     string
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Format a plain-text report as markdown",
	Long:  "Read a plain-text recommendation report and print it as markdown, sanitized HTML or styled terminal output.",
	RunE:  runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeInputFile, "in", "i", "-", "Path to the report text file, or - for stdin")
	normalizeCmd.Flags().StringVarP(&normalizeFormat, "format", "f", formatMarkdown, "Output format: markdown, html or terminal")
	normalizeCmd.Flags().StringVar(&normalizeStyle, "style", "", "Terminal style (defaults to RENDER_STYLE or dark)")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	text, err := readInput(cmd.InOrStdin(), normalizeInputFile)
	if err != nil {
		return err
	}

	out, err := formatReport(report.Normalize(text), normalizeFormat, terminalStyle(normalizeStyle))
	if err != nil {
		return err
	}

	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(data), nil
}

// terminalStyle picks the flag value, then RENDER_STYLE, then the default.
func terminalStyle(flag string) string {
	if flag != "" {
		return flag
	}
	if style := config.FromEnv().RenderStyle; style != "" {
		return style
	}
	return render.DefaultStyle
}

// formatReport renders normalized markdown in the requested format.
func formatReport(markdown, format, style string) (string, error) {
	switch format {
	case formatMarkdown, "md":
		return markdown, nil
	case formatHTML:
		html, err := render.HTML(markdown)
		if err != nil {
			return "", err
		}
		return string(html) + "\n", nil
	case formatTerminal:
		return render.Terminal(markdown, style, render.DefaultWidth)
	default:
		return "", fmt.Errorf("unknown format %q (expected markdown, html or terminal)", format)
	}
}
