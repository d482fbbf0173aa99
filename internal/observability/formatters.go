// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/skincare-intake/internal/intake"
	"github.com/jonathan/skincare-intake/internal/report"
	"github.com/jonathan/skincare-intake/internal/webhook"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, inner), inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// PrintSubmission outputs what is about to be sent to the webhook.
func (p *Printer) PrintSubmission(sub *intake.Submission) {
	if sub == nil {
		return
	}

	summary := sub.Summary()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:        %s\n", summary.ID))
	sb.WriteString(fmt.Sprintf("Email:     %s\n", summary.Email))
	sb.WriteString(fmt.Sprintf("Concerns:  %s\n", truncate(strings.Join(strings.Fields(sub.Concerns), " "), 40)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Images (%d, %d bytes):\n", summary.ImageCount, summary.TotalBytes))
	for i, img := range sub.Images {
		sb.WriteString(fmt.Sprintf("  • image_%d  %s (%s, %d bytes)\n", i, truncate(img.Filename, 24), img.ContentType, img.Size()))
	}

	p.printBox("SUBMISSION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintWebhookResponse outputs the webhook reply and how it was formatted.
func (p *Printer) PrintWebhookResponse(resp *webhook.Response, doc report.Document) {
	if resp == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status:    %d\n", resp.StatusCode))
	if resp.ContentType != "" {
		sb.WriteString(fmt.Sprintf("Type:      %s\n", resp.ContentType))
	}
	sb.WriteString(fmt.Sprintf("Size:      %d bytes\n", len(resp.Body)))
	sb.WriteString(fmt.Sprintf("Elapsed:   %v\n", resp.Elapsed.Round(time.Millisecond)))

	switch {
	case doc.Bypassed:
		sb.WriteString("Format:    already markdown (passed through)")
	case len(doc.Blocks) == 0:
		sb.WriteString("Format:    empty reply (placeholder shown)")
	default:
		sb.WriteString(fmt.Sprintf("Format:    normalized into %d blocks", len(doc.Blocks)))
	}

	p.printBox("WEBHOOK RESPONSE", sb.String())
}

// PrintDocument outputs the blocks produced for each section.
func (p *Printer) PrintDocument(doc report.Document) {
	if doc.Bypassed || len(doc.Blocks) == 0 {
		return
	}

	counts := map[report.Section]int{}
	for _, b := range doc.Blocks {
		counts[b.Section]++
	}

	var sb strings.Builder
	for _, section := range []report.Section{report.SectionNone, report.SectionAnalysis, report.SectionProducts} {
		if counts[section] > 0 {
			sb.WriteString(fmt.Sprintf("%-10s %d blocks\n", section.String()+":", counts[section]))
		}
	}
	sb.WriteString("\n")

	count := min(len(doc.Blocks), maxItemsToShow)
	for i := 0; i < count; i++ {
		b := doc.Blocks[i]
		sb.WriteString(fmt.Sprintf("%-12s %s\n", b.Kind, truncate(b.Text, 40)))
	}
	if len(doc.Blocks) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more blocks\n", len(doc.Blocks)-maxItemsToShow))
	}

	p.printBox("REPORT STRUCTURE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintError outputs a failed step.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintError(step string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
	fmt.Fprintf(p.out, "│ %s │\n", pad(truncate("⚠ "+step+" failed", boxWidth-4), boxWidth-4))
	fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(err.Error(), boxWidth-4), boxWidth-4))
	fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
}
