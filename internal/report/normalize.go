// Package report turns the loosely structured plain-text reports returned by
// the recommendation webhook into markdown.
//
// The transform is a best-effort heuristic. Each non-blank line is consumed
// by Step, which looks at the current Section and the line and returns the
// next Section together with the Block to emit. Normalize folds Step over
// the whole report.
package report

import (
	"regexp"
	"strings"
)

// Placeholder is returned for an empty report.
const Placeholder = "Processing your recommendations... Please wait a moment."

// markdownMarkers disable normalization when present anywhere in the input.
var markdownMarkers = []string{"##", "|", "**"}

// sectionHeader maps a phrase to the section it opens.
type sectionHeader struct {
	phrase  string
	label   string
	section Section
}

// sectionHeaders are checked in order; the first match wins.
var sectionHeaders = []sectionHeader{
	{phrase: "Skin Analysis", label: "Skin Analysis", section: SectionAnalysis},
	{phrase: "Recommended Skincare Products", label: "Recommended Skincare Products", section: SectionProducts},
}

// fieldLabels are always emphasized regardless of section.
var fieldLabels = []string{
	"Skin Age:",
	"Estimated Real Age:",
	"Skin Type:",
	"Skin Concerns:",
}

const bulletMarker = "- "

var lineBreaks = regexp.MustCompile(`[\r\n]+`)

// IsMarkdown reports whether the text already carries markdown markers.
func IsMarkdown(text string) bool {
	for _, marker := range markdownMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// Lines splits text on runs of line breaks and returns the trimmed,
// non-blank lines in order.
func Lines(text string) []string {
	raw := lineBreaks.Split(text, -1)
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// Step applies the first matching formatting rule to a single trimmed line.
func Step(current Section, line string) (Section, Block) {
	// Section headers
	for _, h := range sectionHeaders {
		if strings.Contains(line, h.phrase) {
			return h.section, Block{Kind: BlockHeader, Text: h.label, Section: h.section}
		}
	}

	// Dash bullets are only restructured inside the analysis section
	if strings.HasPrefix(line, bulletMarker) {
		if current != SectionAnalysis {
			return current, Block{Kind: BlockVerbatim, Text: line, Section: current}
		}
		content := strings.TrimPrefix(line, bulletMarker)
		if strings.Contains(content, ":") {
			return current, Block{Kind: BlockBold, Text: content, Section: current}
		}
		return current, Block{Kind: BlockBullet, Text: content, Section: current}
	}

	if hasFieldLabel(line) {
		return current, Block{Kind: BlockBold, Text: line, Section: current}
	}

	hasColon := strings.Contains(line, ":")
	if current == SectionProducts && !hasColon {
		return current, Block{Kind: BlockBoldBullet, Text: line, Section: current}
	}
	if hasColon {
		return current, Block{Kind: BlockBold, Text: line, Section: current}
	}

	// Colon-free product lines never get here, so the fallback is a paragraph.
	return current, Block{Kind: BlockParagraph, Text: line, Section: current}
}

func hasFieldLabel(line string) bool {
	for _, label := range fieldLabels {
		if strings.Contains(line, label) {
			return true
		}
	}
	return false
}

// Parse splits a report into blocks. Bypassed documents carry no blocks.
func Parse(text string) Document {
	if text == "" {
		return Document{}
	}
	if IsMarkdown(text) {
		return Document{Bypassed: true, Source: text}
	}

	lines := Lines(text)
	doc := Document{
		Blocks: make([]Block, 0, len(lines)),
		Source: text,
	}

	section := SectionNone
	for _, line := range lines {
		var block Block
		section, block = Step(section, line)
		doc.Blocks = append(doc.Blocks, block)
	}
	return doc
}

// Normalize converts a plain-text report into markdown. Empty input yields
// Placeholder and input that already looks like markdown is returned as is.
func Normalize(text string) string {
	return Parse(text).Markdown()
}
