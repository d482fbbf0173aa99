// Package render turns normalized report markdown into presentational output:
// sanitized HTML for the results page and styled text for terminals.
package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

// markdownExtensions covers headers, emphasis, lists, quotes, code and pipe tables.
const markdownExtensions = blackfriday.CommonExtensions | blackfriday.Autolink | blackfriday.Strikethrough

// elementClasses maps rendered elements to the classes used by the results stylesheet.
var elementClasses = map[string]string{
	"h1":         "report-title",
	"h2":         "report-section",
	"h3":         "report-subsection",
	"p":          "report-text",
	"ul":         "report-list",
	"ol":         "report-list report-list-ordered",
	"strong":     "report-emphasis",
	"blockquote": "report-quote",
	"pre":        "report-code",
	"table":      "report-table",
}

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).Globally()
	return p
}

// RenderError wraps failures while producing HTML.
type RenderError struct {
	Stage string
	Cause error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed during %s: %v", e.Stage, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// HTML converts markdown into sanitized, class-decorated HTML.
func HTML(markdown string) (template.HTML, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}

	raw := blackfriday.Run([]byte(markdown), blackfriday.WithExtensions(markdownExtensions))
	clean := policy.SanitizeBytes(raw)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(clean)))
	if err != nil {
		return "", &RenderError{Stage: "parse", Cause: err}
	}

	for selector, class := range elementClasses {
		doc.Find(selector).AddClass(class)
	}

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", &RenderError{Stage: "serialize", Cause: err}
	}

	// Sanitized above; classes are the only additions.
	return template.HTML(strings.TrimSpace(body)), nil //nolint:gosec
}

// PlainText strips markup from markdown and returns the readable text,
// used for log previews.
func PlainText(markdown string) (string, error) {
	html, err := HTML(markdown)
	if err != nil {
		return "", err
	}
	if html == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return "", &RenderError{Stage: "parse", Cause: err}
	}
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
