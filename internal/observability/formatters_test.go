package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jonathan/skincare-intake/internal/intake"
	"github.com/jonathan/skincare-intake/internal/report"
	"github.com/jonathan/skincare-intake/internal/webhook"
	"github.com/stretchr/testify/assert"
)

func TestPrintSubmission(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	sub := intake.NewSubmission("user@example.com", "Dry patches\non my cheeks", []intake.Image{
		{Filename: "front.png", ContentType: "image/png", Data: make([]byte, 2048)},
		{Filename: "side.jpg", ContentType: "image/jpeg", Data: make([]byte, 10)},
	})

	p.PrintSubmission(sub)
	output := buf.String()

	assert.Contains(t, output, "SUBMISSION")
	assert.Contains(t, output, sub.ID.String())
	assert.Contains(t, output, "user@example.com")
	assert.Contains(t, output, "Dry patches on my cheeks")
	assert.Contains(t, output, "image_0  front.png (image/png, 2048 bytes)")
	assert.Contains(t, output, "image_1  side.jpg")
}

func TestPrintSubmission_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSubmission(nil)
	assert.Empty(t, buf.String())
}

func TestPrintWebhookResponse(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		expect string
	}{
		{"normalized", "Skin Analysis\nSkin Type: Oily", "normalized into 2 blocks"},
		{"bypassed", "## Done", "already markdown"},
		{"empty", "", "placeholder shown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := NewPrinter(&buf)

			resp := &webhook.Response{StatusCode: 200, ContentType: "text/plain", Body: tt.body, Elapsed: 1500 * time.Millisecond}
			p.PrintWebhookResponse(resp, report.Parse(tt.body))
			output := buf.String()

			assert.Contains(t, output, "WEBHOOK RESPONSE")
			assert.Contains(t, output, "200")
			assert.Contains(t, output, "1.5s")
			assert.Contains(t, output, tt.expect)
		})
	}
}

func TestPrintWebhookResponse_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintWebhookResponse(nil, report.Document{})
	assert.Empty(t, buf.String())
}

func TestPrintDocument(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	text := "Intro line\nSkin Analysis\n- Dry\n- Red\nRecommended Skincare Products\nCleanser\nSerum\nMoisturizer"
	p.PrintDocument(report.Parse(text))
	output := buf.String()

	assert.Contains(t, output, "REPORT STRUCTURE")
	assert.Contains(t, output, "none:      1 blocks")
	assert.Contains(t, output, "analysis:  3 blocks")
	assert.Contains(t, output, "products:  4 blocks")
	assert.Contains(t, output, "... and 3 more blocks")
}

func TestPrintDocument_SkipsBypassed(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintDocument(report.Parse("| a |"))
	assert.Empty(t, buf.String())
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintError("webhook", errors.New("webhook responded with status 500: boom"))
	assert.Contains(t, buf.String(), "webhook failed")
	assert.Contains(t, buf.String(), "status 500")

	buf.Reset()
	p.PrintError("webhook", nil)
	assert.Empty(t, buf.String())
}

func TestPrintBox_Truncation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	longLine := strings.Repeat("é", 100)
	p.printBox("TEST", longLine)

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", truncate(strings.Repeat("é", 10), 6))
}
