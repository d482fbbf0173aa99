package report

import "fmt"

// Section identifies which part of the report the normalizer is inside.
type Section int

const (
	// SectionNone is the state before any known header phrase is seen.
	SectionNone Section = iota
	// SectionAnalysis follows a "Skin Analysis" header.
	SectionAnalysis
	// SectionProducts follows a "Recommended Skincare Products" header.
	SectionProducts
)

// String returns the section tag.
func (s Section) String() string {
	switch s {
	case SectionAnalysis:
		return "analysis"
	case SectionProducts:
		return "products"
	default:
		return "none"
	}
}

// BlockKind describes how a single line is emitted.
type BlockKind int

const (
	// BlockHeader is a level-2 section header.
	BlockHeader BlockKind = iota
	// BlockBold is a bold key/value style line.
	BlockBold
	// BlockBullet is an unordered list item.
	BlockBullet
	// BlockBoldBullet is a list item with bold text.
	BlockBoldBullet
	// BlockParagraph is a plain paragraph line.
	BlockParagraph
	// BlockVerbatim is a line passed through untouched.
	BlockVerbatim
)

var blockKindNames = map[BlockKind]string{
	BlockHeader:     "header",
	BlockBold:       "bold",
	BlockBullet:     "bullet",
	BlockBoldBullet: "bold_bullet",
	BlockParagraph:  "paragraph",
	BlockVerbatim:   "verbatim",
}

// String returns the block kind name used in API responses.
func (k BlockKind) String() string {
	if name, ok := blockKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k BlockKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *BlockKind) UnmarshalText(text []byte) error {
	for kind, name := range blockKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown block kind %q", text)
}

// MarshalText implements encoding.TextMarshaler.
func (s Section) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Section) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none":
		*s = SectionNone
	case "analysis":
		*s = SectionAnalysis
	case "products":
		*s = SectionProducts
	default:
		return fmt.Errorf("unknown section %q", text)
	}
	return nil
}

// Block is one contribution to the formatted document.
type Block struct {
	Kind    BlockKind `json:"kind"`
	Text    string    `json:"text"`
	Section Section   `json:"section"`
}

// Markdown renders the block as the markdown fragment it contributes.
func (b Block) Markdown() string {
	switch b.Kind {
	case BlockHeader:
		// The products header is separated from whatever precedes it.
		if b.Section == SectionProducts {
			return "\n## " + b.Text + "\n\n"
		}
		return "## " + b.Text + "\n\n"
	case BlockBold:
		return "**" + b.Text + "**\n\n"
	case BlockBullet:
		return "- " + b.Text + "\n"
	case BlockBoldBullet:
		return "- **" + b.Text + "**\n"
	case BlockParagraph:
		return b.Text + "\n\n"
	default:
		return b.Text + "\n"
	}
}

// Document is the result of parsing a raw report.
type Document struct {
	Blocks []Block `json:"blocks"`
	// Bypassed is set when the input already looked like markdown.
	Bypassed bool `json:"bypassed"`
	// Source is the untouched input, kept for bypassed documents.
	Source string `json:"-"`
}

// Markdown assembles the document into a single markdown string.
func (d Document) Markdown() string {
	if d.Bypassed {
		return d.Source
	}
	if len(d.Blocks) == 0 && d.Source == "" {
		return Placeholder
	}

	size := 0
	for _, b := range d.Blocks {
		size += len(b.Text) + 8
	}

	out := make([]byte, 0, size)
	for _, b := range d.Blocks {
		out = append(out, b.Markdown()...)
	}
	return string(out)
}
