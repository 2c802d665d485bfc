// Package render turns the light markdown the agents write into display
// blocks, and styles those blocks for the terminal.
package render

import (
	"fmt"
	"regexp"
	"strings"
)

// BlockKind classifies one line of content.
type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading1
	Heading2
	Heading3
	Bullet
	Numbered
	Spacer
)

func (k BlockKind) String() string {
	switch k {
	case Heading1:
		return "h1"
	case Heading2:
		return "h2"
	case Heading3:
		return "h3"
	case Bullet:
		return "bullet"
	case Numbered:
		return "numbered"
	case Spacer:
		return "spacer"
	default:
		return "paragraph"
	}
}

func (k BlockKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *BlockKind) UnmarshalText(text []byte) error {
	for c := Paragraph; c <= Spacer; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown block kind %q", text)
}

// SpanStyle is the inline emphasis of a span.
type SpanStyle int

const (
	Plain SpanStyle = iota
	Bold
	Italic
)

func (s SpanStyle) String() string {
	switch s {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	default:
		return "plain"
	}
}

func (s SpanStyle) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *SpanStyle) UnmarshalText(text []byte) error {
	for c := Plain; c <= Italic; c++ {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown span style %q", text)
}

// Span is a run of text with one emphasis.
type Span struct {
	Text  string    `json:"text"`
	Style SpanStyle `json:"style"`
}

// Block is one rendered line.
type Block struct {
	Kind  BlockKind `json:"kind"`
	Spans []Span    `json:"spans"`
}

// Text returns the block's text without emphasis markers.
func (b Block) Text() string {
	var sb strings.Builder
	for _, s := range b.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

var (
	numberedPrefix = regexp.MustCompile(`^\d+\.\s`)
	boldPattern    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern  = regexp.MustCompile(`\*(.*?)\*`)
)

// Blocks splits text into one block per line. Headings keep their text as is;
// list items and paragraphs get inline emphasis. Empty text yields no blocks.
func Blocks(text string) []Block {
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, lineBlock(line))
	}
	return blocks
}

func lineBlock(line string) Block {
	switch {
	case strings.HasPrefix(line, "### "):
		return Block{Kind: Heading3, Spans: []Span{{Text: line[4:]}}}
	case strings.HasPrefix(line, "## "):
		return Block{Kind: Heading2, Spans: []Span{{Text: line[3:]}}}
	case strings.HasPrefix(line, "# "):
		return Block{Kind: Heading1, Spans: []Span{{Text: line[2:]}}}
	case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
		return Block{Kind: Bullet, Spans: Inline(line[2:])}
	case numberedPrefix.MatchString(line):
		return Block{Kind: Numbered, Spans: Inline(numberedPrefix.ReplaceAllString(line, ""))}
	case strings.TrimSpace(line) == "":
		return Block{Kind: Spacer}
	default:
		return Block{Kind: Paragraph, Spans: Inline(line)}
	}
}

// Inline splits text on **bold** markers; only when there are none does it
// look for *italic* markers. The two never mix within one line.
func Inline(text string) []Span {
	if spans, ok := splitEmphasis(text, boldPattern, Bold); ok {
		return spans
	}
	if spans, ok := splitEmphasis(text, italicPattern, Italic); ok {
		return spans
	}
	return []Span{{Text: text}}
}

func splitEmphasis(text string, pattern *regexp.Regexp, style SpanStyle) ([]Span, bool) {
	matches := pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil, false
	}

	var spans []Span
	last := 0
	for _, m := range matches {
		if m[0] > last {
			spans = append(spans, Span{Text: text[last:m[0]]})
		}
		if m[3] > m[2] {
			spans = append(spans, Span{Text: text[m[2]:m[3]], Style: style})
		}
		last = m[1]
	}
	if last < len(text) {
		spans = append(spans, Span{Text: text[last:]})
	}
	return spans, true
}

// Severity is the display level of a threat label.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// SeverityOf maps a threat label case-insensitively onto a severity. Labels
// outside low/medium/high/critical are SeverityUnknown; they are still shown.
func SeverityOf(label string) Severity {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "low":
		return SeverityLow
	case "medium":
		return SeverityMedium
	case "high":
		return SeverityHigh
	case "critical":
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// ThreatLabel is the badge text for label.
func ThreatLabel(label string) string {
	if label == "" {
		return "Unknown"
	}
	return label
}
