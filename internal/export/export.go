// Package export turns the displayed content into files and clipboard text.
package export

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// Format is an export file format.
type Format string

const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatMarkdown, FormatHTML}

// ParseFormat validates a format name. An empty name means plain text.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatMarkdown, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (supported: txt, md, html)", name)
	}
}

// Document is what gets exported: the displayed title and body plus metadata
// used by the richer formats.
type Document struct {
	Title           string
	Body            string
	ContentType     string
	MetaDescription string
	Keywords        []string
	ExportedAt      time.Time
}

// Text is the plain-text rendition: title, a blank line, body.
func (d Document) Text() string {
	return d.Title + "\n\n" + d.Body
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

const maxBaseName = 50

// FileName derives the export file name from the title: every character
// outside [a-zA-Z0-9] becomes "_", the result is cut to 50 characters, and an
// empty title becomes "content".
func FileName(title string, format Format) string {
	if title == "" {
		title = "content"
	}
	base := unsafeChars.ReplaceAllString(title, "_")
	if len(base) > maxBaseName {
		base = base[:maxBaseName]
	}
	if format == "" {
		format = FormatText
	}
	return base + "." + string(format)
}

type frontMatter struct {
	Title       string   `yaml:"title"`
	ContentType string   `yaml:"content_type,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty"`
	Exported    string   `yaml:"exported,omitempty"`
}

// Render encodes doc in format.
func Render(doc Document, format Format) ([]byte, error) {
	switch format {
	case FormatText, "":
		return []byte(doc.Text()), nil
	case FormatMarkdown:
		return renderMarkdown(doc)
	case FormatHTML:
		return renderHTML(doc)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

func renderMarkdown(doc Document) ([]byte, error) {
	fm := frontMatter{
		Title:       doc.Title,
		ContentType: doc.ContentType,
		Description: doc.MetaDescription,
		Keywords:    doc.Keywords,
	}
	if !doc.ExportedAt.IsZero() {
		fm.Exported = doc.ExportedAt.Format(time.RFC3339)
	}
	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	if doc.Title != "" {
		buf.WriteString("# " + doc.Title + "\n\n")
	}
	buf.WriteString(doc.Body)
	if !strings.HasSuffix(doc.Body, "\n") {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

func renderHTML(doc Document) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(doc.Body), &body); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	buf.WriteString("<title>" + html.EscapeString(doc.Title) + "</title>\n")
	if doc.MetaDescription != "" {
		buf.WriteString(`<meta name="description" content="` + html.EscapeString(doc.MetaDescription) + "\">\n")
	}
	if len(doc.Keywords) > 0 {
		buf.WriteString(`<meta name="keywords" content="` + html.EscapeString(strings.Join(doc.Keywords, ", ")) + "\">\n")
	}
	buf.WriteString("</head>\n<body>\n")
	if doc.Title != "" {
		buf.WriteString("<h1>" + html.EscapeString(doc.Title) + "</h1>\n")
	}
	buf.Write(body.Bytes())
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

// Dir writes exports into a directory.
type Dir struct {
	path string
}

// NewDir exports into path, creating it on first use.
func NewDir(path string) *Dir {
	return &Dir{path: path}
}

// Export writes doc and returns the written file's path. An existing file of
// the same name is overwritten.
func (d *Dir) Export(doc Document, format Format) (string, error) {
	data, err := Render(doc, format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.path, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	target := filepath.Join(d.path, FileName(doc.Title, format))
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return target, nil
}
