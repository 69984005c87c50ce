// Package parser extracts plain text from uploaded documents.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Document is the text of one upload. Pages holds PDF pages, or the
// top-level blocks (paragraphs, sections, row batches) of other formats.
type Document struct {
	Title string
	Pages []string
}

// Text joins the pages by newline.
func (d *Document) Text() string {
	return strings.Join(d.Pages, "\n")
}

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*Document, error)
}

// Options selects format-specific behavior.
type Options struct {
	PDFBackend        string // "ledongthuc" (default) or "fitz"
	FallbackPdftotext bool
}

// SupportedExtensions lists the extensions ForFile can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the parser for filename's extension.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{Backend: opts.PDFBackend, FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// appendBlock adds a non-empty trimmed block.
func (d *Document) appendBlock(s string) {
	if s = strings.TrimSpace(s); s != "" {
		d.Pages = append(d.Pages, s)
	}
}
