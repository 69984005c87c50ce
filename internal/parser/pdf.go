package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	pdflib "github.com/ledongthuc/pdf"
)

// errNoPDFText means the backend opened the file but found no text layer.
var errNoPDFText = errors.New("no extractable text")

// PDFParser reads PDFs page by page. With FallbackPdftotext set, a failed
// or empty extraction is retried with poppler's pdftotext.
type PDFParser struct {
	Backend           string
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*Document, error) {
	// Both backends need a seekable file.
	tmp, err := os.CreateTemp("", "binkread-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	var pages []string
	if p.Backend == "fitz" {
		pages, err = extractFitzPages(tmpPath)
	} else {
		pages, err = extractPDFPages(tmpPath)
	}
	if err == nil && blank(pages) {
		err = errNoPDFText
	}
	if err != nil && p.FallbackPdftotext {
		pages, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	doc := &Document{Title: titleFromFilename(filename)}
	for _, page := range pages {
		doc.appendBlock(page)
	}
	return doc, nil
}

func extractPDFPages(path string) (pages []string, err error) {
	// ledongthuc/pdf panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func extractPdftotext(path string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	// pdftotext separates pages with form feeds.
	pages := strings.Split(string(out), "\f")
	if blank(pages) {
		return nil, errNoPDFText
	}
	return pages, nil
}

func blank(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}
