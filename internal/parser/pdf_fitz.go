//go:build fitz

package parser

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// extractFitzPages uses MuPDF, which copes with more encodings than the
// pure-Go reader. Requires cgo.
func extractFitzPages(path string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}
