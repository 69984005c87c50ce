//go:build !fitz

package parser

import "errors"

func extractFitzPages(string) ([]string, error) {
	return nil, errors.New("fitz backend not compiled in (build with -tags fitz)")
}
