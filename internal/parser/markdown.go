package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Each heading starts
// a new block, with the heading text as its first line.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	root := goldmark.New().Parser().Parse(text.NewReader(src))
	doc := &Document{Title: titleFromFilename(filename)}

	var section []string
	flush := func() {
		doc.appendBlock(strings.Join(section, "\n\n"))
		section = section[:0]
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		t := extractText(n, src)
		if t == "" {
			continue
		}
		if n.Kind() == ast.KindHeading {
			flush()
		}
		section = append(section, t)
	}
	flush()

	return doc, nil
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	switch n.Kind() {
	case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			buf.Write(c.Segment.Value(src))
			if c.HardLineBreak() || c.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(c.Value)
		default:
			if s := extractText(c, src); s != "" {
				if c.Type() == ast.TypeBlock && buf.Len() > 0 {
					buf.WriteByte('\n')
				}
				buf.WriteString(s)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
