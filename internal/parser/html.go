package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLParser extracts headings and block text from HTML, skipping page
// chrome. A heading starts a new block.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &Document{Title: titleFromFilename(filename)}
	if title := findElement(root, "title"); title != nil {
		if t := textContent(title); t != "" {
			doc.Title = t
		}
	}

	var section []string
	flush := func() {
		doc.appendBlock(strings.Join(section, "\n\n"))
		section = section[:0]
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "noscript", "template":
				return
			case "h1", "h2", "h3", "h4", "h5", "h6":
				flush()
				if t := textContent(n); t != "" {
					section = append(section, t)
				}
				return
			case "p", "li", "td", "th", "blockquote", "pre", "dd", "dt", "figcaption":
				if t := textContent(n); t != "" {
					section = append(section, t)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findElement(root, "body"); body != nil {
		walk(body)
	} else {
		walk(root)
	}
	flush()

	return doc, nil
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
