package source

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLText recovers line-oriented text from HTML or hOCR. Each ocr_line and
// each block element starts a new line so label/value layouts survive.
func HTMLText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var lines []string
	var cur strings.Builder

	flush := func() {
		line := strings.Join(strings.Fields(cur.String()), " ")
		if line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			}
		}

		if n.Type == html.TextNode {
			cur.WriteString(n.Data)
			cur.WriteString(" ")
			return
		}

		breaks := n.Type == html.ElementNode && breaksLine(n)
		if breaks {
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if breaks {
			flush()
		}
	}

	walk(doc)
	flush()
	return strings.Join(lines, "\n"), nil
}

func breaksLine(n *html.Node) bool {
	switch n.Data {
	case "br", "p", "div", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6", "pre", "table":
		return true
	}
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, class := range strings.Fields(a.Val) {
			switch class {
			case "ocr_line", "ocrx_line", "ocr_textfloat", "ocr_header", "ocr_caption", "ocr_par":
				return true
			}
		}
	}
	return false
}
