package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ParseDocument builds a Document for hostname from an HTML stream,
// collecting the script elements already present in the markup. Elements
// parsed from markup bypass the assignment hook: they were written by the
// page author before the engine activated, which is exactly the set the
// engine's initial scan is responsible for.
func ParseDocument(hostname string, r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document html: %w", err)
	}

	doc := NewDocument(hostname)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			e := &Element{Tag: "script", doc: doc}
			for _, attr := range n.Attr {
				switch strings.ToLower(attr.Key) {
				case "src":
					e.src = attr.Val
				case "type":
					e.typ = attr.Val
				case "async":
					e.Async = true
				default:
					if e.attrs == nil {
						e.attrs = make(map[string]string)
					}
					e.attrs[strings.ToLower(attr.Key)] = attr.Val
				}
			}
			doc.elements = append(doc.elements, e)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return doc, nil
}
