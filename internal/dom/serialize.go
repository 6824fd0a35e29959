package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// AttrChangeID marks a node as an annotation; the resolve and reload
// paths key on it. Declared here so serialization can strip annotations
// without importing the annotator.
const AttrChangeID = "data-change-id"

// fragmentContext is the parsing context for ParseFragment.
func fragmentContext() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
}

// ParseFragment parses markup into a list of detached sibling nodes, as
// if the markup were body content.
func ParseFragment(markup string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), fragmentContext())
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		n.Parent = nil
		n.PrevSibling = nil
		n.NextSibling = nil
	}
	return nodes, nil
}

// RenderTracked serializes n's children with annotation markup intact.
func RenderTracked(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		// Rendering into a strings.Builder cannot fail.
		_ = html.Render(&b, c)
	}
	return b.String()
}

// RenderClean serializes n's children with every annotation resolved
// away: deletion annotations are dropped with their content, insertion
// annotations are unwrapped. The live tree is not modified.
func RenderClean(n *html.Node) string {
	clean := Clone(n)
	stripAnnotations(clean)
	return RenderTracked(clean)
}

// stripAnnotations removes annotation markup from a cloned subtree.
func stripAnnotations(n *html.Node) {
	c := n.FirstChild
	for c != nil {
		next := c.NextSibling
		if HasAttr(c, AttrChangeID) {
			switch c.Data {
			case "del":
				n.RemoveChild(c)
			case "ins":
				// Children are stripped first, then promoted in front
				// of c, so next remains valid.
				stripAnnotations(c)
				Unwrap(c)
			default:
				stripAnnotations(c)
			}
		} else if c.Type == html.ElementNode {
			stripAnnotations(c)
		}
		c = next
	}
}
