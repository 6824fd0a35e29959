package pipeline

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/redline/internal/dom"
	"github.com/dshills/redline/internal/engine/annotate"
)

// insertNodeAt splices node into the tree at pos, splitting a text node
// when pos falls mid-text. Returns the position just after node.
func insertNodeAt(pos dom.Position, node *html.Node) dom.Position {
	if dom.IsText(pos.Node) {
		text := pos.Node
		parent := text.Parent
		if pos.Offset <= 0 {
			parent.InsertBefore(node, text)
			return dom.After(node)
		}
		// Splits at the end return nil; node goes directly after.
		dom.SplitText(text, pos.Offset)
		dom.InsertAfter(parent, text, node)
		return dom.After(node)
	}
	ref := dom.NodeBefore(pos)
	dom.InsertAfter(pos.Node, ref, node)
	return dom.After(node)
}

// splitElement splits element n at pos (a position inside n), cloning
// n's tag and attributes into a new right half that receives the
// content after pos. Returns the gap position between the halves in
// n's parent. When pos sits at either edge no split happens and the
// returned position is simply before or after n.
func splitElement(n *html.Node, pos dom.Position) dom.Position {
	if dom.AtNodeStart(pos, n) {
		return dom.Before(n)
	}
	if dom.AtNodeEnd(pos, n) {
		return dom.After(n)
	}

	// Walk the split upward until the gap reaches n's level.
	gap := pos
	for gap.Node != n {
		if dom.IsText(gap.Node) {
			text := gap.Node
			dom.SplitText(text, gap.Offset)
			gap = dom.After(text)
			continue
		}
		child := gap.Node
		right := &html.Node{
			Type:     child.Type,
			DataAtom: child.DataAtom,
			Data:     child.Data,
			Attr:     append([]html.Attribute(nil), child.Attr...),
		}
		moveChildrenFrom(child, gap.Offset, right)
		dom.InsertAfter(child.Parent, child, right)
		gap = dom.After(child)
	}

	right := &html.Node{
		Type:     n.Type,
		DataAtom: n.DataAtom,
		Data:     n.Data,
		Attr:     append([]html.Attribute(nil), n.Attr...),
	}
	moveChildrenFrom(n, gap.Offset, right)
	dom.InsertAfter(n.Parent, n, right)
	return dom.After(n)
}

// moveChildrenFrom moves src's children at index from onward into dst.
func moveChildrenFrom(src *html.Node, from int, dst *html.Node) {
	c := dom.ChildAt(src, from)
	for c != nil {
		next := c.NextSibling
		src.RemoveChild(c)
		dst.AppendChild(c)
		c = next
	}
}

// wrapNode replaces n with wrapper and puts n inside it.
func wrapNode(n, wrapper *html.Node) {
	parent := n.Parent
	parent.InsertBefore(wrapper, n)
	parent.RemoveChild(n)
	wrapper.AppendChild(n)
}

// summarizeID rebuilds a record summary from every node still carrying
// the change id, in document order. Breaks read as newlines.
func summarizeID(root *html.Node, id string) string {
	var b strings.Builder
	for _, n := range annotate.CollectByID(root, id) {
		dom.Walk(n, func(c *html.Node) bool {
			switch {
			case dom.IsText(c):
				b.WriteString(c.Data)
			case dom.IsBreak(c):
				b.WriteString("\n")
			}
			return true
		})
	}
	return b.String()
}
