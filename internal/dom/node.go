package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockTags are elements treated as block containers: structural nodes the
// engine descends into but never wraps or removes as a unit.
var blockTags = map[atom.Atom]bool{
	atom.P:          true,
	atom.Div:        true,
	atom.Li:         true,
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Table:      true,
	atom.Thead:      true,
	atom.Tbody:      true,
	atom.Tr:         true,
	atom.Td:         true,
	atom.Th:         true,
	atom.Blockquote: true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Pre:        true,
	atom.Body:       true,
}

// atomicTags are void elements addressed as a single unit: they are never
// descended into and count as one character for offset purposes.
var atomicTags = map[atom.Atom]bool{
	atom.Img: true,
	atom.Hr:  true,
	atom.Br:  true,
}

// Element creates a detached element node for the given tag.
func Element(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
	}
}

// Text creates a detached text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// IsElement reports whether n is an element with the given tag.
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// IsText reports whether n is a text node.
func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// IsBlock reports whether n is a block container element.
func IsBlock(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && blockTags[n.DataAtom]
}

// IsAtomic reports whether n is addressed as a single indivisible unit.
func IsAtomic(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && atomicTags[n.DataAtom]
}

// IsBreak reports whether n is a line break element.
func IsBreak(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == atom.Br
}

// Attr returns the value of the named attribute, or "" if absent.
func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present.
func HasAttr(n *html.Node, key string) bool {
	if n == nil {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets the named attribute, replacing any existing value.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// Detach removes n from its parent, if any. Safe on detached nodes.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// InsertAfter inserts newChild into parent directly after ref.
// If ref is nil the child is prepended.
func InsertAfter(parent, ref, newChild *html.Node) {
	Detach(newChild)
	if ref == nil {
		parent.InsertBefore(newChild, parent.FirstChild)
		return
	}
	if ref.NextSibling == nil {
		parent.AppendChild(newChild)
		return
	}
	parent.InsertBefore(newChild, ref.NextSibling)
}

// Unwrap promotes n's children into its parent and removes n.
// Returns the first promoted child, or nil if n was empty.
func Unwrap(n *html.Node) *html.Node {
	parent := n.Parent
	if parent == nil {
		return nil
	}
	first := n.FirstChild
	for n.FirstChild != nil {
		c := n.FirstChild
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
	return first
}

// ChildIndex returns n's index among its parent's children, or -1 if
// n is detached.
func ChildIndex(n *html.Node) int {
	if n == nil || n.Parent == nil {
		return -1
	}
	i := 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c == n {
			return i
		}
		i++
	}
	return -1
}

// ChildAt returns the i-th child of n, or nil if out of range.
func ChildAt(n *html.Node, i int) *html.Node {
	if n == nil || i < 0 {
		return nil
	}
	c := n.FirstChild
	for ; c != nil && i > 0; c = c.NextSibling {
		i--
	}
	return c
}

// ChildCount returns the number of children of n.
func ChildCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// Contains reports whether ancestor contains n (or is n itself).
func Contains(ancestor, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// Ancestor walks up from n (inclusive) and returns the first node for
// which pred is true, stopping at and excluding stop.
func Ancestor(n, stop *html.Node, pred func(*html.Node) bool) *html.Node {
	for ; n != nil && n != stop; n = n.Parent {
		if pred(n) {
			return n
		}
	}
	return nil
}

// Walk visits n and every descendant in document order. Returning false
// from visit stops the walk.
func Walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !Walk(c, visit) {
			return false
		}
	}
	return true
}

// NextInOrder returns the node after n in document order within root,
// or nil when n is the last node.
func NextInOrder(n, root *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil && n != root; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

// PrevInOrder returns the node before n in document order within root,
// or nil when n is the first node.
func PrevInOrder(n, root *html.Node) *html.Node {
	if n == root {
		return nil
	}
	if n.PrevSibling == nil {
		return n.Parent
	}
	n = n.PrevSibling
	for n.LastChild != nil {
		n = n.LastChild
	}
	return n
}

// IsWhitespace reports whether n is a text node containing only
// whitespace (or nothing at all).
func IsWhitespace(n *html.Node) bool {
	return IsText(n) && strings.TrimSpace(n.Data) == ""
}

// Clone returns a deep copy of n and its subtree. The copy is detached.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:     n.Type,
		DataAtom: n.DataAtom,
		Data:     n.Data,
		Attr:     append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}
