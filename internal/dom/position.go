package dom

import (
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Position addresses a point in the document tree. In a text node Offset
// counts runes into the node's text; in an element it counts children.
type Position struct {
	Node   *html.Node
	Offset int
}

// IsZero reports whether p addresses nothing.
func (p Position) IsZero() bool {
	return p.Node == nil
}

// Before returns the position immediately before node n in its parent.
func Before(n *html.Node) Position {
	return Position{Node: n.Parent, Offset: ChildIndex(n)}
}

// After returns the position immediately after node n in its parent.
func After(n *html.Node) Position {
	return Position{Node: n.Parent, Offset: ChildIndex(n) + 1}
}

// Start returns the position at the beginning of n's content.
func Start(n *html.Node) Position {
	return Position{Node: n, Offset: 0}
}

// End returns the position at the end of n's content.
func End(n *html.Node) Position {
	if IsText(n) {
		return Position{Node: n, Offset: utf8.RuneCountInString(n.Data)}
	}
	return Position{Node: n, Offset: ChildCount(n)}
}

// NodeBefore returns the node immediately preceding p at its level,
// or nil when p is at the start of its container.
func NodeBefore(p Position) *html.Node {
	if p.Node == nil || IsText(p.Node) {
		return nil
	}
	if p.Offset == 0 {
		return nil
	}
	return ChildAt(p.Node, p.Offset-1)
}

// NodeAfter returns the node immediately following p at its level,
// or nil when p is at the end of its container.
func NodeAfter(p Position) *html.Node {
	if p.Node == nil || IsText(p.Node) {
		return nil
	}
	return ChildAt(p.Node, p.Offset)
}

// AtNodeStart reports whether p sits at the very start of n's content,
// walking up through leading edges.
func AtNodeStart(p Position, n *html.Node) bool {
	if p.Node == nil {
		return false
	}
	cur := p
	for {
		if cur.Offset != 0 {
			return false
		}
		if cur.Node == n {
			return true
		}
		if cur.Node.Parent == nil || !Contains(n, cur.Node) {
			return false
		}
		cur = Before(cur.Node)
	}
}

// AtNodeEnd reports whether p sits at the very end of n's content,
// walking up through trailing edges.
func AtNodeEnd(p Position, n *html.Node) bool {
	if p.Node == nil {
		return false
	}
	cur := p
	for {
		if cur != End(cur.Node) {
			return false
		}
		if cur.Node == n {
			return true
		}
		if cur.Node.Parent == nil || !Contains(n, cur.Node) {
			return false
		}
		cur = After(cur.Node)
	}
}

// Selection is a range between two positions. Start and End are in
// document order; a collapsed selection is a caret.
type Selection struct {
	Start Position
	End   Position
}

// Caret returns a collapsed selection at p.
func Caret(p Position) Selection {
	return Selection{Start: p, End: p}
}

// Collapsed reports whether the selection is a caret.
func (s Selection) Collapsed() bool {
	return s.Start == s.End
}

// IsZero reports whether the selection addresses nothing.
func (s Selection) IsZero() bool {
	return s.Start.IsZero() || s.End.IsZero()
}
