package pipeline

import (
	"golang.org/x/net/html"

	"github.com/dshills/redline/internal/dom"
	"github.com/dshills/redline/internal/engine/annotate"
)

// SplitListItem handles Enter inside a list item: the item splits into
// a new <li> sibling, never a paragraph or div. If the split point is
// inside an insertion annotation, the annotation is split across both
// items; splitElement clones attributes, so the new half keeps the
// full attribution metadata and shares the change id.
//
// Returns false when the caret is not inside a list item.
func (in *Inserter) SplitListItem(doc *dom.Document) bool {
	caret := doc.Caret()
	if caret.IsZero() {
		return false
	}
	root := doc.Root()
	li := dom.Ancestor(caret.Node, root.Parent, func(n *html.Node) bool {
		return dom.IsElement(n, "li")
	})
	if li == nil {
		return false
	}

	if ins := annotate.FindEnclosing(root, caret, annotate.KindInsertion); ins != nil && dom.Contains(li, ins) {
		caret = splitElement(ins, caret)
	}

	gap := liGap(li, caret)
	newItem := dom.Element("li")
	moveChildrenFrom(li, gap, newItem)
	dom.InsertAfter(li.Parent, li, newItem)

	doc.SetCaret(dom.Start(newItem))
	in.notify()
	return true
}

// liGap converts a caret anywhere inside li into a child index of li,
// splitting text and inline elements along the way.
func liGap(li *html.Node, caret dom.Position) int {
	pos := caret
	for pos.Node != li {
		if dom.IsText(pos.Node) {
			text := pos.Node
			dom.SplitText(text, pos.Offset)
			if pos.Offset == 0 {
				pos = dom.Before(text)
			} else {
				pos = dom.After(text)
			}
			continue
		}
		pos = splitElement(pos.Node, pos)
	}
	return pos.Offset
}
