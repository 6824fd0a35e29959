package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document owns a detached content root and the current selection. The
// engine pipelines mutate the tree through the root; hosts drive the
// selection.
type Document struct {
	root *html.Node
	sel  Selection
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	root := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	d := &Document{root: root}
	d.sel = Caret(Start(root))
	return d
}

// LoadHTML replaces the document content with parsed markup and
// collapses the selection to the start.
func (d *Document) LoadHTML(markup string) error {
	nodes, err := ParseFragment(markup)
	if err != nil {
		return err
	}
	d.ReplaceChildren(nodes)
	d.sel = Caret(Start(d.root))
	return nil
}

// Root returns the content root. Children of the root are the
// document's top-level nodes.
func (d *Document) Root() *html.Node {
	return d.root
}

// ReplaceChildren swaps the document's entire content for the given
// nodes. Any selection into the old tree is invalidated; callers must
// re-resolve it.
func (d *Document) ReplaceChildren(nodes []*html.Node) {
	for d.root.FirstChild != nil {
		d.root.RemoveChild(d.root.FirstChild)
	}
	for _, n := range nodes {
		Detach(n)
		d.root.AppendChild(n)
	}
}

// Selection returns the current selection.
func (d *Document) Selection() Selection {
	return d.sel
}

// SetSelection replaces the current selection.
func (d *Document) SetSelection(s Selection) {
	d.sel = s
}

// SetCaret collapses the selection to p.
func (d *Document) SetCaret(p Position) {
	d.sel = Caret(p)
}

// Caret returns the collapsed selection position (the start position
// when the selection is ranged).
func (d *Document) Caret() Position {
	return d.sel.Start
}

// TrackedHTML serializes the content with annotations intact.
func (d *Document) TrackedHTML() string {
	return RenderTracked(d.root)
}

// CleanHTML serializes the content with all annotations resolved away.
func (d *Document) CleanHTML() string {
	return RenderClean(d.root)
}

// Text returns the document's visible text content.
func (d *Document) Text() string {
	return TextContent(d.root)
}

// IsEmpty reports whether the document has no content.
func (d *Document) IsEmpty() bool {
	return d.root.FirstChild == nil
}
