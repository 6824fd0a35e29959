// Package dom provides the document tree the editing engine mutates.
//
// The tree is built from golang.org/x/net/html nodes, which already carry
// the parent/child/sibling relations the engine needs. This package adds
// the editor-facing layer on top:
//
// # Positions and Selections
//
// A Position is a (node, offset) pair. In a text node the offset counts
// runes into the node's text; in an element it counts children. A
// Selection is a start/end Position pair and may be collapsed (a caret).
//
// # Documents
//
// A Document owns a detached <body> root plus the current Selection:
//
//	doc := dom.NewDocument()
//	doc.LoadHTML("<p>hello</p>")
//	doc.SetCaret(dom.Position{Node: n, Offset: 3})
//
// # Serialization
//
// Content round-trips through two render modes: RenderTracked emits the
// tree as-is with annotation markup intact, RenderClean resolves all
// annotations away (deletions removed, insertions unwrapped). Fragment
// parsing reverses the trip for snapshot restore.
//
// # Text addressing
//
// FlattenOffset and ResolveOffset convert between live Positions and
// rune offsets into the document's visible text, so a selection can
// survive wholesale content replacement.
package dom
