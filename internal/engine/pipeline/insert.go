package pipeline

import (
	"time"

	"golang.org/x/net/html"

	"github.com/dshills/redline/internal/dom"
	"github.com/dshills/redline/internal/engine/annotate"
	"github.com/dshills/redline/internal/engine/track"
)

// InserterOption configures an Inserter.
type InserterOption func(*Inserter)

// WithInsertClock sets the time source used for annotation timestamps.
func WithInsertClock(now func() time.Time) InserterOption {
	return func(in *Inserter) {
		in.now = now
	}
}

// WithInsertNotify sets a callback fired after every content change.
func WithInsertNotify(fn func()) InserterOption {
	return func(in *Inserter) {
		in.notify = fn
	}
}

// Inserter is the insert pipeline: it turns insertion gestures into
// tree mutations and merge decisions.
type Inserter struct {
	store  *track.Store
	now    func() time.Time
	notify func()
}

// NewInserter creates an insert pipeline over the given store.
func NewInserter(store *track.Store, opts ...InserterOption) *Inserter {
	in := &Inserter{
		store:  store,
		now:    time.Now,
		notify: func() {},
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// InsertText inserts text at the caret. Returns false when there is no
// caret or the text is empty.
func (in *Inserter) InsertText(doc *dom.Document, text string) bool {
	caret := doc.Caret()
	if text == "" || caret.IsZero() {
		return false
	}

	if !in.store.Enabled() {
		doc.SetCaret(plainInsertText(caret, text))
		in.notify()
		return true
	}

	root := doc.Root()
	ctx := in.store.Context()
	now := in.now()

	// Insertion never occurs inside a deletion; deletions are closed
	// to new content.
	if del := annotate.FindEnclosing(root, caret, annotate.KindDeletion); del != nil {
		caret = dom.After(del)
	}

	if ins := annotate.FindEnclosing(root, caret, annotate.KindInsertion); ins != nil {
		if annotate.OwnedBy(ins, ctx) {
			caret = spliceText(caret, ins, text)
			annotate.Touch(ins, now)
			id := annotate.ChangeID(ins)
			in.store.Amend(id, summarizeID(root, id))
			in.store.RefreshBatch()
			doc.SetCaret(caret)
			in.notify()
			return true
		}
		// Another session's insertion must not nest a new one; split
		// it and continue in the gap between the halves.
		caret = splitElement(ins, caret)
	}

	if adj, before := annotate.FindAdjacent(caret, annotate.KindInsertion, ctx); adj != nil {
		if before {
			caret = appendTextInto(adj, text)
		} else {
			caret = prependTextInto(adj, text)
		}
		annotate.Touch(adj, now)
		id := annotate.ChangeID(adj)
		in.store.Amend(id, summarizeID(root, id))
		in.store.RefreshBatch()
		doc.SetCaret(caret)
		in.notify()
		return true
	}

	id, _ := in.store.StartBatch(annotate.KindInsertion)
	node := annotate.Create(annotate.KindInsertion, id, ctx, now)
	textNode := dom.Text(text)
	node.AppendChild(textNode)
	insertNodeAt(caret, node)
	in.recordChange(id, annotate.KindInsertion, ctx, now, text)

	doc.SetCaret(dom.End(textNode))
	in.notify()
	return true
}

// InsertBreak inserts a line break at the caret. A break always gets
// its own annotation: insertions never straddle a break, so content
// before the break stays where it is and the caret lands past the new
// node, ready to start a fresh annotation.
func (in *Inserter) InsertBreak(doc *dom.Document) bool {
	caret := doc.Caret()
	if caret.IsZero() {
		return false
	}

	if !in.store.Enabled() {
		br := dom.Element("br")
		doc.SetCaret(insertNodeAt(caret, br))
		in.notify()
		return true
	}

	root := doc.Root()
	ctx := in.store.Context()
	now := in.now()

	if del := annotate.FindEnclosing(root, caret, annotate.KindDeletion); del != nil {
		caret = dom.After(del)
	}
	if ins := annotate.FindEnclosing(root, caret, annotate.KindInsertion); ins != nil {
		// Content before the break stays in the node; the split gap
		// receives the break.
		caret = splitElement(ins, caret)
	}

	id, _ := in.store.StartBatch(annotate.KindInsertion)
	node := annotate.Create(annotate.KindInsertion, id, ctx, now)
	node.AppendChild(dom.Element("br"))
	caret = insertNodeAt(caret, node)
	in.recordChange(id, annotate.KindInsertion, ctx, now, "\n")

	doc.SetCaret(caret)
	in.notify()
	return true
}

// InsertNode inserts an inline or atomic node (an image, say) at the
// caret under tracking.
func (in *Inserter) InsertNode(doc *dom.Document, n *html.Node) bool {
	caret := doc.Caret()
	if n == nil || caret.IsZero() {
		return false
	}

	if !in.store.Enabled() {
		doc.SetCaret(insertNodeAt(caret, n))
		in.notify()
		return true
	}

	root := doc.Root()
	ctx := in.store.Context()
	now := in.now()

	if del := annotate.FindEnclosing(root, caret, annotate.KindDeletion); del != nil {
		caret = dom.After(del)
	}

	if ins := annotate.FindEnclosing(root, caret, annotate.KindInsertion); ins != nil && annotate.OwnedBy(ins, ctx) {
		caret = insertNodeAt(caret, n)
		annotate.Touch(ins, now)
		in.store.RefreshBatch()
		doc.SetCaret(caret)
		in.notify()
		return true
	} else if ins != nil {
		caret = splitElement(ins, caret)
	}

	id, _ := in.store.StartBatch(annotate.KindInsertion)
	wrapper := annotate.Create(annotate.KindInsertion, id, ctx, now)
	wrapper.AppendChild(n)
	caret = insertNodeAt(caret, wrapper)
	in.recordChange(id, annotate.KindInsertion, ctx, now, dom.TextContent(n))

	doc.SetCaret(caret)
	in.notify()
	return true
}

// recordChange creates or extends the record for a batch id.
func (in *Inserter) recordChange(id string, kind annotate.Kind, ctx annotate.Context, now time.Time, content string) {
	if rec, ok := in.store.Get(id); ok {
		in.store.Amend(id, rec.Summary+content)
		return
	}
	in.store.AddChange(track.Record{
		ID:       id,
		Kind:     kind,
		UserID:   ctx.UserID,
		UserName: ctx.UserName,
		Time:     now,
		Summary:  content,
	})
}

// spliceText inserts text at a caret known to be inside annotation n
// and returns the caret just past the inserted runes.
func spliceText(caret dom.Position, n *html.Node, text string) dom.Position {
	if dom.IsText(caret.Node) {
		off := dom.SpliceText(caret.Node, caret.Offset, text)
		return dom.Position{Node: caret.Node, Offset: off}
	}
	// Element position: drop a text node into the gap, merging is left
	// to later normalization.
	textNode := dom.Text(text)
	return insertNodeAt(caret, textNode)
}

// appendTextInto extends annotation n at its end and returns a caret
// inside the appended text.
func appendTextInto(n *html.Node, text string) dom.Position {
	if last := n.LastChild; dom.IsText(last) {
		off := dom.SpliceText(last, dom.End(last).Offset, text)
		return dom.Position{Node: last, Offset: off}
	}
	textNode := dom.Text(text)
	n.AppendChild(textNode)
	return dom.End(textNode)
}

// prependTextInto extends annotation n at its start and returns a
// caret just past the inserted runes, inside the annotation.
func prependTextInto(n *html.Node, text string) dom.Position {
	if first := n.FirstChild; dom.IsText(first) {
		off := dom.SpliceText(first, 0, text)
		return dom.Position{Node: first, Offset: off}
	}
	textNode := dom.Text(text)
	n.InsertBefore(textNode, n.FirstChild)
	return dom.End(textNode)
}

// plainInsertText inserts text without tracking and returns the caret
// past the inserted runes.
func plainInsertText(caret dom.Position, text string) dom.Position {
	if dom.IsText(caret.Node) {
		off := dom.SpliceText(caret.Node, caret.Offset, text)
		return dom.Position{Node: caret.Node, Offset: off}
	}
	if prev := dom.NodeBefore(caret); dom.IsText(prev) {
		off := dom.SpliceText(prev, dom.End(prev).Offset, text)
		return dom.Position{Node: prev, Offset: off}
	}
	textNode := dom.Text(text)
	insertNodeAt(caret, textNode)
	return dom.End(textNode)
}
