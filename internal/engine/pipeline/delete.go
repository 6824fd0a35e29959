package pipeline

import (
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/dshills/redline/internal/dom"
	"github.com/dshills/redline/internal/engine/annotate"
	"github.com/dshills/redline/internal/engine/track"
	"github.com/dshills/redline/internal/event/events"
)

// DeleterOption configures a Deleter.
type DeleterOption func(*Deleter)

// WithDeleteClock sets the time source used for annotation timestamps.
func WithDeleteClock(now func() time.Time) DeleterOption {
	return func(d *Deleter) {
		d.now = now
	}
}

// WithDeleteNotify sets a callback fired after every content change.
func WithDeleteNotify(fn func()) DeleterOption {
	return func(d *Deleter) {
		d.notify = fn
	}
}

// Deleter is the delete pipeline: deletion gestures become deletion
// annotations, except over content the same session inserted, which is
// removed outright.
type Deleter struct {
	store  *track.Store
	now    func() time.Time
	notify func()
}

// NewDeleter creates a delete pipeline over the given store.
func NewDeleter(store *track.Store, opts ...DeleterOption) *Deleter {
	d := &Deleter{
		store:  store,
		now:    time.Now,
		notify: func() {},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DeleteUnit deletes one unit (grapheme or word run) at a collapsed
// caret, in the given direction. A ranged selection is delegated to
// DeleteSelection. Returns false at a document edge.
func (d *Deleter) DeleteUnit(doc *dom.Document, dir events.Direction, unit events.Unit) bool {
	sel := doc.Selection()
	if sel.IsZero() {
		return false
	}
	if !sel.Collapsed() {
		return d.DeleteSelection(doc)
	}
	caret := sel.Start
	root := doc.Root()

	if !d.store.Enabled() {
		return d.plainDeleteUnit(doc, caret, dir, unit)
	}

	// Inside a deletion the gesture is a no-op; the caret just steps
	// past the annotation.
	if del := annotate.FindEnclosing(root, caret, annotate.KindDeletion); del != nil {
		if dir == events.Backward {
			doc.SetCaret(dom.Before(del))
		} else {
			doc.SetCaret(dom.After(del))
		}
		return true
	}

	leaf, start, end := findUnit(root, caret, dir, unit)
	if leaf == nil {
		return false
	}

	// The unit may sit inside an existing deletion reached across a
	// boundary; skip past it without touching content.
	if del := enclosingFrom(root, leaf, annotate.KindDeletion); del != nil {
		if dir == events.Backward {
			doc.SetCaret(dom.Before(del))
		} else {
			doc.SetCaret(dom.After(del))
		}
		return true
	}

	// Content inside an owned insertion is removed outright.
	if ins := ownedInsertion(root, leaf, d.store.Context()); ins != nil {
		caret = d.eraseOwnedUnit(root, leaf, ins, start, end)
		doc.SetCaret(caret)
		d.notify()
		return true
	}

	delNode := d.wrapUnit(root, leaf, start, end)
	if dir == events.Backward {
		doc.SetCaret(dom.Before(delNode))
	} else {
		doc.SetCaret(dom.After(delNode))
	}
	d.notify()
	return true
}

// DeleteSelection decomposes a ranged selection into tracked
// deletions. Block containers are descended into, whitespace-only runs
// are dropped silently, atomic elements are wrapped individually, and
// owned insertions vanish outright. A selection containing only
// already-resolved content collapses the caret to the selection start
// and reports success.
func (d *Deleter) DeleteSelection(doc *dom.Document) bool {
	sel := doc.Selection()
	if sel.IsZero() || sel.Collapsed() {
		return false
	}
	root := doc.Root()

	s := dom.FlattenOffset(root, sel.Start)
	e := dom.FlattenOffset(root, sel.End)
	if s < 0 || e < 0 {
		return false
	}
	if s > e {
		s, e = e, s
	}
	if s == e {
		doc.SetCaret(sel.Start)
		return true
	}

	// Align the range to node boundaries so every covered text node is
	// covered whole.
	if p := dom.ResolveOffset(root, s); dom.IsText(p.Node) {
		dom.SplitText(p.Node, p.Offset)
	}
	if p := dom.ResolveOffset(root, e); dom.IsText(p.Node) {
		dom.SplitText(p.Node, p.Offset)
	}

	units := collectCovered(root, s, e)
	if len(units) == 0 {
		doc.SetCaret(dom.ResolveOffset(root, s))
		return true
	}

	if !d.store.Enabled() {
		for _, u := range units {
			dom.Detach(u)
		}
		doc.SetCaret(dom.ResolveOffset(root, s))
		d.notify()
		return true
	}

	ctx := d.store.Context()
	var wrapped []*html.Node
	var wrappedText strings.Builder
	touched := false

	for _, u := range units {
		switch {
		case insideKind(root, u, annotate.KindDeletion):
			// Already deleted; nothing to track.
		case dom.IsWhitespace(u):
			dom.Detach(u)
		default:
			if ins := ownedInsertion(root, u, ctx); ins != nil {
				// The session deletes its own insertion: no trace.
				dom.Detach(u)
				d.cleanupOwned(root, ins)
				touched = true
				continue
			}
			wrappedText.WriteString(dom.TextContent(u))
			delNode := d.wrapTracked(u)
			wrapped = append(wrapped, delNode)
			touched = true
		}
	}

	// Adjacent same-session deletions produced by one gesture merge
	// into one node.
	merged := make([]*html.Node, 0, len(wrapped))
	for _, w := range wrapped {
		if m := d.mergeWithPrev(w, ctx); m != nil {
			if len(merged) == 0 || merged[len(merged)-1] != m {
				merged = append(merged, m)
			}
			continue
		}
		merged = append(merged, w)
	}

	if len(merged) > 0 {
		d.amendRecord(wrappedText.String())
		doc.SetCaret(dom.Before(merged[0]))
	} else {
		doc.SetCaret(dom.ResolveOffset(root, s))
	}
	if touched {
		d.notify()
	}
	return true
}

// findUnit locates the text run or atomic node the gesture removes,
// reaching into the adjacent sibling subtree at container edges.
// Returns (nil, 0, 0) at a document edge.
func findUnit(root *html.Node, caret dom.Position, dir events.Direction, unit events.Unit) (leaf *html.Node, start, end int) {
	if dom.IsText(caret.Node) {
		if dir == events.Backward && caret.Offset > 0 {
			n := unitLenBackward(caret.Node, caret.Offset, unit)
			return caret.Node, caret.Offset - n, caret.Offset
		}
		if dir == events.Forward && caret.Offset < dom.End(caret.Node).Offset {
			n := unitLenForward(caret.Node, caret.Offset, unit)
			return caret.Node, caret.Offset, caret.Offset + n
		}
	}

	next := neighborLeaf(root, caret, dir)
	if next == nil {
		return nil, 0, 0
	}
	if dom.IsAtomic(next) {
		return next, 0, 0
	}
	if dir == events.Backward {
		off := dom.End(next).Offset
		n := unitLenBackward(next, off, unit)
		return next, off - n, off
	}
	n := unitLenForward(next, 0, unit)
	return next, 0, n
}

func unitLenBackward(text *html.Node, offset int, unit events.Unit) int {
	if unit == events.UnitWord {
		return dom.PrevWordRun(text, offset)
	}
	return dom.PrevGrapheme(text, offset)
}

func unitLenForward(text *html.Node, offset int, unit events.Unit) int {
	if unit == events.UnitWord {
		return dom.NextWordRun(text, offset)
	}
	return dom.NextGrapheme(text, offset)
}

// neighborLeaf finds the nearest non-empty text node or atomic element
// before or after the caret in document order.
func neighborLeaf(root *html.Node, caret dom.Position, dir events.Direction) *html.Node {
	n := caret.Node
	if !dom.IsText(n) {
		if dir == events.Backward {
			if ref := dom.NodeBefore(caret); ref != nil {
				if leaf := edgeLeaf(ref, events.Backward); leaf != nil {
					return leaf
				}
				n = ref
			}
		} else {
			if ref := dom.NodeAfter(caret); ref != nil {
				if leaf := edgeLeaf(ref, events.Forward); leaf != nil {
					return leaf
				}
				n = ref
			}
		}
	}
	step := func(m *html.Node) *html.Node {
		if dir == events.Backward {
			return dom.PrevInOrder(m, root)
		}
		return dom.NextInOrder(m, root)
	}
	for m := step(n); m != nil; m = step(m) {
		if dom.IsText(m) && strings.TrimSpace(m.Data) != "" {
			return m
		}
		if dom.IsAtomic(m) {
			return m
		}
	}
	return nil
}

// edgeLeaf returns the last (backward) or first (forward) deletable
// leaf within n's subtree, or nil.
func edgeLeaf(n *html.Node, dir events.Direction) *html.Node {
	if dom.IsText(n) && strings.TrimSpace(n.Data) != "" {
		return n
	}
	if dom.IsAtomic(n) {
		return n
	}
	var c *html.Node
	if dir == events.Backward {
		c = n.LastChild
	} else {
		c = n.FirstChild
	}
	for ; c != nil; c = siblingToward(c, dir) {
		if leaf := edgeLeaf(c, dir); leaf != nil {
			return leaf
		}
	}
	return nil
}

func siblingToward(n *html.Node, dir events.Direction) *html.Node {
	if dir == events.Backward {
		return n.PrevSibling
	}
	return n.NextSibling
}

// eraseOwnedUnit removes a unit of the session's own insertion without
// leaving a trace, cleaning up the annotation (and its record) when
// emptied. Returns the resulting caret.
func (d *Deleter) eraseOwnedUnit(root, leaf, ins *html.Node, start, end int) dom.Position {
	var caret dom.Position
	if dom.IsText(leaf) {
		dom.CutText(leaf, start, end)
		caret = dom.Position{Node: leaf, Offset: start}
		if leaf.Data == "" {
			caret = dom.Before(leaf)
			dom.Detach(leaf)
		}
	} else {
		caret = dom.Before(leaf)
		dom.Detach(leaf)
	}

	if annotate.IsEmpty(ins) && (caret.Node == ins || dom.Contains(ins, caret.Node)) {
		caret = dom.Before(ins)
	}
	d.cleanupOwned(root, ins)
	return caret
}

// cleanupOwned settles an owned insertion after content was erased
// from it. An emptied annotation is removed; when no other node
// carries its change id the record is discarded too, so text inserted
// and fully erased in one session leaves no trace.
func (d *Deleter) cleanupOwned(root, ins *html.Node) {
	id := annotate.ChangeID(ins)
	if dom.Contains(root, ins) && !annotate.IsEmpty(ins) {
		annotate.Touch(ins, d.now())
		d.store.Amend(id, summarizeID(root, id))
		return
	}
	dom.Detach(ins)
	if len(annotate.CollectByID(root, id)) == 0 {
		d.store.Discard(id)
	} else {
		d.store.Amend(id, summarizeID(root, id))
	}
}

// wrapUnit isolates runes [start,end) of a text leaf (or an atomic
// leaf whole) inside a new deletion annotation, merging with an
// adjacent owned deletion when allowed. Returns the resulting node.
func (d *Deleter) wrapUnit(root, leaf *html.Node, start, end int) *html.Node {
	var target *html.Node
	if dom.IsText(leaf) {
		dom.SplitText(leaf, end)
		if rest := dom.SplitText(leaf, start); rest != nil {
			target = rest
		} else {
			target = leaf
		}
	} else {
		target = leaf
	}

	removed := dom.TextContent(target)
	delNode := d.wrapTracked(target)
	ctx := d.store.Context()
	if m := d.mergeWithPrev(delNode, ctx); m != nil {
		delNode = m
	}
	if m := d.mergeWithNext(delNode, ctx); m != nil {
		delNode = m
	}
	d.amendRecord(removed)
	return delNode
}

// wrapTracked wraps n in a deletion annotation under the open batch.
func (d *Deleter) wrapTracked(n *html.Node) *html.Node {
	ctx := d.store.Context()
	now := d.now()
	id, _ := d.store.StartBatch(annotate.KindDeletion)
	delNode := annotate.Create(annotate.KindDeletion, id, ctx, now)
	wrapNode(n, delNode)
	if _, ok := d.store.Get(id); !ok {
		d.store.AddChange(track.Record{
			ID:       id,
			Kind:     annotate.KindDeletion,
			UserID:   ctx.UserID,
			UserName: ctx.UserName,
			Time:     now,
		})
	}
	return delNode
}

// amendRecord appends removed text to the open deletion record.
func (d *Deleter) amendRecord(removed string) {
	id := d.store.OpenBatch()
	if id == "" || removed == "" {
		return
	}
	if rec, ok := d.store.Get(id); ok {
		d.store.Amend(id, rec.Summary+removed)
	}
}

// mergeWithPrev merges n into an immediately preceding same-session
// deletion annotation when no break boundary intervenes. Returns the
// surviving node, or nil when no merge happened.
func (d *Deleter) mergeWithPrev(n *html.Node, ctx annotate.Context) *html.Node {
	prev := n.PrevSibling
	if prev == nil || !annotate.IsAnnotation(prev, annotate.KindDeletion) ||
		!annotate.OwnedBy(prev, ctx) || annotate.EndsWithBreak(prev) {
		return nil
	}
	for n.FirstChild != nil {
		c := n.FirstChild
		n.RemoveChild(c)
		prev.AppendChild(c)
	}
	dom.Detach(n)
	annotate.Touch(prev, d.now())
	return prev
}

// mergeWithNext mirrors mergeWithPrev for a following deletion.
func (d *Deleter) mergeWithNext(n *html.Node, ctx annotate.Context) *html.Node {
	next := n.NextSibling
	if next == nil || !annotate.IsAnnotation(next, annotate.KindDeletion) ||
		!annotate.OwnedBy(next, ctx) || annotate.StartsWithBreak(next) {
		return nil
	}
	for next.FirstChild != nil {
		c := next.FirstChild
		next.RemoveChild(c)
		n.AppendChild(c)
	}
	dom.Detach(next)
	annotate.Touch(n, d.now())
	return n
}

// collectCovered returns the nodes fully covered by the rune range
// [s,e), descending into block containers and partially covered
// elements so that container structure is always preserved.
func collectCovered(root *html.Node, s, e int) []*html.Node {
	var units []*html.Node
	var walk func(n *html.Node, off int) int
	walk = func(n *html.Node, off int) int {
		ln := nodeSpan(n)
		if off >= e || off+ln <= s {
			return ln
		}
		fully := off >= s && off+ln <= e
		if dom.IsText(n) {
			if fully {
				units = append(units, n)
			}
			return ln
		}
		if dom.IsAtomic(n) {
			if fully {
				units = append(units, n)
			}
			return ln
		}
		if fully && !dom.IsBlock(n) {
			units = append(units, n)
			return ln
		}
		o := off
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			o += walk(c, o)
		}
		return ln
	}
	off := 0
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		off += walk(c, off)
	}
	return units
}

// nodeSpan is the rune span of n under the flatten counting rules.
func nodeSpan(n *html.Node) int {
	if dom.IsText(n) {
		return dom.End(n).Offset
	}
	if dom.IsAtomic(n) {
		return 1
	}
	total := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		total += nodeSpan(c)
	}
	return total
}

// insideKind reports whether n is (or sits inside) an annotation of
// the given kind.
func insideKind(root, n *html.Node, kind annotate.Kind) bool {
	return enclosingFrom(root, n, kind) != nil
}

// enclosingFrom returns the nearest annotation of kind on the path
// from n up to root, or nil.
func enclosingFrom(root, n *html.Node, kind annotate.Kind) *html.Node {
	return dom.Ancestor(n, root.Parent, func(m *html.Node) bool {
		return annotate.IsAnnotation(m, kind)
	})
}

// ownedInsertion returns the enclosing insertion annotation when it
// belongs to ctx's session, or nil.
func ownedInsertion(root, n *html.Node, ctx annotate.Context) *html.Node {
	ins := enclosingFrom(root, n, annotate.KindInsertion)
	if ins != nil && annotate.OwnedBy(ins, ctx) {
		return ins
	}
	return nil
}

// plainDeleteUnit deletes one unit without tracking.
func (d *Deleter) plainDeleteUnit(doc *dom.Document, caret dom.Position, dir events.Direction, unit events.Unit) bool {
	root := doc.Root()
	leaf, start, end := findUnit(root, caret, dir, unit)
	if leaf == nil {
		return false
	}
	if dom.IsText(leaf) {
		dom.CutText(leaf, start, end)
		pos := dom.Position{Node: leaf, Offset: start}
		if leaf.Data == "" {
			pos = dom.Before(leaf)
			dom.Detach(leaf)
		}
		doc.SetCaret(pos)
	} else {
		pos := dom.Before(leaf)
		dom.Detach(leaf)
		doc.SetCaret(pos)
	}
	d.notify()
	return true
}
