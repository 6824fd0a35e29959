package resolve

import (
	"golang.org/x/net/html"

	"github.com/dshills/redline/internal/dom"
	"github.com/dshills/redline/internal/engine/annotate"
	"github.com/dshills/redline/internal/engine/track"
)

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithNotify sets a callback fired after every content change.
func WithNotify(fn func()) ResolverOption {
	return func(r *Resolver) {
		r.notify = fn
	}
}

// Resolver applies accept/reject decisions to the tree and the record
// table.
type Resolver struct {
	store  *track.Store
	notify func()
}

// NewResolver creates a resolver over the given store.
func NewResolver(store *track.Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:  store,
		notify: func() {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Accept resolves one change as accepted: its insertions are unwrapped
// and its deletions removed. Returns false for an unknown id.
func (r *Resolver) Accept(doc *dom.Document, id string) bool {
	rec, ok := r.store.Get(id)
	if !ok {
		return false
	}
	if rec.Resolved() {
		return true
	}
	r.apply(doc, id, true)
	r.store.MarkAccepted(id)
	r.notify()
	return true
}

// Reject resolves one change as rejected: its insertions are removed
// and its deletions unwrapped. Returns false for an unknown id.
func (r *Resolver) Reject(doc *dom.Document, id string) bool {
	rec, ok := r.store.Get(id)
	if !ok {
		return false
	}
	if rec.Resolved() {
		return true
	}
	r.apply(doc, id, false)
	r.store.MarkRejected(id)
	r.notify()
	return true
}

// AcceptAll accepts every pending change. The pending id list is
// snapshotted first, so records resolved mid-iteration cannot shift
// the collection under the loop.
func (r *Resolver) AcceptAll(doc *dom.Document) int {
	ids := r.store.PendingIDs()
	for _, id := range ids {
		r.Accept(doc, id)
	}
	return len(ids)
}

// RejectAll rejects every pending change.
func (r *Resolver) RejectAll(doc *dom.Document) int {
	ids := r.store.PendingIDs()
	for _, id := range ids {
		r.Reject(doc, id)
	}
	return len(ids)
}

// AcceptAt accepts the change whose annotation encloses the caret.
// Returns false when the caret is not inside any annotation, which is
// an expected outcome, not an error.
func (r *Resolver) AcceptAt(doc *dom.Document) bool {
	id, ok := changeAtCaret(doc)
	if !ok {
		return false
	}
	return r.Accept(doc, id)
}

// RejectAt rejects the change whose annotation encloses the caret.
func (r *Resolver) RejectAt(doc *dom.Document) bool {
	id, ok := changeAtCaret(doc)
	if !ok {
		return false
	}
	return r.Reject(doc, id)
}

// apply rewrites every node carrying id. accept keeps insertions and
// drops deletions; reject is the mirror image.
func (r *Resolver) apply(doc *dom.Document, id string, accept bool) {
	root := doc.Root()
	for _, n := range annotate.CollectByID(root, id) {
		kind, _ := annotate.Classify(n)
		keep := (kind == annotate.KindInsertion) == accept
		if keep {
			dom.Unwrap(n)
		} else {
			r.repairCaret(doc, n)
			dom.Detach(n)
		}
	}
}

// repairCaret moves the selection out of a subtree about to be
// removed.
func (r *Resolver) repairCaret(doc *dom.Document, n *html.Node) {
	sel := doc.Selection()
	if !sel.IsZero() && (dom.Contains(n, sel.Start.Node) || dom.Contains(n, sel.End.Node)) {
		doc.SetCaret(dom.Before(n))
	}
}

// changeAtCaret returns the change id of the nearest enclosing
// annotation of either kind.
func changeAtCaret(doc *dom.Document) (string, bool) {
	caret := doc.Caret()
	if caret.IsZero() {
		return "", false
	}
	root := doc.Root()
	if n := annotate.FindEnclosing(root, caret, annotate.KindInsertion); n != nil {
		return annotate.ChangeID(n), true
	}
	if n := annotate.FindEnclosing(root, caret, annotate.KindDeletion); n != nil {
		return annotate.ChangeID(n), true
	}
	return "", false
}
