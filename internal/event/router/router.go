package router

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dshills/redline/internal/dom"
	"github.com/dshills/redline/internal/engine/history"
	"github.com/dshills/redline/internal/engine/pipeline"
	"github.com/dshills/redline/internal/event/dispatch"
	"github.com/dshills/redline/internal/event/events"
)

// Outcome is the router's verdict on one intent.
type Outcome struct {
	// Handled tells the host to cancel its default handling.
	Handled bool
}

// Option configures a Router.
type Option func(*Router)

// WithPanicHandler forwards pipeline panics to the host's logger.
func WithPanicHandler(h dispatch.PanicHandler) Option {
	return func(r *Router) {
		r.panicHandler = h
	}
}

// Router dispatches editing intents to the pipelines.
type Router struct {
	doc  *dom.Document
	ins  *pipeline.Inserter
	del  *pipeline.Deleter
	hist *history.Manager

	dispatcher   *dispatch.SyncDispatcher
	panicHandler dispatch.PanicHandler

	composing   bool
	composition strings.Builder
}

// New creates a router over a document and its pipelines.
func New(doc *dom.Document, ins *pipeline.Inserter, del *pipeline.Deleter, hist *history.Manager, opts ...Option) *Router {
	r := &Router{
		doc:  doc,
		ins:  ins,
		del:  del,
		hist: hist,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.dispatcher = dispatch.NewSyncDispatcher(dispatch.WithPanicHandler(r.panicHandler))
	return r
}

// Route processes one intent. Unrecognized intents and shortcut keys
// return Handled=false so the host's default behavior applies.
func (r *Router) Route(ctx context.Context, event any) Outcome {
	handled := false
	result := r.dispatcher.Dispatch(ctx, event, dispatch.HandlerFunc(func(_ context.Context, ev any) error {
		handled = r.route(ev)
		return nil
	}))
	if !result.IsSuccess() {
		// A failed or panicked route did nothing the host needs to
		// suppress.
		return Outcome{}
	}
	return Outcome{Handled: handled}
}

// route maps one intent to exactly one pipeline call.
func (r *Router) route(event any) bool {
	switch ev := event.(type) {
	case events.KeyDown:
		return r.routeKey(ev)

	case events.InsertText:
		if r.composing {
			// Buffered until CompositionEnd.
			r.composition.WriteString(ev.Text)
			return true
		}
		r.hist.RecordStroke(events.CategoryPrintable)
		r.collapseSelection()
		return r.ins.InsertText(r.doc, ev.Text)

	case events.InsertBreak:
		r.hist.RecordStroke(events.CategoryPrintable)
		r.collapseSelection()
		return r.ins.InsertBreak(r.doc)

	case events.InsertNode:
		r.hist.RecordStroke(events.CategoryPrintable)
		r.collapseSelection()
		return r.ins.InsertNode(r.doc, ev.Node)

	case events.InsertParagraph:
		r.hist.RecordStroke(events.CategoryPrintable)
		r.collapseSelection()
		if r.ins.SplitListItem(r.doc) {
			return true
		}
		// Block splitting outside list items stays host-owned.
		return false

	case events.DeleteContent:
		r.hist.RecordStroke(events.CategoryDestructive)
		return r.del.DeleteUnit(r.doc, ev.Direction, ev.Unit)

	case events.Paste:
		if ev.Text == "" {
			return true
		}
		// Paste is one unit: snapshot around it rather than coalesce.
		r.hist.NoteNavigation()
		r.collapseSelection()
		ok := r.ins.InsertText(r.doc, norm.NFC.String(ev.Text))
		r.hist.Capture(false)
		return ok

	case events.Cut:
		r.hist.NoteNavigation()
		ok := r.del.DeleteSelection(r.doc)
		r.hist.Capture(false)
		return ok

	case events.CompositionStart:
		r.composing = true
		r.composition.Reset()
		return true

	case events.CompositionUpdate:
		if !r.composing {
			return false
		}
		r.composition.Reset()
		r.composition.WriteString(ev.Text)
		return true

	case events.CompositionEnd:
		if !r.composing {
			return false
		}
		r.composing = false
		text := ev.Text
		if text == "" {
			text = r.composition.String()
		}
		r.composition.Reset()
		if text == "" {
			return true
		}
		r.hist.RecordStroke(events.CategoryPrintable)
		r.collapseSelection()
		return r.ins.InsertText(r.doc, norm.NFC.String(text))
	}

	return false
}

// routeKey handles raw keys that are not content intents.
func (r *Router) routeKey(k events.KeyDown) bool {
	if k.IsShortcut() {
		// Formatting and undo/redo chords stay host-owned.
		return false
	}
	if k.Categorize() == events.CategoryNavigation {
		r.hist.NoteNavigation()
	}
	// Content keys arrive again as dedicated intents; the raw signal
	// itself is never consumed.
	return false
}

// NoteBlur closes any typing run when the surface loses focus.
func (r *Router) NoteBlur() {
	r.hist.NoteNavigation()
}

// NoteClick closes any typing run on a pointer click.
func (r *Router) NoteClick() {
	r.hist.NoteNavigation()
}

// collapseSelection removes a ranged selection through the delete
// pipeline before an insertion, so typing over a selection tracks the
// removal.
func (r *Router) collapseSelection() {
	if !r.doc.Selection().Collapsed() {
		r.del.DeleteSelection(r.doc)
	}
}
