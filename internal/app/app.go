// Package app wires the document, change tracking, pipelines, router,
// and history into one editor facade for hosts to embed.
package app

import (
	"context"
	"fmt"

	"golang.org/x/net/html"

	"github.com/dshills/redline/internal/config"
	"github.com/dshills/redline/internal/dom"
	"github.com/dshills/redline/internal/engine/annotate"
	"github.com/dshills/redline/internal/engine/history"
	"github.com/dshills/redline/internal/engine/pipeline"
	"github.com/dshills/redline/internal/engine/resolve"
	"github.com/dshills/redline/internal/engine/track"
	"github.com/dshills/redline/internal/event/router"
)

// Option configures an Editor.
type Option func(*editorOptions)

type editorOptions struct {
	logger      *Logger
	trackOpts   []track.Option
	historyOpts []history.Option
	insertOpts  []pipeline.InserterOption
	deleteOpts  []pipeline.DeleterOption
}

// WithLogger sets the editor's logger.
func WithLogger(l *Logger) Option {
	return func(o *editorOptions) {
		o.logger = l
	}
}

// WithTrackOptions forwards options to the tracking store.
func WithTrackOptions(opts ...track.Option) Option {
	return func(o *editorOptions) {
		o.trackOpts = append(o.trackOpts, opts...)
	}
}

// WithHistoryOptions forwards options to the history manager.
func WithHistoryOptions(opts ...history.Option) Option {
	return func(o *editorOptions) {
		o.historyOpts = append(o.historyOpts, opts...)
	}
}

// Editor is the embedded editing engine: a document under change
// tracking with snapshot-based undo/redo.
type Editor struct {
	doc      *dom.Document
	store    *track.Store
	inserter *pipeline.Inserter
	deleter  *pipeline.Deleter
	resolver *resolve.Resolver
	hist     *history.Manager
	router   *router.Router
	log      *Logger

	contentChanged []func()
}

// New creates an editor from configuration.
func New(cfg config.Config, opts ...Option) *Editor {
	o := editorOptions{logger: NopLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	ed := &Editor{
		doc: dom.NewDocument(),
		log: o.logger,
	}

	ctx := annotate.NewContext(cfg.User.ID, cfg.User.Name)
	trackOpts := append([]track.Option{track.WithBatchWindow(cfg.Tracking.BatchWindow())}, o.trackOpts...)
	ed.store = track.NewStore(ctx, trackOpts...)
	ed.store.SetEnabled(cfg.Tracking.Enabled)

	notify := ed.fireContentChanged
	insertOpts := append([]pipeline.InserterOption{pipeline.WithInsertNotify(notify)}, o.insertOpts...)
	deleteOpts := append([]pipeline.DeleterOption{pipeline.WithDeleteNotify(notify)}, o.deleteOpts...)
	ed.inserter = pipeline.NewInserter(ed.store, insertOpts...)
	ed.deleter = pipeline.NewDeleter(ed.store, deleteOpts...)
	ed.resolver = resolve.NewResolver(ed.store, resolve.WithNotify(notify))

	histOpts := append([]history.Option{
		history.WithCapacity(cfg.History.Capacity),
		history.WithStrokeThreshold(cfg.History.StrokeThreshold),
		history.WithTypingDebounce(cfg.History.TypingDebounce()),
		history.WithReloadHook(func(root *html.Node) {
			ed.store.Reload(root)
			ed.fireContentChanged()
		}),
	}, o.historyOpts...)
	ed.hist = history.NewManager(ed.doc, histOpts...)

	ed.router = router.New(ed.doc, ed.inserter, ed.deleter, ed.hist,
		router.WithPanicHandler(func(event, value any, stack []byte) {
			ed.log.Error("recovered panic routing %T: %v\n%s", event, value, stack)
		}))

	return ed
}

// Document access

// Document returns the editor's document.
func (e *Editor) Document() *dom.Document {
	return e.doc
}

// LoadHTML replaces the document content, rebuilds tracking state from
// any embedded annotations, and resets history to the new baseline.
func (e *Editor) LoadHTML(markup string) error {
	if err := e.doc.LoadHTML(markup); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	e.store.Reload(e.doc.Root())
	e.hist.Clear()
	e.fireContentChanged()
	return nil
}

// TrackedHTML returns the document with annotation markup intact.
func (e *Editor) TrackedHTML() string {
	return e.doc.TrackedHTML()
}

// CleanHTML returns the document with all annotations resolved away.
func (e *Editor) CleanHTML() string {
	return e.doc.CleanHTML()
}

// Events

// HandleEvent routes one editing intent. Handled=true means the host
// must suppress its default handling.
func (e *Editor) HandleEvent(ctx context.Context, event any) router.Outcome {
	return e.router.Route(ctx, event)
}

// NoteBlur tells the engine the surface lost focus.
func (e *Editor) NoteBlur() {
	e.router.NoteBlur()
}

// NoteClick tells the engine a pointer click landed.
func (e *Editor) NoteClick() {
	e.router.NoteClick()
}

// OnContentChanged registers a callback fired after every content
// mutation.
func (e *Editor) OnContentChanged(fn func()) {
	e.contentChanged = append(e.contentChanged, fn)
}

func (e *Editor) fireContentChanged() {
	for _, fn := range e.contentChanged {
		fn()
	}
}

// Tracking

// Tracking returns the tracking store for flag switches, identity
// changes, and observer subscriptions.
func (e *Editor) Tracking() *track.Store {
	return e.store
}

// PendingChanges returns the unresolved change records.
func (e *Editor) PendingChanges() []track.Record {
	var pending []track.Record
	for _, rec := range e.store.Records() {
		if !rec.Resolved() {
			pending = append(pending, rec)
		}
	}
	return pending
}

// AcceptChange accepts one change by id.
func (e *Editor) AcceptChange(id string) bool {
	return e.resolver.Accept(e.doc, id)
}

// RejectChange rejects one change by id.
func (e *Editor) RejectChange(id string) bool {
	return e.resolver.Reject(e.doc, id)
}

// AcceptAll accepts every pending change and returns how many.
func (e *Editor) AcceptAll() int {
	return e.resolver.AcceptAll(e.doc)
}

// RejectAll rejects every pending change and returns how many.
func (e *Editor) RejectAll() int {
	return e.resolver.RejectAll(e.doc)
}

// AcceptAtCursor accepts the change under the caret. False means
// nothing was found there.
func (e *Editor) AcceptAtCursor() bool {
	return e.resolver.AcceptAt(e.doc)
}

// RejectAtCursor rejects the change under the caret.
func (e *Editor) RejectAtCursor() bool {
	return e.resolver.RejectAt(e.doc)
}

// History

// Undo restores the previous content-different snapshot.
func (e *Editor) Undo() bool {
	return e.hist.Undo()
}

// Redo restores the next content-different snapshot.
func (e *Editor) Redo() bool {
	return e.hist.Redo()
}

// History returns the history manager.
func (e *Editor) History() *history.Manager {
	return e.hist
}
