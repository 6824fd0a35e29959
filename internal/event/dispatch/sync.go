package dispatch

import (
	"context"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// Handler processes one event.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event any) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// PanicHandler is notified when a handler panics.
type PanicHandler func(event any, value any, stack []byte)

// Result describes one handler execution.
type Result struct {
	Success    bool
	Error      error
	Skipped    bool
	Panicked   bool
	PanicValue any
	PanicStack []byte
	Duration   time.Duration
}

// IsSuccess reports whether the handler completed without error or
// panic.
func (r Result) IsSuccess() bool {
	return r.Success && !r.Panicked
}

// SyncDispatcher executes handlers synchronously in the caller's
// goroutine with panic recovery.
type SyncDispatcher struct {
	panicHandler PanicHandler

	dispatched atomic.Uint64
	succeeded  atomic.Uint64
	failed     atomic.Uint64
	panicked   atomic.Uint64
}

// Option configures a SyncDispatcher.
type Option func(*SyncDispatcher)

// WithPanicHandler sets the panic handler.
func WithPanicHandler(h PanicHandler) Option {
	return func(d *SyncDispatcher) {
		d.panicHandler = h
	}
}

// NewSyncDispatcher creates a synchronous dispatcher.
func NewSyncDispatcher(opts ...Option) *SyncDispatcher {
	d := &SyncDispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch executes a handler with the given event. It blocks until
// the handler completes or panics; a panic is recovered and reported
// in the result.
func (d *SyncDispatcher) Dispatch(ctx context.Context, event any, handler Handler) (result Result) {
	d.dispatched.Add(1)

	select {
	case <-ctx.Done():
		return Result{Skipped: true, Error: ctx.Err()}
	default:
	}

	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)

		if r := recover(); r != nil {
			stack := debug.Stack()
			result.Success = false
			result.Panicked = true
			result.PanicValue = r
			result.PanicStack = stack
			d.panicked.Add(1)

			if d.panicHandler != nil {
				func() {
					// A panicking panic handler must not crash the
					// process either.
					defer func() { _ = recover() }()
					d.panicHandler(event, r, stack)
				}()
			}
			return
		}

		if result.Success {
			d.succeeded.Add(1)
		} else {
			d.failed.Add(1)
		}
	}()

	if err := handler.Handle(ctx, event); err != nil {
		result.Error = err
		return result
	}
	result.Success = true
	return result
}

// Stats is a point-in-time view of dispatcher counters.
type Stats struct {
	Dispatched uint64
	Succeeded  uint64
	Failed     uint64
	Panicked   uint64
}

// Stats returns the current counters.
func (d *SyncDispatcher) Stats() Stats {
	return Stats{
		Dispatched: d.dispatched.Load(),
		Succeeded:  d.succeeded.Load(),
		Failed:     d.failed.Load(),
		Panicked:   d.panicked.Load(),
	}
}
