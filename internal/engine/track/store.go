package track

import (
	"sync"
	"time"

	"github.com/dshills/redline/internal/engine/annotate"
)

// DefaultBatchWindow is the idle window after which an open batch
// change closes on its own.
const DefaultBatchWindow = 1000 * time.Millisecond

// Option configures a Store.
type Option func(*Store)

// WithBatchWindow sets the batch idle window.
func WithBatchWindow(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.batchWindow = d
		}
	}
}

// WithClock sets the time source. Tests use this to control
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithoutBatchTimer disables the batch idle timer; batches close only
// explicitly. Tests use this to step batches deterministically.
func WithoutBatchTimer() Option {
	return func(s *Store) {
		s.timerOff = true
	}
}

// Store owns all change-tracking state. All methods are safe for the
// timer goroutine; the edit path itself is single-threaded.
type Store struct {
	mu      sync.Mutex
	enabled bool
	visible bool
	ctx     annotate.Context

	records map[string]*Record
	order   []string
	pending int

	batchID     string
	batchKind   annotate.Kind
	batchTimer  *time.Timer
	batchWindow time.Duration
	timerOff    bool

	observers []func(State)
	now       func() time.Time
}

// NewStore creates a store for the given attribution context. Tracking
// starts disabled and visible.
func NewStore(ctx annotate.Context, opts ...Option) *Store {
	s := &Store{
		visible:     true,
		ctx:         ctx,
		records:     make(map[string]*Record),
		batchWindow: DefaultBatchWindow,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Flags and identity

// Enabled reports whether change tracking is on.
func (s *Store) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetEnabled switches change tracking on or off. Turning tracking off
// closes any open batch.
func (s *Store) SetEnabled(enabled bool) {
	s.mu.Lock()
	if !enabled {
		s.closeBatchLocked()
	}
	s.enabled = enabled
	s.mu.Unlock()
	s.publish()
}

// Visible reports whether tracked markup should be shown.
func (s *Store) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// SetVisible switches markup visibility.
func (s *Store) SetVisible(visible bool) {
	s.mu.Lock()
	s.visible = visible
	s.mu.Unlock()
	s.publish()
}

// Context returns the current attribution context.
func (s *Store) Context() annotate.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// SetUser switches the current user and starts a fresh session, making
// the previous user's annotations non-mergeable. Any open batch
// closes.
func (s *Store) SetUser(userID, userName string) {
	s.mu.Lock()
	s.closeBatchLocked()
	s.ctx = annotate.NewContext(userID, userName)
	s.mu.Unlock()
	s.publish()
}

// NewSession rotates the session id for the current user.
func (s *Store) NewSession() {
	s.mu.Lock()
	s.closeBatchLocked()
	s.ctx = s.ctx.NewSession()
	s.mu.Unlock()
	s.publish()
}

// Records

// AddChange registers a record. Idempotent per id: re-adding an
// existing id refreshes the summary and last-modified time but never
// creates a duplicate or resurrects a resolved record.
func (s *Store) AddChange(rec Record) {
	s.mu.Lock()
	existing, ok := s.records[rec.ID]
	switch {
	case !ok:
		rec.Summary = clipSummary(rec.Summary)
		if rec.Time.IsZero() {
			rec.Time = s.now()
		}
		s.records[rec.ID] = &rec
		s.order = append(s.order, rec.ID)
	case !existing.Resolved():
		existing.Summary = clipSummary(rec.Summary)
	}
	s.recountLocked()
	s.mu.Unlock()
	s.publish()
}

// Amend updates the content summary of an open record. No-op for
// unknown or resolved ids.
func (s *Store) Amend(id, summary string) {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok || rec.Resolved() {
		s.mu.Unlock()
		return
	}
	rec.Summary = clipSummary(summary)
	s.mu.Unlock()
	s.publish()
}

// MarkAccepted resolves a record as accepted. Idempotent; unknown ids
// and already-resolved records are no-ops.
func (s *Store) MarkAccepted(id string) {
	s.mark(id, func(r *Record) { r.Accepted = true })
}

// MarkRejected resolves a record as rejected. Idempotent; unknown ids
// and already-resolved records are no-ops.
func (s *Store) MarkRejected(id string) {
	s.mark(id, func(r *Record) { r.Rejected = true })
}

func (s *Store) mark(id string, set func(*Record)) {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok || rec.Resolved() {
		s.mu.Unlock()
		return
	}
	set(rec)
	if s.batchID == id {
		s.closeBatchLocked()
	}
	s.recountLocked()
	s.mu.Unlock()
	s.publish()
}

// Discard removes a record that never materialized surviving content:
// the same session inserted and then fully erased it. No-op for
// unknown or resolved ids.
func (s *Store) Discard(id string) {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok || rec.Resolved() {
		s.mu.Unlock()
		return
	}
	delete(s.records, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.batchID == id {
		s.closeBatchLocked()
	}
	s.recountLocked()
	s.mu.Unlock()
	s.publish()
}

// Get returns a copy of the record for id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Records returns copies of all records in creation order.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordsLocked()
}

func (s *Store) recordsLocked() []Record {
	out := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.records[id])
	}
	return out
}

// PendingCount returns the number of unresolved records.
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// PendingIDs returns the unresolved change ids in creation order. The
// result is a snapshot: resolving entries does not affect an iteration
// already underway.
func (s *Store) PendingIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, id := range s.order {
		if !s.records[id].Resolved() {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *Store) recountLocked() {
	n := 0
	for _, rec := range s.records {
		if !rec.Resolved() {
			n++
		}
	}
	s.pending = n
}

// Observers

// Subscribe registers an observer. Every subsequent mutation delivers a
// fresh immutable state snapshot.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// State is an immutable snapshot of the store published to observers.
type State struct {
	Enabled      bool
	Visible      bool
	UserID       string
	UserName     string
	SessionID    string
	PendingCount int
	Records      []Record
}

// Snapshot returns the current state as an immutable snapshot.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	return State{
		Enabled:      s.enabled,
		Visible:      s.visible,
		UserID:       s.ctx.UserID,
		UserName:     s.ctx.UserName,
		SessionID:    s.ctx.SessionID,
		PendingCount: s.pending,
		Records:      s.recordsLocked(),
	}
}

func (s *Store) publish() {
	s.mu.Lock()
	state := s.snapshotLocked()
	observers := append(make([]func(State), 0, len(s.observers)), s.observers...)
	s.mu.Unlock()
	for _, fn := range observers {
		fn(state)
	}
}
