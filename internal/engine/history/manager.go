package history

import (
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/dshills/redline/internal/dom"
	"github.com/dshills/redline/internal/event/events"
)

// Defaults for the manager's tunables.
const (
	DefaultCapacity        = 100
	DefaultStrokeThreshold = 25
	DefaultTypingDebounce  = 800 * time.Millisecond
)

// state is the manager's coalescing state.
type state uint8

const (
	stateIdle state = iota
	stateTyping
	stateRestoring
)

// Option configures a Manager.
type Option func(*Manager)

// WithCapacity bounds the snapshot list; the oldest snapshot is
// evicted past the bound.
func WithCapacity(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.capacity = n
		}
	}
}

// WithStrokeThreshold sets the stroke count that forces a snapshot
// mid-typing.
func WithStrokeThreshold(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.threshold = n
		}
	}
}

// WithTypingDebounce sets the idle window that closes a typing run.
func WithTypingDebounce(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.debounceWindow = d
		}
	}
}

// WithoutDebounceTimer disables the idle timer; typing runs close only
// on navigation or an explicit flush. Tests use this to step the state
// machine deterministically.
func WithoutDebounceTimer() Option {
	return func(m *Manager) {
		m.timerOff = true
	}
}

// WithReloadHook sets the hook invoked after every restore. Restore
// replaces tree content wholesale, so state keyed by live node
// references goes stale; the hook is where change tracking re-scans
// the restored tree.
func WithReloadHook(fn func(root *html.Node)) Option {
	return func(m *Manager) {
		m.reload = fn
	}
}

// Manager implements snapshot-based undo/redo over a document.
type Manager struct {
	mu  sync.Mutex
	doc *dom.Document

	snaps []Snapshot
	index int

	st       state
	strokes  int
	lastCat  events.Category
	debounce *time.Timer

	capacity       int
	threshold      int
	debounceWindow time.Duration
	timerOff       bool

	enabled bool
	reload  func(root *html.Node)
}

// NewManager creates a history manager for doc and captures the
// baseline snapshot.
func NewManager(doc *dom.Document, opts ...Option) *Manager {
	m := &Manager{
		doc:            doc,
		index:          -1,
		capacity:       DefaultCapacity,
		threshold:      DefaultStrokeThreshold,
		debounceWindow: DefaultTypingDebounce,
		enabled:        true,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.mu.Lock()
	m.captureLocked(false)
	m.mu.Unlock()
	return m
}

// SetEnabled switches history on or off. Undo/redo while disabled
// fails silently.
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// Enabled reports whether history is on.
func (m *Manager) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Restoring reports whether a restore is in flight. Reactive observers
// use this to ignore history's own mutations.
func (m *Manager) Restoring() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st == stateRestoring
}

// Len returns the number of snapshots held.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snaps)
}

// Index returns the current snapshot index.
func (m *Manager) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// RecordStroke feeds one keystroke into the coalescing state machine.
// Call it before the stroke's mutation lands, so forced snapshots
// capture the state at the category boundary.
func (m *Manager) RecordStroke(cat events.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled || m.st == stateRestoring {
		return
	}
	if cat == events.CategoryNavigation {
		m.closeTypingLocked()
		return
	}
	if cat != events.CategoryPrintable && cat != events.CategoryDestructive {
		return
	}

	switch m.st {
	case stateIdle:
		m.st = stateTyping
		m.strokes = 1
		m.lastCat = cat
	case stateTyping:
		if cat != m.lastCat {
			m.captureLocked(false)
			m.strokes = 1
			m.lastCat = cat
		} else {
			m.strokes++
			if m.strokes >= m.threshold {
				m.captureLocked(false)
				m.strokes = 0
			}
		}
	}
	m.rescheduleLocked()
}

// NoteNavigation closes a typing run immediately: navigation, blur,
// and click all force a synchronous snapshot.
func (m *Manager) NoteNavigation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled || m.st == stateRestoring {
		return
	}
	m.closeTypingLocked()
}

// Capture appends a snapshot of the current document state, subject to
// dedup. With bypassContentDedup a snapshot differing only in
// selection is still appended; identical content and selection is
// always rejected. The bypass is for hosts that want a pure caret move
// restorable, say before jumping to a search hit or a bookmark.
// Returns whether a snapshot was appended.
func (m *Manager) Capture(bypassContentDedup bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled || m.st == stateRestoring {
		return false
	}
	return m.captureLocked(bypassContentDedup)
}

// captureLocked appends the current state unless it is a no-op
// duplicate. Appending truncates everything past the index (a fresh
// edit discards redo history) and evicts the oldest snapshot past
// capacity.
func (m *Manager) captureLocked(bypassContentDedup bool) bool {
	snap := m.snapshotNow()
	if m.index >= 0 {
		cur := m.snaps[m.index]
		if snap.same(cur) {
			return false
		}
		if snap.sameContent(cur) && !bypassContentDedup {
			return false
		}
	}
	m.snaps = append(m.snaps[:m.index+1], snap)
	if len(m.snaps) > m.capacity {
		m.snaps = m.snaps[1:]
	}
	m.index = len(m.snaps) - 1
	return true
}

// snapshotNow serializes the document and flattens the selection.
func (m *Manager) snapshotNow() Snapshot {
	root := m.doc.Root()
	sel := m.doc.Selection()
	start := dom.FlattenOffset(root, sel.Start)
	end := dom.FlattenOffset(root, sel.End)
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = start
	}
	return Snapshot{
		Content:  m.doc.TrackedHTML(),
		SelStart: start,
		SelEnd:   end,
	}
}

// closeTypingLocked flushes a typing run with a synchronous snapshot.
func (m *Manager) closeTypingLocked() {
	m.cancelDebounceLocked()
	if m.st == stateTyping {
		m.captureLocked(false)
		m.st = stateIdle
		m.strokes = 0
	}
}

// rescheduleLocked restarts the idle debounce timer.
func (m *Manager) rescheduleLocked() {
	if m.timerOff {
		return
	}
	if m.debounce != nil {
		m.debounce.Stop()
	}
	m.debounce = time.AfterFunc(m.debounceWindow, m.debounceFired)
}

func (m *Manager) debounceFired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.st == stateTyping {
		m.captureLocked(false)
		m.st = stateIdle
		m.strokes = 0
	}
}

func (m *Manager) cancelDebounceLocked() {
	if m.debounce != nil {
		m.debounce.Stop()
		m.debounce = nil
	}
}

// Undo restores the nearest earlier content-different snapshot.
// Returns false when history is disabled or no such snapshot exists.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled || m.st == stateRestoring {
		return false
	}
	// Flush a typing run, or snapshot defensively: edits that bypassed
	// keystroke tracking must not be lost.
	if m.st == stateTyping {
		m.closeTypingLocked()
	} else {
		m.captureLocked(false)
	}

	cur := m.snaps[m.index].Content
	i := m.index - 1
	for i >= 0 && m.snaps[i].Content == cur {
		i--
	}
	if i < 0 {
		return false
	}
	m.restoreLocked(m.snaps[i])
	m.index = i
	return true
}

// Redo restores the nearest later content-different snapshot.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled || m.st == stateRestoring {
		return false
	}
	if m.st == stateTyping {
		m.closeTypingLocked()
	}

	cur := m.snaps[m.index].Content
	i := m.index + 1
	for i < len(m.snaps) && m.snaps[i].Content == cur {
		i++
	}
	if i >= len(m.snaps) {
		return false
	}
	m.restoreLocked(m.snaps[i])
	m.index = i
	return true
}

// Clear drops all snapshots and re-captures the baseline.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelDebounceLocked()
	m.snaps = nil
	m.index = -1
	m.st = stateIdle
	m.strokes = 0
	m.captureLocked(false)
}
