package history

import "github.com/dshills/redline/internal/dom"

// restoreScope suspends reactive side effects during programmatic
// mutation. Acquired before a bulk restore and released on every exit
// path; End is safe to call more than once.
type restoreScope struct {
	m      *Manager
	active bool
}

// beginRestoreLocked enters the Restoring state. Must hold m.mu.
func (m *Manager) beginRestoreLocked() *restoreScope {
	m.cancelDebounceLocked()
	m.st = stateRestoring
	m.strokes = 0
	return &restoreScope{m: m, active: true}
}

// End exits the Restoring state. Only the first call has effect.
func (s *restoreScope) End() {
	if s.active {
		s.m.st = stateIdle
		s.active = false
	}
}

// restoreLocked replaces the document content with a snapshot and
// re-resolves the selection. Structural inconsistencies degrade to an
// end-of-content caret; the operation itself always succeeds. Must
// hold m.mu.
func (m *Manager) restoreLocked(snap Snapshot) {
	scope := m.beginRestoreLocked()
	defer scope.End()

	nodes, err := dom.ParseFragment(snap.Content)
	if err != nil {
		// Unparseable content cannot happen for snapshots we produced;
		// degrade to an empty document rather than fault.
		nodes = nil
	}
	m.doc.ReplaceChildren(nodes)

	root := m.doc.Root()
	start := dom.ResolveOffset(root, snap.SelStart)
	end := start
	if snap.SelEnd != snap.SelStart {
		end = dom.ResolveOffset(root, snap.SelEnd)
	}
	m.doc.SetSelection(dom.Selection{Start: start, End: end})

	// Exit Restoring before the reload hook runs: the hook mutates
	// tracking state, not content, and must see a quiescent manager.
	scope.End()
	if m.reload != nil {
		m.reload(root)
	}
}
