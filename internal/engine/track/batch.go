package track

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/redline/internal/engine/annotate"
)

// StartBatch returns the change id for the next edit of the given
// kind. A fresh id (fresh=true) is handed out only when no batch is
// open or the open batch has a different kind; otherwise the open id is
// returned and its idle timer restarted, so consecutive same-kind edits
// share one record.
func (s *Store) StartBatch(kind annotate.Kind) (id string, fresh bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.batchID != "" && s.batchKind == kind {
		s.rescheduleLocked()
		return s.batchID, false
	}

	s.closeBatchLocked()
	s.batchID = uuid.NewString()
	s.batchKind = kind
	s.rescheduleLocked()
	return s.batchID, true
}

// RefreshBatch restarts the idle timer of the open batch, if any.
// Called when an edit merges into existing annotations without needing
// a change id.
func (s *Store) RefreshBatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchID != "" {
		s.rescheduleLocked()
	}
}

// OpenBatch returns the open batch id, or "" when none is open.
func (s *Store) OpenBatch() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batchID
}

// CloseBatch closes the open batch immediately.
func (s *Store) CloseBatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeBatchLocked()
}

// CloseBatchIf closes the open batch only when its id matches.
func (s *Store) CloseBatchIf(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchID == id {
		s.closeBatchLocked()
	}
}

// rescheduleLocked cancels and restarts the idle timer. The timer
// never overlaps itself: each call replaces the pending callback.
func (s *Store) rescheduleLocked() {
	if s.timerOff {
		return
	}
	if s.batchTimer != nil {
		s.batchTimer.Stop()
	}
	id := s.batchID
	s.batchTimer = time.AfterFunc(s.batchWindow, func() {
		s.CloseBatchIf(id)
	})
}

func (s *Store) closeBatchLocked() {
	if s.batchTimer != nil {
		s.batchTimer.Stop()
		s.batchTimer = nil
	}
	s.batchID = ""
}
