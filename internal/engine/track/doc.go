// Package track owns the change-tracking state: the enabled/visible
// flags, the change-record table, the attribution context, and the
// batch-change timer that groups consecutive keystrokes into one
// logical change.
//
// # Records
//
// Every tracked edit is summarized by a Record keyed by its change id.
// Records are created when a change first materializes in the tree,
// amended while their batch is open, and resolved exactly once by the
// accept/reject engine. They are never deleted by resolution; the only
// removal path is Discard, used when a same-session edit is erased
// before it ever produced surviving content.
//
// # Batches
//
// StartBatch returns a fresh change id only when no batch is open;
// while the idle window is live, callers are handed the open id so that
// N keystrokes fund one Record. The window is a cancel-and-reschedule
// time.AfterFunc; a batch also closes immediately when the edit kind
// switches or on an explicit Close.
//
// # Observers
//
// Every mutation publishes a fresh immutable State snapshot to all
// subscribers. There is no partial-update contract: observers always
// see a complete, consistent view.
//
// Operations on unknown change ids are deliberate no-ops. UI races
// (Accept All racing a manual edit) must never fault.
package track
