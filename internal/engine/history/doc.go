// Package history provides snapshot-based undo/redo with selection
// preservation.
//
// # Snapshots
//
// A snapshot is serialized content plus the selection as character
// offsets, so it survives wholesale tree replacement. Snapshots live
// in one ordered list with a single cursor index, not separate
// undo/redo stacks; redo exists exactly when a later, content-different
// snapshot exists.
//
// # Coalescing
//
// The manager runs a small state machine over keystrokes: consecutive
// strokes of one category (printable vs destructive) coalesce into one
// snapshot. A category switch or the stroke-count threshold forces an
// immediate snapshot; an idle debounce or navigation closes the typing
// run. This is what turns individual keystrokes into user-meaningful
// undo units.
//
// # Restore
//
// Restoring re-parses the saved content, replaces the document's
// children, re-resolves the selection by counting characters (falling
// back to end-of-content), and finally invokes the reload hook so
// change tracking can rebuild its state from the restored tree. The
// whole operation runs under a scoped guard that suppresses snapshot
// capture triggered by the restoration's own mutations.
//
// Undo and redo never fault: with history disabled or no qualifying
// snapshot they simply return false.
package history
