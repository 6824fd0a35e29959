// Package pipeline turns editing gestures into tree mutations under
// change tracking.
//
// The Inserter handles text, break, and node insertion at a collapsed
// caret. Its branch order is fixed: step out of deletions first, splice
// into an owned insertion second, extend an adjacent owned insertion
// third, and only then open a new annotation under a batch change id.
// The adjacency branch is what keeps N keystrokes from producing N
// one-character annotations. In every branch the caret ends up where
// the next keystroke's merge decision is deterministic.
//
// The Deleter never removes tracked content from the tree (except
// content the same session inserted, which vanishes without a trace).
// Everything else is wrapped in deletion annotations: collapsed-caret
// unit deletes isolate one grapheme or word run, selection deletes
// decompose the range recursively, descending into block containers and
// wrapping their inline content. Deletion annotations created by one
// gesture merge with adjacent same-session deletions afterward.
//
// When tracking is disabled both pipelines fall back to plain
// mutations of the same shapes.
//
// All operations return a bool: false means the precondition was not
// met (no caret, document edge, nothing to do) and nothing happened.
package pipeline
