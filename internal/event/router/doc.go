// Package router binds the host surface's raw editing intents to the
// insert and delete pipelines.
//
// Each intent maps to exactly one pipeline call. A handled intent
// reports Handled=true, telling the host to suppress its default
// mutation: the pipelines keep sole authority over tree shape.
// Formatting and undo/redo shortcuts are deliberately not intercepted.
//
// IME composition is buffered from CompositionStart to CompositionEnd
// and committed as a single NFC-normalized insertion. Paste and cut
// operate on plain text only; rich markup was discarded upstream by
// design.
//
// Keystrokes are also fed to the history manager for snapshot
// coalescing, before the mutation lands. Every route runs through the
// panic-recovering dispatcher, so a failure inside a pipeline degrades
// to an unhandled intent instead of reaching the host.
package router
