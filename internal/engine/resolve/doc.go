// Package resolve permanently settles tracked changes.
//
// Accepting a change keeps what the author meant: insertion nodes are
// unwrapped (children promoted) and deletion nodes are removed with
// their content. Rejecting mirrors it: insertions are removed,
// deletions unwrapped. Either way the change's record is marked
// resolved and becomes immutable.
//
// All-variants snapshot the pending id list before iterating, so
// resolving one record can never skip another. Resolving an unknown or
// already-resolved id is a no-op; the at-cursor variants report
// "nothing here" with a boolean rather than an error.
package resolve
