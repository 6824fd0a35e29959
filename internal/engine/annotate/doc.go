// Package annotate creates and queries annotation nodes: the <ins> and
// <del> elements that mark tracked content in the document tree.
//
// Every annotation carries attribution in data attributes: the change id
// linking it to a ChangeRecord, the user id and name, the session id,
// and creation/modification timestamps. The annotator answers the
// questions the edit pipelines ask:
//
//   - what annotation encloses this position?
//   - does this annotation belong to the current session?
//   - is there a same-session annotation touching this caret that the
//     current edit may merge into?
//
// Merging is refused across a line break: an annotation that ends or
// starts with a break element never merges, since that would join two
// lines into one tracked edit.
//
// Removing an annotation emptied by edits is the caller's job; the
// annotator only reports emptiness.
package annotate
