package pipeline

import (
	"strings"
	"testing"

	"github.com/dshills/redline/internal/dom"
	"github.com/dshills/redline/internal/engine/annotate"
	"github.com/dshills/redline/internal/event/events"
)

func selectRange(doc *dom.Document, start, end int) {
	root := doc.Root()
	doc.SetSelection(dom.Selection{
		Start: dom.ResolveOffset(root, start),
		End:   dom.ResolveOffset(root, end),
	})
}

func TestBackspaceWrapsGrapheme(t *testing.T) {
	doc, store, _, del := newPipelineEnv(t, "<p>hello</p>")
	text := doc.Root().FirstChild.FirstChild
	doc.SetCaret(dom.Position{Node: text, Offset: 5})

	if !del.DeleteUnit(doc, events.Backward, events.UnitCharacter) {
		t.Fatal("DeleteUnit() = false")
	}

	if got := doc.CleanHTML(); got != "<p>hell</p>" {
		t.Errorf("CleanHTML() = %q, want %q", got, "<p>hell</p>")
	}
	if got := doc.Text(); got != "hello" {
		t.Errorf("Text() = %q: tracked deletion must keep the content", got)
	}
	recs := store.Records()
	if len(recs) != 1 || recs[0].Kind != annotate.KindDeletion || recs[0].Summary != "o" {
		t.Errorf("records = %+v, want one deletion of %q", recs, "o")
	}
}

func TestRepeatedBackspacesMerge(t *testing.T) {
	doc, store, _, del := newPipelineEnv(t, "<p>abc</p>")
	text := doc.Root().FirstChild.FirstChild
	doc.SetCaret(dom.Position{Node: text, Offset: 3})

	for i := 0; i < 3; i++ {
		if !del.DeleteUnit(doc, events.Backward, events.UnitCharacter) {
			t.Fatal("DeleteUnit() = false")
		}
	}

	if got := annotations(doc); len(got) != 1 || got[0] != "del" {
		t.Fatalf("annotations = %v, want one merged del", got)
	}
	delNode := annotate.CollectAll(doc.Root())[0]
	if got := dom.TextContent(delNode); got != "abc" {
		t.Errorf("deletion content = %q, want %q", got, "abc")
	}
	recs := store.Records()
	if len(recs) != 1 {
		t.Fatalf("len(Records()) = %d, want 1: one batch, one record", len(recs))
	}
	// The summary accumulates in removal order.
	if recs[0].Summary != "cba" {
		t.Errorf("Summary = %q, want %q", recs[0].Summary, "cba")
	}
}

func TestForwardDeletesMerge(t *testing.T) {
	doc, _, _, del := newPipelineEnv(t, "<p>ab</p>")
	text := doc.Root().FirstChild.FirstChild
	doc.SetCaret(dom.Position{Node: text, Offset: 0})

	del.DeleteUnit(doc, events.Forward, events.UnitCharacter)
	del.DeleteUnit(doc, events.Forward, events.UnitCharacter)

	if got := annotations(doc); len(got) != 1 {
		t.Fatalf("annotations = %v, want one merged del", got)
	}
	if got := doc.CleanHTML(); got != "<p></p>" {
		t.Errorf("CleanHTML() = %q, want %q", got, "<p></p>")
	}
}

func TestBackspaceInsideOwnInsertionErases(t *testing.T) {
	doc, store, in, del := newPipelineEnv(t, "<p></p>")
	doc.SetCaret(dom.Start(doc.Root().FirstChild))
	typeText(doc, in, "cat")

	if !del.DeleteUnit(doc, events.Backward, events.UnitCharacter) {
		t.Fatal("DeleteUnit() = false")
	}

	// No deletion annotation: own freshly inserted content is removed
	// outright.
	if got := annotations(doc); len(got) != 1 || got[0] != "ins" {
		t.Fatalf("annotations = %v, want only the insertion", got)
	}
	if got := doc.Text(); got != "ca" {
		t.Errorf("Text() = %q, want %q", got, "ca")
	}
	recs := store.Records()
	if len(recs) != 1 || recs[0].Summary != "ca" {
		t.Errorf("records = %+v, want one insertion of %q", recs, "ca")
	}
}

func TestEraseOwnInsertionLeavesNoTrace(t *testing.T) {
	doc, store, in, del := newPipelineEnv(t, "<p></p>")
	doc.SetCaret(dom.Start(doc.Root().FirstChild))
	typeText(doc, in, "c")

	if !del.DeleteUnit(doc, events.Backward, events.UnitCharacter) {
		t.Fatal("DeleteUnit() = false")
	}

	if got := doc.TrackedHTML(); got != "<p></p>" {
		t.Errorf("TrackedHTML() = %q, want pristine %q", got, "<p></p>")
	}
	if n := len(store.Records()); n != 0 {
		t.Errorf("len(Records()) = %d, want 0: fully erased insertion leaves no record", n)
	}
}

func TestDeleteStepsOverExistingDeletion(t *testing.T) {
	doc, store, _, del := newPipelineEnv(t, "<p>ab</p>")
	p := doc.Root().FirstChild

	existing := annotate.Create(annotate.KindDeletion, "d1", annotate.NewContext("u2", "Ben"), testTime)
	existing.AppendChild(dom.Text("cd"))
	p.AppendChild(existing)
	before := doc.TrackedHTML()

	t.Run("caret inside the deletion", func(t *testing.T) {
		doc.SetCaret(dom.Position{Node: existing.FirstChild, Offset: 1})
		if !del.DeleteUnit(doc, events.Backward, events.UnitCharacter) {
			t.Fatal("DeleteUnit() = false")
		}
		if doc.TrackedHTML() != before {
			t.Error("content changed: deleting inside a deletion must be a no-op")
		}
		if doc.Caret() != dom.Before(existing) {
			t.Errorf("caret = %+v, want before the deletion", doc.Caret())
		}
	})

	t.Run("unit reached across a boundary", func(t *testing.T) {
		doc.SetCaret(dom.After(existing))
		if !del.DeleteUnit(doc, events.Backward, events.UnitCharacter) {
			t.Fatal("DeleteUnit() = false")
		}
		if doc.TrackedHTML() != before {
			t.Error("content changed while stepping over a deletion")
		}
	})

	if len(store.Records()) != 0 {
		t.Error("stepping over a deletion created records")
	}
}

func TestWordDeletion(t *testing.T) {
	doc, store, _, del := newPipelineEnv(t, "<p>hello world</p>")
	text := doc.Root().FirstChild.FirstChild
	doc.SetCaret(dom.End(text))

	if !del.DeleteUnit(doc, events.Backward, events.UnitWord) {
		t.Fatal("DeleteUnit() = false")
	}

	if got := doc.CleanHTML(); got != "<p>hello </p>" {
		t.Errorf("CleanHTML() = %q, want %q", got, "<p>hello </p>")
	}
	if recs := store.Records(); len(recs) != 1 || recs[0].Summary != "world" {
		t.Errorf("records = %+v, want one deletion of %q", recs, "world")
	}
}

func TestDeleteAtDocumentEdge(t *testing.T) {
	doc, _, _, del := newPipelineEnv(t, "<p>ab</p>")
	text := doc.Root().FirstChild.FirstChild

	doc.SetCaret(dom.Position{Node: text, Offset: 0})
	if del.DeleteUnit(doc, events.Backward, events.UnitCharacter) {
		t.Error("backspace at document start reported success")
	}
	doc.SetCaret(dom.End(text))
	if del.DeleteUnit(doc, events.Forward, events.UnitCharacter) {
		t.Error("forward delete at document end reported success")
	}
}

func TestDeleteSelection(t *testing.T) {
	doc, store, _, del := newPipelineEnv(t, "<p>hello world</p>")
	selectRange(doc, 0, 5)

	if !del.DeleteSelection(doc) {
		t.Fatal("DeleteSelection() = false")
	}

	if got := doc.CleanHTML(); got != "<p> world</p>" {
		t.Errorf("CleanHTML() = %q, want %q", got, "<p> world</p>")
	}
	if got := doc.Text(); got != "hello world" {
		t.Errorf("Text() = %q: tracked deletion must keep the content", got)
	}
	recs := store.Records()
	if len(recs) != 1 || recs[0].Summary != "hello" {
		t.Errorf("records = %+v, want one deletion of %q", recs, "hello")
	}
	// Caret collapses before the wrapped content.
	delNode := annotate.CollectAll(doc.Root())[0]
	if doc.Caret() != dom.Before(delNode) {
		t.Errorf("caret = %+v, want before the deletion", doc.Caret())
	}
}

func TestDeleteSelectionAcrossBlocks(t *testing.T) {
	doc, store, _, del := newPipelineEnv(t, "<p>ab</p><p>cd</p>")
	selectRange(doc, 1, 3)

	if !del.DeleteSelection(doc) {
		t.Fatal("DeleteSelection() = false")
	}

	// Block containers survive; each paragraph gets its own wrap.
	if got := doc.CleanHTML(); got != "<p>a</p><p>d</p>" {
		t.Errorf("CleanHTML() = %q, want %q", got, "<p>a</p><p>d</p>")
	}
	if got := annotations(doc); len(got) != 2 {
		t.Fatalf("annotations = %v, want one del per paragraph", got)
	}
	recs := store.Records()
	if len(recs) != 1 || recs[0].Summary != "bc" {
		t.Errorf("records = %+v, want one record %q spanning both wraps", recs, "bc")
	}
}

func TestDeleteSelectionDropsWhitespaceRuns(t *testing.T) {
	doc, store, _, del := newPipelineEnv(t, "<p>a</p> <p>b</p>")
	selectRange(doc, 0, 2)

	if !del.DeleteSelection(doc) {
		t.Fatal("DeleteSelection() = false")
	}

	if got := doc.CleanHTML(); got != "<p></p><p>b</p>" {
		t.Errorf("CleanHTML() = %q, want %q", got, "<p></p><p>b</p>")
	}
	// The whitespace run between the blocks vanished silently.
	if recs := store.Records(); len(recs) != 1 || recs[0].Summary != "a" {
		t.Errorf("records = %+v, want one deletion of %q only", recs, "a")
	}
}

func TestDeleteSelectionOverOwnInsertion(t *testing.T) {
	doc, store, in, del := newPipelineEnv(t, "<p></p>")
	doc.SetCaret(dom.Start(doc.Root().FirstChild))
	typeText(doc, in, "cat")
	selectRange(doc, 0, 3)

	if !del.DeleteSelection(doc) {
		t.Fatal("DeleteSelection() = false")
	}

	if got := doc.TrackedHTML(); got != "<p></p>" {
		t.Errorf("TrackedHTML() = %q, want pristine %q", got, "<p></p>")
	}
	if n := len(store.Records()); n != 0 {
		t.Errorf("len(Records()) = %d, want 0", n)
	}
}

func TestDeleteSelectionOverResolvedContentOnly(t *testing.T) {
	doc, store, _, del := newPipelineEnv(t, "<p></p>")
	p := doc.Root().FirstChild
	existing := annotate.Create(annotate.KindDeletion, "d1", annotate.NewContext("u2", "Ben"), testTime)
	existing.AppendChild(dom.Text("ab"))
	p.AppendChild(existing)
	before := doc.TrackedHTML()

	selectRange(doc, 0, 2)
	if !del.DeleteSelection(doc) {
		t.Fatal("DeleteSelection() = false: collapsing over deleted content still succeeds")
	}
	if doc.TrackedHTML() != before {
		t.Error("already-deleted content was touched")
	}
	if len(store.Records()) != 0 {
		t.Error("no-op selection delete created records")
	}
}

func TestDeleteAtomicElement(t *testing.T) {
	doc, store, _, del := newPipelineEnv(t, `<p>a<img src="x"/>b</p>`)
	p := doc.Root().FirstChild
	text := p.LastChild // "b"
	doc.SetCaret(dom.Position{Node: text, Offset: 0})

	if !del.DeleteUnit(doc, events.Backward, events.UnitCharacter) {
		t.Fatal("DeleteUnit() = false")
	}

	tracked := doc.TrackedHTML()
	if !strings.Contains(tracked, "<del") || !strings.Contains(tracked, "<img") {
		t.Errorf("TrackedHTML() = %q, want the image wrapped in a del", tracked)
	}
	if got := doc.CleanHTML(); got != "<p>ab</p>" {
		t.Errorf("CleanHTML() = %q, want %q", got, "<p>ab</p>")
	}
	if store.PendingCount() != 1 {
		t.Errorf("PendingCount() = %d, want 1", store.PendingCount())
	}
}

func TestDeleteUnitUntracked(t *testing.T) {
	doc, store, _, del := newPipelineEnv(t, "<p>ab</p>")
	store.SetEnabled(false)
	text := doc.Root().FirstChild.FirstChild
	doc.SetCaret(dom.End(text))

	if !del.DeleteUnit(doc, events.Backward, events.UnitCharacter) {
		t.Fatal("DeleteUnit() = false")
	}
	if got := doc.TrackedHTML(); got != "<p>a</p>" {
		t.Errorf("TrackedHTML() = %q, want %q", got, "<p>a</p>")
	}
	if len(store.Records()) != 0 {
		t.Error("untracked delete created records")
	}
}

func TestDeleteSelectionUntracked(t *testing.T) {
	doc, store, _, del := newPipelineEnv(t, "<p>hello</p>")
	store.SetEnabled(false)
	selectRange(doc, 1, 4)

	if !del.DeleteSelection(doc) {
		t.Fatal("DeleteSelection() = false")
	}
	if got := doc.TrackedHTML(); got != "<p>ho</p>" {
		t.Errorf("TrackedHTML() = %q, want %q", got, "<p>ho</p>")
	}
	if len(store.Records()) != 0 {
		t.Error("untracked selection delete created records")
	}
}
