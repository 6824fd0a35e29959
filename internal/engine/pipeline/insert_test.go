package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/dshills/redline/internal/dom"
	"github.com/dshills/redline/internal/engine/annotate"
	"github.com/dshills/redline/internal/engine/track"
)

var testTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newPipelineEnv(t *testing.T, markup string) (*dom.Document, *track.Store, *Inserter, *Deleter) {
	t.Helper()
	doc := dom.NewDocument()
	if err := doc.LoadHTML(markup); err != nil {
		t.Fatalf("LoadHTML(%q) error = %v", markup, err)
	}
	store := track.NewStore(annotate.NewContext("u1", "Ada"), track.WithoutBatchTimer())
	store.SetEnabled(true)
	now := func() time.Time { return testTime }
	return doc, store,
		NewInserter(store, WithInsertClock(now)),
		NewDeleter(store, WithDeleteClock(now))
}

// typeText feeds text one rune at a time, the way keystrokes arrive.
func typeText(doc *dom.Document, in *Inserter, text string) {
	for _, r := range text {
		in.InsertText(doc, string(r))
	}
}

func annotations(doc *dom.Document) []string {
	var tags []string
	for _, n := range annotate.CollectAll(doc.Root()) {
		tags = append(tags, n.Data)
	}
	return tags
}

func TestInsertTextCoalesces(t *testing.T) {
	doc, store, in, _ := newPipelineEnv(t, "<p></p>")
	doc.SetCaret(dom.Start(doc.Root().FirstChild))

	typeText(doc, in, "cat")

	if got := annotations(doc); len(got) != 1 || got[0] != "ins" {
		t.Fatalf("annotations = %v, want one ins", got)
	}
	if got := doc.Text(); got != "cat" {
		t.Errorf("Text() = %q, want %q", got, "cat")
	}
	recs := store.Records()
	if len(recs) != 1 {
		t.Fatalf("len(Records()) = %d, want 1: consecutive keystrokes share one record", len(recs))
	}
	if recs[0].Summary != "cat" || recs[0].Kind != annotate.KindInsertion {
		t.Errorf("record = %+v, want insertion %q", recs[0], "cat")
	}
	if recs[0].UserName != "Ada" {
		t.Errorf("UserName = %q, want Ada", recs[0].UserName)
	}

	// Keep typing: still one node, one record.
	typeText(doc, in, " naps")
	if got := annotations(doc); len(got) != 1 {
		t.Errorf("annotations after more typing = %v, want one ins", got)
	}
	if rec, _ := store.Get(recs[0].ID); rec.Summary != "cat naps" {
		t.Errorf("Summary = %q, want %q", rec.Summary, "cat naps")
	}
}

func TestInsertTextExtendsAdjacent(t *testing.T) {
	doc, store, in, _ := newPipelineEnv(t, "<p></p>")
	doc.SetCaret(dom.Start(doc.Root().FirstChild))

	typeText(doc, in, "cat")
	insNode := annotate.CollectAll(doc.Root())[0]

	// Caret just outside the annotation still merges into it.
	store.CloseBatch()
	doc.SetCaret(dom.After(insNode))
	in.InsertText(doc, "s")

	if got := annotations(doc); len(got) != 1 {
		t.Fatalf("annotations = %v, want one ins after adjacent merge", got)
	}
	if got := dom.TextContent(insNode); got != "cats" {
		t.Errorf("annotation text = %q, want %q", got, "cats")
	}
	if rec, _ := store.Get(annotate.ChangeID(insNode)); rec.Summary != "cats" {
		t.Errorf("Summary = %q, want %q", rec.Summary, "cats")
	}
}

func TestInsertTextPrependsAdjacent(t *testing.T) {
	doc, _, in, _ := newPipelineEnv(t, "<p></p>")
	doc.SetCaret(dom.Start(doc.Root().FirstChild))

	typeText(doc, in, "at")
	insNode := annotate.CollectAll(doc.Root())[0]

	doc.SetCaret(dom.Before(insNode))
	in.InsertText(doc, "c")

	if got := annotations(doc); len(got) != 1 {
		t.Fatalf("annotations = %v, want one ins", got)
	}
	if got := dom.TextContent(insNode); got != "cat" {
		t.Errorf("annotation text = %q, want %q", got, "cat")
	}
}

func TestInsertTextUntrackedPlain(t *testing.T) {
	doc, store, in, _ := newPipelineEnv(t, "<p>ab</p>")
	store.SetEnabled(false)
	text := doc.Root().FirstChild.FirstChild
	doc.SetCaret(dom.Position{Node: text, Offset: 1})

	in.InsertText(doc, "X")

	if got := doc.TrackedHTML(); got != "<p>aXb</p>" {
		t.Errorf("TrackedHTML() = %q, want %q", got, "<p>aXb</p>")
	}
	if len(store.Records()) != 0 {
		t.Error("untracked insert created a record")
	}
}

func TestInsertIntoForeignInsertionSplits(t *testing.T) {
	doc, store, in, _ := newPipelineEnv(t, "<p></p>")
	p := doc.Root().FirstChild

	foreign := annotate.Create(annotate.KindInsertion, "f1", annotate.NewContext("u2", "Ben"), testTime)
	inner := dom.Text("abc")
	foreign.AppendChild(inner)
	p.AppendChild(foreign)
	store.AddChange(track.Record{ID: "f1", Kind: annotate.KindInsertion, UserID: "u2", UserName: "Ben", Summary: "abc"})

	doc.SetCaret(dom.Position{Node: inner, Offset: 1})
	in.InsertText(doc, "X")

	// The foreign annotation splits into two halves sharing its id; the
	// new content gets its own annotation in the gap. No nesting.
	halves := annotate.CollectByID(doc.Root(), "f1")
	if len(halves) != 2 {
		t.Fatalf("foreign halves = %d, want 2", len(halves))
	}
	for _, h := range halves {
		if dom.Attr(h, annotate.AttrUserID) != "u2" {
			t.Error("split half lost its attribution")
		}
	}
	if got := annotations(doc); len(got) != 3 {
		t.Fatalf("annotations = %v, want 3", got)
	}
	if got := doc.Text(); got != "aXbc" {
		t.Errorf("Text() = %q, want %q", got, "aXbc")
	}
	if got := doc.CleanHTML(); got != "<p>aXbc</p>" {
		t.Errorf("CleanHTML() = %q, want %q", got, "<p>aXbc</p>")
	}
}

func TestInsertStepsOutOfDeletion(t *testing.T) {
	doc, _, in, _ := newPipelineEnv(t, "<p></p>")
	p := doc.Root().FirstChild

	del := annotate.Create(annotate.KindDeletion, "d1", annotate.NewContext("u2", "Ben"), testTime)
	delText := dom.Text("xy")
	del.AppendChild(delText)
	p.AppendChild(del)

	doc.SetCaret(dom.Position{Node: delText, Offset: 1})
	in.InsertText(doc, "z")

	// Deletions are closed to new content: the insertion lands after.
	if del.NextSibling == nil || !annotate.IsAnnotation(del.NextSibling, annotate.KindInsertion) {
		t.Fatal("insertion did not land after the deletion")
	}
	if got := dom.TextContent(del); got != "xy" {
		t.Errorf("deletion content = %q, want untouched %q", got, "xy")
	}
	if got := doc.CleanHTML(); got != "<p>z</p>" {
		t.Errorf("CleanHTML() = %q, want %q", got, "<p>z</p>")
	}
}

func TestInsertBreak(t *testing.T) {
	doc, store, in, _ := newPipelineEnv(t, "<p></p>")
	doc.SetCaret(dom.Start(doc.Root().FirstChild))

	typeText(doc, in, "ab")
	in.InsertBreak(doc)
	typeText(doc, in, "cd")

	// The break has its own annotation, and typing after it starts a
	// fresh node: insertions never straddle a break.
	got := annotations(doc)
	if len(got) != 3 {
		t.Fatalf("annotations = %v, want 3 (text, break, text)", got)
	}
	if doc.CleanHTML() != "<p>ab<br/>cd</p>" {
		t.Errorf("CleanHTML() = %q, want %q", doc.CleanHTML(), "<p>ab<br/>cd</p>")
	}

	// All three fall into one batch, hence one record.
	recs := store.Records()
	if len(recs) != 1 {
		t.Fatalf("len(Records()) = %d, want 1", len(recs))
	}
	if recs[0].Summary != "ab\ncd" {
		t.Errorf("Summary = %q, want %q", recs[0].Summary, "ab\ncd")
	}
	if nodes := annotate.CollectByID(doc.Root(), recs[0].ID); len(nodes) != 3 {
		t.Errorf("nodes sharing the batch id = %d, want 3", len(nodes))
	}
}

func TestInsertAmendKeepsMultiNodeSummary(t *testing.T) {
	doc, store, in, _ := newPipelineEnv(t, "<p></p>")
	doc.SetCaret(dom.Start(doc.Root().FirstChild))

	typeText(doc, in, "ab")
	in.InsertBreak(doc)
	typeText(doc, in, "cd")

	// Splicing back into the first node must keep the whole change's
	// content in the record, not just the edited node's.
	first := annotate.CollectByID(doc.Root(), store.Records()[0].ID)[0]
	doc.SetCaret(dom.End(first.FirstChild))
	in.InsertText(doc, "X")

	if got := store.Records()[0].Summary; got != "abX\ncd" {
		t.Errorf("Summary = %q, want %q", got, "abX\ncd")
	}
}

func TestInsertNode(t *testing.T) {
	doc, store, in, _ := newPipelineEnv(t, "<p>ab</p>")
	text := doc.Root().FirstChild.FirstChild
	doc.SetCaret(dom.Position{Node: text, Offset: 1})

	img := dom.Element("img")
	dom.SetAttr(img, "src", "cat.png")
	if !in.InsertNode(doc, img) {
		t.Fatal("InsertNode() = false")
	}

	if !annotate.IsAnnotation(img.Parent, annotate.KindInsertion) {
		t.Error("inserted node not wrapped in an insertion annotation")
	}
	if got := doc.CleanHTML(); !strings.Contains(got, `<img src="cat.png"`) {
		t.Errorf("CleanHTML() = %q, want the image kept", got)
	}
	if store.PendingCount() != 1 {
		t.Errorf("PendingCount() = %d, want 1", store.PendingCount())
	}
}

func TestInsertRejectsBadInput(t *testing.T) {
	doc, _, in, _ := newPipelineEnv(t, "<p>ab</p>")

	if in.InsertText(doc, "") {
		t.Error("empty text reported as inserted")
	}
	doc.SetCaret(dom.Position{})
	if in.InsertText(doc, "x") {
		t.Error("zero caret reported as inserted")
	}
	if in.InsertBreak(doc) {
		t.Error("break inserted without a caret")
	}
	if in.InsertNode(doc, nil) {
		t.Error("nil node reported as inserted")
	}
}
