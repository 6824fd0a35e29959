package dom

import (
	"testing"

	"golang.org/x/net/html"
)

func TestClassifiers(t *testing.T) {
	if !IsBlock(Element("p")) || !IsBlock(Element("li")) {
		t.Error("p and li should be block containers")
	}
	if IsBlock(Element("span")) {
		t.Error("span should not be a block container")
	}
	if !IsAtomic(Element("img")) || !IsAtomic(Element("br")) {
		t.Error("img and br should be atomic")
	}
	if !IsBreak(Element("br")) || IsBreak(Element("img")) {
		t.Error("IsBreak should match br only")
	}
	if !IsText(Text("x")) || IsText(Element("p")) {
		t.Error("IsText misclassifies")
	}
}

func TestAttrs(t *testing.T) {
	n := Element("ins")
	if HasAttr(n, "data-x") {
		t.Error("fresh element should have no attrs")
	}
	SetAttr(n, "data-x", "1")
	SetAttr(n, "data-x", "2")
	if got := Attr(n, "data-x"); got != "2" {
		t.Errorf("Attr() = %q, want %q", got, "2")
	}
	if len(n.Attr) != 1 {
		t.Errorf("SetAttr duplicated the attribute: %d entries", len(n.Attr))
	}
}

func TestUnwrap(t *testing.T) {
	parent := Element("p")
	wrapper := Element("ins")
	a, b := Text("a"), Text("b")
	wrapper.AppendChild(a)
	wrapper.AppendChild(b)
	parent.AppendChild(wrapper)

	first := Unwrap(wrapper)
	if first != a {
		t.Errorf("Unwrap() = %v, want first child", first)
	}
	if parent.FirstChild != a || a.NextSibling != b {
		t.Error("children not promoted in order")
	}
	if wrapper.Parent != nil {
		t.Error("wrapper still attached")
	}
}

func TestChildHelpers(t *testing.T) {
	parent := Element("p")
	a, b, c := Text("a"), Text("b"), Text("c")
	parent.AppendChild(a)
	parent.AppendChild(b)
	parent.AppendChild(c)

	if got := ChildCount(parent); got != 3 {
		t.Errorf("ChildCount() = %d, want 3", got)
	}
	if got := ChildIndex(b); got != 1 {
		t.Errorf("ChildIndex(b) = %d, want 1", got)
	}
	if got := ChildAt(parent, 2); got != c {
		t.Errorf("ChildAt(2) = %v, want c", got)
	}
	if got := ChildAt(parent, 3); got != nil {
		t.Errorf("ChildAt(3) = %v, want nil", got)
	}
	if got := ChildIndex(Text("detached")); got != -1 {
		t.Errorf("ChildIndex(detached) = %d, want -1", got)
	}
}

func TestInOrderTraversal(t *testing.T) {
	doc := NewDocument()
	if err := doc.LoadHTML("<p>a<b>b</b></p><p>c</p>"); err != nil {
		t.Fatalf("LoadHTML() error = %v", err)
	}
	root := doc.Root()

	var forward []string
	for n := NextInOrder(root, root); n != nil; n = NextInOrder(n, root) {
		if IsText(n) {
			forward = append(forward, n.Data)
		}
	}
	want := []string{"a", "b", "c"}
	if len(forward) != len(want) {
		t.Fatalf("forward texts = %v, want %v", forward, want)
	}
	for i := range want {
		if forward[i] != want[i] {
			t.Fatalf("forward texts = %v, want %v", forward, want)
		}
	}

	// Walk to the last node, then traverse back.
	last := root
	for n := NextInOrder(last, root); n != nil; n = NextInOrder(last, root) {
		last = n
	}
	var backward []string
	for n := last; n != nil; n = PrevInOrder(n, root) {
		if IsText(n) {
			backward = append(backward, n.Data)
		}
	}
	if len(backward) != 3 || backward[0] != "c" || backward[2] != "a" {
		t.Errorf("backward texts = %v, want [c b a]", backward)
	}
}

func TestWalkAbort(t *testing.T) {
	doc := NewDocument()
	if err := doc.LoadHTML("<p>a</p><p>b</p>"); err != nil {
		t.Fatalf("LoadHTML() error = %v", err)
	}
	visits := 0
	Walk(doc.Root(), func(n *html.Node) bool {
		visits++
		return !IsText(n) // stop at the first text node
	})
	if visits != 3 { // root, p, "a"
		t.Errorf("visits = %d, want 3", visits)
	}
}

func TestAncestor(t *testing.T) {
	doc := NewDocument()
	if err := doc.LoadHTML("<p><b>x</b></p>"); err != nil {
		t.Fatalf("LoadHTML() error = %v", err)
	}
	root := doc.Root()
	text := root.FirstChild.FirstChild.FirstChild

	if got := Ancestor(text, root.Parent, func(n *html.Node) bool { return IsElement(n, "p") }); got != root.FirstChild {
		t.Errorf("Ancestor(p) = %v, want the p element", got)
	}
	if got := Ancestor(text, root, func(n *html.Node) bool { return n == root }); got != nil {
		t.Error("Ancestor should exclude the stop node")
	}
}

func TestClone(t *testing.T) {
	doc := NewDocument()
	if err := doc.LoadHTML(`<p data-x="1">a<b>b</b></p>`); err != nil {
		t.Fatalf("LoadHTML() error = %v", err)
	}
	orig := doc.Root().FirstChild
	c := Clone(orig)

	if c == orig {
		t.Fatal("Clone returned the original")
	}
	if c.Parent != nil {
		t.Error("clone should be detached")
	}
	if Attr(c, "data-x") != "1" {
		t.Error("clone lost attributes")
	}
	if TextContent(c) != "ab" {
		t.Errorf("clone text = %q, want %q", TextContent(c), "ab")
	}
	c.FirstChild.Data = "changed"
	if orig.FirstChild.Data != "a" {
		t.Error("mutating the clone leaked into the original")
	}
}
