package dom

import "testing"

func TestTextContent(t *testing.T) {
	nodes, err := ParseFragment("<p>hello <b>world</b></p>")
	if err != nil {
		t.Fatalf("ParseFragment() error = %v", err)
	}
	if got := TextContent(nodes[0]); got != "hello world" {
		t.Errorf("TextContent() = %q, want %q", got, "hello world")
	}
}

func TestSpliceText(t *testing.T) {
	n := Text("héllo")
	off := SpliceText(n, 2, "XY")
	if n.Data != "héXYllo" {
		t.Errorf("Data = %q, want %q", n.Data, "héXYllo")
	}
	if off != 4 {
		t.Errorf("offset = %d, want 4", off)
	}
}

func TestCutText(t *testing.T) {
	n := Text("héllo")
	cut := CutText(n, 1, 3)
	if cut != "él" {
		t.Errorf("cut = %q, want %q", cut, "él")
	}
	if n.Data != "hlo" {
		t.Errorf("Data = %q, want %q", n.Data, "hlo")
	}
}

func TestSplitText(t *testing.T) {
	t.Run("middle", func(t *testing.T) {
		parent := Element("p")
		n := Text("hello")
		parent.AppendChild(n)
		rest := SplitText(n, 2)
		if rest == nil {
			t.Fatal("SplitText() = nil, want trailing node")
		}
		if n.Data != "he" || rest.Data != "llo" {
			t.Errorf("split = %q + %q, want %q + %q", n.Data, rest.Data, "he", "llo")
		}
		if n.NextSibling != rest {
			t.Error("trailing node is not the next sibling")
		}
	})

	t.Run("edges", func(t *testing.T) {
		parent := Element("p")
		n := Text("hello")
		parent.AppendChild(n)
		if rest := SplitText(n, 0); rest != nil {
			t.Errorf("SplitText(0) = %v, want nil", rest)
		}
		if rest := SplitText(n, 5); rest != nil {
			t.Errorf("SplitText(5) = %v, want nil", rest)
		}
	})
}

func TestGraphemes(t *testing.T) {
	// "abé" with a decomposed é: the combining mark belongs to the
	// cluster before it.
	n := Text("abé")

	if got := PrevGrapheme(n, 4); got != 2 {
		t.Errorf("PrevGrapheme(end) = %d, want 2", got)
	}
	if got := PrevGrapheme(n, 2); got != 1 {
		t.Errorf("PrevGrapheme(2) = %d, want 1", got)
	}
	if got := PrevGrapheme(n, 0); got != 0 {
		t.Errorf("PrevGrapheme(0) = %d, want 0", got)
	}
	if got := NextGrapheme(n, 2); got != 2 {
		t.Errorf("NextGrapheme(2) = %d, want 2", got)
	}
	if got := NextGrapheme(n, 4); got != 0 {
		t.Errorf("NextGrapheme(end) = %d, want 0", got)
	}
}

func TestWordRuns(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
		prev   int
		next   int
	}{
		{"word boundary", "hello world", 11, 5, 0},
		{"trailing space eats word too", "hello ", 6, 6, 0},
		{"mid word", "hello world", 8, 2, 3},
		{"start", "hello", 0, 0, 5},
		{"leading space forward", " world", 0, 0, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Text(tt.text)
			if got := PrevWordRun(n, tt.offset); got != tt.prev {
				t.Errorf("PrevWordRun(%q, %d) = %d, want %d", tt.text, tt.offset, got, tt.prev)
			}
			if got := NextWordRun(n, tt.offset); got != tt.next {
				t.Errorf("NextWordRun(%q, %d) = %d, want %d", tt.text, tt.offset, got, tt.next)
			}
		})
	}
}

func TestFlattenResolveRoundTrip(t *testing.T) {
	doc := NewDocument()
	if err := doc.LoadHTML(`<p>ab<img src="x">cd</p><p>ef</p>`); err != nil {
		t.Fatalf("LoadHTML() error = %v", err)
	}
	root := doc.Root()

	// Content length: 2 runes + atomic img (1) + 2 + 2.
	for offset := 0; offset <= 7; offset++ {
		p := ResolveOffset(root, offset)
		if p.IsZero() {
			t.Fatalf("ResolveOffset(%d) is zero", offset)
		}
		if got := FlattenOffset(root, p); got != offset {
			t.Errorf("round trip %d -> %d", offset, got)
		}
	}
}

func TestFlattenOffsetOutside(t *testing.T) {
	doc := NewDocument()
	if err := doc.LoadHTML("<p>ab</p>"); err != nil {
		t.Fatalf("LoadHTML() error = %v", err)
	}
	stray := Text("x")
	if got := FlattenOffset(doc.Root(), Position{Node: stray, Offset: 0}); got != -1 {
		t.Errorf("FlattenOffset(detached) = %d, want -1", got)
	}
}

func TestResolveOffsetPastEnd(t *testing.T) {
	doc := NewDocument()
	if err := doc.LoadHTML("<p>ab</p>"); err != nil {
		t.Fatalf("LoadHTML() error = %v", err)
	}
	p := ResolveOffset(doc.Root(), 99)
	if p.IsZero() {
		t.Fatal("ResolveOffset(past end) is zero, want end of document")
	}
	if p != End(doc.Root()) {
		t.Errorf("ResolveOffset(past end) = %+v, want end of root", p)
	}
}
