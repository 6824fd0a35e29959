package dom

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/net/html"
)

// runeIndex converts a rune offset into a byte offset within s.
// Offsets past the end clamp to len(s).
func runeIndex(s string, runes int) int {
	if runes <= 0 {
		return 0
	}
	i := 0
	for r := 0; r < runes; r++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size == 0 {
			return len(s)
		}
		i += size
	}
	return i
}

// TextContent returns the concatenated text of n's subtree.
func TextContent(n *html.Node) string {
	var b strings.Builder
	Walk(n, func(c *html.Node) bool {
		if IsText(c) {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// SpliceText inserts s into text node n at the given rune offset and
// returns the rune offset just past the inserted text.
func SpliceText(n *html.Node, offset int, s string) int {
	i := runeIndex(n.Data, offset)
	n.Data = n.Data[:i] + s + n.Data[i:]
	return offset + utf8.RuneCountInString(s)
}

// CutText removes runes [start,end) from text node n and returns the
// removed text.
func CutText(n *html.Node, start, end int) string {
	i := runeIndex(n.Data, start)
	j := runeIndex(n.Data, end)
	cut := n.Data[i:j]
	n.Data = n.Data[:i] + n.Data[j:]
	return cut
}

// SplitText splits text node n at the given rune offset. The original
// node keeps the leading runes; a new sibling carries the rest. Returns
// the new trailing node, or nil when the offset is at either edge (no
// split needed).
func SplitText(n *html.Node, offset int) *html.Node {
	i := runeIndex(n.Data, offset)
	if i == 0 || i == len(n.Data) {
		return nil
	}
	rest := Text(n.Data[i:])
	n.Data = n.Data[:i]
	InsertAfter(n.Parent, n, rest)
	return rest
}

// PrevGrapheme returns the rune length of the grapheme cluster ending
// at rune offset in the text node, or 0 at the start.
func PrevGrapheme(n *html.Node, offset int) int {
	i := runeIndex(n.Data, offset)
	if i == 0 {
		return 0
	}
	// Scan clusters from the start; the one containing i-1 ends at i.
	g := uniseg.NewGraphemes(n.Data[:i])
	last := ""
	for g.Next() {
		last = g.Str()
	}
	return utf8.RuneCountInString(last)
}

// NextGrapheme returns the rune length of the grapheme cluster starting
// at rune offset in the text node, or 0 at the end.
func NextGrapheme(n *html.Node, offset int) int {
	i := runeIndex(n.Data, offset)
	if i >= len(n.Data) {
		return 0
	}
	g := uniseg.NewGraphemes(n.Data[i:])
	if !g.Next() {
		return 0
	}
	return utf8.RuneCountInString(g.Str())
}

// PrevWordRun returns the rune length of the whitespace-delimited run
// ending at rune offset: trailing whitespace plus the word before it.
// Minimum length 1 when any text precedes the offset.
func PrevWordRun(n *html.Node, offset int) int {
	i := runeIndex(n.Data, offset)
	if i == 0 {
		return 0
	}
	s := n.Data[:i]
	trimmed := strings.TrimRightFunc(s, isSpace)
	if trimmed != s {
		// Ate whitespace; also take the word before it, if any.
		s = trimmed
	}
	j := len(s)
	for j > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:j])
		if isSpace(r) {
			break
		}
		j -= size
	}
	run := utf8.RuneCountInString(n.Data[j:i])
	if run == 0 {
		run = 1
	}
	return run
}

// NextWordRun mirrors PrevWordRun for forward deletion.
func NextWordRun(n *html.Node, offset int) int {
	i := runeIndex(n.Data, offset)
	if i >= len(n.Data) {
		return 0
	}
	s := n.Data[i:]
	rest := strings.TrimLeftFunc(s, isSpace)
	j := len(s) - len(rest)
	for j < len(s) {
		r, size := utf8.DecodeRuneInString(s[j:])
		if isSpace(r) {
			break
		}
		j += size
	}
	run := utf8.RuneCountInString(s[:j])
	if run == 0 {
		run = 1
	}
	return run
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v', '\u00a0':
		return true
	}
	return false
}

// FlattenOffset converts a live position into a rune offset over the
// document's text content. Atomic elements count as one character.
// Returns -1 when p does not resolve inside root.
func FlattenOffset(root *html.Node, p Position) int {
	if p.IsZero() || !Contains(root, p.Node) {
		return -1
	}
	offset := 0
	found := false
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n == p.Node {
			if IsText(n) {
				offset += min(p.Offset, utf8.RuneCountInString(n.Data))
			} else {
				for c, i := n.FirstChild, 0; c != nil && i < p.Offset; c, i = c.NextSibling, i+1 {
					offset += visibleLen(c)
				}
			}
			found = true
			return false
		}
		if IsText(n) {
			offset += utf8.RuneCountInString(n.Data)
			return true
		}
		if IsAtomic(n) {
			offset++
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)
	if !found {
		return -1
	}
	return offset
}

// visibleLen returns the character length of n's subtree under the
// FlattenOffset counting rules.
func visibleLen(n *html.Node) int {
	if IsText(n) {
		return utf8.RuneCountInString(n.Data)
	}
	if IsAtomic(n) {
		return 1
	}
	total := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		total += visibleLen(c)
	}
	return total
}

// ResolveOffset converts a rune offset back into a live position in
// root's subtree. Offsets past the end of content degrade to the end of
// the document rather than failing.
func ResolveOffset(root *html.Node, offset int) Position {
	if offset < 0 {
		offset = 0
	}
	var pos Position
	remaining := offset
	found := false
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if IsText(n) {
			runes := utf8.RuneCountInString(n.Data)
			if remaining <= runes {
				pos = Position{Node: n, Offset: remaining}
				found = true
				return false
			}
			remaining -= runes
			return true
		}
		if IsAtomic(n) {
			if remaining == 0 {
				pos = Before(n)
				found = true
				return false
			}
			remaining--
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)
	if !found {
		return End(root)
	}
	return pos
}
