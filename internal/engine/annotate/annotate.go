package annotate

import (
	"time"

	"golang.org/x/net/html"

	"github.com/dshills/redline/internal/dom"
)

// Kind classifies an annotation.
type Kind uint8

const (
	// KindInsertion marks content added while tracking was on.
	KindInsertion Kind = iota
	// KindDeletion marks content removed while tracking was on.
	KindDeletion
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInsertion:
		return "insertion"
	case KindDeletion:
		return "deletion"
	default:
		return "unknown"
	}
}

// Tag returns the element tag used for the kind.
func (k Kind) Tag() string {
	if k == KindDeletion {
		return "del"
	}
	return "ins"
}

// Attribute names carried by annotation nodes. The change id attribute
// is defined in dom so serialization can strip annotations without a
// dependency on this package.
const (
	AttrChangeID     = dom.AttrChangeID
	AttrUserID       = "data-user-id"
	AttrUserName     = "data-user-name"
	AttrSessionID    = "data-session-id"
	AttrTime         = "data-time"
	AttrLastModified = "data-last-modified"
)

// timeLayout is the timestamp format stored in annotation attributes.
const timeLayout = time.RFC3339

// Create builds a detached annotation node attributed to ctx.
func Create(kind Kind, changeID string, ctx Context, now time.Time) *html.Node {
	n := dom.Element(kind.Tag())
	stamp := now.Format(timeLayout)
	dom.SetAttr(n, AttrChangeID, changeID)
	dom.SetAttr(n, AttrUserID, ctx.UserID)
	dom.SetAttr(n, AttrUserName, ctx.UserName)
	dom.SetAttr(n, AttrSessionID, ctx.SessionID)
	dom.SetAttr(n, AttrTime, stamp)
	dom.SetAttr(n, AttrLastModified, stamp)
	return n
}

// Classify reports whether n is an annotation node and of which kind.
func Classify(n *html.Node) (Kind, bool) {
	if n == nil || n.Type != html.ElementNode || !dom.HasAttr(n, AttrChangeID) {
		return 0, false
	}
	switch n.Data {
	case "ins":
		return KindInsertion, true
	case "del":
		return KindDeletion, true
	}
	return 0, false
}

// IsAnnotation reports whether n is an annotation of the given kind.
func IsAnnotation(n *html.Node, kind Kind) bool {
	k, ok := Classify(n)
	return ok && k == kind
}

// ChangeID returns the change id carried by an annotation node.
func ChangeID(n *html.Node) string {
	return dom.Attr(n, AttrChangeID)
}

// CreatedAt returns the creation timestamp, or the zero time when the
// attribute is missing or malformed.
func CreatedAt(n *html.Node) time.Time {
	t, err := time.Parse(timeLayout, dom.Attr(n, AttrTime))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Touch updates the last-modified timestamp on an annotation node.
func Touch(n *html.Node, now time.Time) {
	dom.SetAttr(n, AttrLastModified, now.Format(timeLayout))
}

// OwnedBy reports whether n was created in ctx's session. Ownership
// requires both the user id and the session id to match; a new session
// makes the same user's earlier annotations non-mergeable.
func OwnedBy(n *html.Node, ctx Context) bool {
	return dom.Attr(n, AttrUserID) == ctx.UserID &&
		dom.Attr(n, AttrSessionID) == ctx.SessionID
}

// FindEnclosing returns the nearest ancestor annotation of the given
// kind containing p, or nil. The search stops at root.
func FindEnclosing(root *html.Node, p dom.Position, kind Kind) *html.Node {
	if p.IsZero() {
		return nil
	}
	return dom.Ancestor(p.Node, root.Parent, func(n *html.Node) bool {
		return IsAnnotation(n, kind)
	})
}

// FindAdjacent returns a same-session annotation of the given kind
// immediately touching the collapsed position p, along with whether it
// precedes p. Merging across a line break is forbidden: an annotation
// ending (when before p) or starting (when after p) with a break
// element is not returned.
func FindAdjacent(p dom.Position, kind Kind, ctx Context) (n *html.Node, before bool) {
	if prev := adjacentBefore(p); prev != nil &&
		IsAnnotation(prev, kind) && OwnedBy(prev, ctx) && !EndsWithBreak(prev) {
		return prev, true
	}
	if next := adjacentAfter(p); next != nil &&
		IsAnnotation(next, kind) && OwnedBy(next, ctx) && !StartsWithBreak(next) {
		return next, false
	}
	return nil, false
}

// adjacentBefore returns the annotation candidate whose end touches p.
func adjacentBefore(p dom.Position) *html.Node {
	if p.IsZero() {
		return nil
	}
	if dom.IsText(p.Node) {
		if p.Offset > 0 {
			return nil
		}
		return p.Node.PrevSibling
	}
	return dom.NodeBefore(p)
}

// adjacentAfter returns the annotation candidate whose start touches p.
func adjacentAfter(p dom.Position) *html.Node {
	if p.IsZero() {
		return nil
	}
	if dom.IsText(p.Node) {
		if p.Offset < dom.End(p.Node).Offset {
			return nil
		}
		return p.Node.NextSibling
	}
	return dom.NodeAfter(p)
}

// EndsWithBreak reports whether n's last meaningful child is a break or
// block element.
func EndsWithBreak(n *html.Node) bool {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if dom.IsWhitespace(c) {
			continue
		}
		return dom.IsBreak(c) || dom.IsBlock(c)
	}
	return false
}

// StartsWithBreak reports whether n's first meaningful child is a break
// or block element.
func StartsWithBreak(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsWhitespace(c) {
			continue
		}
		return dom.IsBreak(c) || dom.IsBlock(c)
	}
	return false
}

// IsEmpty reports whether an annotation has no content left: no text
// and no break placeholder. Callers remove emptied annotations.
func IsEmpty(n *html.Node) bool {
	empty := true
	dom.Walk(n, func(c *html.Node) bool {
		if c == n {
			return true
		}
		if dom.IsText(c) && c.Data != "" {
			empty = false
			return false
		}
		if c.Type == html.ElementNode {
			empty = false
			return false
		}
		return true
	})
	return empty
}

// CollectByID returns every annotation node in root's subtree carrying
// the given change id, in document order.
func CollectByID(root *html.Node, changeID string) []*html.Node {
	var nodes []*html.Node
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		if _, ok := Classify(n); ok && ChangeID(n) == changeID {
			nodes = append(nodes, n)
			// Same-kind annotations never nest; no need to descend.
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(root)
	return nodes
}

// CollectAll returns every annotation node in root's subtree in
// document order, including annotations nested inside annotations of
// the other kind.
func CollectAll(root *html.Node) []*html.Node {
	var nodes []*html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if _, ok := Classify(n); ok {
			nodes = append(nodes, n)
		}
		return true
	})
	return nodes
}
