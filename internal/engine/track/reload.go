package track

import (
	"golang.org/x/net/html"

	"github.com/dshills/redline/internal/dom"
	"github.com/dshills/redline/internal/engine/annotate"
)

// Reload rebuilds the record table from the annotation nodes found in
// root's subtree. History restore replaces tree content wholesale, so
// any state keyed by live node references goes stale; this re-scan is
// what keeps the record table and the tree consistent. Records for ids
// no longer present in the tree are dropped; the open batch closes,
// since its annotation nodes no longer exist.
func (s *Store) Reload(root *html.Node) {
	s.mu.Lock()

	s.closeBatchLocked()
	s.records = make(map[string]*Record)
	s.order = nil

	for _, n := range annotate.CollectAll(root) {
		kind, _ := annotate.Classify(n)
		id := annotate.ChangeID(n)
		if id == "" {
			continue
		}
		if rec, ok := s.records[id]; ok {
			// Additional node for a known change; extend the summary.
			rec.Summary = clipSummary(rec.Summary + dom.TextContent(n))
			continue
		}
		s.records[id] = &Record{
			ID:       id,
			Kind:     kind,
			UserID:   dom.Attr(n, annotate.AttrUserID),
			UserName: dom.Attr(n, annotate.AttrUserName),
			Time:     annotate.CreatedAt(n),
			Summary:  clipSummary(dom.TextContent(n)),
		}
		s.order = append(s.order, id)
	}

	s.recountLocked()
	s.mu.Unlock()
	s.publish()
}
