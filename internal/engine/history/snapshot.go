package history

// Snapshot is one captured document state: serialized content plus the
// selection as rune offsets into the content's visible text. Offsets
// are independent of live node identity.
type Snapshot struct {
	Content  string
	SelStart int
	SelEnd   int
}

// sameContent reports whether two snapshots hold identical content.
func (s Snapshot) sameContent(o Snapshot) bool {
	return s.Content == o.Content
}

// same reports whether two snapshots are fully identical.
func (s Snapshot) same(o Snapshot) bool {
	return s.Content == o.Content && s.SelStart == o.SelStart && s.SelEnd == o.SelEnd
}
