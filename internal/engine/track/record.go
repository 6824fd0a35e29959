package track

import (
	"time"

	"github.com/dshills/redline/internal/engine/annotate"
)

// summaryLimit bounds the stored content summary of a record.
const summaryLimit = 120

// Record is the logical record of one tracked change, possibly spanning
// several annotation nodes accumulated over its batch window.
type Record struct {
	ID       string
	Kind     annotate.Kind
	UserID   string
	UserName string
	Time     time.Time
	Summary  string
	Accepted bool
	Rejected bool
}

// Resolved reports whether the record has been accepted or rejected.
// Resolved records are immutable.
func (r Record) Resolved() bool {
	return r.Accepted || r.Rejected
}

// clipSummary truncates s to the stored summary limit.
func clipSummary(s string) string {
	runes := []rune(s)
	if len(runes) <= summaryLimit {
		return s
	}
	return string(runes[:summaryLimit])
}
