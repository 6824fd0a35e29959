package events

import (
	"unicode"

	"golang.org/x/net/html"
)

// Direction is the direction of a unit deletion.
type Direction uint8

const (
	// Backward deletes content before the caret (Backspace).
	Backward Direction = iota
	// Forward deletes content after the caret (Delete).
	Forward
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "backward"
}

// Unit is the granularity of a unit deletion.
type Unit uint8

const (
	// UnitCharacter deletes one grapheme cluster.
	UnitCharacter Unit = iota
	// UnitWord deletes a whitespace-delimited run, minimum length 1.
	UnitWord
)

// InsertText is the intent to insert text at the caret.
type InsertText struct {
	Text string
}

// InsertBreak is the intent to insert a line break at the caret.
type InsertBreak struct{}

// InsertNode is the intent to insert a non-text inline node (an image,
// say) at the caret.
type InsertNode struct {
	Node *html.Node
}

// InsertParagraph is the intent to split the current block (Enter).
type InsertParagraph struct{}

// DeleteContent is the intent to delete at the caret or over the
// current selection.
type DeleteContent struct {
	Direction Direction
	Unit      Unit
}

// Paste is the intent to paste content. Markup has already been
// reduced to plain text; rich structure is discarded by design.
type Paste struct {
	Text string
}

// Cut is the intent to remove the current selection onto the
// clipboard.
type Cut struct{}

// CompositionStart begins an IME composition sequence.
type CompositionStart struct{}

// CompositionUpdate carries the in-progress composition text.
type CompositionUpdate struct {
	Text string
}

// CompositionEnd commits a composition sequence as one insertion.
type CompositionEnd struct {
	Text string
}

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModMeta
)

// KeyDown is a raw key signal, used for history coalescing and for
// keys that are not content intents (navigation, shortcuts).
type KeyDown struct {
	Rune      rune
	Name      string // non-printable keys: "Backspace", "Delete", "ArrowLeft", ...
	Modifiers Modifier
}

// Category classifies a keystroke for history coalescing: consecutive
// strokes of one category coalesce into one snapshot; a category switch
// forces a snapshot boundary.
type Category uint8

const (
	// CategoryOther covers keys that neither modify content nor move
	// the caret.
	CategoryOther Category = iota
	// CategoryPrintable is a content-producing keystroke.
	CategoryPrintable
	// CategoryDestructive is a content-removing keystroke.
	CategoryDestructive
	// CategoryNavigation moves the caret without modifying content.
	CategoryNavigation
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryPrintable:
		return "printable"
	case CategoryDestructive:
		return "destructive"
	case CategoryNavigation:
		return "navigation"
	default:
		return "other"
	}
}

// navigationKeys are keys that move the caret without editing.
var navigationKeys = map[string]bool{
	"ArrowLeft":  true,
	"ArrowRight": true,
	"ArrowUp":    true,
	"ArrowDown":  true,
	"Home":       true,
	"End":        true,
	"PageUp":     true,
	"PageDown":   true,
}

// Categorize classifies a key event. Shortcut chords (Ctrl/Meta held)
// are CategoryOther: formatting and undo/redo shortcuts are not
// intercepted by the router and must not count as typing.
func (k KeyDown) Categorize() Category {
	if k.Modifiers&(ModCtrl|ModMeta) != 0 {
		return CategoryOther
	}
	switch k.Name {
	case "Backspace", "Delete":
		return CategoryDestructive
	case "Enter", "Tab":
		return CategoryPrintable
	}
	if navigationKeys[k.Name] {
		return CategoryNavigation
	}
	if k.Rune != 0 && unicode.IsGraphic(k.Rune) {
		return CategoryPrintable
	}
	return CategoryOther
}

// IsShortcut reports whether the key is a chord the router leaves to
// the host (formatting and undo/redo bindings stay host-owned).
func (k KeyDown) IsShortcut() bool {
	return k.Modifiers&(ModCtrl|ModMeta) != 0
}
