package events

import "testing"

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		key  KeyDown
		want Category
	}{
		{"letter", KeyDown{Rune: 'a'}, CategoryPrintable},
		{"space", KeyDown{Rune: ' '}, CategoryPrintable},
		{"enter", KeyDown{Name: "Enter"}, CategoryPrintable},
		{"tab", KeyDown{Name: "Tab"}, CategoryPrintable},
		{"backspace", KeyDown{Name: "Backspace"}, CategoryDestructive},
		{"delete", KeyDown{Name: "Delete"}, CategoryDestructive},
		{"arrow", KeyDown{Name: "ArrowLeft"}, CategoryNavigation},
		{"home", KeyDown{Name: "Home"}, CategoryNavigation},
		{"ctrl chord", KeyDown{Rune: 'b', Modifiers: ModCtrl}, CategoryOther},
		{"meta chord", KeyDown{Rune: 'z', Modifiers: ModMeta}, CategoryOther},
		{"shift letter stays printable", KeyDown{Rune: 'A', Modifiers: ModShift}, CategoryPrintable},
		{"bare modifier", KeyDown{Name: "Shift"}, CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.Categorize(); got != tt.want {
				t.Errorf("Categorize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsShortcut(t *testing.T) {
	if !(KeyDown{Rune: 'b', Modifiers: ModCtrl}).IsShortcut() {
		t.Error("ctrl+b should be a shortcut")
	}
	if !(KeyDown{Rune: 'z', Modifiers: ModMeta | ModShift}).IsShortcut() {
		t.Error("meta+shift+z should be a shortcut")
	}
	if (KeyDown{Rune: 'a', Modifiers: ModShift}).IsShortcut() {
		t.Error("shift+a is not a shortcut")
	}
	if (KeyDown{Rune: 'a', Modifiers: ModAlt}).IsShortcut() {
		t.Error("alt+a is not a shortcut")
	}
}
