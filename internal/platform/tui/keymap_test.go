package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMapKeyToMenuAction(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		name string
		msg  tea.KeyMsg
		want MenuAction
	}{
		{"q quits", runeKey("q"), MenuActionQuit},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, MenuActionQuit},
		{"up arrow", tea.KeyMsg{Type: tea.KeyUp}, MenuActionUp},
		{"vim k", runeKey("k"), MenuActionUp},
		{"down arrow", tea.KeyMsg{Type: tea.KeyDown}, MenuActionDown},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, MenuActionSelect},
		{"space", tea.KeyMsg{Type: tea.KeySpace}, MenuActionSelect},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, MenuActionBack},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, MenuActionScoreboard},
		{"unbound", runeKey("z"), MenuActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := km.MapKeyToMenuAction(tt.msg); got != tt.want {
				t.Errorf("MapKeyToMenuAction(%q) = %v, expected %v", tt.msg.String(), got, tt.want)
			}
		})
	}
}

func TestTierIndex(t *testing.T) {
	tests := []struct {
		key  string
		idx  int
		isOK bool
	}{
		{"1", 0, true},
		{"3", 2, true},
		{"9", 8, true},
		{"0", 0, false},
		{"a", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			idx, ok := tierIndex(runeKey(tt.key))
			if ok != tt.isOK || (ok && idx != tt.idx) {
				t.Errorf("tierIndex(%q) = %d, %v", tt.key, idx, ok)
			}
		})
	}
}
