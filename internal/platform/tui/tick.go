package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
)

// TimerMsg carries a due engine timer callback into Update, so the callback
// runs on the same goroutine as every other engine call.
type TimerMsg func()

// waitForTimer returns a command that blocks until the loop has a due
// callback or is closed.
func waitForTimer(loop *puzzle.Loop) tea.Cmd {
	return func() tea.Msg {
		if loop == nil {
			return nil
		}
		select {
		case fn := <-loop.C():
			return TimerMsg(fn)
		case <-loop.Done():
			return nil
		}
	}
}
