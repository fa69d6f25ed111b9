package tui

import (
	"fmt"
	"path"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-puzzle/internal/core"
	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := 0; y < s.Height(); y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}

		// Group consecutive cells with the same color for efficiency
		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			// Collect consecutive cells with same color
			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			// Apply style to the run
			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// Board layout limits, in terminal cells.
const (
	headerRows  = 3 // title, status, gap
	footerRows  = 3 // gap, message, help
	minTileW    = 5
	minTileH    = 3
	maxTileW    = 14
	maxTileH    = 6
	boardMargin = 2
)

// rowColors tint tiles by their home row so a scrambled board still shows
// which band of the picture a tile belongs to.
var rowColors = []core.Color{
	core.ColorCyan,
	core.ColorMagenta,
	core.ColorBlue,
	core.ColorOrange,
	core.ColorBrightGreen,
	core.ColorBrightMagenta,
	core.ColorBrightBlue,
	core.ColorYellow,
}

// boardLayout places an n x n board on a screen.
type boardLayout struct {
	size         int
	originX      int
	originY      int
	tileW, tileH int
}

// layoutBoard fits a board of the given size into a w x h screen.
func layoutBoard(size, w, h int) boardLayout {
	l := boardLayout{size: size, tileW: minTileW, tileH: minTileH}
	if size <= 0 {
		return l
	}

	availW := w - 2*boardMargin
	availH := h - headerRows - footerRows
	l.tileW = core.Clamp(availW/size, minTileW, maxTileW)
	l.tileH = core.Clamp(availH/size, minTileH, maxTileH)

	l.originX = (w - l.tileW*size) / 2
	if l.originX < 0 {
		l.originX = 0
	}
	l.originY = headerRows
	return l
}

// tileRect returns the top-left corner of the cell at pos.
func (l boardLayout) tileRect(pos core.Position) (x, y int) {
	return l.originX + pos.Col*l.tileW, l.originY + pos.Row*l.tileH
}

// cellAt maps a screen coordinate to a board cell.
func (l boardLayout) cellAt(x, y int) (core.Position, bool) {
	if x < l.originX || y < l.originY {
		return core.Position{}, false
	}
	pos := core.Pos((y-l.originY)/l.tileH, (x-l.originX)/l.tileW)
	return pos, pos.In(l.size)
}

// boardView is everything drawBoard needs from the model.
type boardView struct {
	snap    puzzle.Snapshot
	cursor  core.Position
	message string
}

// drawBoard renders the puzzle into the screen buffer.
func drawBoard(s *core.Screen, v boardView) {
	s.Clear()
	snap := v.snap

	title := fmt.Sprintf("SWAP PUZZLE  %s  %s", snap.Difficulty.Label, path.Base(snap.Image))
	s.DrawTextCentered(0, title, core.ColorBrightWhite)

	total := len(snap.Board.Tiles)
	status := fmt.Sprintf("Moves: %d   Time: %s   In place: %d/%d",
		snap.Moves, FormatElapsed(snap.Elapsed), snap.InPlace, total)
	s.DrawTextCentered(1, status, core.ColorGray)

	l := layoutBoard(snap.Board.Size, s.Width(), s.Height())
	for _, t := range snap.Board.Tiles {
		x, y := l.tileRect(t.Current)

		color := rowColors[t.Correct.Row%len(rowColors)]
		switch {
		case snap.Pending != nil && *snap.Pending == t.ID:
			color = core.ColorBrightYellow
		case snap.Completed:
			color = core.ColorBrightGreen
		case t.InPlace():
			color = core.ColorGreen
		}
		s.DrawBox(x, y, l.tileW, l.tileH, color)

		label := fmt.Sprintf("%d", t.Index+1)
		lx := x + (l.tileW-len(label))/2
		ly := y + l.tileH/2
		s.DrawTextColored(lx, ly, label, color)

		if l.tileH >= 5 && l.tileW >= 11 {
			region := fmt.Sprintf("%.0f%%,%.0f%%", t.Image.OffsetX, t.Image.OffsetY)
			s.DrawTextColored(x+(l.tileW-len(region))/2, ly+1, region, core.ColorGray)
		}
	}

	if !snap.Completed && v.cursor.In(snap.Board.Size) {
		x, y := l.tileRect(v.cursor)
		s.SetColored(x, y, '╔', core.ColorBrightWhite)
		s.SetColored(x+l.tileW-1, y, '╗', core.ColorBrightWhite)
		s.SetColored(x, y+l.tileH-1, '╚', core.ColorBrightWhite)
		s.SetColored(x+l.tileW-1, y+l.tileH-1, '╝', core.ColorBrightWhite)
	}

	msgY := l.originY + l.tileH*snap.Board.Size + 1
	switch snap.State {
	case puzzle.StateCompleted:
		s.DrawTextCentered(msgY, fmt.Sprintf("SOLVED in %d moves, %s!  Press r for a new game.",
			snap.Moves, FormatElapsed(snap.Elapsed)), core.ColorBrightGreen)
	case puzzle.StateAbandoned:
		s.DrawTextCentered(msgY, "Game abandoned. Press r for a new game.", core.ColorRed)
	default:
		if v.message != "" {
			s.DrawTextCentered(msgY, v.message, core.ColorYellow)
		}
	}
}

// FormatElapsed renders seconds as m:ss.
func FormatElapsed(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
