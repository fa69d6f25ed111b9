package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-puzzle/internal/core"
	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
)

// Model is the Bubble Tea model for one puzzle engine.
//
// The engine is not safe for concurrent use. Model runs every engine call,
// including timer callbacks delivered through the loop, inside Update.
type Model struct {
	engine     *puzzle.Engine
	loop       *puzzle.Loop
	screen     *core.Screen
	config     core.RuntimeConfig
	keys       KeyMap
	help       help.Model
	cursor     core.Position
	message    string
	quitting   bool
	backToMenu bool
	exitOnBack bool
}

// NewModel creates a puzzle model and starts its first game.
// The engine scheduler is always replaced by the model's own loop.
func NewModel(cfg puzzle.Config, rc core.RuntimeConfig) (Model, error) {
	if rc.Seed != 0 && cfg.Seed == 0 {
		cfg.Seed = rc.Seed
	}

	loop := puzzle.NewLoop()
	cfg.Scheduler = loop

	engine, err := puzzle.New(cfg)
	if err != nil {
		return Model{}, err
	}

	h := help.New()
	h.Width = rc.ScreenW

	return Model{
		engine: engine,
		loop:   loop,
		screen: core.NewScreen(rc.ScreenW, max(rc.ScreenH-1, 1)), // last row is help
		config: rc,
		keys:   DefaultKeyMap(),
		help:   h,
	}, nil
}

// Init starts listening for timer ticks.
func (m Model) Init() tea.Cmd {
	return waitForTimer(m.loop)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, max(msg.Height-1, 1))
		m.help.Width = msg.Width
		return m, nil

	case TimerMsg:
		msg()
		return m, waitForTimer(m.loop)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	size := m.engine.BoardSize()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.Close()
		m.backToMenu = true
		if m.exitOnBack {
			return m, tea.Quit
		}
		return m, nil

	case msg.String() == "ctrl+s":
		m.saveScreenshot()

	case key.Matches(msg, m.keys.Up):
		m.cursor.Row = core.Wrap(m.cursor.Row-1, size)
	case key.Matches(msg, m.keys.Down):
		m.cursor.Row = core.Wrap(m.cursor.Row+1, size)
	case key.Matches(msg, m.keys.Left):
		m.cursor.Col = core.Wrap(m.cursor.Col-1, size)
	case key.Matches(msg, m.keys.Right):
		m.cursor.Col = core.Wrap(m.cursor.Col+1, size)

	case key.Matches(msg, m.keys.Select):
		m.selectAt(m.cursor)

	case key.Matches(msg, m.keys.Cancel):
		m.engine.ClearSelection()

	case key.Matches(msg, m.keys.Difficulty):
		idx, _ := tierIndex(msg)
		tiers := m.engine.Difficulties()
		if idx >= len(tiers) {
			m.message = fmt.Sprintf("no difficulty #%d", idx+1)
			break
		}
		if err := m.engine.SetDifficulty(tiers[idx].Level); err != nil {
			m.message = err.Error()
			break
		}
		m.cursor = core.Pos(0, 0)

	case key.Matches(msg, m.keys.NextImage):
		m.cycleImage(1)
	case key.Matches(msg, m.keys.PrevImage):
		m.cycleImage(-1)

	case key.Matches(msg, m.keys.Reset):
		m.engine.Reset()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// handleMouse selects the tile under a left click.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	l := layoutBoard(m.engine.BoardSize(), m.screen.Width(), m.screen.Height())
	if pos, ok := l.cellAt(msg.X, msg.Y); ok {
		m.cursor = pos
		m.selectAt(pos)
	}
	return m, nil
}

func (m *Model) selectAt(pos core.Position) {
	switch m.engine.SelectAt(pos.Row, pos.Col) {
	case puzzle.SelectionArmed:
		m.message = "pick a tile to swap with"
	case puzzle.SelectionSwapped, puzzle.SelectionCancelled, puzzle.SelectionIgnored:
		m.message = ""
	}
}

func (m *Model) cycleImage(step int) {
	images := m.engine.Images()
	if len(images) == 0 {
		return
	}
	cur := 0
	for i, img := range images {
		if img == m.engine.CurrentImage() {
			cur = i
			break
		}
	}
	m.engine.SetImage(images[core.Wrap(cur+step, len(images))])
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.render()

	dir := filepath.Join(os.Getenv("HOME"), ".puzzle", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("puzzle_%s.txt", timestamp)

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(filepath.Join(dir, filename), []byte(m.screen.String()), 0o600)
}

func (m Model) render() {
	drawBoard(m.screen, boardView{
		snap:    m.engine.Snapshot(),
		cursor:  m.cursor,
		message: m.message,
	})
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.render()

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(m.help.View(m.keys))
}

// Close abandons the current game and shuts down its timer loop.
func (m Model) Close() {
	m.engine.Abandon()
	m.loop.Close()
}

// Engine returns the engine driven by this model.
func (m Model) Engine() *puzzle.Engine {
	return m.engine
}

// Cursor returns the keyboard cursor position.
func (m Model) Cursor() core.Position {
	return m.cursor
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run starts a Bubble Tea program that plays a single puzzle.
func Run(cfg puzzle.Config, rc core.RuntimeConfig) error {
	model, err := NewModel(cfg, rc)
	if err != nil {
		return err
	}
	model.exitOnBack = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Click to pick and swap tiles
	)

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	}
	return err
}
