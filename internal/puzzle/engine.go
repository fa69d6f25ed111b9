package puzzle

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-puzzle/internal/observe"
)

// Selection is the outcome of a SelectPiece call.
type Selection int

const (
	SelectionIgnored   Selection = iota // stale tile or finished session
	SelectionArmed                      // tile is now pending
	SelectionCancelled                  // pending tile selected again
	SelectionSwapped                    // pending tile swapped with the given one
)

// String returns a human-readable name for the selection outcome.
func (s Selection) String() string {
	switch s {
	case SelectionIgnored:
		return "ignored"
	case SelectionArmed:
		return "armed"
	case SelectionCancelled:
		return "cancelled"
	case SelectionSwapped:
		return "swapped"
	default:
		return "unknown"
	}
}

// Config configures a new Engine.
type Config struct {
	// Seed seeds the shuffle RNG. 0 means seed from the current time.
	Seed int64

	// Images is the catalog of selectable image identifiers.
	Images []string

	// Image is the initially selected image. Defaults to Images[0].
	Image string

	// Level is the initial difficulty. Defaults to the first tier.
	Level Level

	// Difficulties overrides the built-in tier table.
	Difficulties []Difficulty

	// Scheduler drives the one-second timer. Nil disables the timer.
	Scheduler Scheduler

	// Reporter receives the record of every completed session.
	Reporter Reporter

	// Preloader warms images on SetImage.
	Preloader Preloader

	// Logger receives engine diagnostics. Nil discards them.
	Logger *log.Logger
}

// session is the state of one play-through. It is replaced wholesale on
// every reset and owns the only handle to its timer.
type session struct {
	id         string
	board      Board
	moves      int
	elapsed    int
	completed  bool
	abandoned  bool
	reported   bool
	hasPending bool
	pending    TileID
	timer      Task
}

func (s *session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Engine owns the board state of the active session and publishes every
// change on its state streams.
//
// Engine is not safe for concurrent use. All calls, including the timer
// callbacks delivered by the Scheduler, must run on one goroutine.
type Engine struct {
	rng       *rand.Rand
	tiers     []Difficulty
	images    []string
	image     string
	level     Level
	nextID    TileID
	sched     Scheduler
	reporter  Reporter
	preloader Preloader
	logger    *log.Logger

	cur *session

	board      *observe.Subject[Board]
	completed  *observe.Subject[bool]
	moves      *observe.Subject[int]
	elapsed    *observe.Subject[int]
	difficulty *observe.Subject[Level]
}

// New creates an engine and starts its first session.
func New(cfg Config) (*Engine, error) {
	tiers := cfg.Difficulties
	if len(tiers) == 0 {
		tiers = Difficulties
	}
	if err := ValidateDifficulties(tiers); err != nil {
		return nil, err
	}

	level := cfg.Level
	if level == "" {
		level = tiers[0].Level
	}
	if _, ok := findDifficulty(tiers, level); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}

	image := cfg.Image
	if image == "" && len(cfg.Images) > 0 {
		image = cfg.Images[0]
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	e := &Engine{
		rng:        rand.New(rand.NewSource(seed)),
		tiers:      append([]Difficulty(nil), tiers...),
		images:     append([]string(nil), cfg.Images...),
		image:      image,
		level:      level,
		sched:      cfg.Scheduler,
		reporter:   cfg.Reporter,
		preloader:  cfg.Preloader,
		logger:     logger,
		board:      observe.NewSubject(Board{}),
		completed:  observe.NewSubject(false),
		moves:      observe.NewSubject(0),
		elapsed:    observe.NewSubject(0),
		difficulty: observe.NewSubject(level),
	}

	e.initializeGame()
	return e, nil
}

// MustNew is like New but panics on configuration errors.
func MustNew(cfg Config) *Engine {
	e, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return e
}

// Reset discards the current session and starts a new one with the same
// image and difficulty.
func (e *Engine) Reset() {
	e.initializeGame()
}

// initializeGame tears down the current session and builds a fresh shuffled board.
func (e *Engine) initializeGame() {
	if e.cur != nil {
		e.cur.stopTimer()
	}

	d := e.CurrentDifficulty()
	b := newBoard(d.BoardSize, e.image, e.nextID)
	e.nextID += TileID(len(b.Tiles))

	b.shuffle(e.rng)
	if b.ensureNotSolved() {
		e.logger.Debug("shuffle reproduced solved board, swapped first two tiles")
	}

	s := &session{
		id:        uuid.NewString(),
		board:     b,
		completed: b.Solved(),
	}
	e.cur = s

	e.board.Publish(s.board.Clone())
	e.completed.Publish(s.completed)
	e.moves.Publish(0)
	e.elapsed.Publish(0)

	e.logger.Debug("session started",
		"session", s.id,
		"level", d.Level,
		"size", d.BoardSize,
		"image", e.image,
	)

	if s.completed {
		// Single-tile boards are born solved.
		e.finish(s)
		return
	}
	s.timer = e.startTimer(s)
}

func (e *Engine) startTimer(s *session) Task {
	if e.sched == nil {
		return stoppedTask{}
	}
	return e.sched.Every(time.Second, func() {
		// A superseded session's tick must never touch the new session.
		if e.cur != s || s.completed || s.abandoned {
			return
		}
		s.elapsed++
		e.elapsed.Publish(s.elapsed)
	})
}

// SelectPiece feeds a player selection into the pairing state machine:
// the first selection arms a tile, selecting it again cancels, selecting a
// different tile swaps the two.
func (e *Engine) SelectPiece(t Tile) Selection {
	s := e.cur
	if s.completed || s.abandoned {
		return SelectionIgnored
	}
	if s.board.indexOf(t.ID) < 0 {
		return SelectionIgnored
	}

	switch {
	case !s.hasPending:
		s.pending = t.ID
		s.hasPending = true
		return SelectionArmed
	case s.pending != t.ID:
		first := s.pending
		s.hasPending = false
		e.swapPieces(s, first, t.ID)
		return SelectionSwapped
	default:
		s.hasPending = false
		return SelectionCancelled
	}
}

// SelectAt selects the tile currently at (row, col).
func (e *Engine) SelectAt(row, col int) Selection {
	t, ok := e.cur.board.PieceAt(row, col)
	if !ok {
		return SelectionIgnored
	}
	return e.SelectPiece(t)
}

// ClearSelection drops the pending selection, if any.
func (e *Engine) ClearSelection() {
	e.cur.hasPending = false
}

func (e *Engine) swapPieces(s *session, a, b TileID) {
	if !s.board.swap(a, b) {
		return
	}
	s.moves++
	done := e.checkCompletion(s)

	// State is fully updated before any observer runs.
	e.board.Publish(s.board.Clone())
	e.moves.Publish(s.moves)
	e.completed.Publish(s.completed)

	if done {
		e.finish(s)
	}
}

// checkCompletion recomputes the completion flag and reports whether this
// call moved the session into the terminal completed state.
func (e *Engine) checkCompletion(s *session) bool {
	if s.completed {
		return false
	}
	s.completed = s.board.Solved()
	return s.completed
}

// finish ends a completed session: the timer stops and the record is
// submitted exactly once.
func (e *Engine) finish(s *session) {
	s.stopTimer()
	e.submitFinal(s, true)
}

func (e *Engine) submitFinal(s *session, completed bool) {
	if !completed || s.reported {
		return
	}
	s.reported = true

	rec := Record{
		GameType:    GameType,
		Level:       e.level.ScoreLevel(),
		Movements:   s.moves,
		Time:        s.elapsed,
		SessionID:   s.id,
		Image:       e.image,
		CompletedAt: time.Now(),
	}
	e.logger.Info("puzzle completed",
		"session", s.id,
		"level", rec.Level,
		"moves", rec.Movements,
		"time", rec.Time,
	)
	if e.reporter != nil {
		e.reporter.Submit(rec)
	}
}

// Abandon stops the timer of the current session. Incomplete sessions
// produce no score record. Further selections are ignored until a reset.
func (e *Engine) Abandon() {
	s := e.cur
	s.stopTimer()
	s.hasPending = false
	if !s.completed {
		s.abandoned = true
	}
	e.submitFinal(s, false)
}

// SetDifficulty switches tier and starts a new session. Progress is discarded.
func (e *Engine) SetDifficulty(level Level) error {
	if _, ok := findDifficulty(e.tiers, level); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}
	e.level = level
	e.cur.hasPending = false
	e.initializeGame()
	// Published last so observers see the new board already in place.
	e.difficulty.Publish(level)
	return nil
}

// SetImage selects a new source image and starts a new session.
// Preloading is best effort and never delays the new session.
func (e *Engine) SetImage(ref string) {
	e.image = ref
	if e.preloader != nil {
		e.preloader.Preload(ref)
	}
	e.initializeGame()
}

// PieceAt returns the tile currently at (row, col).
func (e *Engine) PieceAt(row, col int) (Tile, bool) {
	return e.cur.board.PieceAt(row, col)
}

// BoardSize returns the dimension of the current board.
func (e *Engine) BoardSize() int {
	return e.cur.board.Size
}

// IsSelected reports whether t is the pending selection.
func (e *Engine) IsSelected(t Tile) bool {
	return e.cur.hasPending && e.cur.pending == t.ID
}

// Selected returns the pending tile, if any.
func (e *Engine) Selected() (Tile, bool) {
	if !e.cur.hasPending {
		return Tile{}, false
	}
	return e.cur.board.Tile(e.cur.pending)
}

// Images returns the selectable image catalog.
func (e *Engine) Images() []string {
	return append([]string(nil), e.images...)
}

// CurrentImage returns the selected image.
func (e *Engine) CurrentImage() string {
	return e.image
}

// Difficulties returns the tier table.
func (e *Engine) Difficulties() []Difficulty {
	return append([]Difficulty(nil), e.tiers...)
}

// CurrentDifficulty returns the active tier.
func (e *Engine) CurrentDifficulty() Difficulty {
	d, _ := findDifficulty(e.tiers, e.level)
	return d
}

// Elapsed returns the elapsed seconds of the current session.
func (e *Engine) Elapsed() int {
	return e.cur.elapsed
}

// Moves returns the number of swaps in the current session.
func (e *Engine) Moves() int {
	return e.cur.moves
}

// Completed reports whether the current board is solved.
func (e *Engine) Completed() bool {
	return e.cur.completed
}

// Abandoned reports whether the current session was abandoned.
func (e *Engine) Abandoned() bool {
	return e.cur.abandoned
}

// Board returns a copy of the current board.
func (e *Engine) Board() Board {
	return e.cur.board.Clone()
}

// SessionID returns the identifier of the current session.
func (e *Engine) SessionID() string {
	return e.cur.id
}

// BoardStream publishes a board snapshot after every mutation.
func (e *Engine) BoardStream() observe.Observable[Board] { return e.board }

// CompletedStream publishes the completion flag.
func (e *Engine) CompletedStream() observe.Observable[bool] { return e.completed }

// MovesStream publishes the move counter.
func (e *Engine) MovesStream() observe.Observable[int] { return e.moves }

// ElapsedStream publishes elapsed seconds.
func (e *Engine) ElapsedStream() observe.Observable[int] { return e.elapsed }

// DifficultyStream publishes the active level.
func (e *Engine) DifficultyStream() observe.Observable[Level] { return e.difficulty }
