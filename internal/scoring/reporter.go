// Package scoring delivers finished-game records to their destinations:
// the remote score backend, the local SQLite store, or both.
//
// Every reporter here satisfies puzzle.Reporter. Submit never blocks the
// caller; delivery happens on a background goroutine and failures are
// logged, not returned.
package scoring

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
)

// Nop discards every record.
type Nop struct{}

// Submit implements puzzle.Reporter.
func (Nop) Submit(puzzle.Record) {}

// Multi fans a record out to several reporters in order.
type Multi []puzzle.Reporter

// Submit implements puzzle.Reporter.
func (m Multi) Submit(rec puzzle.Record) {
	for _, r := range m {
		if r != nil {
			r.Submit(rec)
		}
	}
}

// Saver persists a record. *storage.Store implements it.
type Saver interface {
	SaveRecord(rec puzzle.Record) (int64, error)
}

// StoreReporter writes records to a local store.
type StoreReporter struct {
	saver  Saver
	logger *log.Logger
	wg     sync.WaitGroup
}

// NewStoreReporter creates a reporter backed by saver. A nil logger discards output.
func NewStoreReporter(saver Saver, logger *log.Logger) *StoreReporter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &StoreReporter{saver: saver, logger: logger}
}

// Submit implements puzzle.Reporter.
func (r *StoreReporter) Submit(rec puzzle.Record) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		id, err := r.saver.SaveRecord(rec)
		if err != nil {
			r.logger.Warn("failed to save score", "session", rec.SessionID, "error", err)
			return
		}
		r.logger.Debug("score saved", "id", id, "level", rec.Level, "moves", rec.Movements)
	}()
}

// Wait blocks until every submitted record has been handled.
func (r *StoreReporter) Wait() {
	r.wg.Wait()
}
