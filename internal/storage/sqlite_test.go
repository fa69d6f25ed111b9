package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func record(session, level string, moves, secs int) puzzle.Record {
	return puzzle.Record{
		GameType:  puzzle.GameType,
		Level:     level,
		Movements: moves,
		Time:      secs,
		SessionID: session,
		Image:     "assets/img/1.png",
	}
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	for _, rec := range []puzzle.Record{
		record("a", "EASY", 12, 40),
		record("b", "EASY", 8, 90),
		record("c", "EASY", 12, 30),
		record("d", "HARD", 60, 300),
	} {
		if _, err := store.SaveRecord(rec); err != nil {
			t.Fatalf("SaveRecord() failed: %v", err)
		}
	}

	entries, err := store.TopRecords("EASY", 10)
	if err != nil {
		t.Fatalf("TopRecords() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 easy records, got %d", len(entries))
	}

	// Fewest moves first, ties broken by time
	want := []string{"b", "c", "a"}
	for i, e := range entries {
		if e.SessionID != want[i] {
			t.Errorf("entry %d: expected session %s, got %s", i, want[i], e.SessionID)
		}
	}
	if entries[0].Movements != 8 || entries[0].Time != 90 || entries[0].Image != "assets/img/1.png" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("CreatedAt was not populated")
	}

	hard, err := store.TopRecords("HARD", 10)
	if err != nil {
		t.Fatalf("TopRecords() failed: %v", err)
	}
	if len(hard) != 1 {
		t.Errorf("Expected 1 hard record, got %d", len(hard))
	}
}

func TestStoreSaveIsIdempotentPerSession(t *testing.T) {
	store := openTestStore(t)

	id1, err := store.SaveRecord(record("same", "MEDIUM", 20, 50))
	if err != nil {
		t.Fatalf("SaveRecord() failed: %v", err)
	}
	id2, err := store.SaveRecord(record("same", "MEDIUM", 20, 50))
	if err != nil {
		t.Fatalf("second SaveRecord() failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("expected same row ID, got %d and %d", id1, id2)
	}

	entries, _ := store.TopRecords("MEDIUM", 10)
	if len(entries) != 1 {
		t.Errorf("Expected 1 record, got %d", len(entries))
	}
}

func TestStoreSaveWithoutSession(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 3; i++ {
		if _, err := store.SaveRecord(record("", "EASY", 10+i, 10)); err != nil {
			t.Fatalf("SaveRecord() failed: %v", err)
		}
	}

	entries, _ := store.TopRecords("EASY", 10)
	if len(entries) != 3 {
		t.Errorf("Expected 3 records, got %d", len(entries))
	}
}

func TestStoreTopRecordsLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		store.SaveRecord(record(string(rune('a'+i)), "EASY", 50-i*10, 10))
	}

	entries, err := store.TopRecords("EASY", 3)
	if err != nil {
		t.Fatalf("TopRecords() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 records with limit, got %d", len(entries))
	}
	if entries[0].Movements != 10 || entries[1].Movements != 20 || entries[2].Movements != 30 {
		t.Errorf("Records not in expected order: %v", entries)
	}
}

func TestStoreBestRecord(t *testing.T) {
	store := openTestStore(t)

	best, err := store.BestRecord("EASY")
	if err != nil {
		t.Fatalf("BestRecord() failed: %v", err)
	}
	if best != nil {
		t.Errorf("Expected no best record, got %+v", best)
	}

	store.SaveRecord(record("a", "EASY", 15, 30))
	store.SaveRecord(record("b", "EASY", 9, 60))

	best, err = store.BestRecord("EASY")
	if err != nil {
		t.Fatalf("BestRecord() failed: %v", err)
	}
	if best == nil || best.SessionID != "b" {
		t.Errorf("Expected session b as best, got %+v", best)
	}
}

func TestStoreClearRecords(t *testing.T) {
	store := openTestStore(t)

	store.SaveRecord(record("a", "EASY", 10, 10))
	store.SaveRecord(record("b", "EASY", 11, 10))
	store.SaveRecord(record("c", "HARD", 40, 100))

	if err := store.ClearRecords("EASY"); err != nil {
		t.Fatalf("ClearRecords() failed: %v", err)
	}

	easy, _ := store.TopRecords("EASY", 10)
	if len(easy) != 0 {
		t.Errorf("Expected 0 easy records after clear, got %d", len(easy))
	}
	hard, _ := store.TopRecords("HARD", 10)
	if len(hard) != 1 {
		t.Errorf("Hard records should not be affected by clearing easy")
	}

	if err := store.ClearRecords(""); err != nil {
		t.Fatalf("ClearRecords(\"\") failed: %v", err)
	}
	hard, _ = store.TopRecords("HARD", 10)
	if len(hard) != 0 {
		t.Errorf("Expected all records cleared, got %d", len(hard))
	}
}

func TestStoreLevelStats(t *testing.T) {
	store := openTestStore(t)

	empty, err := store.GetLevelStats("EASY")
	if err != nil {
		t.Fatalf("GetLevelStats() failed: %v", err)
	}
	if empty.GamesCount != 0 || !empty.LastPlayed.IsZero() {
		t.Errorf("Expected empty stats, got %+v", empty)
	}

	played := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := record("a", "EASY", 10, 20)
	rec.CompletedAt = played
	store.SaveRecord(rec)
	store.SaveRecord(record("b", "EASY", 20, 40))
	store.SaveRecord(record("c", "MEDIUM", 30, 60))

	stats, err := store.GetLevelStats("EASY")
	if err != nil {
		t.Fatalf("GetLevelStats() failed: %v", err)
	}
	if stats.GamesCount != 2 {
		t.Errorf("GamesCount = %d, expected 2", stats.GamesCount)
	}
	if stats.BestMoves != 10 || stats.BestTime != 20 {
		t.Errorf("best = %d moves / %ds", stats.BestMoves, stats.BestTime)
	}
	if stats.AvgMoves != 15 || stats.AvgTime != 30 {
		t.Errorf("avg = %.1f moves / %.1fs", stats.AvgMoves, stats.AvgTime)
	}
	if stats.LastPlayed.Before(played) {
		t.Errorf("LastPlayed = %v, expected at or after %v", stats.LastPlayed, played)
	}

	all, err := store.GetAllLevelStats()
	if err != nil {
		t.Fatalf("GetAllLevelStats() failed: %v", err)
	}
	if len(all) != 2 || all["MEDIUM"] == nil || all["MEDIUM"].GamesCount != 1 {
		t.Errorf("unexpected all-level stats: %v", all)
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
