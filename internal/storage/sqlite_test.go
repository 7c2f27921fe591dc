package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
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

func save(t *testing.T, store *Store, r Result) int64 {
	t.Helper()
	id, err := store.SaveScore(r)
	if err != nil {
		t.Fatalf("SaveScore(%+v) failed: %v", r, err)
	}
	return id
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsScores(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	save(t, store, Result{GameID: "tetris", Score: 40, Lines: 4})
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()

	high, err := store.HighScore("tetris")
	if err != nil || high != 40 {
		t.Errorf("HighScore after reopen = %d, %v; expected 40", high, err)
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	save(t, store, Result{GameID: "tetris", Player: "ann", Score: 100, Lines: 10, Duration: 95 * time.Second})
	save(t, store, Result{GameID: "tetris", Player: "bob", Score: 50, Lines: 5})
	save(t, store, Result{GameID: "tetris", Player: "ann", Score: 200, Lines: 20})
	save(t, store, Result{GameID: "tetris_marathon", Score: 500, Lines: 50})

	scores, err := store.TopScores("tetris", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(scores))
	}

	want := []int{200, 100, 50}
	for i, w := range want {
		if scores[i].Score != w {
			t.Errorf("scores[%d] = %d, expected %d", i, scores[i].Score, w)
		}
	}

	second := scores[1]
	if second.Player != "ann" || second.Lines != 10 || second.Duration != 95*time.Second {
		t.Errorf("fields not round-tripped: %+v", second)
	}
	if second.SessionID == "" {
		t.Error("session ID should be generated")
	}
	if second.CreatedAt.IsZero() {
		t.Error("created_at should be populated")
	}

	marathon, err := store.TopScores("tetris_marathon", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(marathon) != 1 {
		t.Errorf("Expected 1 marathon score, got %d", len(marathon))
	}
}

func TestStoreSaveRequiresGameID(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.SaveScore(Result{Score: 10}); err == nil {
		t.Error("SaveScore without a game id should fail")
	}
}

func TestStoreDuplicateSessionRejected(t *testing.T) {
	store := openTestStore(t)
	save(t, store, Result{SessionID: "abc", GameID: "tetris", Score: 10})

	if _, err := store.SaveScore(Result{SessionID: "abc", GameID: "tetris", Score: 20}); err == nil {
		t.Error("a session should only be recorded once")
	}

	e, ok, err := store.ScoreBySession("abc")
	if err != nil || !ok {
		t.Fatalf("ScoreBySession = %v, %v", ok, err)
	}
	if e.Score != 10 {
		t.Errorf("stored score = %d, expected 10", e.Score)
	}

	if _, ok, _ := store.ScoreBySession("missing"); ok {
		t.Error("unknown session should not be found")
	}
}

func TestStoreTopScoresLimit(t *testing.T) {
	store := openTestStore(t)

	for i := range 15 {
		save(t, store, Result{GameID: "test", Score: (i + 1) * 10})
	}

	tests := []struct {
		limit    int
		expected int
	}{
		{3, 3},
		{0, DefaultLimit},
		{-1, DefaultLimit},
		{100, 15},
	}

	for _, tc := range tests {
		scores, err := store.TopScores("test", tc.limit)
		if err != nil {
			t.Fatalf("TopScores(%d) failed: %v", tc.limit, err)
		}
		if len(scores) != tc.expected {
			t.Errorf("TopScores(%d) returned %d rows, expected %d", tc.limit, len(scores), tc.expected)
		}
	}

	top, _ := store.TopScores("test", 3)
	if top[0].Score != 150 || top[1].Score != 140 || top[2].Score != 130 {
		t.Errorf("Scores not in expected order: %v", top)
	}
}

func TestStoreTopScoresTieOrder(t *testing.T) {
	store := openTestStore(t)
	first := save(t, store, Result{GameID: "tetris", Player: "first", Score: 30})
	save(t, store, Result{GameID: "tetris", Player: "second", Score: 30})

	scores, _ := store.TopScores("tetris", 2)
	if scores[0].ID != first {
		t.Errorf("earlier game should rank first on ties, got %s", scores[0].Player)
	}
}

func TestStoreEmptyResults(t *testing.T) {
	store := openTestStore(t)

	scores, err := store.TopScores("tetris", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if scores == nil || len(scores) != 0 {
		t.Errorf("expected an empty non-nil slice, got %#v", scores)
	}

	high, err := store.HighScore("tetris")
	if err != nil || high != 0 {
		t.Errorf("HighScore on empty store = %d, %v", high, err)
	}
}

func TestStorePlayerBest(t *testing.T) {
	store := openTestStore(t)
	save(t, store, Result{GameID: "tetris", Player: "ann", Score: 70})
	save(t, store, Result{GameID: "tetris", Player: "ann", Score: 30})
	save(t, store, Result{GameID: "tetris", Player: "bob", Score: 90})

	tests := []struct {
		player   string
		expected int
	}{
		{"ann", 70},
		{"bob", 90},
		{"eve", 0},
	}
	for _, tc := range tests {
		got, err := store.PlayerBest("tetris", tc.player)
		if err != nil {
			t.Fatalf("PlayerBest(%s) failed: %v", tc.player, err)
		}
		if got != tc.expected {
			t.Errorf("PlayerBest(%s) = %d, expected %d", tc.player, got, tc.expected)
		}
	}
}

func TestStoreClearScores(t *testing.T) {
	store := openTestStore(t)

	save(t, store, Result{GameID: "tetris", Score: 100})
	save(t, store, Result{GameID: "tetris", Score: 200})
	save(t, store, Result{GameID: "tetris_marathon", Score: 300})

	if err := store.ClearScores("tetris"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	classic, _ := store.TopScores("tetris", 10)
	if len(classic) != 0 {
		t.Errorf("Expected 0 scores after clear, got %d", len(classic))
	}

	marathon, _ := store.TopScores("tetris_marathon", 10)
	if len(marathon) != 1 {
		t.Errorf("Other modes should not be affected by clearing")
	}
}

func TestStoreAllAndRecentScores(t *testing.T) {
	store := openTestStore(t)

	for i := range 20 {
		save(t, store, Result{GameID: "test", Score: i * 10})
	}

	all, err := store.AllScores("test")
	if err != nil {
		t.Fatalf("AllScores() failed: %v", err)
	}
	if len(all) != 20 {
		t.Errorf("Expected 20 scores, got %d", len(all))
	}

	recent, err := store.RecentScores(5)
	if err != nil {
		t.Fatalf("RecentScores() failed: %v", err)
	}
	if len(recent) != 5 || recent[0].Score != 190 {
		t.Errorf("RecentScores should return newest first, got %v", recent)
	}
}

func TestStoreGameStats(t *testing.T) {
	store := openTestStore(t)

	empty, err := store.GetGameStats("tetris")
	if err != nil {
		t.Fatalf("GetGameStats() on empty store failed: %v", err)
	}
	if empty.GamesCount != 0 || empty.GameID != "tetris" || !empty.LastPlayed.IsZero() {
		t.Errorf("unexpected empty stats: %+v", empty)
	}

	save(t, store, Result{GameID: "tetris", Score: 100, Lines: 10, Duration: time.Minute})
	save(t, store, Result{GameID: "tetris", Score: 300, Lines: 30, Duration: 3 * time.Minute})
	save(t, store, Result{GameID: "tetris_marathon", Score: 50, Lines: 5})

	st, err := store.GetGameStats("tetris")
	if err != nil {
		t.Fatalf("GetGameStats() failed: %v", err)
	}
	if st.GamesCount != 2 || st.HighScore != 300 || st.AvgScore != 200 || st.TotalScore != 400 {
		t.Errorf("score stats wrong: %+v", st)
	}
	if st.TotalLines != 40 || st.MostLines != 30 {
		t.Errorf("line stats wrong: %+v", st)
	}
	if st.LongestGame != 3*time.Minute || st.TotalTime != 4*time.Minute {
		t.Errorf("duration stats wrong: %+v", st)
	}
	if st.LastPlayed.IsZero() {
		t.Error("LastPlayed should be set")
	}

	all, err := store.GetAllGamesStats()
	if err != nil {
		t.Fatalf("GetAllGamesStats() failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected stats for 2 modes, got %d", len(all))
	}
	if all["tetris_marathon"].HighScore != 50 {
		t.Errorf("marathon stats wrong: %+v", all["tetris_marathon"])
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

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := Open("~/.blockfall/scores.db")
	if err != nil {
		t.Fatalf("Open(~) failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(home, ".blockfall", "scores.db")); err != nil {
		t.Errorf("database not created under HOME: %v", err)
	}
}
