package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/blockfall/internal/storage"

	// Registers the tetris and tetris_marathon modes.
	_ "github.com/vovakirdan/blockfall/internal/games/tetris"
)

func newTestServer(t *testing.T) (*storage.Store, http.Handler) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, NewHandler(store, nil)
}

func get(t *testing.T, h http.Handler, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if ct := rr.Header().Get("Content-Type"); out != nil && ct != "application/json; charset=utf-8" {
		t.Fatalf("GET %s: content type %q", path, ct)
	}
	if out != nil {
		if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
			t.Fatalf("GET %s: bad JSON %q: %v", path, rr.Body.String(), err)
		}
	}
	return rr.Code
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t)
	var body map[string]string
	if code := get(t, h, "/healthz", &body); code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", code, body)
	}
}

func TestGamesListsModesWithHighScores(t *testing.T) {
	store, h := newTestServer(t)
	store.SaveScore(storage.Result{GameID: "tetris", Score: 120}) //nolint:errcheck

	var games []gameJSON
	if code := get(t, h, "/api/games", &games); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 modes, got %+v", games)
	}
	if games[0].ID != "tetris" || games[0].HighScore != 120 || games[0].Title == "" {
		t.Errorf("classic entry = %+v", games[0])
	}
	if games[1].ID != "tetris_marathon" || games[1].HighScore != 0 {
		t.Errorf("marathon entry = %+v", games[1])
	}
}

func TestTopScores(t *testing.T) {
	store, h := newTestServer(t)
	for i, p := range []string{"ann", "bob", "cid"} {
		store.SaveScore(storage.Result{ //nolint:errcheck
			GameID:   "tetris",
			Player:   p,
			Score:    (i + 1) * 10,
			Lines:    i + 1,
			Duration: time.Duration(i+1) * time.Second,
		})
	}

	var scores []scoreJSON
	if code := get(t, h, "/api/scores/tetris?limit=2", &scores); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(scores))
	}
	first := scores[0]
	if first.Rank != 1 || first.Player != "cid" || first.Score != 30 || first.Lines != 3 || first.DurationMs != 3000 {
		t.Errorf("first row = %+v", first)
	}
	if first.SessionID == "" || first.CreatedAt.IsZero() {
		t.Errorf("first row missing metadata: %+v", first)
	}
}

func TestTopScoresEmptyIsArray(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/scores/tetris_marathon", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || rr.Body.String() != "[]\n" {
		t.Errorf("empty leaderboard = %d %q", rr.Code, rr.Body.String())
	}
}

func TestBadRequests(t *testing.T) {
	_, h := newTestServer(t)

	tests := []struct {
		path string
		code int
	}{
		{"/api/scores/pong", http.StatusNotFound},
		{"/api/stats/pong", http.StatusNotFound},
		{"/api/scores/tetris?limit=abc", http.StatusBadRequest},
		{"/api/scores/tetris?limit=0", http.StatusBadRequest},
		{"/api/recent?limit=-3", http.StatusBadRequest},
		{"/api/nothing", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tc.code {
				t.Errorf("GET %s = %d, expected %d", tc.path, rr.Code, tc.code)
			}
		})
	}
}

func TestLimitParam(t *testing.T) {
	tests := []struct {
		query string
		limit int
		ok    bool
	}{
		{"", storage.DefaultLimit, true},
		{"limit=5", 5, true},
		{"limit=5000", maxLimit, true},
		{"limit=0", 0, false},
		{"limit=x", 0, false},
	}

	for _, tc := range tests {
		r := httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
		limit, ok := limitParam(r)
		if limit != tc.limit || ok != tc.ok {
			t.Errorf("limitParam(%q) = %d, %v; expected %d, %v", tc.query, limit, ok, tc.limit, tc.ok)
		}
	}
}

func TestStats(t *testing.T) {
	store, h := newTestServer(t)

	var empty statsJSON
	if code := get(t, h, "/api/stats/tetris", &empty); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if empty.Games != 0 || empty.LastPlayed != nil {
		t.Errorf("empty stats = %+v", empty)
	}

	store.SaveScore(storage.Result{GameID: "tetris", Score: 40, Lines: 4, Duration: time.Minute})     //nolint:errcheck
	store.SaveScore(storage.Result{GameID: "tetris", Score: 80, Lines: 8, Duration: 2 * time.Minute}) //nolint:errcheck

	var st statsJSON
	get(t, h, "/api/stats/tetris", &st)
	if st.Games != 2 || st.HighScore != 80 || st.AvgScore != 60 || st.TotalLines != 12 || st.MostLines != 8 {
		t.Errorf("stats = %+v", st)
	}
	if st.LongestGameMs != 120000 || st.TotalTimeMs != 180000 || st.LastPlayed == nil {
		t.Errorf("time stats = %+v", st)
	}
}

func TestRecentHasNoRank(t *testing.T) {
	store, h := newTestServer(t)
	store.SaveScore(storage.Result{GameID: "tetris", Score: 10})          //nolint:errcheck
	store.SaveScore(storage.Result{GameID: "tetris_marathon", Score: 20}) //nolint:errcheck

	var recent []scoreJSON
	get(t, h, "/api/recent", &recent)
	if len(recent) != 2 || recent[0].GameID != "tetris_marathon" {
		t.Fatalf("recent = %+v", recent)
	}
	if recent[0].Rank != 0 {
		t.Error("recent scores span modes and carry no rank")
	}
}

func TestSessionLookup(t *testing.T) {
	store, h := newTestServer(t)
	store.SaveScore(storage.Result{SessionID: "round-1", GameID: "tetris", Player: "ann", Score: 50, Lines: 5}) //nolint:errcheck

	var round scoreJSON
	if code := get(t, h, "/api/sessions/round-1", &round); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if round.SessionID != "round-1" || round.Player != "ann" || round.Score != 50 || round.Rank != 0 {
		t.Errorf("round = %+v", round)
	}

	var body errorJSON
	if code := get(t, h, "/api/sessions/missing", &body); code != http.StatusNotFound {
		t.Errorf("unknown session = %d, expected 404", code)
	}
}

// failingReader makes every query fail.
type failingReader struct{}

var errBroken = errors.New("disk on fire")

func (failingReader) TopScores(string, int) ([]storage.ScoreEntry, error) { return nil, errBroken }
func (failingReader) RecentScores(int) ([]storage.ScoreEntry, error)      { return nil, errBroken }
func (failingReader) HighScore(string) (int, error)                       { return 0, errBroken }
func (failingReader) GetGameStats(string) (*storage.GameStats, error)     { return nil, errBroken }

func (failingReader) ScoreBySession(string) (storage.ScoreEntry, bool, error) {
	return storage.ScoreEntry{}, false, errBroken
}

func TestStoreErrorsAreHidden(t *testing.T) {
	h := NewHandler(failingReader{}, nil)

	for _, path := range []string{"/api/games", "/api/scores/tetris", "/api/stats/tetris", "/api/recent", "/api/sessions/abc"} {
		var body errorJSON
		if code := get(t, h, path, &body); code != http.StatusInternalServerError {
			t.Errorf("GET %s = %d, expected 500", path, code)
		}
		if body.Error != "internal error" {
			t.Errorf("GET %s leaked %q", path, body.Error)
		}
	}
}
