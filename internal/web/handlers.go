package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/vovakirdan/blockfall/internal/registry"
	"github.com/vovakirdan/blockfall/internal/storage"
)

// maxLimit caps the rows a single request may ask for.
const maxLimit = 100

type handlers struct {
	scores ScoreReader
	logger *log.Logger
}

type gameJSON struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	HighScore int    `json:"high_score"`
}

type scoreJSON struct {
	Rank       int       `json:"rank,omitempty"`
	GameID     string    `json:"game"`
	SessionID  string    `json:"session_id"`
	Player     string    `json:"player"`
	Score      int       `json:"score"`
	Lines      int       `json:"lines"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

type statsJSON struct {
	GameID        string     `json:"game"`
	Games         int        `json:"games"`
	HighScore     int        `json:"high_score"`
	AvgScore      float64    `json:"avg_score"`
	TotalLines    int64      `json:"total_lines"`
	MostLines     int        `json:"most_lines"`
	LongestGameMs int64      `json:"longest_game_ms"`
	TotalTimeMs   int64      `json:"total_time_ms"`
	LastPlayed    *time.Time `json:"last_played,omitempty"`
}

type errorJSON struct {
	Error string `json:"error"`
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("cannot encode response", "error", err)
	}
}

func (h *handlers) fail(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorJSON{Error: msg})
}

// internal logs err and answers 500 without leaking details.
func (h *handlers) internal(w http.ResponseWriter, err error) {
	h.logger.Error("request failed", "error", err)
	h.fail(w, http.StatusInternalServerError, "internal error")
}

// limitParam parses ?limit=, defaulting to storage.DefaultLimit.
func limitParam(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return storage.DefaultLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return min(n, maxLimit), true
}

// gameParam resolves {game} to a registered mode.
func (h *handlers) gameParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "game")
	if !registry.Exists(id) {
		h.fail(w, http.StatusNotFound, "unknown game")
		return "", false
	}
	return id, true
}

func toScoreJSON(entries []storage.ScoreEntry) []scoreJSON {
	out := make([]scoreJSON, len(entries))
	for i, e := range entries {
		out[i] = scoreJSON{
			Rank:       i + 1,
			GameID:     e.GameID,
			SessionID:  e.SessionID,
			Player:     e.Player,
			Score:      e.Score,
			Lines:      e.Lines,
			DurationMs: e.Duration.Milliseconds(),
			CreatedAt:  e.CreatedAt.UTC(),
		}
	}
	return out
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) games(w http.ResponseWriter, r *http.Request) {
	list := registry.List()
	out := make([]gameJSON, 0, len(list))
	for _, g := range list {
		high, err := h.scores.HighScore(g.ID)
		if err != nil {
			h.internal(w, err)
			return
		}
		out = append(out, gameJSON{ID: g.ID, Title: g.Title, HighScore: high})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *handlers) topScores(w http.ResponseWriter, r *http.Request) {
	id, ok := h.gameParam(w, r)
	if !ok {
		return
	}
	limit, ok := limitParam(r)
	if !ok {
		h.fail(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	entries, err := h.scores.TopScores(id, limit)
	if err != nil {
		h.internal(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toScoreJSON(entries))
}

func (h *handlers) recent(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(r)
	if !ok {
		h.fail(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	entries, err := h.scores.RecentScores(limit)
	if err != nil {
		h.internal(w, err)
		return
	}
	out := toScoreJSON(entries)
	// Ranks only mean something within one mode.
	for i := range out {
		out[i].Rank = 0
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	id, ok := h.gameParam(w, r)
	if !ok {
		return
	}

	st, err := h.scores.GetGameStats(id)
	if err != nil {
		h.internal(w, err)
		return
	}

	out := statsJSON{
		GameID:        id,
		Games:         st.GamesCount,
		HighScore:     st.HighScore,
		AvgScore:      st.AvgScore,
		TotalLines:    st.TotalLines,
		MostLines:     st.MostLines,
		LongestGameMs: st.LongestGame.Milliseconds(),
		TotalTimeMs:   st.TotalTime.Milliseconds(),
	}
	if !st.LastPlayed.IsZero() {
		last := st.LastPlayed.UTC()
		out.LastPlayed = &last
	}
	h.writeJSON(w, http.StatusOK, out)
}

// session returns the single round recorded under a session ID.
func (h *handlers) session(w http.ResponseWriter, r *http.Request) {
	entry, ok, err := h.scores.ScoreBySession(chi.URLParam(r, "session"))
	if err != nil {
		h.internal(w, err)
		return
	}
	if !ok {
		h.fail(w, http.StatusNotFound, "unknown session")
		return
	}
	out := toScoreJSON([]storage.ScoreEntry{entry})[0]
	out.Rank = 0
	h.writeJSON(w, http.StatusOK, out)
}
