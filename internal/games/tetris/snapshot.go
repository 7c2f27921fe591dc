package tetris

import (
	"strings"

	"github.com/vovakirdan/blockfall/internal/games/tetris/engine"
)

// Snapshot captures the complete game state for determinism testing and replay.
type Snapshot struct {
	Tick         uint64
	Mode         string
	Score        int
	Lines        int
	Status       string
	Piece        string
	PieceX       int
	PieceY       int
	GravityTicks int
	ElapsedTicks uint64
	Board        string // One line per visible row, see boardString
}

// Snapshot returns the current game snapshot for determinism verification.
func (g *Game) Snapshot() Snapshot {
	a := g.state.Active()
	return Snapshot{
		Tick:         g.tick,
		Mode:         string(g.mode),
		Score:        g.state.Score(),
		Lines:        g.state.Lines(),
		Status:       g.state.Status().String(),
		Piece:        a.Piece.Kind.String(),
		PieceX:       a.X,
		PieceY:       a.Y,
		GravityTicks: g.GravityTicks(),
		ElapsedTicks: g.playTicks,
		Board:        boardString(g.state),
	}
}

// boardString renders locked cells as '.' for empty and the first letter
// of the color name otherwise.
func boardString(s *engine.GameState) string {
	var b strings.Builder
	b.Grow((engine.BoardWidth + 1) * engine.VisibleHeight)
	for y := range engine.VisibleHeight {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := range engine.BoardWidth {
			c := s.Cell(x, y)
			if c.Empty() {
				b.WriteByte('.')
				continue
			}
			b.WriteByte(c.String()[0])
		}
	}
	return b.String()
}
