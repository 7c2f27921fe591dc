// Package engine implements the deterministic falling-block game core:
// board, piece geometry, collision, gravity, locking, line clears and
// scoring. It performs no I/O and holds no locks; a host must serialize
// every call on a GameState.
package engine

import (
	"math/rand"
	"time"
)

// Spawn position and scoring constants.
const (
	SpawnX        = BoardWidth/2 - 2
	SpawnY        = 0
	PointsPerLine = 10
)

// Status is the state machine position of a GameState.
type Status int

const (
	StatusRunning Status = iota
	StatusPaused
	StatusGameOver
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Rand is the random source used to pick spawned kinds.
// *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// ActivePiece is a read-only view of the falling piece.
type ActivePiece struct {
	Piece Piece
	X, Y  int
}

// GameState owns the grid, the active piece and the score.
type GameState struct {
	grid      Grid
	piece     Piece
	x, y      int
	score     int
	lines     int
	status    Status
	rng       Rand
	listeners []Listener
}

// New creates a running game with an empty grid and spawns the first piece.
// A nil rng is replaced with a time-seeded source.
func New(rng Rand) *GameState {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &GameState{rng: rng}
	s.Reset()
	return s
}

// Subscribe registers a listener for lines-cleared and game-over events.
func (s *GameState) Subscribe(l Listener) {
	if l != nil {
		s.listeners = append(s.listeners, l)
	}
}

func (s *GameState) emit(e Event) {
	for _, l := range s.listeners {
		l(e)
	}
}

// --- Queries ---

// Status returns the current state machine position.
func (s *GameState) Status() Status { return s.status }

// Score returns the cumulative score.
func (s *GameState) Score() int { return s.score }

// Lines returns the total number of rows cleared this session.
func (s *GameState) Lines() int { return s.lines }

// Active returns the falling piece and its position.
func (s *GameState) Active() ActivePiece {
	return ActivePiece{Piece: s.piece, X: s.x, Y: s.y}
}

// Cell returns the locked cell at visible coordinates (x, y).
// Hidden buffer rows and out-of-range coordinates read as empty.
func (s *GameState) Cell(x, y int) Color {
	if y < 0 || y >= VisibleHeight {
		return ColorNone
	}
	return s.grid.At(x, y)
}

// Visible returns a copy of the visible rows of the grid.
func (s *GameState) Visible() [VisibleHeight][BoardWidth]Color {
	var v [VisibleHeight][BoardWidth]Color
	for y := range VisibleHeight {
		v[y] = s.grid[y+HiddenRows]
	}
	return v
}

func (s *GameState) accepting() bool {
	return s.status == StatusRunning
}

// --- Movement ---

// fits applies the placement rule: every occupied cell must be inside the
// side walls and above the floor, and must not overlap a locked cell
// unless it is still in the hidden buffer.
func (s *GameState) fits(p Piece, newX, newY int) bool {
	for i := range ShapeSize {
		for j := range ShapeSize {
			if !p.Shape[i][j] {
				continue
			}
			x := newX + j
			y := newY + i
			if x < 0 || x >= BoardWidth || y >= VisibleHeight {
				return false
			}
			if y >= 0 && !s.grid.At(x, y).Empty() {
				return false
			}
		}
	}
	return true
}

func (s *GameState) tryMove(p Piece, newX, newY int) bool {
	if !s.fits(p, newX, newY) {
		return false
	}
	s.piece = p
	s.x = newX
	s.y = newY
	return true
}

// TryMove commits candidate at (newX, newY) if the placement is valid.
// A rejected move leaves the active piece untouched.
func (s *GameState) TryMove(candidate Piece, newX, newY int) bool {
	if !s.accepting() {
		return false
	}
	return s.tryMove(candidate, newX, newY)
}

// MoveLeft shifts the active piece one column left.
func (s *GameState) MoveLeft() bool {
	return s.TryMove(s.piece, s.x-1, s.y)
}

// MoveRight shifts the active piece one column right.
func (s *GameState) MoveRight() bool {
	return s.TryMove(s.piece, s.x+1, s.y)
}

// RotateClockwise rotates the active piece in place. There are no wall
// kicks: a blocked rotation simply fails.
func (s *GameState) RotateClockwise() bool {
	return s.TryMove(s.piece.RotatedClockwise(), s.x, s.y)
}

// RotateCounterClockwise rotates the active piece in place.
func (s *GameState) RotateCounterClockwise() bool {
	return s.TryMove(s.piece.RotatedCounterClockwise(), s.x, s.y)
}

// SoftDrop moves the active piece one row down. When the piece cannot
// move it is locked, full lines are cleared, the next piece is spawned and
// false is returned.
func (s *GameState) SoftDrop() bool {
	if !s.accepting() {
		return false
	}
	if s.tryMove(s.piece, s.x, s.y+1) {
		return true
	}
	s.lock()
	s.clearFullLines()
	s.spawnPiece()
	return false
}

// HardDrop drives gravity until the active piece lands and returns the
// number of rows it fell. Every successful step moves the piece down a
// row and no piece passes VisibleHeight, so the loop ends.
func (s *GameState) HardDrop() int {
	rows := 0
	for s.SoftDrop() {
		rows++
	}
	return rows
}

// lock writes the active piece into the grid. Cells still in the hidden
// buffer are discarded.
func (s *GameState) lock() {
	for i := range ShapeSize {
		for j := range ShapeSize {
			if !s.piece.Shape[i][j] {
				continue
			}
			y := s.y + i
			if y >= 0 {
				s.grid.set(s.x+j, y, s.piece.Color)
			}
		}
	}
}

// --- Spawning ---

// SpawnPiece draws a new kind uniformly at random and places it at the
// spawn position. If it does not fit, the game is over.
func (s *GameState) SpawnPiece() bool {
	if !s.accepting() {
		return false
	}
	return s.spawnPiece()
}

func (s *GameState) spawnPiece() bool {
	p := NewPiece(Kind(s.rng.Intn(int(KindCount))))
	if s.tryMove(p, SpawnX, SpawnY) {
		return true
	}
	s.status = StatusGameOver
	s.emit(Event{Kind: EventGameOver})
	return false
}

// --- Line clears ---

// ClearFullLines removes every full row and returns how many were removed.
func (s *GameState) ClearFullLines() int {
	if !s.accepting() {
		return 0
	}
	return s.clearFullLines()
}

// clearFullLines scans from the bottom row up. After a removal the same
// index is examined again, since the row above has moved into it.
func (s *GameState) clearFullLines() int {
	cleared := 0
	for r := BoardHeight - 1; r >= 0; {
		if s.grid.rowFull(r) {
			cleared++
			s.grid.removeRow(r)
			continue
		}
		r--
	}
	if cleared > 0 {
		s.score += PointsPerLine * cleared
		s.lines += cleared
		s.emit(Event{Kind: EventLinesCleared, Count: cleared, Score: s.score})
	}
	return cleared
}

// --- Session control ---

// TogglePause flips between running and paused. It has no effect once
// the game is over.
func (s *GameState) TogglePause() {
	switch s.status {
	case StatusRunning:
		s.status = StatusPaused
	case StatusPaused:
		s.status = StatusRunning
	}
}

// Reset starts a new session on the same GameState.
func (s *GameState) Reset() {
	s.grid.Clear()
	s.score = 0
	s.lines = 0
	s.status = StatusRunning
	s.spawnPiece()
}
