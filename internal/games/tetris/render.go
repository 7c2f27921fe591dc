package tetris

import (
	"fmt"
	"time"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/tetris/engine"
)

// Each board cell is drawn two characters wide so blocks look square.
const (
	cellW      = 2
	wellW      = engine.BoardWidth*cellW + 2 // Including side walls
	wellH      = engine.VisibleHeight + 2    // Including floor and top edge
	panelW     = 18
	panelGap   = 2
	blockGlyph = '█'
	emptyGlyph = '·'
)

var pieceColors = map[engine.Color]core.Color{
	engine.ColorBlue:    core.ColorBlue,
	engine.ColorRed:     core.ColorRed,
	engine.ColorGreen:   core.ColorGreen,
	engine.ColorMagenta: core.ColorMagenta,
	engine.ColorYellow:  core.ColorYellow,
	engine.ColorCyan:    core.ColorCyan,
	engine.ColorOrange:  core.ColorOrange,
}

// ScreenColor maps an engine color to a screen color.
func ScreenColor(c engine.Color) core.Color {
	if sc, ok := pieceColors[c]; ok {
		return sc
	}
	return core.ColorDefault
}

// Render draws the well, the HUD panel and any overlay.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if dst.Width() < wellW || dst.Height() < wellH {
		renderTooSmall(dst)
		return
	}

	// Center well and panel together; drop the panel if it does not fit.
	totalW := wellW + panelGap + panelW
	showPanel := dst.Width() >= totalW
	if !showPanel {
		totalW = wellW
	}
	well := core.NewRect((dst.Width()-totalW)/2, (dst.Height()-wellH)/2, wellW, wellH)

	g.renderWell(dst, well)
	if showPanel {
		g.renderPanel(dst, core.NewRect(well.Right()+panelGap, well.Y, panelW, wellH))
	} else {
		g.renderCompactHUD(dst, well)
	}

	switch g.state.Status() {
	case engine.StatusPaused:
		renderOverlay(dst, well, "Paused", "Press P to continue")
	case engine.StatusGameOver:
		renderOverlay(dst, well, "Game Over", fmt.Sprintf("Score %d", g.state.Score()), "Press R to restart")
	}
}

func renderTooSmall(dst *core.Screen) {
	y := dst.Height() / 2
	dst.DrawTextCentered(y, "Window too small")
	dst.DrawTextCentered(y+1, fmt.Sprintf("Need %dx%d", wellW, wellH))
}

// renderWell draws the walls, the locked cells and the falling piece.
func (g *Game) renderWell(dst *core.Screen, well core.Rect) {
	dst.DrawBoxColored(well, core.ColorGray)

	ox, oy := well.X+1, well.Y+1
	for y := range engine.VisibleHeight {
		for x := range engine.BoardWidth {
			c := g.state.Cell(x, y)
			if c.Empty() {
				dst.SetColored(ox+x*cellW, oy+y, emptyGlyph, core.ColorGray)
				continue
			}
			drawBlock(dst, ox+x*cellW, oy+y, ScreenColor(c))
		}
	}

	if g.state.Status() == engine.StatusGameOver {
		return
	}
	a := g.state.Active()
	color := ScreenColor(a.Piece.Color)
	for i := range engine.ShapeSize {
		for j := range engine.ShapeSize {
			if !a.Piece.Occupied(i, j) {
				continue
			}
			y := a.Y + i
			if y < 0 {
				continue // Still in the hidden rows
			}
			drawBlock(dst, ox+(a.X+j)*cellW, oy+y, color)
		}
	}
}

func drawBlock(dst *core.Screen, x, y int, c core.Color) {
	for k := range cellW {
		dst.SetColored(x+k, y, blockGlyph, c)
	}
}

type stat struct {
	label string
	value string
}

// renderPanel draws score, lines, time and key help beside the well.
func (g *Game) renderPanel(dst *core.Screen, r core.Rect) {
	x, y := r.X, r.Y
	dst.DrawTextColored(x, y, g.Title(), core.ColorBrightWhite)
	y += 2

	stats := []stat{
		{"Score", fmt.Sprintf("%d", g.state.Score())},
		{"Lines", fmt.Sprintf("%d", g.state.Lines())},
		{"Time", formatClock(g.Elapsed())},
	}
	if g.mode == ModeMarathon {
		stats = append(stats, stat{"Speed", fmt.Sprintf("%dms", g.GravityInterval().Milliseconds())})
	}
	for _, s := range stats {
		dst.DrawTextColored(x, y, s.label, core.ColorGray)
		dst.DrawTextColored(x+7, y, s.value, core.ColorYellow)
		y++
	}

	y++
	help := []string{
		"←/→  move",
		"↑/x  rotate",
		"z    rotate back",
		"↓    soft drop",
		"spc  hard drop",
		"p    pause",
		"b    menu",
		"q    quit",
	}
	for _, h := range help {
		if y >= r.Bottom() {
			break
		}
		dst.DrawTextColored(x, y, h, core.ColorGray)
		y++
	}
}

// renderCompactHUD squeezes score and time onto the well's top edge.
func (g *Game) renderCompactHUD(dst *core.Screen, well core.Rect) {
	hud := fmt.Sprintf(" %d  %s ", g.state.Score(), formatClock(g.Elapsed()))
	dst.DrawTextColored(well.X+2, well.Y, hud, core.ColorYellow)
}

// renderOverlay draws a boxed message centered on the well.
func renderOverlay(dst *core.Screen, well core.Rect, lines ...string) {
	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len([]rune(l)))
	}
	box := well.Centered(min(maxLen+4, well.W), len(lines)+2)

	dst.DrawRect(box, ' ')
	dst.DrawBoxColored(box, core.ColorBrightWhite)
	for i, l := range lines {
		x := box.X + (box.W-len([]rune(l)))/2
		color := core.ColorWhite
		if i == 0 {
			color = core.ColorBrightWhite
		}
		dst.DrawTextColored(x, box.Y+1+i, l, color)
	}
}

// formatClock renders a duration as mm:ss.
func formatClock(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
