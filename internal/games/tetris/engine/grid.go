package engine

// Board dimensions. The grid stores HiddenRows buffer rows above the
// VisibleHeight rows of the play area.
const (
	BoardWidth    = 10
	BoardHeight   = 22
	VisibleHeight = 20
	HiddenRows    = BoardHeight - VisibleHeight
)

// Grid holds the locked cells, indexed [storage row][column].
// Storage row r corresponds to visible row r-HiddenRows.
type Grid [BoardHeight][BoardWidth]Color

// Clear empties every cell.
func (g *Grid) Clear() {
	*g = Grid{}
}

// At returns the cell at visible coordinates (x, y).
// Coordinates outside the stored grid read as empty.
func (g *Grid) At(x, y int) Color {
	r := y + HiddenRows
	if x < 0 || x >= BoardWidth || r < 0 || r >= BoardHeight {
		return ColorNone
	}
	return g[r][x]
}

// set writes a cell at visible coordinates; out-of-range writes are dropped.
func (g *Grid) set(x, y int, c Color) {
	r := y + HiddenRows
	if x < 0 || x >= BoardWidth || r < 0 || r >= BoardHeight {
		return
	}
	g[r][x] = c
}

// rowFull reports whether every column of storage row r is occupied.
func (g *Grid) rowFull(r int) bool {
	for x := range BoardWidth {
		if g[r][x].Empty() {
			return false
		}
	}
	return true
}

// removeRow drops storage row r, shifts everything above it down by one
// and leaves an empty row at the top.
func (g *Grid) removeRow(r int) {
	for yy := r; yy > 0; yy-- {
		g[yy] = g[yy-1]
	}
	g[0] = [BoardWidth]Color{}
}

// Filled returns the number of non-empty cells in the whole grid.
func (g *Grid) Filled() int {
	n := 0
	for r := range BoardHeight {
		for x := range BoardWidth {
			if !g[r][x].Empty() {
				n++
			}
		}
	}
	return n
}
