package engine

// ShapeSize is the side of the square bounding box every piece lives in.
const ShapeSize = 4

// Shape is a 4x4 occupancy mask indexed as [row][column].
type Shape [ShapeSize][ShapeSize]bool

// Kind names one of the seven canonical tetrominoes.
type Kind uint8

const (
	KindI Kind = iota
	KindL
	KindJ
	KindO
	KindS
	KindT
	KindZ
	KindCount // Sentinel value for iteration
)

// String returns the single-letter name of the kind.
func (k Kind) String() string {
	switch k {
	case KindI:
		return "I"
	case KindL:
		return "L"
	case KindJ:
		return "J"
	case KindO:
		return "O"
	case KindS:
		return "S"
	case KindT:
		return "T"
	case KindZ:
		return "Z"
	default:
		return "?"
	}
}

// Spawn masks are top-left aligned inside the box.
var canonicalShapes = [KindCount]Shape{
	KindI: {
		{true, true, true, true},
	},
	KindL: {
		{true, true, true, false},
		{true, false, false, false},
	},
	KindJ: {
		{true, true, true, false},
		{false, false, true, false},
	},
	KindO: {
		{true, true, false, false},
		{true, true, false, false},
	},
	KindS: {
		{false, true, true, false},
		{true, true, false, false},
	},
	KindT: {
		{true, true, true, false},
		{false, true, false, false},
	},
	KindZ: {
		{true, true, false, false},
		{false, true, true, false},
	},
}

var canonicalColors = [KindCount]Color{
	KindI: ColorBlue,
	KindL: ColorRed,
	KindJ: ColorGreen,
	KindO: ColorMagenta,
	KindS: ColorYellow,
	KindT: ColorCyan,
	KindZ: ColorOrange,
}

// Piece is an immutable tetromino value: a mask plus a color.
// Rotations return new pieces and never modify the receiver.
type Piece struct {
	Kind  Kind
	Shape Shape
	Color Color
}

// NewPiece returns the canonical spawn piece for the given kind.
// Unknown kinds fall back to the I piece.
func NewPiece(k Kind) Piece {
	if k >= KindCount {
		k = KindI
	}
	return Piece{
		Kind:  k,
		Shape: canonicalShapes[k],
		Color: canonicalColors[k],
	}
}

// Kinds returns all seven kinds in canonical order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, KindCount)
	for k := Kind(0); k < KindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// RotatedClockwise returns the piece turned 90 degrees clockwise
// within its 4x4 box.
func (p Piece) RotatedClockwise() Piece {
	result := Piece{Kind: p.Kind, Color: p.Color}
	for i := range ShapeSize {
		for j := range ShapeSize {
			result.Shape[i][j] = p.Shape[ShapeSize-1-j][i]
		}
	}
	return result
}

// RotatedCounterClockwise returns the piece turned 90 degrees
// counter-clockwise within its 4x4 box.
func (p Piece) RotatedCounterClockwise() Piece {
	result := Piece{Kind: p.Kind, Color: p.Color}
	for i := range ShapeSize {
		for j := range ShapeSize {
			result.Shape[i][j] = p.Shape[j][ShapeSize-1-i]
		}
	}
	return result
}

// Occupied reports whether mask cell (row i, column j) is filled.
func (p Piece) Occupied(i, j int) bool {
	if i < 0 || i >= ShapeSize || j < 0 || j >= ShapeSize {
		return false
	}
	return p.Shape[i][j]
}

// Cells returns the number of occupied mask cells.
func (p Piece) Cells() int {
	n := 0
	for i := range ShapeSize {
		for j := range ShapeSize {
			if p.Shape[i][j] {
				n++
			}
		}
	}
	return n
}
