package engine

// Color identifies the color of a locked cell or a piece.
// ColorNone marks an empty cell; every other valid value belongs to the
// fixed seven-color palette.
type Color uint8

const (
	ColorNone Color = iota
	ColorBlue
	ColorRed
	ColorGreen
	ColorMagenta
	ColorYellow
	ColorCyan
	ColorOrange
	colorCount // Sentinel value for iteration
)

// Palette returns the seven piece colors in palette order.
func Palette() []Color {
	return []Color{ColorBlue, ColorRed, ColorGreen, ColorMagenta, ColorYellow, ColorCyan, ColorOrange}
}

// Valid reports whether c is one of the seven palette colors.
func (c Color) Valid() bool {
	return c > ColorNone && c < colorCount
}

// Empty reports whether c marks an empty cell.
func (c Color) Empty() bool {
	return c == ColorNone
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case ColorNone:
		return "none"
	case ColorBlue:
		return "blue"
	case ColorRed:
		return "red"
	case ColorGreen:
		return "green"
	case ColorMagenta:
		return "magenta"
	case ColorYellow:
		return "yellow"
	case ColorCyan:
		return "cyan"
	case ColorOrange:
		return "orange"
	default:
		return "unknown"
	}
}
