package core

// Color is a palette entry for a screen cell. Renderers map each entry to a
// terminal color; the zero value leaves the terminal default in place.
type Color uint8

// Board palette.
const (
	ColorDefault Color = iota
	ColorRed           // abandoned game
	ColorGreen         // tile on its home cell
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorOrange
	ColorGray // status line, image offsets
	ColorBrightGreen
	ColorBrightYellow // pending selection
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightWhite // title, cursor frame

	paletteSize
)

// Palette returns every color in declaration order.
func Palette() []Color {
	p := make([]Color, 0, paletteSize)
	for c := ColorDefault; c < paletteSize; c++ {
		p = append(p, c)
	}
	return p
}
