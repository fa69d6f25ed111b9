package puzzle

import "github.com/vovakirdan/tui-puzzle/internal/core"

// TileID identifies a tile. IDs are handed out by an engine-wide counter
// and are never reused across games.
type TileID int

// ImageRegion describes which part of the source image a tile shows.
// Offsets are percentages of the image, Scale is the rendered image size
// as a percentage of one tile.
type ImageRegion struct {
	Source  string  `json:"source"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Scale   float64 `json:"scale"`
}

// regionFor computes the visible image region of the tile whose home cell is pos.
func regionFor(source string, pos core.Position, size int) ImageRegion {
	r := ImageRegion{
		Source: source,
		Scale:  float64(size) * 100,
	}
	if size == 1 {
		r.OffsetX, r.OffsetY = 50, 50
		return r
	}
	r.OffsetX = float64(pos.Col) * 100 / float64(size-1)
	r.OffsetY = float64(pos.Row) * 100 / float64(size-1)
	return r
}

// Tile is one piece of the puzzle.
type Tile struct {
	ID      TileID        `json:"id"`
	Index   int           `json:"index"` // construction order
	Correct core.Position `json:"correct"`
	Current core.Position `json:"current"`
	Image   ImageRegion   `json:"image"`
}

// InPlace reports whether the tile sits on its home cell.
func (t Tile) InPlace() bool {
	return t.Current == t.Correct
}
