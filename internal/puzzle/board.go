package puzzle

import (
	"math/rand"

	"github.com/vovakirdan/tui-puzzle/internal/core"
)

// Board is the ordered collection of size*size tiles of one game.
// Tiles stay in construction order; only their Current positions move.
type Board struct {
	Size  int    `json:"size"`
	Tiles []Tile `json:"tiles"`
}

// newBoard builds a solved board whose tile IDs start at firstID.
func newBoard(size int, image string, firstID TileID) Board {
	b := Board{
		Size:  size,
		Tiles: make([]Tile, 0, size*size),
	}
	for i := 0; i < size*size; i++ {
		pos := core.PositionAt(i, size)
		b.Tiles = append(b.Tiles, Tile{
			ID:      firstID + TileID(i),
			Index:   i,
			Correct: pos,
			Current: pos,
			Image:   regionFor(image, pos, size),
		})
	}
	return b
}

// shuffle assigns a uniformly random permutation of all grid cells to the
// tiles using Fisher-Yates. Every permutation is reachable: any two tiles
// may be swapped, so there is no parity restriction to respect.
func (b *Board) shuffle(rng *rand.Rand) {
	cells := core.GridPositions(b.Size)
	for i := len(cells) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cells[i], cells[j] = cells[j], cells[i]
	}
	for i := range b.Tiles {
		b.Tiles[i].Current = cells[i]
	}
}

// ensureNotSolved swaps the first two tiles when a shuffle reproduced the
// solved layout. It never reshuffles.
func (b *Board) ensureNotSolved() bool {
	if len(b.Tiles) < 2 || !b.Solved() {
		return false
	}
	b.Tiles[0].Current, b.Tiles[1].Current = b.Tiles[1].Current, b.Tiles[0].Current
	return true
}

// Solved reports whether every tile is on its home cell.
func (b Board) Solved() bool {
	for _, t := range b.Tiles {
		if !t.InPlace() {
			return false
		}
	}
	return true
}

// Valid reports whether the Current positions form a bijection onto the grid.
func (b Board) Valid() bool {
	if b.Size < 1 || len(b.Tiles) != b.Size*b.Size {
		return false
	}
	seen := make([]bool, len(b.Tiles))
	for _, t := range b.Tiles {
		if !t.Current.In(b.Size) {
			return false
		}
		idx := t.Current.Index(b.Size)
		if seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}

// PieceAt returns the tile currently occupying (row, col).
func (b Board) PieceAt(row, col int) (Tile, bool) {
	want := core.Pos(row, col)
	for _, t := range b.Tiles {
		if t.Current == want {
			return t, true
		}
	}
	return Tile{}, false
}

// Tile returns the tile with the given ID.
func (b Board) Tile(id TileID) (Tile, bool) {
	if i := b.indexOf(id); i >= 0 {
		return b.Tiles[i], true
	}
	return Tile{}, false
}

// InPlace counts tiles sitting on their home cell.
func (b Board) InPlace() int {
	n := 0
	for _, t := range b.Tiles {
		if t.InPlace() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy safe to hand to observers.
func (b Board) Clone() Board {
	tiles := make([]Tile, len(b.Tiles))
	copy(tiles, b.Tiles)
	return Board{Size: b.Size, Tiles: tiles}
}

func (b Board) indexOf(id TileID) int {
	for i, t := range b.Tiles {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// swap exchanges the Current positions of two tiles.
func (b *Board) swap(a, c TileID) bool {
	i, j := b.indexOf(a), b.indexOf(c)
	if i < 0 || j < 0 || i == j {
		return false
	}
	b.Tiles[i].Current, b.Tiles[j].Current = b.Tiles[j].Current, b.Tiles[i].Current
	return true
}
