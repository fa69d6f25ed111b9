// Package core provides fundamental types and utilities for the puzzle platform.
// It contains no external dependencies (especially no Bubble Tea) to keep game
// logic pure and testable.
package core

import "fmt"

// Position is a cell on a square grid, addressed by row and column.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Pos is shorthand for Position{Row: row, Col: col}.
func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

// PositionAt converts a row-major index into a position on a size x size grid.
func PositionAt(index, size int) Position {
	return Position{Row: index / size, Col: index % size}
}

// Index returns the row-major index of p on a size x size grid.
func (p Position) Index(size int) int {
	return p.Row*size + p.Col
}

// In reports whether p lies inside a size x size grid.
func (p Position) In(size int) bool {
	return p.Row >= 0 && p.Row < size && p.Col >= 0 && p.Col < size
}

// String returns the position as "(row,col)".
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// GridPositions returns every position of a size x size grid in row-major order.
func GridPositions(size int) []Position {
	if size <= 0 {
		return nil
	}
	out := make([]Position, 0, size*size)
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			out = append(out, Position{Row: row, Col: col})
		}
	}
	return out
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Wrap maps val into [0, n) with wrap-around, used for cursor cycling.
func Wrap(val, n int) int {
	if n <= 0 {
		return 0
	}
	val %= n
	if val < 0 {
		val += n
	}
	return val
}
