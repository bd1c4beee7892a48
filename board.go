package main

import "fmt"

type Cell int

const (
	CellEmpty Cell = iota
	CellBlack
	CellWhite
)

// Board is a rectangular grid addressed by (x, y) with x the column and y the
// row. Row 0 is the top; gravity variants land pieces on the highest y.
type Board struct {
	rows  int
	cols  int
	cells []Cell
}

func NewBoard(rows, cols int) Board {
	b := Board{}
	b.Reset(rows, cols)
	return b
}

func (b *Board) Reset(rows, cols int) {
	b.rows = rows
	b.cols = cols
	b.cells = make([]Cell, rows*cols)
}

func (b Board) At(x, y int) Cell {
	return b.cells[b.index(x, y)]
}

func (b *Board) Set(x, y int, value Cell) {
	b.cells[b.index(x, y)] = value
}

func (b *Board) Remove(x, y int) {
	b.cells[b.index(x, y)] = CellEmpty
}

func (b Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.cols && y < b.rows
}

func (b Board) IsEmpty(x, y int) bool {
	return b.InBounds(x, y) && b.At(x, y) == CellEmpty
}

func (b Board) CountEmpty() int {
	count := 0
	for _, cell := range b.cells {
		if cell == CellEmpty {
			count++
		}
	}
	return count
}

func (b Board) IsFull() bool {
	for _, cell := range b.cells {
		if cell == CellEmpty {
			return false
		}
	}
	return true
}

// LandingRow returns the row a piece dropped in column x would settle on,
// false when the column is full or out of bounds.
func (b Board) LandingRow(x int) (int, bool) {
	if x < 0 || x >= b.cols {
		return 0, false
	}
	for y := b.rows - 1; y >= 0; y-- {
		if b.At(x, y) == CellEmpty {
			return y, true
		}
	}
	return 0, false
}

func (b Board) Rows() int {
	return b.rows
}

func (b Board) Cols() int {
	return b.cols
}

func (b Board) Clone() Board {
	clone := Board{rows: b.rows, cols: b.cols}
	clone.cells = make([]Cell, len(b.cells))
	copy(clone.cells, b.cells)
	return clone
}

func (b Board) index(x, y int) int {
	return y*b.cols + x
}

func (c Cell) String() string {
	switch c {
	case CellBlack:
		return "Black"
	case CellWhite:
		return "White"
	default:
		return "Empty"
	}
}

func CellFromPlayer(player PlayerColor) Cell {
	if player == PlayerBlack {
		return CellBlack
	}
	return CellWhite
}

func PlayerFromCell(cell Cell) (PlayerColor, error) {
	switch cell {
	case CellBlack:
		return PlayerBlack, nil
	case CellWhite:
		return PlayerWhite, nil
	default:
		return PlayerBlack, fmt.Errorf("empty cell has no player")
	}
}
