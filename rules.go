package main

import (
	"errors"
	"fmt"
)

var ErrInvalidMove = errors.New("invalid move")

// directions: horizontal, vertical, diag-down, diag-up.
var directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

type Rules struct {
	settings GameSettings
}

// NewRules validates the geometry once; nothing downstream re-checks it.
func NewRules(settings GameSettings) (Rules, error) {
	if settings.Rows <= 0 || settings.Cols <= 0 {
		return Rules{}, fmt.Errorf("board geometry %dx%d: dimensions must be positive", settings.Rows, settings.Cols)
	}
	if settings.WinLength < 2 {
		return Rules{}, fmt.Errorf("win length %d: must be at least 2", settings.WinLength)
	}
	longest := settings.Rows
	if settings.Cols > longest {
		longest = settings.Cols
	}
	if settings.WinLength > longest {
		return Rules{}, fmt.Errorf("win length %d does not fit a %dx%d board", settings.WinLength, settings.Rows, settings.Cols)
	}
	return Rules{settings: settings}, nil
}

func (r Rules) Settings() GameSettings {
	return r.settings
}

func (r Rules) WinLength() int {
	return r.settings.WinLength
}

func (r Rules) Gravity() bool {
	return r.settings.Gravity
}

func (r Rules) IsLegal(state GameState, move Move, player PlayerColor) (bool, string) {
	if state.ToMove != player {
		return false, "not your turn"
	}
	if !state.Board.InBounds(move.X, move.Y) {
		return false, "out of bounds"
	}
	if state.Board.At(move.X, move.Y) != CellEmpty {
		return false, "occupied"
	}
	if r.settings.Gravity {
		landing, ok := state.Board.LandingRow(move.X)
		if !ok {
			return false, "column full"
		}
		if landing != move.Y {
			return false, "piece must land on the lowest empty row"
		}
	}
	return true, ""
}

func (r Rules) IsLegalDefault(state GameState, move Move) (bool, string) {
	return r.IsLegal(state, move, state.ToMove)
}

// ResolveColumn turns a column drop into the concrete landing cell.
func (r Rules) ResolveColumn(board Board, col int) (Move, error) {
	if !r.settings.Gravity {
		return Move{}, fmt.Errorf("%w: not a gravity game", ErrInvalidMove)
	}
	if col < 0 || col >= board.Cols() {
		return Move{}, fmt.Errorf("%w: column %d out of bounds", ErrInvalidMove, col)
	}
	landing, ok := board.LandingRow(col)
	if !ok {
		return Move{}, fmt.Errorf("%w: column %d is full", ErrInvalidMove, col)
	}
	return Move{X: col, Y: landing}, nil
}

// ValidMoves lists every legal placement as a concrete cell. Gravity games
// yield at most one cell per column, ascending by column; free placement
// yields every empty cell in row-major order.
func (r Rules) ValidMoves(board Board) []Move {
	if r.settings.Gravity {
		moves := make([]Move, 0, board.Cols())
		for x := 0; x < board.Cols(); x++ {
			if y, ok := board.LandingRow(x); ok {
				moves = append(moves, Move{X: x, Y: y})
			}
		}
		return moves
	}
	moves := make([]Move, 0, board.CountEmpty())
	for y := 0; y < board.Rows(); y++ {
		for x := 0; x < board.Cols(); x++ {
			if board.At(x, y) == CellEmpty {
				moves = append(moves, Move{X: x, Y: y})
			}
		}
	}
	return moves
}

// IsWinAt reports whether the piece on move's cell completes a run of
// WinLength. This is the single win predicate; everything else goes
// through it.
func (r Rules) IsWinAt(board Board, move Move) bool {
	if !board.InBounds(move.X, move.Y) {
		return false
	}
	cell := board.At(move.X, move.Y)
	if cell == CellEmpty {
		return false
	}
	for _, dir := range directions {
		count := 1
		count += r.countDirection(board, move, cell, dir[0], dir[1])
		count += r.countDirection(board, move, cell, -dir[0], -dir[1])
		if count >= r.settings.WinLength {
			return true
		}
	}
	return false
}

// FindWinLine returns the cells of one completed run through move, for the
// frontend highlight. Only meaningful when IsWinAt holds.
func (r Rules) FindWinLine(board Board, move Move) ([]Move, bool) {
	if !board.InBounds(move.X, move.Y) {
		return nil, false
	}
	cell := board.At(move.X, move.Y)
	if cell == CellEmpty {
		return nil, false
	}
	for _, dir := range directions {
		forward := r.countDirection(board, move, cell, dir[0], dir[1])
		backward := r.countDirection(board, move, cell, -dir[0], -dir[1])
		if 1+forward+backward < r.settings.WinLength {
			continue
		}
		line := make([]Move, 0, 1+forward+backward)
		for i := backward; i > 0; i-- {
			line = append(line, Move{X: move.X - dir[0]*i, Y: move.Y - dir[1]*i})
		}
		line = append(line, Move{X: move.X, Y: move.Y})
		for i := 1; i <= forward; i++ {
			line = append(line, Move{X: move.X + dir[0]*i, Y: move.Y + dir[1]*i})
		}
		return line, true
	}
	return nil, false
}

func (r Rules) IsDraw(board Board) bool {
	return board.CountEmpty() == 0
}

func (r Rules) countDirection(board Board, move Move, cell Cell, dx, dy int) int {
	count := 0
	x := move.X + dx
	y := move.Y + dy
	for board.InBounds(x, y) && board.At(x, y) == cell {
		count++
		x += dx
		y += dy
	}
	return count
}
