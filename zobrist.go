package main

import "sync"

type ZobristTable struct {
	rows  int
	cols  int
	cells []uint64
	side  uint64
}

type zobristKey struct {
	rows int
	cols int
}

type zobristStore struct {
	mu     sync.Mutex
	tables map[zobristKey]*ZobristTable
}

var zobristTables = &zobristStore{tables: make(map[zobristKey]*ZobristTable)}

func GetZobrist(rows, cols int) *ZobristTable {
	zobristTables.mu.Lock()
	defer zobristTables.mu.Unlock()
	key := zobristKey{rows: rows, cols: cols}
	if table, ok := zobristTables.tables[key]; ok {
		return table
	}
	rng := splitmix64{state: uint64(0x9e3779b97f4a7c15) ^ uint64(rows)<<32 ^ uint64(cols)}
	table := &ZobristTable{rows: rows, cols: cols, cells: make([]uint64, rows*cols*2)}
	for i := range table.cells {
		table.cells[i] = rng.next()
	}
	table.side = rng.next()
	zobristTables.tables[key] = table
	return table
}

func (z *ZobristTable) stone(x, y int, player PlayerColor) uint64 {
	idx := (y*z.cols + x) * 2
	if player == PlayerWhite {
		idx++
	}
	return z.cells[idx]
}

func ComputeHash(state GameState) uint64 {
	z := GetZobrist(state.Board.Rows(), state.Board.Cols())
	var hash uint64
	for y := 0; y < state.Board.Rows(); y++ {
		for x := 0; x < state.Board.Cols(); x++ {
			cell := state.Board.At(x, y)
			if cell == CellEmpty {
				continue
			}
			player, _ := PlayerFromCell(cell)
			hash ^= z.stone(x, y, player)
		}
	}
	if state.ToMove == PlayerWhite {
		hash ^= z.side
	}
	return hash
}

// UpdateHashAfterMove applies the incremental stone and side-to-move deltas.
// Calling it a second time with the same arguments undoes the first call.
func UpdateHashAfterMove(state *GameState, move Move, player PlayerColor) {
	z := GetZobrist(state.Board.Rows(), state.Board.Cols())
	state.Hash ^= z.stone(move.X, move.Y, player)
	state.Hash ^= z.side
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
