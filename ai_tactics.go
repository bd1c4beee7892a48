package main

// FindWinningMoves returns every legal move that wins immediately for
// player, in ValidMoves order. The board is probed with a transient
// set/remove, so the caller's state is untouched on return.
func FindWinningMoves(state GameState, rules Rules, player PlayerColor) []Move {
	cell := CellFromPlayer(player)
	var wins []Move
	for _, move := range rules.ValidMoves(state.Board) {
		state.Board.Set(move.X, move.Y, cell)
		if rules.IsWinAt(state.Board, move) {
			wins = append(wins, move)
		}
		state.Board.Remove(move.X, move.Y)
	}
	return wins
}

func hasWinningMove(state GameState, rules Rules, player PlayerColor) bool {
	cell := CellFromPlayer(player)
	for _, move := range rules.ValidMoves(state.Board) {
		state.Board.Set(move.X, move.Y, cell)
		win := rules.IsWinAt(state.Board, move)
		state.Board.Remove(move.X, move.Y)
		if win {
			return true
		}
	}
	return false
}

// FindBlockingMoves returns the moves for player after which the opponent
// has no immediate win. Empty when no single move covers every threat: a
// fork. Note that in gravity games a block can itself enable a threat on
// the row above, which is why each candidate is replayed instead of just
// occupying threat cells.
func FindBlockingMoves(state GameState, rules Rules, player PlayerColor) []Move {
	opponent := otherPlayer(player)
	cell := CellFromPlayer(player)
	var blocks []Move
	for _, move := range rules.ValidMoves(state.Board) {
		state.Board.Set(move.X, move.Y, cell)
		safe := rules.IsWinAt(state.Board, move) || !hasWinningMove(state, rules, opponent)
		state.Board.Remove(move.X, move.Y)
		if safe {
			blocks = append(blocks, move)
		}
	}
	return blocks
}

// BestSingleBlock picks the move leaving the opponent the fewest immediate
// winning replies. Used when FindBlockingMoves comes back empty: the game
// is lost against perfect play, but we still cover as much as we can.
// Ties resolve to the earliest candidate in ValidMoves order.
func BestSingleBlock(state GameState, rules Rules, player PlayerColor) (Move, bool) {
	opponent := otherPlayer(player)
	cell := CellFromPlayer(player)
	best := Move{}
	bestCount := 0
	found := false
	for _, move := range rules.ValidMoves(state.Board) {
		state.Board.Set(move.X, move.Y, cell)
		remaining := len(FindWinningMoves(state, rules, opponent))
		state.Board.Remove(move.X, move.Y)
		if !found || remaining < bestCount {
			best = move
			bestCount = remaining
			found = true
		}
	}
	return best, found
}

type ForkScanScope int

const (
	// ForkScanBottomRow checks only horizontal runs on the bottom row, the
	// cheap scan that matters most under gravity.
	ForkScanBottomRow ForkScanScope = iota
	// ForkScanAllRows checks every direction on every row, counting an
	// empty cell only when it is immediately playable.
	ForkScanAllRows
)

// FindForkBlocks scans for the opponent's open split pair, the four-cell run
// reading empty/piece/empty/piece in either phase with both empties
// playable. Left alone it becomes a double threat, so its playable empty
// cells come back as block candidates, deduplicated in scan order.
func FindForkBlocks(state GameState, rules Rules, player PlayerColor, scope ForkScanScope) []Move {
	opponent := CellFromPlayer(otherPlayer(player))
	board := state.Board
	seen := make(map[Move]struct{})
	var blocks []Move

	addRun := func(cells [4]Move) {
		pattern := [4]bool{} // true = opponent piece
		for i, c := range cells {
			switch board.At(c.X, c.Y) {
			case opponent:
				pattern[i] = true
			case CellEmpty:
				if !isPlayable(board, rules, c) {
					return
				}
			default:
				return
			}
		}
		phaseA := !pattern[0] && pattern[1] && !pattern[2] && pattern[3]
		phaseB := pattern[0] && !pattern[1] && pattern[2] && !pattern[3]
		if !phaseA && !phaseB {
			return
		}
		for i, c := range cells {
			if pattern[i] {
				continue
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			blocks = append(blocks, c)
		}
	}

	if scope == ForkScanBottomRow {
		y := board.Rows() - 1
		for x := 0; x+3 < board.Cols(); x++ {
			addRun([4]Move{NewMove(x, y), NewMove(x+1, y), NewMove(x+2, y), NewMove(x+3, y)})
		}
		return blocks
	}

	for _, dir := range directions {
		dx := dir[0]
		dy := dir[1]
		for y := 0; y < board.Rows(); y++ {
			for x := 0; x < board.Cols(); x++ {
				endX := x + dx*3
				endY := y + dy*3
				if endX < 0 || endX >= board.Cols() || endY < 0 || endY >= board.Rows() {
					continue
				}
				addRun([4]Move{
					{X: x, Y: y},
					{X: x + dx, Y: y + dy},
					{X: x + dx*2, Y: y + dy*2},
					{X: x + dx*3, Y: y + dy*3},
				})
			}
		}
	}
	return blocks
}

// isPlayable reports whether a piece can occupy the cell right now: empty
// under free placement, the column's landing cell under gravity.
func isPlayable(board Board, rules Rules, cell Move) bool {
	if !board.IsEmpty(cell.X, cell.Y) {
		return false
	}
	if !rules.Gravity() {
		return true
	}
	landing, ok := board.LandingRow(cell.X)
	return ok && landing == cell.Y
}

// FilterTraps drops moves that hand the opponent an immediate win on the
// next turn. When every candidate is a trap the unfiltered set comes back:
// the position is lost either way and the caller still needs a move.
func FilterTraps(state GameState, rules Rules, player PlayerColor, moves []Move) []Move {
	opponent := otherPlayer(player)
	cell := CellFromPlayer(player)
	safe := make([]Move, 0, len(moves))
	for _, move := range moves {
		state.Board.Set(move.X, move.Y, cell)
		trap := !rules.IsWinAt(state.Board, move) && hasWinningMove(state, rules, opponent)
		state.Board.Remove(move.X, move.Y)
		if !trap {
			safe = append(safe, move)
		}
	}
	if len(safe) == 0 {
		return moves
	}
	return safe
}
