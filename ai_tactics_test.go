package main

import "testing"

// runningState builds a fresh in-progress game for the given settings. Tests
// that place pieces directly on the board recompute the hash afterwards via
// rehash.
func runningState(settings GameSettings) GameState {
	state := DefaultGameState(settings)
	state.Status = StatusRunning
	return state
}

func rehash(state *GameState) {
	state.recomputeHash()
}

func containsMove(moves []Move, target Move) bool {
	for _, move := range moves {
		if move.Equals(target) {
			return true
		}
	}
	return false
}

func TestFindWinningMovesCompletesRow(t *testing.T) {
	settings := ConnectSettings()
	rules := mustRules(t, settings)
	state := runningState(settings)
	state.Board.Set(0, 5, CellBlack)
	state.Board.Set(1, 5, CellBlack)
	state.Board.Set(2, 5, CellBlack)
	rehash(&state)

	wins := FindWinningMoves(state, rules, PlayerBlack)
	if len(wins) != 1 || !wins[0].Equals(Move{X: 3, Y: 5}) {
		t.Fatalf("expected the single win (3,5), got %v", wins)
	}
	if len(FindWinningMoves(state, rules, PlayerWhite)) != 0 {
		t.Fatalf("white has no win in this position")
	}
	// Probing must not leave marks on the board.
	if state.Board.At(3, 5) != CellEmpty {
		t.Fatalf("scanner left a piece on the board")
	}
}

func TestFindBlockingMovesSingleThreat(t *testing.T) {
	settings := ConnectSettings()
	rules := mustRules(t, settings)
	state := runningState(settings)
	state.Board.Set(0, 5, CellBlack)
	state.Board.Set(1, 5, CellBlack)
	state.Board.Set(2, 5, CellBlack)
	state.ToMove = PlayerWhite
	rehash(&state)

	blocks := FindBlockingMoves(state, rules, PlayerWhite)
	if len(blocks) != 1 || !blocks[0].Equals(Move{X: 3, Y: 5}) {
		t.Fatalf("expected the single block (3,5), got %v", blocks)
	}
}

// A gravity block can lift the opponent onto a winning cell: filling (3,5)
// hands white the landing on (3,4) which completes its row-4 line. The
// replay-based scanner must reject it while accepting every other column.
func TestFindBlockingMovesRejectsLiftingBlock(t *testing.T) {
	settings := ConnectSettings()
	rules := mustRules(t, settings)
	state := runningState(settings)
	state.Board.Set(0, 5, CellBlack)
	state.Board.Set(1, 5, CellWhite)
	state.Board.Set(2, 5, CellBlack)
	state.Board.Set(0, 4, CellWhite)
	state.Board.Set(1, 4, CellWhite)
	state.Board.Set(2, 4, CellWhite)
	rehash(&state)

	blocks := FindBlockingMoves(state, rules, PlayerBlack)
	if containsMove(blocks, Move{X: 3, Y: 5}) {
		t.Fatalf("(3,5) lifts white onto its winning cell and must not count as safe")
	}
	if len(blocks) != 6 {
		t.Fatalf("expected the 6 remaining columns to be safe, got %v", blocks)
	}
}

func TestBestSingleBlockOnFork(t *testing.T) {
	settings := ConnectSettings()
	rules := mustRules(t, settings)
	state := runningState(settings)
	state.Board.Set(2, 5, CellWhite)
	state.Board.Set(3, 5, CellWhite)
	state.Board.Set(4, 5, CellWhite)
	rehash(&state)

	if wins := FindWinningMoves(state, rules, PlayerWhite); len(wins) != 2 {
		t.Fatalf("expected the open three to win on both ends, got %v", wins)
	}
	if blocks := FindBlockingMoves(state, rules, PlayerBlack); len(blocks) != 0 {
		t.Fatalf("no single move covers a double threat, got %v", blocks)
	}
	best, ok := BestSingleBlock(state, rules, PlayerBlack)
	if !ok {
		t.Fatalf("BestSingleBlock found nothing")
	}
	if !best.Equals(Move{X: 1, Y: 5}) {
		t.Fatalf("expected (1,5) to leave white one win instead of two, got (%d,%d)", best.X, best.Y)
	}
}

func TestFindForkBlocksSplitPair(t *testing.T) {
	settings := ConnectSettings()
	rules := mustRules(t, settings)
	state := runningState(settings)
	state.Board.Set(1, 5, CellWhite)
	state.Board.Set(3, 5, CellWhite)
	rehash(&state)

	blocks := FindForkBlocks(state, rules, PlayerBlack, ForkScanBottomRow)
	want := []Move{{X: 0, Y: 5}, {X: 2, Y: 5}, {X: 4, Y: 5}}
	if len(blocks) != len(want) {
		t.Fatalf("expected blocks %v, got %v", want, blocks)
	}
	for i, move := range want {
		if !blocks[i].Equals(move) {
			t.Fatalf("block %d: expected (%d,%d), got (%d,%d)", i, move.X, move.Y, blocks[i].X, blocks[i].Y)
		}
	}
}

// A split pair whose gaps float above the landing row is not yet a threat:
// the empties are not playable, so the scan must skip the run.
func TestFindForkBlocksRequiresPlayableGaps(t *testing.T) {
	settings := ConnectSettings()
	rules := mustRules(t, settings)
	state := runningState(settings)
	state.Board.Set(1, 5, CellBlack)
	state.Board.Set(3, 5, CellBlack)
	state.Board.Set(1, 4, CellWhite)
	state.Board.Set(3, 4, CellWhite)
	rehash(&state)

	if blocks := FindForkBlocks(state, rules, PlayerBlack, ForkScanAllRows); len(blocks) != 0 {
		t.Fatalf("floating split pair reported blocks %v", blocks)
	}
}

func TestFilterTrapsDropsLiftingMove(t *testing.T) {
	settings := ConnectSettings()
	rules := mustRules(t, settings)
	state := runningState(settings)
	state.Board.Set(0, 5, CellBlack)
	state.Board.Set(1, 5, CellWhite)
	state.Board.Set(2, 5, CellBlack)
	state.Board.Set(0, 4, CellWhite)
	state.Board.Set(1, 4, CellWhite)
	state.Board.Set(2, 4, CellWhite)
	rehash(&state)

	moves := []Move{{X: 3, Y: 5}, {X: 6, Y: 5}}
	safe := FilterTraps(state, rules, PlayerBlack, moves)
	if len(safe) != 1 || !safe[0].Equals(Move{X: 6, Y: 5}) {
		t.Fatalf("expected only (6,5) to survive, got %v", safe)
	}
}

func TestFilterTrapsKeepsAllWhenEverythingLoses(t *testing.T) {
	settings := ConnectSettings()
	rules := mustRules(t, settings)
	state := runningState(settings)
	state.Board.Set(1, 5, CellWhite)
	state.Board.Set(2, 5, CellWhite)
	state.Board.Set(3, 5, CellWhite)
	rehash(&state)

	moves := []Move{{X: 5, Y: 5}, {X: 6, Y: 5}}
	safe := FilterTraps(state, rules, PlayerBlack, moves)
	if len(safe) != len(moves) {
		t.Fatalf("all-trap position should fall back to the unfiltered set, got %v", safe)
	}
}
