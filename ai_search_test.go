package main

import (
	"math"
	"reflect"
	"testing"
)

func TestApplyUndoRestoresState(t *testing.T) {
	settings := ConnectSettings()
	rules := mustRules(t, settings)
	state := runningState(settings)
	original := state.Clone()

	moves := []Move{{X: 3, Y: 5}, {X: 3, Y: 4}, {X: 2, Y: 5}}
	var undos []moveUndo
	for _, move := range moves {
		var undo moveUndo
		applyMoveWithUndo(&state, rules, move, &undo)
		undos = append(undos, undo)
	}
	if state.ToMove != PlayerWhite {
		t.Fatalf("after three plies white should be to move")
	}
	for i := len(undos) - 1; i >= 0; i-- {
		undoMove(&state, undos[i])
	}
	if !reflect.DeepEqual(original, state) {
		t.Fatalf("undo did not restore the state:\nwant %+v\ngot  %+v", original, state)
	}
}

func TestApplyMoveSetsWinStatus(t *testing.T) {
	settings := ConnectSettings()
	rules := mustRules(t, settings)
	state := runningState(settings)
	state.Board.Set(0, 5, CellBlack)
	state.Board.Set(1, 5, CellBlack)
	state.Board.Set(2, 5, CellBlack)
	rehash(&state)

	var undo moveUndo
	applyMoveWithUndo(&state, rules, Move{X: 3, Y: 5}, &undo)
	if state.Status != StatusBlackWon {
		t.Fatalf("expected black win, got status %d", state.Status)
	}
	undoMove(&state, undo)
	if state.Status != StatusRunning {
		t.Fatalf("undo did not restore the running status")
	}
}

func TestOrderMovesCenterOut(t *testing.T) {
	settings := ConnectSettings()
	rules := mustRules(t, settings)
	board := NewBoard(settings.Rows, settings.Cols)
	ordered := orderMoves(board, rules.ValidMoves(board))
	wantCols := []int{3, 2, 4, 1, 5, 0, 6}
	if len(ordered) != len(wantCols) {
		t.Fatalf("expected %d moves, got %d", len(wantCols), len(ordered))
	}
	for i, col := range wantCols {
		if ordered[i].X != col {
			t.Fatalf("position %d: expected column %d, got %d", i, col, ordered[i].X)
		}
	}
}

// exhaustiveValue is a plain minimax with no pruning, no ordering and no
// cache; the reference the pruned search must agree with.
func exhaustiveValue(state *GameState, rules Rules, config Config, player PlayerColor, depth int) float64 {
	switch state.Status {
	case StatusBlackWon, StatusWhiteWon:
		if state.Status == winStatusFor(player) {
			return winScore
		}
		return -winScore
	case StatusDraw:
		return 0
	}
	if depth <= 0 {
		return EvaluateBoard(state.Board, rules, player, config.Heuristics)
	}
	maximizing := state.ToMove == player
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}
	for _, move := range rules.ValidMoves(state.Board) {
		var undo moveUndo
		applyMoveWithUndo(state, rules, move, &undo)
		value := exhaustiveValue(state, rules, config, player, depth-1)
		undoMove(state, undo)
		if maximizing && value > best || !maximizing && value < best {
			best = value
		}
	}
	return best
}

func smallSearchPosition(t *testing.T) (GameState, Rules, Config) {
	t.Helper()
	settings := ConnectSettings()
	settings.Rows = 4
	settings.Cols = 4
	settings.WinLength = 3
	rules := mustRules(t, settings)
	state := runningState(settings)
	state.Board.Set(1, 3, CellBlack)
	state.Board.Set(2, 3, CellWhite)
	rehash(&state)

	config := DefaultConfig()
	config.AiEnableTT = false // exact float scores, no int32 rounding
	return state, rules, config
}

func TestScoreMovesMatchesExhaustiveSearch(t *testing.T) {
	state, rules, config := smallSearchPosition(t)
	const depth = 4

	settings := AISearchSettings{
		Depth:  depth,
		Player: state.ToMove,
		Config: config,
		Cache:  NewSearchCache(config),
	}
	scores := ScoreMoves(state, rules, rules.ValidMoves(state.Board), settings)
	if len(scores) != len(rules.ValidMoves(state.Board)) {
		t.Fatalf("expected a score per candidate, got %d", len(scores))
	}

	for _, scored := range scores {
		working := state.Clone()
		var undo moveUndo
		applyMoveWithUndo(&working, rules, scored.Move, &undo)
		want := exhaustiveValue(&working, rules, config, state.ToMove, depth-1)
		if scored.Score != want {
			t.Fatalf("move (%d,%d): pruned score %f, exhaustive %f", scored.Move.X, scored.Move.Y, scored.Score, want)
		}
	}
}

func TestScoreMovesParallelMatchesSequential(t *testing.T) {
	state, rules, config := smallSearchPosition(t)
	config.AiRootWorkers = 4
	candidates := rules.ValidMoves(state.Board)

	settings := AISearchSettings{
		Depth:  4,
		Player: state.ToMove,
		Config: config,
		Cache:  NewSearchCache(config),
	}
	sequential := ScoreMoves(state, rules, candidates, settings)
	parallel := ScoreMovesParallel(state, rules, candidates, settings)
	if !reflect.DeepEqual(sequential, parallel) {
		t.Fatalf("parallel scores diverge:\nseq %v\npar %v", sequential, parallel)
	}
}

func TestScoreMovesDoesNotMutateCaller(t *testing.T) {
	state, rules, config := smallSearchPosition(t)
	before := state.Clone()
	settings := AISearchSettings{
		Depth:  3,
		Player: state.ToMove,
		Config: config,
		Cache:  NewSearchCache(config),
	}
	ScoreMoves(state, rules, rules.ValidMoves(state.Board), settings)
	if !reflect.DeepEqual(before, state) {
		t.Fatalf("search mutated the caller's state")
	}
}

func TestScoreMovesWithTTAgreesOnBestMove(t *testing.T) {
	state, rules, config := smallSearchPosition(t)
	candidates := rules.ValidMoves(state.Board)

	withoutTT := AISearchSettings{Depth: 4, Player: state.ToMove, Config: config, Cache: NewSearchCache(config)}
	plain := ScoreMoves(state, rules, candidates, withoutTT)

	ttConfig := config
	ttConfig.AiEnableTT = true
	withTT := AISearchSettings{Depth: 4, Player: state.ToMove, Config: ttConfig, Cache: NewSearchCache(ttConfig)}
	cached := ScoreMoves(state, rules, candidates, withTT)

	// TT scores are rounded to int32 on store, so compare the ranking, not
	// the raw floats.
	if !reflect.DeepEqual(bestScored(plain), bestScored(cached)) {
		t.Fatalf("TT changed the best move set:\nplain %v\ncached %v", bestScored(plain), bestScored(cached))
	}
}

func TestScoreMovesDeepeningFixedDepth(t *testing.T) {
	state, rules, config := smallSearchPosition(t)
	config.AiTimeBudgetMs = 0
	candidates := rules.ValidMoves(state.Board)
	stats := &SearchStats{}
	settings := AISearchSettings{
		Depth:  3,
		Player: state.ToMove,
		Config: config,
		Cache:  NewSearchCache(config),
		Stats:  stats,
	}
	scores, completed := ScoreMovesDeepening(state, rules, candidates, settings)
	if completed != 3 {
		t.Fatalf("expected the full fixed depth, got %d", completed)
	}
	if len(scores) != len(candidates) {
		t.Fatalf("expected a score per candidate, got %d", len(scores))
	}
	if stats.CompletedDepths != 3 {
		t.Fatalf("stats report depth %d", stats.CompletedDepths)
	}
}

func TestScoreMovesDeepeningCompletesWithinBudget(t *testing.T) {
	state, rules, config := smallSearchPosition(t)
	config.AiTimeBudgetMs = 30000 // far more than this tiny tree needs
	candidates := rules.ValidMoves(state.Board)
	settings := AISearchSettings{
		Depth:  3,
		Player: state.ToMove,
		Config: config,
		Cache:  NewSearchCache(config),
	}
	scores, completed := ScoreMovesDeepening(state, rules, candidates, settings)
	if completed != 3 {
		t.Fatalf("generous budget should reach the target depth, got %d", completed)
	}
	if len(scores) != len(candidates) {
		t.Fatalf("expected a score per candidate, got %d", len(scores))
	}
}

func TestScoreMovesDeepeningAlwaysReturnsScores(t *testing.T) {
	state, rules, config := smallSearchPosition(t)
	config.AiTimeBudgetMs = 1
	candidates := rules.ValidMoves(state.Board)
	stats := &SearchStats{}
	settings := AISearchSettings{
		Depth:  6,
		Player: state.ToMove,
		Config: config,
		Cache:  NewSearchCache(config),
		Stats:  stats,
	}
	scores, completed := ScoreMovesDeepening(state, rules, candidates, settings)
	if completed < 1 {
		t.Fatalf("expected at least the depth-1 fallback, got %d", completed)
	}
	if len(scores) != len(candidates) {
		t.Fatalf("even under a tiny budget every candidate needs a score, got %d", len(scores))
	}
}
