package main

import (
	"reflect"
	"testing"
)

func newTestStrategy(t *testing.T, settings GameSettings, config StrategyConfig) *Strategy {
	t.Helper()
	strategy, err := NewStrategy(settings, config, DefaultConfig())
	if err != nil {
		t.Fatalf("NewStrategy: %v", err)
	}
	return strategy
}

func TestGetBestMoveTakesImmediateWin(t *testing.T) {
	settings := ConnectSettings()
	state := runningState(settings)
	state.Board.Set(0, 5, CellBlack)
	state.Board.Set(1, 5, CellBlack)
	state.Board.Set(2, 5, CellBlack)
	state.Board.Set(0, 4, CellWhite)
	state.Board.Set(1, 4, CellWhite)
	rehash(&state)

	for _, style := range []StrategyStyle{StyleMinimax, StyleGreedy, StyleWeighted} {
		config := DefaultStrategyConfig()
		config.Style = style
		config.Depth = 2
		strategy := newTestStrategy(t, settings, config)
		move, ok := strategy.GetBestMove(state)
		if !ok {
			t.Fatalf("%s: no move returned", style)
		}
		if !move.Equals(Move{X: 3, Y: 5}) {
			t.Fatalf("%s: expected the winning (3,5), got (%d,%d)", style, move.X, move.Y)
		}
	}
}

func TestGetBestMoveBlocksThreat(t *testing.T) {
	settings := ConnectSettings()
	state := runningState(settings)
	state.Board.Set(0, 5, CellBlack)
	state.Board.Set(1, 5, CellBlack)
	state.Board.Set(2, 5, CellBlack)
	state.ToMove = PlayerWhite
	rehash(&state)

	for _, style := range []StrategyStyle{StyleMinimax, StyleGreedy, StyleWeighted} {
		config := DefaultStrategyConfig()
		config.Style = style
		config.Depth = 2
		strategy := newTestStrategy(t, settings, config)
		move, ok := strategy.GetBestMove(state)
		if !ok {
			t.Fatalf("%s: no move returned", style)
		}
		if !move.Equals(Move{X: 3, Y: 5}) {
			t.Fatalf("%s: expected the forced block (3,5), got (%d,%d)", style, move.X, move.Y)
		}
	}
}

func TestGetBestMoveOpensAtCenter(t *testing.T) {
	connect := runningState(ConnectSettings())
	freestyle := runningState(FreestyleSettings())

	for _, style := range []StrategyStyle{StyleMinimax, StyleGreedy, StyleWeighted} {
		config := DefaultStrategyConfig()
		config.Style = style
		config.Depth = 2

		strategy := newTestStrategy(t, ConnectSettings(), config)
		move, ok := strategy.GetBestMove(connect)
		if !ok || !move.Equals(Move{X: 3, Y: 5}) {
			t.Fatalf("%s connect: expected the center drop (3,5), got (%d,%d) ok=%v", style, move.X, move.Y, ok)
		}

		strategy = newTestStrategy(t, FreestyleSettings(), config)
		move, ok = strategy.GetBestMove(freestyle)
		if !ok || !move.Equals(Move{X: 7, Y: 7}) {
			t.Fatalf("%s freestyle: expected the center (7,7), got (%d,%d) ok=%v", style, move.X, move.Y, ok)
		}
	}
}

func TestGetBestMoveCoversSplitPair(t *testing.T) {
	settings := ConnectSettings()
	state := runningState(settings)
	state.Board.Set(1, 5, CellWhite)
	state.Board.Set(3, 5, CellWhite)
	state.Board.Set(6, 5, CellBlack)
	rehash(&state)

	config := DefaultStrategyConfig()
	config.Style = StyleGreedy
	config.Depth = 2
	strategy := newTestStrategy(t, settings, config)
	move, ok := strategy.GetBestMove(state)
	if !ok {
		t.Fatalf("no move returned")
	}
	covers := []Move{{X: 0, Y: 5}, {X: 2, Y: 5}, {X: 4, Y: 5}}
	if !containsMove(covers, move) {
		t.Fatalf("expected a split-pair cover from %v, got (%d,%d)", covers, move.X, move.Y)
	}
}

func TestGetBestMoveOnFinishedGame(t *testing.T) {
	state := runningState(ConnectSettings())
	state.Status = StatusBlackWon
	strategy := newTestStrategy(t, ConnectSettings(), DefaultStrategyConfig())
	if _, ok := strategy.GetBestMove(state); ok {
		t.Fatalf("finished game still produced a move")
	}
}

func TestGetBestMoveIsDeterministic(t *testing.T) {
	settings := ConnectSettings()
	state := runningState(settings)
	state.Board.Set(3, 5, CellBlack)
	state.Board.Set(2, 5, CellWhite)
	rehash(&state)

	for _, style := range []StrategyStyle{StyleMinimax, StyleGreedy, StyleWeighted} {
		config := DefaultStrategyConfig()
		config.Style = style
		config.Depth = 3
		strategy := newTestStrategy(t, settings, config)
		first, ok := strategy.GetBestMove(state)
		if !ok {
			t.Fatalf("%s: no move returned", style)
		}
		for i := 0; i < 3; i++ {
			move, ok := strategy.GetBestMove(state)
			if !ok || !move.Equals(first) {
				t.Fatalf("%s: call %d returned (%d,%d), first call (%d,%d)", style, i+2, move.X, move.Y, first.X, first.Y)
			}
		}
	}
}

func TestGetBestMoveDoesNotMutateState(t *testing.T) {
	settings := ConnectSettings()
	state := runningState(settings)
	state.Board.Set(3, 5, CellBlack)
	state.Board.Set(2, 5, CellWhite)
	rehash(&state)
	before := state.Clone()

	for _, style := range []StrategyStyle{StyleMinimax, StyleGreedy, StyleWeighted} {
		config := DefaultStrategyConfig()
		config.Style = style
		config.Depth = 3
		strategy := newTestStrategy(t, settings, config)
		if _, ok := strategy.GetBestMove(state); !ok {
			t.Fatalf("%s: no move returned", style)
		}
		if !reflect.DeepEqual(before, state) {
			t.Fatalf("%s mutated the caller's state", style)
		}
	}
}

func TestGetBestMoveReturnsLegalMoves(t *testing.T) {
	settings := FreestyleSettings()
	rules := mustRules(t, settings)
	state := runningState(settings)
	state.Board.Set(7, 7, CellBlack)
	state.Board.Set(8, 7, CellWhite)
	rehash(&state)

	for _, style := range []StrategyStyle{StyleMinimax, StyleGreedy, StyleWeighted} {
		config := DefaultStrategyConfig()
		config.Style = style
		config.Depth = 1
		strategy := newTestStrategy(t, settings, config)
		move, ok := strategy.GetBestMove(state)
		if !ok {
			t.Fatalf("%s: no move returned", style)
		}
		if legal, reason := rules.IsLegalDefault(state, move); !legal {
			t.Fatalf("%s: illegal move (%d,%d): %s", style, move.X, move.Y, reason)
		}
	}
}

func TestNewStrategyForcesFullForkScanWithoutGravity(t *testing.T) {
	config := DefaultStrategyConfig()
	config.ForkScan = ForkScanBottomRow
	strategy := newTestStrategy(t, FreestyleSettings(), config)
	if strategy.Config().ForkScan != ForkScanAllRows {
		t.Fatalf("freestyle should force the all-rows fork scan")
	}
	if strategy.Rules().Gravity() {
		t.Fatalf("freestyle strategy reports gravity")
	}
}

func TestNewStrategyRejectsBadSettings(t *testing.T) {
	settings := ConnectSettings()
	settings.WinLength = 20
	if _, err := NewStrategy(settings, DefaultStrategyConfig(), DefaultConfig()); err == nil {
		t.Fatalf("expected an error for an impossible win length")
	}
}

func TestBestScoredKeepsAllTies(t *testing.T) {
	scores := []MoveScore{
		{Move: Move{X: 0, Y: 0}, Score: 10},
		{Move: Move{X: 1, Y: 0}, Score: 30},
		{Move: Move{X: 2, Y: 0}, Score: 30},
		{Move: Move{X: 3, Y: 0}, Score: -5},
	}
	best := bestScored(scores)
	want := []Move{{X: 1, Y: 0}, {X: 2, Y: 0}}
	if !reflect.DeepEqual(best, want) {
		t.Fatalf("expected %v, got %v", want, best)
	}
}
