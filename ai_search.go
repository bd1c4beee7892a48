package main

import (
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

type SearchStats struct {
	Start           time.Time
	Nodes           atomic.Int64
	Cutoffs         atomic.Int64
	TTProbes        atomic.Int64
	TTHits          atomic.Int64
	TTStores        atomic.Int64
	CompletedDepths int
	DepthDurations  []time.Duration
}

type SearchCache struct {
	TT *TranspositionTable
}

func NewSearchCache(config Config) *SearchCache {
	cache := &SearchCache{}
	if config.AiEnableTT {
		cache.TT = NewTranspositionTable(uint64(config.AiTtSize), config.AiTtBuckets)
	}
	return cache
}

type AISearchSettings struct {
	Depth      int
	Player     PlayerColor
	Config     Config
	Cache      *SearchCache
	Stats      *SearchStats
	ShouldStop func() bool
}

type MoveScore struct {
	Move  Move
	Score float64
}

// moveUndo records what applyMoveWithUndo changed so undoMove can restore
// the state exactly, board, hash, turn and status included.
type moveUndo struct {
	move            Move
	player          PlayerColor
	prevStatus      GameStatus
	prevLastMove    Move
	prevHasLastMove bool
}

func applyMoveWithUndo(state *GameState, rules Rules, move Move, undo *moveUndo) {
	player := state.ToMove
	undo.move = move
	undo.player = player
	undo.prevStatus = state.Status
	undo.prevLastMove = state.LastMove
	undo.prevHasLastMove = state.HasLastMove

	state.Board.Set(move.X, move.Y, CellFromPlayer(player))
	state.LastMove = move
	state.HasLastMove = true
	if rules.IsWinAt(state.Board, move) {
		state.Status = winStatusFor(player)
	} else if rules.IsDraw(state.Board) {
		state.Status = StatusDraw
	}
	state.ToMove = otherPlayer(player)
	UpdateHashAfterMove(state, move, player)
}

func undoMove(state *GameState, undo moveUndo) {
	// The zobrist delta is an xor, so replaying it reverses it.
	UpdateHashAfterMove(state, undo.move, undo.player)
	state.ToMove = undo.player
	state.Status = undo.prevStatus
	state.LastMove = undo.prevLastMove
	state.HasLastMove = undo.prevHasLastMove
	state.Board.Remove(undo.move.X, undo.move.Y)
}

// orderMoves sorts center-outward: moves nearer the board center first,
// ties broken by row then column so the order is total and stable.
func orderMoves(board Board, moves []Move) []Move {
	ordered := append([]Move(nil), moves...)
	cx := board.Cols() - 1
	cy := board.Rows() - 1
	dist := func(m Move) int {
		dx := 2*m.X - cx
		if dx < 0 {
			dx = -dx
		}
		dy := 2*m.Y - cy
		if dy < 0 {
			dy = -dy
		}
		return dx + dy
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := dist(ordered[i]), dist(ordered[j])
		if di != dj {
			return di < dj
		}
		if ordered[i].Y != ordered[j].Y {
			return ordered[i].Y < ordered[j].Y
		}
		return ordered[i].X < ordered[j].X
	})
	return ordered
}

func isTerminalStatus(status GameStatus) bool {
	return status == StatusBlackWon || status == StatusWhiteWon || status == StatusDraw
}

// minimax returns the exact value of the position from settings.Player's
// perspective when called with a full (-inf, +inf) window; narrower windows
// only tighten what alpha-beta may prune, never the returned bound's
// correctness. The state is mutated and restored via undo tokens.
func minimax(state *GameState, rules Rules, settings AISearchSettings, depth int, alpha, beta float64) float64 {
	stats := settings.Stats
	if stats != nil {
		stats.Nodes.Add(1)
	}
	switch state.Status {
	case StatusBlackWon, StatusWhiteWon:
		if state.Status == winStatusFor(settings.Player) {
			return winScore
		}
		return -winScore
	case StatusDraw:
		return 0
	}
	if depth <= 0 {
		return EvaluateBoard(state.Board, rules, settings.Player, settings.Config.Heuristics)
	}
	if settings.ShouldStop != nil && settings.ShouldStop() {
		return EvaluateBoard(state.Board, rules, settings.Player, settings.Config.Heuristics)
	}

	var tt *TranspositionTable
	if settings.Cache != nil {
		tt = settings.Cache.TT
	}
	key := state.Hash
	if tt != nil {
		if stats != nil {
			stats.TTProbes.Add(1)
		}
		if entry, ok := tt.Probe(key); ok && entry.Depth >= depth {
			if stats != nil {
				stats.TTHits.Add(1)
			}
			value := entry.ScoreFloat()
			switch entry.Flag {
			case TTExact:
				return value
			case TTLower:
				if value > alpha {
					alpha = value
				}
			case TTUpper:
				if value < beta {
					beta = value
				}
			}
			if alpha >= beta {
				return value
			}
		}
	}

	alphaOrig := alpha
	betaOrig := beta
	maximizing := state.ToMove == settings.Player
	moves := orderMoves(state.Board, rules.ValidMoves(state.Board))

	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}
	var bestMove Move
	for _, move := range moves {
		var undo moveUndo
		applyMoveWithUndo(state, rules, move, &undo)
		value := minimax(state, rules, settings, depth-1, alpha, beta)
		undoMove(state, undo)

		if maximizing {
			if value > best {
				best = value
				bestMove = move
			}
			if best > alpha {
				alpha = best
			}
		} else {
			if value < best {
				best = value
				bestMove = move
			}
			if best < beta {
				beta = best
			}
		}
		if alpha >= beta {
			if stats != nil {
				stats.Cutoffs.Add(1)
			}
			break
		}
	}

	if tt != nil {
		flag := TTExact
		if best <= alphaOrig {
			flag = TTUpper
		} else if best >= betaOrig {
			flag = TTLower
		}
		tt.Store(key, depth, best, flag, bestMove)
		if stats != nil {
			stats.TTStores.Add(1)
		}
	}
	return best
}

// ScoreMoves searches every candidate to settings.Depth and returns exact
// scores in center-outward order. Each candidate gets the full alpha-beta
// window, so the values match an exhaustive minimax; pruning happens only
// inside the subtrees. The caller's state is never mutated.
func ScoreMoves(state GameState, rules Rules, candidates []Move, settings AISearchSettings) []MoveScore {
	working := state.Clone()
	if working.Status == StatusNotStarted {
		working.Status = StatusRunning
	}
	ordered := orderMoves(working.Board, candidates)
	scores := make([]MoveScore, 0, len(ordered))
	for _, move := range ordered {
		if settings.ShouldStop != nil && settings.ShouldStop() {
			break
		}
		var undo moveUndo
		applyMoveWithUndo(&working, rules, move, &undo)
		score := minimax(&working, rules, settings, settings.Depth-1, math.Inf(-1), math.Inf(1))
		undoMove(&working, undo)
		scores = append(scores, MoveScore{Move: move, Score: score})
	}
	return scores
}

// ScoreMovesParallel fans root candidates out over a worker pool. Each
// worker owns a clone of the state; scores land at their candidate's index
// so the result order matches ScoreMoves exactly.
func ScoreMovesParallel(state GameState, rules Rules, candidates []Move, settings AISearchSettings) []MoveScore {
	base := state.Clone()
	if base.Status == StatusNotStarted {
		base.Status = StatusRunning
	}
	ordered := orderMoves(base.Board, candidates)
	scores := make([]MoveScore, len(ordered))

	workers := settings.Config.AiRootWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(ordered) {
		workers = len(ordered)
	}
	if workers <= 1 {
		return ScoreMoves(state, rules, candidates, settings)
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			working := base.Clone()
			for {
				i := int(next.Add(1)) - 1
				if i >= len(ordered) {
					return
				}
				move := ordered[i]
				var undo moveUndo
				applyMoveWithUndo(&working, rules, move, &undo)
				score := minimax(&working, rules, settings, settings.Depth-1, math.Inf(-1), math.Inf(1))
				undoMove(&working, undo)
				scores[i] = MoveScore{Move: move, Score: score}
			}
		}()
	}
	wg.Wait()
	return scores
}

// ScoreMovesDeepening runs iterative deepening under the configured time
// budget and returns the deepest fully completed level. A level cut short
// by the deadline is discarded; with no budget it searches the target depth
// directly.
func ScoreMovesDeepening(state GameState, rules Rules, candidates []Move, settings AISearchSettings) ([]MoveScore, int) {
	scoreLevel := ScoreMoves
	if settings.Config.AiParallelRoot {
		scoreLevel = ScoreMovesParallel
	}

	budgetMs := settings.Config.AiTimeBudgetMs
	if budgetMs <= 0 {
		scores := scoreLevel(state, rules, candidates, settings)
		if settings.Stats != nil {
			settings.Stats.CompletedDepths = settings.Depth
		}
		return scores, settings.Depth
	}

	start := time.Now()
	if settings.Stats != nil && !settings.Stats.Start.IsZero() {
		start = settings.Stats.Start
	}
	deadline := start.Add(time.Duration(budgetMs) * time.Millisecond)
	var expired atomic.Bool
	parentStop := settings.ShouldStop
	settings.ShouldStop = func() bool {
		if parentStop != nil && parentStop() {
			return true
		}
		if expired.Load() {
			return true
		}
		if time.Now().After(deadline) {
			expired.Store(true)
			return true
		}
		return false
	}

	var last []MoveScore
	completed := 0
	for depth := 1; depth <= settings.Depth; depth++ {
		levelStart := time.Now()
		level := settings
		level.Depth = depth
		scores := scoreLevel(state, rules, candidates, level)
		if settings.ShouldStop() && settings.Config.AiReturnLastComplete {
			break
		}
		if len(scores) < len(candidates) {
			break
		}
		last = scores
		completed = depth
		if settings.Stats != nil {
			settings.Stats.CompletedDepths = depth
			settings.Stats.DepthDurations = append(settings.Stats.DepthDurations, time.Since(levelStart))
		}
		if time.Now().After(deadline) {
			break
		}
	}
	if last == nil {
		// Budget too small for even depth 1: fall back to a direct
		// depth-1 pass so the caller always gets scores.
		level := settings
		level.Depth = 1
		level.ShouldStop = parentStop
		last = scoreLevel(state, rules, candidates, level)
		completed = 1
		if settings.Stats != nil {
			settings.Stats.CompletedDepths = 1
		}
	}
	return last, completed
}

func logSearchStats(scope string, stats *SearchStats, settings AISearchSettings) {
	if stats == nil {
		return
	}
	log.Debug("search stats",
		"scope", scope,
		"depth", stats.CompletedDepths,
		"depth_durations", stats.DepthDurations,
		"nodes", stats.Nodes.Load(),
		"cutoffs", stats.Cutoffs.Load(),
		"tt_probes", stats.TTProbes.Load(),
		"tt_hits", stats.TTHits.Load(),
		"tt_stores", stats.TTStores.Load(),
		"elapsed", time.Since(stats.Start),
		"player", playerToInt(settings.Player),
	)
}
