package main

import "math/rand"

type StrategyStyle int

const (
	StyleMinimax StrategyStyle = iota
	StyleGreedy
	StyleWeighted
)

func (s StrategyStyle) String() string {
	switch s {
	case StyleGreedy:
		return "greedy"
	case StyleWeighted:
		return "weighted"
	default:
		return "minimax"
	}
}

type StrategyConfig struct {
	Style        StrategyStyle
	Depth        int
	TacticalScan bool
	TieBreakSeed uint64
	ForkScan     ForkScanScope
}

func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		Style:        StyleMinimax,
		Depth:        6,
		TacticalScan: true,
		TieBreakSeed: 0x5eed,
		ForkScan:     ForkScanBottomRow,
	}
}

// Strategy wires the tactical scanner, the evaluator and the search engine
// behind a single GetBestMove. All styles run the tactical stages first;
// they differ only in how they pick from the remaining candidates.
type Strategy struct {
	rules      Rules
	config     StrategyConfig
	engine     Config
	cache      *SearchCache
	stats      *SearchStats
	shouldStop func() bool
}

func NewStrategy(settings GameSettings, config StrategyConfig, engine Config) (*Strategy, error) {
	rules, err := NewRules(settings)
	if err != nil {
		return nil, err
	}
	if config.Depth <= 0 {
		config.Depth = engine.AiDepth
	}
	// The bottom-row scan only means something when pieces stack.
	if !settings.Gravity {
		config.ForkScan = ForkScanAllRows
	}
	return &Strategy{rules: rules, config: config, engine: engine}, nil
}

func (s *Strategy) Rules() Rules {
	return s.rules
}

func (s *Strategy) Config() StrategyConfig {
	return s.config
}

// UseCache makes the strategy search through a persistent cache instead of
// a fresh one per call. Only long-lived owners (AIPlayer) should do this;
// the fresh-cache default keeps repeated GetBestMove calls bit-identical.
func (s *Strategy) UseCache(cache *SearchCache) {
	s.cache = cache
}

func (s *Strategy) UseStats(stats *SearchStats) {
	s.stats = stats
}

func (s *Strategy) UseStopSignal(shouldStop func() bool) {
	s.shouldStop = shouldStop
}

// GetBestMove picks a move for state.ToMove. Returns false only when the
// game is over or the board is full; a running position always has a move.
func (s *Strategy) GetBestMove(state GameState) (Move, bool) {
	if isTerminalStatus(state.Status) {
		return Move{}, false
	}
	valid := s.rules.ValidMoves(state.Board)
	if len(valid) == 0 {
		return Move{}, false
	}
	if state.Board.CountEmpty() == state.Board.Rows()*state.Board.Cols() {
		return s.centerMove(state.Board), true
	}

	player := state.ToMove
	if wins := FindWinningMoves(state, s.rules, player); len(wins) > 0 {
		return s.pickMove(state, wins), true
	}

	candidates := valid
	opponent := otherPlayer(player)
	if threats := FindWinningMoves(state, s.rules, opponent); len(threats) > 0 {
		blocks := FindBlockingMoves(state, s.rules, player)
		if len(blocks) == 0 {
			// Fork we cannot cover: minimize the damage.
			if single, ok := BestSingleBlock(state, s.rules, player); ok {
				return single, true
			}
			return s.pickMove(state, valid), true
		}
		candidates = blocks
	} else if forkBlocks := FindForkBlocks(state, s.rules, player, s.config.ForkScan); len(forkBlocks) > 0 {
		candidates = forkBlocks
	}
	if s.config.TacticalScan {
		candidates = FilterTraps(state, s.rules, player, candidates)
	}

	switch s.config.Style {
	case StyleGreedy:
		return s.greedyMove(state, candidates), true
	case StyleWeighted:
		return s.weightedMove(state, candidates), true
	default:
		return s.minimaxMove(state, candidates), true
	}
}

// WinningMoves, BlockingMoves and Evaluate expose the scanner and evaluator
// for the analysis endpoint.
func (s *Strategy) WinningMoves(state GameState) []Move {
	return FindWinningMoves(state, s.rules, state.ToMove)
}

func (s *Strategy) BlockingMoves(state GameState) []Move {
	opponent := otherPlayer(state.ToMove)
	if len(FindWinningMoves(state, s.rules, opponent)) == 0 {
		return nil
	}
	return FindBlockingMoves(state, s.rules, state.ToMove)
}

func (s *Strategy) Evaluate(state GameState) float64 {
	return EvaluateBoard(state.Board, s.rules, state.ToMove, s.engine.Heuristics)
}

func (s *Strategy) centerMove(board Board) Move {
	x := board.Cols() / 2
	if s.rules.Gravity() {
		if move, err := s.rules.ResolveColumn(board, x); err == nil {
			return move
		}
	}
	return Move{X: x, Y: board.Rows() / 2}
}

func (s *Strategy) minimaxMove(state GameState, candidates []Move) Move {
	settings := s.searchSettings(state)
	scores, _ := ScoreMovesDeepening(state, s.rules, candidates, settings)
	return s.pickMove(state, bestScored(scores))
}

func (s *Strategy) greedyMove(state GameState, candidates []Move) Move {
	player := state.ToMove
	cell := CellFromPlayer(player)
	scores := make([]MoveScore, 0, len(candidates))
	for _, move := range candidates {
		state.Board.Set(move.X, move.Y, cell)
		score := EvaluateBoard(state.Board, s.rules, player, s.engine.Heuristics)
		state.Board.Remove(move.X, move.Y)
		scores = append(scores, MoveScore{Move: move, Score: score})
	}
	return s.pickMove(state, bestScored(scores))
}

// weightedMove samples candidates proportionally to their window potential.
// The sample point is derived from the tie-break seed and the position
// hash, so the same position under the same seed always yields the same
// move.
func (s *Strategy) weightedMove(state GameState, candidates []Move) Move {
	player := state.ToMove
	weights := make([]float64, len(candidates))
	total := 0.0
	for i, move := range candidates {
		offense, defense := s.movePotential(state.Board, move, player)
		weight := 1.0 + s.engine.Weighted.Offense*offense + s.engine.Weighted.Defense*defense
		weights[i] = weight
		total += weight
	}
	rng := s.moveRNG(state)
	target := rng.Float64() * total
	acc := 0.0
	for i, weight := range weights {
		acc += weight
		if target < acc {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1]
}

// movePotential counts how much a cell participates in live windows:
// offense through windows the opponent has not touched, defense through
// windows we have not touched, each weighted by how advanced they are.
func (s *Strategy) movePotential(board Board, move Move, player PlayerColor) (offense, defense float64) {
	for _, window := range windowsThrough(board.Rows(), board.Cols(), s.rules.WinLength(), move) {
		tally := classifyWindow(board, window, player)
		if tally.theirs == 0 {
			offense += float64(tally.mine + 1)
		}
		if tally.mine == 0 && tally.theirs > 0 {
			defense += float64(tally.theirs)
		}
	}
	return offense, defense
}

func (s *Strategy) searchSettings(state GameState) AISearchSettings {
	cache := s.cache
	if cache == nil {
		cache = NewSearchCache(s.engine)
	}
	return AISearchSettings{
		Depth:      s.config.Depth,
		Player:     state.ToMove,
		Config:     s.engine,
		Cache:      cache,
		Stats:      s.stats,
		ShouldStop: s.shouldStop,
	}
}

// pickMove breaks ties with a PRNG seeded from the configured seed and the
// position hash: deterministic for a fixed seed and position, varied across
// positions.
func (s *Strategy) pickMove(state GameState, moves []Move) Move {
	if len(moves) == 0 {
		return Move{}
	}
	if len(moves) == 1 {
		return moves[0]
	}
	rng := s.moveRNG(state)
	return moves[rng.Intn(len(moves))]
}

func (s *Strategy) moveRNG(state GameState) *rand.Rand {
	seed := splitmix64{state: s.config.TieBreakSeed ^ state.Hash}
	return rand.New(rand.NewSource(int64(seed.next())))
}

func bestScored(scores []MoveScore) []Move {
	if len(scores) == 0 {
		return nil
	}
	best := scores[0].Score
	for _, score := range scores[1:] {
		if score.Score > best {
			best = score.Score
		}
	}
	var moves []Move
	for _, score := range scores {
		if score.Score == best {
			moves = append(moves, score.Move)
		}
	}
	return moves
}
