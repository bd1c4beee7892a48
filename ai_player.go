package main

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// AIPlayer runs the strategy on a worker goroutine so the game tick never
// blocks on a deep search. It owns a persistent search cache that survives
// across moves of the same game.
type AIPlayer struct {
	moveMutex      sync.Mutex
	workerDone     chan struct{}
	thinking       atomic.Bool
	moveReady      atomic.Bool
	stopSignal     atomic.Bool
	readyMove      Move
	strategyConfig StrategyConfig
	cache          *SearchCache
}

func NewAIPlayer(config StrategyConfig) *AIPlayer {
	return &AIPlayer{strategyConfig: config}
}

func (a *AIPlayer) IsHuman() bool {
	return false
}

func (a *AIPlayer) ChooseMove(state GameState, rules Rules) Move {
	move, _ := a.searchMove(state, rules, nil)
	return move
}

func (a *AIPlayer) StartThinking(state GameState, rules Rules) {
	if a.thinking.Load() {
		return
	}
	if a.workerDone != nil {
		<-a.workerDone
	}
	a.thinking.Store(true)
	a.moveReady.Store(false)
	a.stopSignal.Store(false)

	stateCopy := state.Clone()
	done := make(chan struct{})
	a.workerDone = done
	go func() {
		defer close(done)
		move, ok := a.searchMove(stateCopy, rules, func() bool { return a.stopSignal.Load() })
		a.moveMutex.Lock()
		a.readyMove = move
		a.moveMutex.Unlock()
		a.moveReady.Store(ok && !a.stopSignal.Load())
		a.thinking.Store(false)
	}()
}

func (a *AIPlayer) IsThinking() bool {
	return a.thinking.Load()
}

func (a *AIPlayer) HasMoveReady() bool {
	return a.moveReady.Load()
}

func (a *AIPlayer) TakeMove() Move {
	a.moveMutex.Lock()
	defer a.moveMutex.Unlock()
	a.moveReady.Store(false)
	return a.readyMove
}

func (a *AIPlayer) StopThinking() {
	a.stopSignal.Store(true)
	if a.workerDone != nil {
		<-a.workerDone
	}
	a.moveReady.Store(false)
}

func (a *AIPlayer) SetStrategyConfig(config StrategyConfig) {
	a.strategyConfig = config
}

func (a *AIPlayer) ResetForConfigChange() {
	a.StopThinking()
	a.cache = nil
}

func (a *AIPlayer) searchMove(state GameState, rules Rules, shouldStop func() bool) (Move, bool) {
	engine := GetConfig()
	strategy, err := NewStrategy(rules.Settings(), a.strategyConfig, engine)
	if err != nil {
		log.Error("ai player: bad settings", "err", err)
		return Move{}, false
	}
	if a.cache == nil {
		a.cache = NewSearchCache(engine)
	}
	if a.cache.TT != nil {
		a.cache.TT.NextGeneration()
	}
	strategy.UseCache(a.cache)
	strategy.UseStopSignal(shouldStop)
	stats := &SearchStats{Start: time.Now()}
	strategy.UseStats(stats)

	move, ok := strategy.GetBestMove(state)
	if engine.AiLogSearchStats {
		logSearchStats("choose", stats, AISearchSettings{Player: state.ToMove})
	}
	if !ok {
		return Move{}, false
	}
	move.Depth = stats.CompletedDepths
	return move, true
}
