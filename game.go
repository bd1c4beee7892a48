package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

type Game struct {
	id          string
	settings    GameSettings
	rules       Rules
	state       GameState
	history     MoveHistory
	blackPlayer IPlayer
	whitePlayer IPlayer
	turnStart   time.Time
}

func NewGame(settings GameSettings) Game {
	g := Game{}
	g.Reset(settings)
	return g
}

func (g *Game) Reset(settings GameSettings) {
	g.stopAIPlayers()
	rules, err := NewRules(settings)
	if err != nil {
		log.Error("game: rejecting settings", "err", err)
		settings = DefaultGameSettings()
		rules, _ = NewRules(settings)
	}
	g.id = uuid.NewString()
	g.settings = settings
	g.rules = rules
	g.state.Reset(settings)
	g.history.Clear()
	g.createPlayers()
	g.turnStart = time.Now()
	g.logMatchup()
}

func (g *Game) Start() {
	if g.state.Status == StatusNotStarted {
		g.state.Status = StatusRunning
		g.turnStart = time.Now()
	}
}

func (g *Game) ID() string {
	return g.id
}

func (g *Game) State() GameState {
	return g.state.Clone()
}

func (g *Game) Rules() Rules {
	return g.rules
}

func (g *Game) History() MoveHistory {
	return g.history
}

func (g *Game) TurnStartedAtMs() int64 {
	if g.turnStart.IsZero() {
		return 0
	}
	return g.turnStart.UnixMilli()
}

func (g *Game) TryApplyMove(move Move) (bool, string) {
	if g.state.Status != StatusRunning {
		return false, "game not running"
	}
	player := g.currentPlayer()
	isAiMove := player != nil && !player.IsHuman()
	ok, reason := g.rules.IsLegalDefault(g.state, move)
	if !ok {
		g.state.LastMessage = "Illegal move: " + reason
		return false, g.state.LastMessage
	}
	g.state.LastMessage = ""
	elapsedMs := float64(time.Since(g.turnStart).Milliseconds())
	mover := g.state.ToMove

	var undo moveUndo
	applyMoveWithUndo(&g.state, g.rules, move, &undo)
	g.state.WinningLine = nil

	entry := HistoryEntry{Move: move, Player: mover, ElapsedMs: elapsedMs, IsAi: isAiMove, Depth: move.Depth}
	g.history.Push(entry)
	g.logMovePlayed(move, mover, elapsedMs, isAiMove)

	switch g.state.Status {
	case StatusBlackWon, StatusWhiteWon:
		if line, found := g.rules.FindWinLine(g.state.Board, move); found {
			g.state.WinningLine = line
		}
		g.logWin(mover)
	case StatusDraw:
		log.Info("game over", "game", g.id, "result", "draw", "plies", g.history.Size())
	default:
		g.turnStart = time.Now()
	}
	return true, ""
}

// Tick advances the game one step: applies a pending human move, collects a
// finished AI search or kicks one off. Returns true when a move was applied.
func (g *Game) Tick() bool {
	if g.state.Status != StatusRunning {
		return false
	}
	player := g.currentPlayer()
	if player == nil {
		return false
	}
	if player.IsHuman() {
		human, ok := player.(*HumanPlayer)
		if ok && human.HasPendingMove() {
			move := human.TakePendingMove()
			applied, _ := g.TryApplyMove(move)
			return applied
		}
		return false
	}
	ai, ok := player.(*AIPlayer)
	if ok {
		if ai.HasMoveReady() {
			move := ai.TakeMove()
			applied, _ := g.TryApplyMove(move)
			return applied
		}
		if !ai.IsThinking() {
			ai.StartThinking(g.state.Clone(), g.rules)
		}
		return false
	}
	move := player.ChooseMove(g.state.Clone(), g.rules)
	applied, _ := g.TryApplyMove(move)
	return applied
}

func (g *Game) SubmitHumanMove(move Move) bool {
	player := g.currentPlayer()
	if player == nil || !player.IsHuman() {
		return false
	}
	human, ok := player.(*HumanPlayer)
	if !ok {
		return false
	}
	human.SetPendingMove(move)
	return true
}

func (g *Game) CurrentPlayerIsHuman() bool {
	player := g.currentPlayer()
	return player != nil && player.IsHuman()
}

func (g *Game) AiThinking() bool {
	player := g.currentPlayer()
	ai, ok := player.(*AIPlayer)
	if ok {
		return ai.IsThinking()
	}
	return false
}

func (g *Game) currentPlayer() IPlayer {
	return g.playerForColor(g.state.ToMove)
}

func (g *Game) playerForColor(color PlayerColor) IPlayer {
	if color == PlayerBlack {
		return g.blackPlayer
	}
	return g.whitePlayer
}

func (g *Game) createPlayers() {
	if g.settings.BlackType == PlayerHuman {
		g.blackPlayer = NewHumanPlayer()
	} else {
		g.blackPlayer = NewAIPlayer(g.settings.BlackStrategy)
	}
	if g.settings.WhiteType == PlayerHuman {
		g.whitePlayer = NewHumanPlayer()
	} else {
		g.whitePlayer = NewAIPlayer(g.settings.WhiteStrategy)
	}
}

func (g *Game) stopAIPlayers() {
	if ai, ok := g.blackPlayer.(*AIPlayer); ok {
		ai.StopThinking()
	}
	if ai, ok := g.whitePlayer.(*AIPlayer); ok {
		ai.StopThinking()
	}
}

func (g *Game) ResetForConfigChange() {
	if ai, ok := g.blackPlayer.(*AIPlayer); ok {
		ai.ResetForConfigChange()
	}
	if ai, ok := g.whitePlayer.(*AIPlayer); ok {
		ai.ResetForConfigChange()
	}
}

func boardLabel(settings GameSettings) string {
	return fmt.Sprintf("%dx%d/%d", settings.Cols, settings.Rows, settings.WinLength)
}

func (g *Game) logMatchup() {
	label := func(t PlayerType) string {
		if t == PlayerAI {
			return "ai"
		}
		return "human"
	}
	log.Info("new game",
		"game", g.id,
		"variant", g.settings.Variant,
		"board", boardLabel(g.settings),
		"black", label(g.settings.BlackType),
		"white", label(g.settings.WhiteType),
	)
}

func (g *Game) logMovePlayed(move Move, player PlayerColor, elapsedMs float64, isAiMove bool) {
	log.Debug("move played",
		"game", g.id,
		"player", playerToInt(player),
		"x", move.X,
		"y", move.Y,
		"ai", isAiMove,
		"elapsed_ms", elapsedMs,
	)
}

func (g *Game) logWin(player PlayerColor) {
	log.Info("game over",
		"game", g.id,
		"result", "win",
		"winner", playerToInt(player),
		"plies", g.history.Size(),
	)
}
