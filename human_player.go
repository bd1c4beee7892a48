package main

// HumanPlayer buffers the move submitted over the API until the next tick
// collects it.
type HumanPlayer struct {
	pending *Move
}

func NewHumanPlayer() *HumanPlayer {
	return &HumanPlayer{}
}

func (h *HumanPlayer) IsHuman() bool {
	return true
}

// ChooseMove satisfies IPlayer but humans never move synchronously; the tick
// loop waits for a pending move instead.
func (h *HumanPlayer) ChooseMove(GameState, Rules) Move {
	return Move{X: -1, Y: -1}
}

func (h *HumanPlayer) SetPendingMove(move Move) {
	pending := move
	h.pending = &pending
}

func (h *HumanPlayer) HasPendingMove() bool {
	return h.pending != nil
}

func (h *HumanPlayer) TakePendingMove() Move {
	if h.pending == nil {
		return Move{X: -1, Y: -1}
	}
	move := *h.pending
	h.pending = nil
	return move
}
