package main

import "math"

// winScore dominates every heuristic term; non-terminal scores stay strictly
// inside (-winScore, winScore).
const winScore = 1000000000.0

// EvaluateBoard scores the position from player's perspective. Terminal
// positions collapse to ±winScore. Otherwise each window contributes by its
// tally: a window holding both colors is dead and worth nothing, a live
// window scores by how close it is to completion, with opponent windows
// weighted heavier than our own so blocking outranks building.
func EvaluateBoard(board Board, rules Rules, player PlayerColor, weights HeuristicConfig) float64 {
	winLength := rules.WinLength()
	catalog := WindowsFor(board.Rows(), board.Cols(), winLength)

	score := 0.0
	for _, window := range catalog {
		tally := classifyWindow(board, window, player)
		if tally.mine == winLength {
			return winScore
		}
		if tally.theirs == winLength {
			return -winScore
		}
		switch {
		case tally.theirs == 0 && tally.mine > 0:
			if tally.mine == winLength-1 {
				score += weights.NearWin
			} else if tally.mine == winLength-2 {
				score += weights.Build
			}
		case tally.mine == 0 && tally.theirs > 0:
			if tally.theirs == winLength-1 {
				score -= weights.OppNearWin
			} else if tally.theirs == winLength-2 {
				score -= weights.OppBuild
			}
		}
	}
	return score + centerScore(board, player, weights.CenterBonus)
}

// centerScore rewards occupied cells by proximity to the board center,
// positive for player's pieces and negative for the opponent's.
func centerScore(board Board, player PlayerColor, bonus float64) float64 {
	if bonus == 0 {
		return 0
	}
	mine := CellFromPlayer(player)
	cx := float64(board.Cols()-1) / 2
	cy := float64(board.Rows()-1) / 2
	maxDist := cx + cy
	score := 0.0
	for y := 0; y < board.Rows(); y++ {
		for x := 0; x < board.Cols(); x++ {
			cell := board.At(x, y)
			if cell == CellEmpty {
				continue
			}
			weight := (maxDist - math.Abs(float64(x)-cx) - math.Abs(float64(y)-cy)) * bonus
			if cell == mine {
				score += weight
			} else {
				score -= weight
			}
		}
	}
	return score
}
