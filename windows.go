package main

import "sync"

// Window is one winLength-long run of cells along a single direction.
type Window struct {
	Cells []Move
}

type windowKey struct {
	rows      int
	cols      int
	winLength int
}

type windowStore struct {
	mu       sync.Mutex
	catalogs map[windowKey][]Window
}

var windowCatalogs = &windowStore{catalogs: make(map[windowKey][]Window)}

// WindowsFor returns every winLength-long run on a rows x cols board.
// Direction order is horizontal, vertical, diag-down, diag-up; within a
// direction the start cells are scanned row-major. The catalog is built once
// per geometry and shared; callers must not mutate it.
func WindowsFor(rows, cols, winLength int) []Window {
	key := windowKey{rows: rows, cols: cols, winLength: winLength}
	windowCatalogs.mu.Lock()
	defer windowCatalogs.mu.Unlock()
	if catalog, ok := windowCatalogs.catalogs[key]; ok {
		return catalog
	}
	catalog := buildWindows(rows, cols, winLength)
	windowCatalogs.catalogs[key] = catalog
	return catalog
}

func buildWindows(rows, cols, winLength int) []Window {
	var catalog []Window
	for _, dir := range directions {
		dx := dir[0]
		dy := dir[1]
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				endX := x + dx*(winLength-1)
				endY := y + dy*(winLength-1)
				if endX < 0 || endX >= cols || endY < 0 || endY >= rows {
					continue
				}
				cells := make([]Move, winLength)
				for i := 0; i < winLength; i++ {
					cells[i] = Move{X: x + dx*i, Y: y + dy*i}
				}
				catalog = append(catalog, Window{Cells: cells})
			}
		}
	}
	return catalog
}

type windowTally struct {
	mine   int
	theirs int
	empty  int
}

// classifyWindow tallies a window's cells from player's perspective. Pure:
// no allocation, no board mutation.
func classifyWindow(board Board, window Window, player PlayerColor) windowTally {
	mine := CellFromPlayer(player)
	tally := windowTally{}
	for _, cell := range window.Cells {
		switch board.At(cell.X, cell.Y) {
		case CellEmpty:
			tally.empty++
		case mine:
			tally.mine++
		default:
			tally.theirs++
		}
	}
	return tally
}

// windowsThrough returns the subset of the catalog containing the given cell.
func windowsThrough(rows, cols, winLength int, cell Move) []Window {
	catalog := WindowsFor(rows, cols, winLength)
	var through []Window
	for _, window := range catalog {
		for _, c := range window.Cells {
			if c.Equals(cell) {
				through = append(through, window)
				break
			}
		}
	}
	return through
}
