package main

// Move is always a concrete cell. In gravity games the column is the real
// input and Y is the resolved landing row; Rules.ResolveColumn produces it.
type Move struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Depth int `json:"depth,omitempty"`
}

func NewMove(x, y int) Move {
	return Move{X: x, Y: y}
}

func (m Move) InBounds(rows, cols int) bool {
	return m.X >= 0 && m.Y >= 0 && m.X < cols && m.Y < rows
}

func (m Move) Equals(other Move) bool {
	return m.X == other.X && m.Y == other.Y
}
