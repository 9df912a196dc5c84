// Package hexmap provides the hex grid, tiles, and spatial indexes for the
// battle map. Uses cube coordinates (q, r, s) with q+r+s = 0.
package hexmap

// HexCoord is a position on the hex grid in cube coordinates.
// Invariant: Q + R + S == 0.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
	S int `json:"s"`
}

// Cube builds a coordinate from the two free axes, deriving s.
func Cube(q, r int) HexCoord {
	return HexCoord{Q: q, R: r, S: -q - r}
}

// NeighborDirections defines the six adjacent offsets in cube coordinates.
var NeighborDirections = [6]HexCoord{
	{Q: 1, R: 0, S: -1},
	{Q: 1, R: -1, S: 0},
	{Q: 0, R: -1, S: 1},
	{Q: -1, R: 0, S: 1},
	{Q: -1, R: 1, S: 0},
	{Q: 0, R: 1, S: -1},
}

// Add returns the component-wise sum of two coordinates.
func (h HexCoord) Add(o HexCoord) HexCoord {
	return HexCoord{Q: h.Q + o.Q, R: h.R + o.R, S: h.S + o.S}
}

// Neighbors returns the six adjacent coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range NeighborDirections {
		result[i] = h.Add(dir)
	}
	return result
}

// Distance returns the hex distance between two coordinates:
// (|dq| + |dr| + |ds|) / 2.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S - b.S)
	return (dq + dr + ds) / 2
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
