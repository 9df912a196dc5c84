package hexmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistance_SymmetricAndZeroAtSelf(t *testing.T) {
	coords := []HexCoord{
		Cube(0, 0),
		Cube(3, -1),
		Cube(-3, 0),
		Cube(2, 2),
		Cube(-1, 4),
	}
	for _, a := range coords {
		require.Equal(t, 0, Distance(a, a))
		for _, b := range coords {
			require.Equal(t, Distance(a, b), Distance(b, a))
		}
	}
}

func TestDistance_KnownValues(t *testing.T) {
	cases := []struct {
		a, b HexCoord
		want int
	}{
		{Cube(0, 0), Cube(1, 0), 1},
		{Cube(-3, 0), Cube(3, 0), 6},
		{Cube(0, 0), Cube(2, -1), 2},
		{Cube(1, -1), Cube(-1, 1), 2},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Distance(tc.a, tc.b), "%v -> %v", tc.a, tc.b)
	}
}

func TestNeighbors_AdjacentAndWellFormed(t *testing.T) {
	origin := Cube(2, -1)
	for _, n := range origin.Neighbors() {
		require.Equal(t, 0, n.Q+n.R+n.S, "cube invariant broken for %v", n)
		require.Equal(t, 1, Distance(origin, n))
	}
}
