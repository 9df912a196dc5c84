package movement

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajmarsh/hexfront/internal/hexmap"
)

// twoPlayerMap builds the reference scenario: a radius-5 all-plains map
// with players at (-3,0) and (3,0).
func twoPlayerMap(t *testing.T) *hexmap.Map {
	t.Helper()
	m := hexmap.NewMap(5)
	require.NoError(t, m.PlacePlayer("p1", hexmap.Cube(-3, 0)))
	require.NoError(t, m.PlacePlayer("p2", hexmap.Cube(3, 0)))
	return m
}

func TestValidateMovement_AdjacentPlainsCostsOne(t *testing.T) {
	m := twoPlayerMap(t)
	v := NewValidator(m)

	res, err := v.ValidateMovement("p1", hexmap.Cube(-2, 0))
	require.NoError(t, err)
	require.Equal(t, 1, res.Cost)
	require.Len(t, res.Path, 2)
	require.Equal(t, hexmap.Cube(-3, 0), res.Path[0])
	require.Equal(t, hexmap.Cube(-2, 0), res.Path[1])
}

func TestValidateMovement_TooFarRejectedWithoutStateChange(t *testing.T) {
	m := twoPlayerMap(t)
	v := NewValidator(m)

	// p2 stands at (3,0), distance 6 from p1: over budget no matter the path.
	_, err := v.ValidateMovement("p1", hexmap.Cube(3, 0))
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	require.Contains(t, rej.Reason, "too far")

	pos, _ := m.PlayerPosition("p1")
	require.Equal(t, hexmap.Cube(-3, 0), pos, "rejection must not move the player")
}

func TestValidateMovement_PreconditionOrder(t *testing.T) {
	m := twoPlayerMap(t)
	m.TileAt(hexmap.Cube(0, 1)).Kind = hexmap.KindBlocked
	require.NoError(t, m.PlacePlayer("p3", hexmap.Cube(-2, 0)))
	v := NewValidator(m)

	cases := []struct {
		name   string
		player string
		dest   hexmap.HexCoord
		want   string
	}{
		{"off the map", "p1", hexmap.Cube(20, 0), "not on the map"},
		{"blocked tile", "p1", hexmap.Cube(0, 1), "blocked"},
		{"occupied tile", "p1", hexmap.Cube(-2, 0), "occupied"},
		{"unknown player", "ghost", hexmap.Cube(0, 0), "no position"},
		{"same tile", "p1", hexmap.Cube(-3, 0), "already standing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.ValidateMovement(tc.player, tc.dest)
			var rej *Rejection
			require.ErrorAs(t, err, &rej)
			require.Contains(t, rej.Reason, tc.want)
		})
	}
}

func TestValidateMovement_MountainEdgeCosts(t *testing.T) {
	m := hexmap.NewMap(3)
	m.TileAt(hexmap.Cube(1, 0)).Biome = hexmap.BiomeMountain
	require.NoError(t, m.PlacePlayer("p1", hexmap.Cube(0, 0)))
	v := NewValidator(m)

	res, err := v.ValidateMovement("p1", hexmap.Cube(1, 0))
	require.NoError(t, err)
	require.Equal(t, 2, res.Cost)
}

func TestValidateMovement_RoutesAroundOccupiedTiles(t *testing.T) {
	m := hexmap.NewMap(3)
	require.NoError(t, m.PlacePlayer("p1", hexmap.Cube(0, 0)))
	require.NoError(t, m.PlacePlayer("p2", hexmap.Cube(1, 0)))
	v := NewValidator(m)

	res, err := v.ValidateMovement("p1", hexmap.Cube(2, 0))
	require.NoError(t, err)
	require.Equal(t, 3, res.Cost, "detour around the occupied tile costs an extra step")
	for _, c := range res.Path[1 : len(res.Path)-1] {
		require.NotEqual(t, hexmap.Cube(1, 0), c, "occupied tile used as intermediate node")
	}
}

func TestValidateMovement_Pure(t *testing.T) {
	m := twoPlayerMap(t)
	v := NewValidator(m)

	first, err1 := v.ValidateMovement("p1", hexmap.Cube(-1, 0))
	second, err2 := v.ValidateMovement("p1", hexmap.Cube(-1, 0))
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.Equal(t, first, second)
}

func TestReachableTiles_BudgetAndOrigin(t *testing.T) {
	m := twoPlayerMap(t)
	m.TileAt(hexmap.Cube(-3, 1)).Kind = hexmap.KindBlocked
	v := NewValidator(m)

	from := hexmap.Cube(-3, 0)
	reach := v.ReachableTiles(from)

	cost, ok := reach[from]
	require.True(t, ok, "origin always reachable")
	require.Equal(t, 0, cost)

	for c, cost := range reach {
		require.LessOrEqual(t, cost, TurnBudget)
		require.NotEqual(t, hexmap.KindBlocked, m.TileAt(c).Kind)
	}
	_, blocked := reach[hexmap.Cube(-3, 1)]
	require.False(t, blocked, "blocked tiles are never reachable")
}

// ReachableTiles and ValidateMovement must agree exactly: every reachable
// tile (other than the origin) is an acceptable destination at the same
// cost, and tiles just outside the set are rejected.
func TestReachableTiles_AgreesWithValidateMovement(t *testing.T) {
	m := hexmap.NewMap(5)
	m.TileAt(hexmap.Cube(1, 0)).Biome = hexmap.BiomeMountain
	m.TileAt(hexmap.Cube(0, 1)).Biome = hexmap.BiomeMountain
	m.TileAt(hexmap.Cube(1, -1)).Kind = hexmap.KindBlocked
	require.NoError(t, m.PlacePlayer("p1", hexmap.Cube(0, 0)))
	require.NoError(t, m.PlacePlayer("p2", hexmap.Cube(-1, 0)))
	v := NewValidator(m)

	from := hexmap.Cube(0, 0)
	reach := v.ReachableTiles(from)

	for c, cost := range reach {
		if c == from {
			continue
		}
		res, err := v.ValidateMovement("p1", c)
		require.NoError(t, err, "reachable tile %v rejected", c)
		require.Equal(t, cost, res.Cost, "cost mismatch at %v", c)
	}

	// Everything on the map but outside the set must be rejected.
	for _, tile := range m.Tiles() {
		if _, ok := reach[tile.Coord]; ok {
			continue
		}
		_, err := v.ValidateMovement("p1", tile.Coord)
		require.Error(t, err, "unreachable tile %v accepted", tile.Coord)
	}
}

func TestExecutor_ApplyRelocatesAndReportsBiome(t *testing.T) {
	m := hexmap.NewMap(3)
	m.TileAt(hexmap.Cube(1, 0)).Biome = hexmap.BiomeForest
	require.NoError(t, m.PlacePlayer("p1", hexmap.Cube(0, 0)))
	v := NewValidator(m)
	e := NewExecutor(m)

	res, err := v.ValidateMovement("p1", hexmap.Cube(1, 0))
	require.NoError(t, err)

	out, err := e.Apply("p1", res)
	require.NoError(t, err)
	require.Equal(t, hexmap.Cube(0, 0), out.From)
	require.Equal(t, hexmap.Cube(1, 0), out.To)
	require.True(t, strings.Contains(out.BiomeEffect, "forest"))

	pos, _ := m.PlayerPosition("p1")
	require.Equal(t, hexmap.Cube(1, 0), pos)
	require.False(t, m.TileAt(hexmap.Cube(0, 0)).Occupied())
}
