package hexmap

import (
	"errors"
	"fmt"
)

var (
	ErrNoSuchTile    = errors.New("tile does not exist")
	ErrTileBlocked   = errors.New("tile is blocked")
	ErrTileOccupied  = errors.New("tile is occupied")
	ErrUnknownPlayer = errors.New("player has no position on the map")
)

// Map owns the full tile set for a radius-bounded hexagon plus the derived
// indexes: spawn/resource/strategic tile lists and the live player position
// index. The occupancy stored on tiles and the position index are kept in
// lockstep; PlacePlayer is the only writer of both.
type Map struct {
	radius     int
	tiles      map[HexCoord]*Tile
	positions  map[string]HexCoord
	spawns     []HexCoord
	resources  []HexCoord
	strategics []HexCoord
}

// NewMap creates a map with every tile inside the radius set to normal
// plains. Generate is the usual entry point; NewMap exists for tests that
// hand-build layouts.
func NewMap(radius int) *Map {
	m := &Map{
		radius:    radius,
		tiles:     make(map[HexCoord]*Tile),
		positions: make(map[string]HexCoord),
	}
	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			c := Cube(q, r)
			if !inRadius(c, radius) {
				continue
			}
			m.tiles[c] = &Tile{Coord: c, Biome: BiomePlains, Kind: KindNormal}
		}
	}
	return m
}

func inRadius(c HexCoord, radius int) bool {
	max := abs(c.Q)
	if r := abs(c.R); r > max {
		max = r
	}
	if s := abs(c.S); s > max {
		max = s
	}
	return max <= radius
}

// Radius returns the map radius.
func (m *Map) Radius() int { return m.radius }

// TileCount returns the number of tiles on the map.
func (m *Map) TileCount() int { return len(m.tiles) }

// InBounds reports whether the coordinate lies on the map.
func (m *Map) InBounds(c HexCoord) bool {
	_, ok := m.tiles[c]
	return ok
}

// TileAt returns the tile at the coordinate, or nil when out of bounds.
func (m *Map) TileAt(c HexCoord) *Tile {
	return m.tiles[c]
}

// SetTile overwrites the tile at its own coordinate and reindexes it.
func (m *Map) SetTile(t *Tile) {
	m.tiles[t.Coord] = t
	m.reindex()
}

func (m *Map) reindex() {
	m.spawns = m.spawns[:0]
	m.resources = m.resources[:0]
	m.strategics = m.strategics[:0]
	for _, t := range m.tiles {
		switch t.Kind {
		case KindSpawn:
			m.spawns = append(m.spawns, t.Coord)
		case KindResource:
			m.resources = append(m.resources, t.Coord)
		case KindStrategic:
			m.strategics = append(m.strategics, t.Coord)
		}
	}
}

// SpawnPoints returns the spawn tile coordinates.
func (m *Map) SpawnPoints() []HexCoord {
	out := make([]HexCoord, len(m.spawns))
	copy(out, m.spawns)
	return out
}

// ResourceNodes returns the resource tile coordinates.
func (m *Map) ResourceNodes() []HexCoord {
	out := make([]HexCoord, len(m.resources))
	copy(out, m.resources)
	return out
}

// StrategicNodes returns the strategic tile coordinates.
func (m *Map) StrategicNodes() []HexCoord {
	out := make([]HexCoord, len(m.strategics))
	copy(out, m.strategics)
	return out
}

// PlayerPosition returns the player's current coordinate.
func (m *Map) PlayerPosition(playerID string) (HexCoord, bool) {
	c, ok := m.positions[playerID]
	return c, ok
}

// PlayerPositions returns a copy of the position index.
func (m *Map) PlayerPositions() map[string]HexCoord {
	out := make(map[string]HexCoord, len(m.positions))
	for id, c := range m.positions {
		out[id] = c
	}
	return out
}

// PlacePlayer moves the player onto the destination tile, clearing the old
// tile and claiming the new one in one step so the occupancy view and the
// position index never disagree. Placing a player on the tile they already
// occupy succeeds without change.
func (m *Map) PlacePlayer(playerID string, dest HexCoord) error {
	t := m.tiles[dest]
	if t == nil {
		return fmt.Errorf("place %s at %v: %w", playerID, dest, ErrNoSuchTile)
	}
	if !t.Accessible() {
		return fmt.Errorf("place %s at %v: %w", playerID, dest, ErrTileBlocked)
	}
	if t.Occupied() && t.OccupantID != playerID {
		return fmt.Errorf("place %s at %v: %w", playerID, dest, ErrTileOccupied)
	}
	if prev, ok := m.positions[playerID]; ok {
		if prev == dest {
			return nil
		}
		if old := m.tiles[prev]; old != nil && old.OccupantID == playerID {
			old.OccupantID = ""
		}
	}
	t.OccupantID = playerID
	m.positions[playerID] = dest
	return nil
}

// RemovePlayer clears the player from the map entirely.
func (m *Map) RemovePlayer(playerID string) {
	if prev, ok := m.positions[playerID]; ok {
		if t := m.tiles[prev]; t != nil && t.OccupantID == playerID {
			t.OccupantID = ""
		}
		delete(m.positions, playerID)
	}
}

// Tiles returns every tile on the map. Callers must not mutate through the
// returned pointers; broadcast code copies into snapshot DTOs.
func (m *Map) Tiles() []*Tile {
	out := make([]*Tile, 0, len(m.tiles))
	for _, t := range m.tiles {
		out = append(out, t)
	}
	return out
}
