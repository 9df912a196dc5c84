package hexmap

import (
	"math"
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds map generation parameters. Everything downstream of the
// seed is deterministic: the same config always yields the same map.
type GenConfig struct {
	Radius      int
	Seed        int64
	Spawns      int     // spawn tiles placed on the outer ring
	ForestLvl   float64 // noise threshold for forest
	MountainLvl float64 // noise threshold for mountain
	BlockedLvl  float64 // obstruction-noise threshold for blocked tiles
}

// DefaultGenConfig returns the standard battle map parameters.
func DefaultGenConfig(radius int, seed int64) GenConfig {
	return GenConfig{
		Radius:      radius,
		Seed:        seed,
		Spawns:      6,
		ForestLvl:   0.45,
		MountainLvl: 0.72,
		BlockedLvl:  0.85,
	}
}

// Generate builds a complete battle map: biomes from layered simplex noise,
// spawn points on the outer ring corners, resource and strategic nodes
// drawn from a seeded shuffle, and a sprinkling of blocked tiles away from
// the spawns.
func Generate(cfg GenConfig) *Map {
	m := NewMap(cfg.Radius)

	biomeNoise := opensimplex.NewNormalized(cfg.Seed)
	blockNoise := opensimplex.NewNormalized(cfg.Seed + 1)

	for _, t := range m.tiles {
		x, y := toCartesian(t.Coord)
		v := biomeNoise.Eval2(x*0.35, y*0.35)
		switch {
		case v >= cfg.MountainLvl:
			t.Biome = BiomeMountain
		case v >= cfg.ForestLvl:
			t.Biome = BiomeForest
		default:
			t.Biome = BiomePlains
		}
	}

	// Spawn points are spread evenly around the outer ring so parties start
	// apart; the default six land exactly on the hexagon corners. Spawn
	// tiles are always left passable plains.
	ring := outerRing(cfg.Radius)
	spawnCount := cfg.Spawns
	if spawnCount < 1 {
		spawnCount = 6
	}
	if spawnCount > len(ring) {
		spawnCount = len(ring)
	}
	for i := 0; i < spawnCount; i++ {
		t := m.tiles[ring[i*len(ring)/spawnCount]]
		t.Kind = KindSpawn
		t.Biome = BiomePlains
	}

	// Blocked tiles come from a second noise layer. Spawns and their
	// immediate neighbors stay open so nobody starts walled in.
	for _, t := range m.tiles {
		if t.Kind != KindNormal {
			continue
		}
		if nearSpawn(m, t.Coord) {
			continue
		}
		x, y := toCartesian(t.Coord)
		if blockNoise.Eval2(x*0.5, y*0.5) >= cfg.BlockedLvl {
			t.Kind = KindBlocked
		}
	}

	// Resource and strategic nodes are a seeded draw over the remaining
	// normal tiles, sorted first so map iteration order cannot leak in.
	var open []HexCoord
	for c, t := range m.tiles {
		if t.Kind == KindNormal {
			open = append(open, c)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		if open[i].Q != open[j].Q {
			return open[i].Q < open[j].Q
		}
		return open[i].R < open[j].R
	})
	rng := rand.New(rand.NewSource(cfg.Seed + 2))
	rng.Shuffle(len(open), func(i, j int) { open[i], open[j] = open[j], open[i] })

	resources := cfg.Radius
	strategics := cfg.Radius / 2
	for i, c := range open {
		switch {
		case i < resources:
			m.tiles[c].Kind = KindResource
		case i < resources+strategics:
			m.tiles[c].Kind = KindStrategic
		default:
		}
		if i >= resources+strategics {
			break
		}
	}

	m.reindex()
	return m
}

// toCartesian projects a hex coordinate into continuous space for noise
// sampling: x = q + r/2, y = r * sqrt(3)/2.
func toCartesian(c HexCoord) (float64, float64) {
	x := float64(c.Q) + float64(c.R)*0.5
	y := float64(c.R) * math.Sqrt(3.0) / 2.0
	return x, y
}

// outerRing walks the tiles at exactly the map radius, starting from
// (radius, 0) and going around once. Length is always 6*radius.
func outerRing(radius int) []HexCoord {
	legs := [6]HexCoord{
		NeighborDirections[4],
		NeighborDirections[3],
		NeighborDirections[2],
		NeighborDirections[1],
		NeighborDirections[0],
		NeighborDirections[5],
	}
	ring := make([]HexCoord, 0, 6*radius)
	c := Cube(radius, 0)
	for _, d := range legs {
		for i := 0; i < radius; i++ {
			ring = append(ring, c)
			c = c.Add(d)
		}
	}
	return ring
}

func nearSpawn(m *Map, c HexCoord) bool {
	t := m.tiles[c]
	if t != nil && t.Kind == KindSpawn {
		return true
	}
	for _, n := range c.Neighbors() {
		if nt := m.tiles[n]; nt != nil && nt.Kind == KindSpawn {
			return true
		}
	}
	return false
}
