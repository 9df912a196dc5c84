package hexmap

// Biome determines a tile's movement cost and defense bonus.
type Biome string

const (
	BiomePlains   Biome = "plains"
	BiomeForest   Biome = "forest"
	BiomeMountain Biome = "mountain"
)

// MoveCost is the price of entering a tile with this biome.
func (b Biome) MoveCost() int {
	if b == BiomeMountain {
		return 2
	}
	return 1
}

// DefenseBonus is the flat defense granted while standing on this biome.
func (b Biome) DefenseBonus() int {
	switch b {
	case BiomeForest:
		return 1
	case BiomeMountain:
		return 2
	default:
		return 0
	}
}

// EffectDescription is the one-line biome effect shown to clients after a
// move resolves.
func (b Biome) EffectDescription() string {
	switch b {
	case BiomeForest:
		return "dense forest: +1 defense"
	case BiomeMountain:
		return "high ground: +2 defense, slow going"
	default:
		return "open plains: no effect"
	}
}

// TileKind classifies a tile beyond its biome.
type TileKind string

const (
	KindNormal    TileKind = "normal"
	KindSpawn     TileKind = "spawn"
	KindResource  TileKind = "resource"
	KindStrategic TileKind = "strategic"
	KindBlocked   TileKind = "blocked"
)

// Tile is a single hex on the battle map. At most one player occupies it;
// an empty OccupantID means the tile is free.
type Tile struct {
	Coord      HexCoord `json:"coord"`
	Biome      Biome    `json:"biome"`
	Kind       TileKind `json:"kind"`
	OccupantID string   `json:"occupantId,omitempty"`
}

// Occupied reports whether any player is on the tile.
func (t *Tile) Occupied() bool { return t.OccupantID != "" }

// Accessible reports whether the tile can ever be entered or targeted.
// Blocked tiles are never occupied and never a path node.
func (t *Tile) Accessible() bool { return t.Kind != KindBlocked }
