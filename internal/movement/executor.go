package movement

import (
	"fmt"

	"github.com/ajmarsh/hexfront/internal/hexmap"
)

// Outcome describes an applied move for broadcast: where the player came
// from, where they landed, the path for client-side replay, and the biome
// effect now in force.
type Outcome struct {
	PlayerID    string
	From        hexmap.HexCoord
	To          hexmap.HexCoord
	Path        []hexmap.HexCoord
	Cost        int
	BiomeEffect string
}

// Executor applies validated paths to the map. It never re-validates; it
// trusts a fresh Result from the same tick.
type Executor struct {
	grid *hexmap.Map
}

func NewExecutor(grid *hexmap.Map) *Executor {
	return &Executor{grid: grid}
}

// Apply relocates the player to the end of the validated path, atomically
// updating occupancy and the position index, and reports the outcome.
func (e *Executor) Apply(playerID string, res Result) (Outcome, error) {
	if len(res.Path) < 2 {
		return Outcome{}, fmt.Errorf("apply move for %s: path too short", playerID)
	}
	from, ok := e.grid.PlayerPosition(playerID)
	if !ok {
		return Outcome{}, fmt.Errorf("apply move for %s: %w", playerID, hexmap.ErrUnknownPlayer)
	}
	dest := res.Path[len(res.Path)-1]
	if err := e.grid.PlacePlayer(playerID, dest); err != nil {
		return Outcome{}, fmt.Errorf("apply move for %s: %w", playerID, err)
	}
	return Outcome{
		PlayerID:    playerID,
		From:        from,
		To:          dest,
		Path:        res.Path,
		Cost:        res.Cost,
		BiomeEffect: e.grid.TileAt(dest).Biome.EffectDescription(),
	}, nil
}
