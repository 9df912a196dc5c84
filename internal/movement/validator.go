// Package movement decides whether a move is legal and applies validated
// moves to the map. Validation is pure: the same map state and request
// always produce the same verdict, and nothing is mutated on rejection.
package movement

import (
	"container/heap"
	"fmt"

	"github.com/ajmarsh/hexfront/internal/hexmap"
)

// TurnBudget is the maximum aggregate movement cost a player may spend in
// one turn. A path that exists but costs more than this is rejected.
const TurnBudget = 3

// Rejection is a typed movement refusal with a one-line reason suitable for
// direct display. It is a value, not a panic: callers turn it into a
// client-visible message.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

func reject(format string, args ...any) *Rejection {
	return &Rejection{Reason: fmt.Sprintf(format, args...)}
}

// Result is an ephemeral validated move: the full tile sequence from the
// current position to the destination, inclusive, plus its total cost.
// Never persisted; recomputed per request.
type Result struct {
	Path []hexmap.HexCoord
	Cost int
}

// Validator checks movement requests against the authoritative map.
type Validator struct {
	grid *hexmap.Map
}

func NewValidator(grid *hexmap.Map) *Validator {
	return &Validator{grid: grid}
}

// ValidateMovement checks the preconditions in order (first failure wins)
// and then runs A* with per-biome edge costs. Tiles occupied by another
// player are excluded as path nodes except as the final goal.
func (v *Validator) ValidateMovement(playerID string, dest hexmap.HexCoord) (Result, error) {
	tile := v.grid.TileAt(dest)
	if tile == nil {
		return Result{}, reject("destination %v is not on the map", dest)
	}
	if !tile.Accessible() {
		return Result{}, reject("destination %v is blocked terrain", dest)
	}
	from, ok := v.grid.PlayerPosition(playerID)
	if !ok {
		return Result{}, reject("player %s has no position on the map", playerID)
	}
	if from == dest {
		return Result{}, reject("already standing at %v", dest)
	}
	// Cube distance is a lower bound on any path cost, so a destination
	// beyond the budget can be refused before occupancy or pathing.
	if d := hexmap.Distance(from, dest); d > TurnBudget {
		return Result{}, reject("destination too far: at least %d movement needed, budget is %d", d, TurnBudget)
	}
	if tile.Occupied() && tile.OccupantID != playerID {
		return Result{}, reject("destination %v is occupied by another player", dest)
	}

	path, cost, found := v.findPath(playerID, from, dest)
	if !found {
		return Result{}, reject("no path from %v to %v", from, dest)
	}
	if cost > TurnBudget {
		return Result{}, reject("destination too far: path costs %d, budget is %d", cost, TurnBudget)
	}
	return Result{Path: path, Cost: cost}, nil
}

// ReachableTiles expands outward from the origin with a uniform-cost
// frontier bounded by the turn budget. The returned map includes the origin
// at cost 0; every other entry is a coordinate ValidateMovement would
// accept, at its minimal cost.
func (v *Validator) ReachableTiles(from hexmap.HexCoord) map[hexmap.HexCoord]int {
	origin := v.grid.TileAt(from)
	if origin == nil || !origin.Accessible() {
		return nil
	}
	occupant := origin.OccupantID

	best := map[hexmap.HexCoord]int{from: 0}
	pq := &pathQueue{{coord: from}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pathNode)
		if cur.cost > best[cur.coord] {
			continue
		}
		for _, n := range cur.coord.Neighbors() {
			tile := v.grid.TileAt(n)
			if tile == nil || !tile.Accessible() {
				continue
			}
			if tile.Occupied() && tile.OccupantID != occupant {
				continue
			}
			next := cur.cost + tile.Biome.MoveCost()
			if next > TurnBudget {
				continue
			}
			if prev, seen := best[n]; seen && prev <= next {
				continue
			}
			best[n] = next
			heap.Push(pq, pathNode{coord: n, cost: next, priority: next})
		}
	}
	return best
}

// findPath runs A* from origin to goal. Heuristic: cube distance, a lower
// bound since every edge costs at least 1.
func (v *Validator) findPath(playerID string, from, goal hexmap.HexCoord) ([]hexmap.HexCoord, int, bool) {
	gScore := map[hexmap.HexCoord]int{from: 0}
	cameFrom := map[hexmap.HexCoord]hexmap.HexCoord{}

	pq := &pathQueue{{coord: from, cost: 0, priority: hexmap.Distance(from, goal)}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pathNode)
		if cur.coord == goal {
			return rebuildPath(cameFrom, from, goal), cur.cost, true
		}
		if cur.cost > gScore[cur.coord] {
			continue
		}
		for _, n := range cur.coord.Neighbors() {
			tile := v.grid.TileAt(n)
			if tile == nil || !tile.Accessible() {
				continue
			}
			if tile.Occupied() && tile.OccupantID != playerID && n != goal {
				continue
			}
			next := cur.cost + tile.Biome.MoveCost()
			if prev, seen := gScore[n]; seen && prev <= next {
				continue
			}
			gScore[n] = next
			cameFrom[n] = cur.coord
			heap.Push(pq, pathNode{coord: n, cost: next, priority: next + hexmap.Distance(n, goal)})
		}
	}
	return nil, 0, false
}

func rebuildPath(cameFrom map[hexmap.HexCoord]hexmap.HexCoord, from, goal hexmap.HexCoord) []hexmap.HexCoord {
	var rev []hexmap.HexCoord
	for at := goal; ; {
		rev = append(rev, at)
		if at == from {
			break
		}
		at = cameFrom[at]
	}
	path := make([]hexmap.HexCoord, len(rev))
	for i, c := range rev {
		path[len(rev)-1-i] = c
	}
	return path
}

type pathNode struct {
	coord    hexmap.HexCoord
	cost     int
	priority int
}

type pathQueue []pathNode

func (q pathQueue) Len() int           { return len(q) }
func (q pathQueue) Less(i, j int) bool { return q[i].priority < q[j].priority }
func (q pathQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *pathQueue) Push(x any)        { *q = append(*q, x.(pathNode)) }
func (q *pathQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
