// Package game holds the authoritative turn-order state machine: who plays
// next, which actions are legal right now, and the cross-feature world
// state bag.
package game

import (
	"errors"
	"math/rand"
)

var (
	ErrGameInactive  = errors.New("no active game")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrUnknownAction = errors.New("unrecognized action type")
	ErrUnknownPlayer = errors.New("player is not part of this game")
	ErrEmptyParty    = errors.New("cannot start a game with no players")
)

// ActionType is the closed set of per-turn actions the server recognizes.
type ActionType string

const (
	ActionMove   ActionType = "move"
	ActionAttack ActionType = "attack"
	ActionDefend ActionType = "defend"
	ActionSkip   ActionType = "skip"
)

func knownAction(a ActionType) bool {
	switch a {
	case ActionMove, ActionAttack, ActionDefend, ActionSkip:
		return true
	}
	return false
}

// State is the turn machine. Created empty at server boot, populated and
// activated by InitializeGame, advanced once per resolved action, and
// deactivated when the party shrinks below the minimum. It is not safe for
// concurrent use; the owning lobby goroutine is its serialization boundary.
type State struct {
	order      []string
	cursor     int
	turn       int
	active     bool
	minPlayers int
	world      map[string]string
}

func NewState(minPlayers int) *State {
	if minPlayers < 1 {
		minPlayers = 1
	}
	return &State{
		minPlayers: minPlayers,
		world:      make(map[string]string),
	}
}

// InitializeGame populates the turn order (shuffled once, deterministically
// from the match seed) and activates the game.
func (s *State) InitializeGame(playerIDs []string, seed int64) error {
	if len(playerIDs) == 0 {
		return ErrEmptyParty
	}
	s.order = make([]string, len(playerIDs))
	copy(s.order, playerIDs)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})
	s.cursor = 0
	s.turn = 1
	s.active = true
	return nil
}

// Active reports whether a match is running.
func (s *State) Active() bool { return s.active }

// Deactivate ends the match explicitly.
func (s *State) Deactivate() { s.active = false }

// TurnCounter returns the current turn number, incremented every time the
// cycle wraps back to the first player.
func (s *State) TurnCounter() int { return s.turn }

// PlayerCount returns the number of players still in turn order.
func (s *State) PlayerCount() int { return len(s.order) }

// TurnOrder returns a copy of the turn sequence.
func (s *State) TurnOrder() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// CurrentTurnPlayerID reports whose turn it is. Pure; no side effects.
func (s *State) CurrentTurnPlayerID() (string, bool) {
	if !s.active || len(s.order) == 0 {
		return "", false
	}
	return s.order[s.cursor], true
}

// AdvanceTurn moves to the next player, wrapping modulo party size. It is
// the only mutator of turn order and must be called at most once per
// resolved action.
func (s *State) AdvanceTurn() {
	if !s.active || len(s.order) == 0 {
		return
	}
	s.cursor++
	if s.cursor >= len(s.order) {
		s.cursor = 0
		s.turn++
	}
}

// RemovePlayer drops a player from the turn order. If it was that player's
// turn the next player becomes current (the disconnect counts as the
// resolved action). Falling below the minimum deactivates the game.
func (s *State) RemovePlayer(playerID string) error {
	idx := -1
	for i, id := range s.order {
		if id == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnknownPlayer
	}
	s.order = append(s.order[:idx], s.order[idx+1:]...)
	if idx < s.cursor {
		s.cursor--
	}
	if len(s.order) > 0 && s.cursor >= len(s.order) {
		s.cursor = 0
		s.turn++
	}
	if len(s.order) < s.minPlayers {
		s.active = false
	}
	return nil
}

// ValidateAction enforces the turn contract for a submitted action: the
// game must be active, the actor must hold the current turn, and the action
// type must be recognized. Unknown types are rejected, never dropped.
func (s *State) ValidateAction(playerID string, action ActionType) error {
	if !s.active {
		return ErrGameInactive
	}
	current, _ := s.CurrentTurnPlayerID()
	if current != playerID {
		return ErrNotYourTurn
	}
	if !knownAction(action) {
		return ErrUnknownAction
	}
	return nil
}

// SetWorldState stores a cross-feature flag. The turn machine never
// interprets these values; it only transports them.
func (s *State) SetWorldState(key, value string) {
	s.world[key] = value
}

// WorldValue reads one world-state entry.
func (s *State) WorldValue(key string) (string, bool) {
	v, ok := s.world[key]
	return v, ok
}

// WorldState returns a copy of the bag for serialization.
func (s *State) WorldState() map[string]string {
	out := make(map[string]string, len(s.world))
	for k, v := range s.world {
		out[k] = v
	}
	return out
}
