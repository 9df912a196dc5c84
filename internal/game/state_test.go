package game

import (
	"errors"
	"testing"
)

func initializedState(t *testing.T, ids []string, seed int64) *State {
	t.Helper()
	s := NewState(2)
	if err := s.InitializeGame(ids, seed); err != nil {
		t.Fatalf("InitializeGame: %v", err)
	}
	return s
}

func TestAdvanceTurn_FullCycleReturnsToStart(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	s := initializedState(t, ids, 7)

	first, ok := s.CurrentTurnPlayerID()
	if !ok {
		t.Fatalf("expected an active current player")
	}
	startTurn := s.TurnCounter()

	for i := 0; i < len(ids); i++ {
		s.AdvanceTurn()
	}

	back, _ := s.CurrentTurnPlayerID()
	if back != first {
		t.Fatalf("after %d advances: want %q, got %q", len(ids), first, back)
	}
	if s.TurnCounter() != startTurn+1 {
		t.Fatalf("turn counter: want %d, got %d", startTurn+1, s.TurnCounter())
	}
}

func TestInitializeGame_ShuffleDeterministicPerSeed(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	s1 := initializedState(t, ids, 42)
	s2 := initializedState(t, ids, 42)

	o1, o2 := s1.TurnOrder(), s2.TurnOrder()
	for i := range o1 {
		if o1[i] != o2[i] {
			t.Fatalf("same seed produced different orders: %v vs %v", o1, o2)
		}
	}
}

func TestValidateAction_Gates(t *testing.T) {
	s := initializedState(t, []string{"a", "b"}, 1)
	current, _ := s.CurrentTurnPlayerID()
	other := "a"
	if current == "a" {
		other = "b"
	}

	cases := []struct {
		name    string
		player  string
		action  ActionType
		wantErr error
	}{
		{"current player may move", current, ActionMove, nil},
		{"current player may skip", current, ActionSkip, nil},
		{"wrong player rejected", other, ActionMove, ErrNotYourTurn},
		{"unknown action rejected", current, ActionType("dance"), ErrUnknownAction},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.ValidateAction(tc.player, tc.action)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidateAction_InactiveGame(t *testing.T) {
	s := NewState(2)
	if err := s.ValidateAction("a", ActionMove); !errors.Is(err, ErrGameInactive) {
		t.Fatalf("want ErrGameInactive, got %v", err)
	}
}

func TestRemovePlayer_CurrentTurnAdvances(t *testing.T) {
	s := initializedState(t, []string{"a", "b", "c"}, 3)
	current, _ := s.CurrentTurnPlayerID()

	if err := s.RemovePlayer(current); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	next, ok := s.CurrentTurnPlayerID()
	if !ok {
		t.Fatalf("game should still be active with 2 players")
	}
	if next == current {
		t.Fatalf("removed player still current")
	}
}

func TestRemovePlayer_BelowMinimumDeactivates(t *testing.T) {
	s := initializedState(t, []string{"a", "b"}, 3)
	order := s.TurnOrder()

	if err := s.RemovePlayer(order[1]); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if s.Active() {
		t.Fatalf("expected game inactive below minimum party size")
	}
	if _, ok := s.CurrentTurnPlayerID(); ok {
		t.Fatalf("inactive game must not report a current player")
	}
}

func TestRemovePlayer_Unknown(t *testing.T) {
	s := initializedState(t, []string{"a", "b"}, 3)
	if err := s.RemovePlayer("ghost"); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("want ErrUnknownPlayer, got %v", err)
	}
}

func TestWorldState_BagIsOpaqueAndCopied(t *testing.T) {
	s := NewState(1)
	s.SetWorldState("matchStartedAt", "1700000000")

	bag := s.WorldState()
	bag["matchStartedAt"] = "tampered"

	v, ok := s.WorldValue("matchStartedAt")
	if !ok || v != "1700000000" {
		t.Fatalf("world bag leaked a live reference: %q", v)
	}
}
