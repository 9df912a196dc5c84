package lobby

import (
	"errors"
	"testing"
	"time"

	"github.com/ajmarsh/hexfront/internal/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c
}

func readyLobby(t *testing.T, ids ...string) *State {
	t.Helper()
	s := NewState("L1", 6, testCatalog(t))
	for i, id := range ids {
		if err := s.AddPlayer(id, "player"+string(rune('A'+i))); err != nil {
			t.Fatalf("AddPlayer(%s): %v", id, err)
		}
		if err := s.SetReady(id, true); err != nil {
			t.Fatalf("SetReady(%s): %v", id, err)
		}
	}
	return s
}

func TestAddPlayer_FirstJoinerBecomesHost(t *testing.T) {
	s := NewState("L1", 4, nil)
	if err := s.AddPlayer("p1", "Ada"); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	if err := s.AddPlayer("p2", "Lin"); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}

	if s.HostID() != "p1" {
		t.Fatalf("host: want p1, got %s", s.HostID())
	}
	p2, _ := s.Player("p2")
	if p2.IsHost {
		t.Fatalf("second joiner must not be host")
	}
}

func TestAddPlayer_Validations(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(*State)
		id      string
		pname   string
		wantErr error
	}{
		{"empty name", func(s *State) {}, "p1", "", ErrNameEmpty},
		{"duplicate name", func(s *State) { _ = s.AddPlayer("p1", "Ada") }, "p2", "Ada", ErrNameTaken},
		{
			"full lobby",
			func(s *State) {
				_ = s.AddPlayer("p1", "Ada")
				_ = s.AddPlayer("p2", "Lin")
			},
			"p3", "Eve", ErrLobbyFull,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewState("L1", 2, nil)
			tc.setup(s)
			if err := s.AddPlayer(tc.id, tc.pname); !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAddPlayer_RejectedOnceInGame(t *testing.T) {
	s := readyLobby(t, "p1", "p2")
	if _, err := s.Start("p1", time.Now()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.AddPlayer("p3", "Eve"); !errors.Is(err, ErrLobbyClosed) {
		t.Fatalf("want ErrLobbyClosed, got %v", err)
	}
}

func TestSelectColor_ClaimedColorRejected(t *testing.T) {
	s := readyLobby(t, "p1", "p2")
	if err := s.SelectColor("p1", "red"); err != nil {
		t.Fatalf("SelectColor: %v", err)
	}
	if err := s.SelectColor("p2", "red"); !errors.Is(err, ErrColorTaken) {
		t.Fatalf("want ErrColorTaken, got %v", err)
	}
	if err := s.SelectColor("p2", "chartreuse"); !errors.Is(err, ErrUnknownColor) {
		t.Fatalf("want ErrUnknownColor, got %v", err)
	}
	// A disconnected player's color is up for grabs.
	if err := s.MarkDisconnected("p1"); err != nil {
		t.Fatalf("MarkDisconnected: %v", err)
	}
	if err := s.SelectColor("p2", "red"); err != nil {
		t.Fatalf("freed color should be claimable: %v", err)
	}
}

func TestSelectClass_UnknownClassRejected(t *testing.T) {
	s := readyLobby(t, "p1")
	if err := s.SelectClass("p1", "warrior"); err != nil {
		t.Fatalf("SelectClass: %v", err)
	}
	if err := s.SelectClass("p1", "necromancer"); !errors.Is(err, ErrUnknownClass) {
		t.Fatalf("want ErrUnknownClass, got %v", err)
	}
}

func TestUpdateSettings_NonHostRejectedWithoutChange(t *testing.T) {
	s := readyLobby(t, "p1", "p2")
	before := s.Settings()

	err := s.UpdateSettings("p2", Settings{Difficulty: "brutal", MapRadius: 9})
	if !errors.Is(err, ErrNotHost) {
		t.Fatalf("want ErrNotHost, got %v", err)
	}
	if s.Settings() != before {
		t.Fatalf("settings changed by a non-host request")
	}
}

func TestStart_RequiresEveryPlayerReady(t *testing.T) {
	s := readyLobby(t, "p1", "p2", "p3")
	if err := s.ValidateStart("p1"); err != nil {
		t.Fatalf("all ready, ValidateStart: %v", err)
	}

	// Flipping any one player back to CONNECTED trips the same rejection.
	if err := s.SetReady("p3", false); err != nil {
		t.Fatalf("SetReady: %v", err)
	}
	if err := s.ValidateStart("p1"); !errors.Is(err, ErrNotAllReady) {
		t.Fatalf("want ErrNotAllReady, got %v", err)
	}
	if _, err := s.Start("p1", time.Now()); !errors.Is(err, ErrNotAllReady) {
		t.Fatalf("Start: want ErrNotAllReady, got %v", err)
	}
	if s.Status() != StatusWaiting {
		t.Fatalf("failed start must leave the lobby WAITING, got %s", s.Status())
	}
}

func TestStart_NonHostRejected(t *testing.T) {
	s := readyLobby(t, "p1", "p2")
	if _, err := s.Start("p2", time.Now()); !errors.Is(err, ErrNotHost) {
		t.Fatalf("want ErrNotHost, got %v", err)
	}
}

func TestStart_CapturesSeedOnce(t *testing.T) {
	s := readyLobby(t, "p1", "p2")
	settings := s.Settings()
	settings.RandomSeed = false
	settings.CustomSeed = 777
	if err := s.UpdateSettings("p1", settings); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	desc, err := s.Start("p1", time.Now())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if desc.Seed != 777 {
		t.Fatalf("seed: want 777, got %d", desc.Seed)
	}
	if s.Status() != StatusInGame {
		t.Fatalf("status: want IN_GAME, got %s", s.Status())
	}
	if len(desc.Roster) != 2 {
		t.Fatalf("roster snapshot: want 2 entries, got %d", len(desc.Roster))
	}

	// Starting twice is impossible; the lobby is past WAITING.
	if _, err := s.Start("p1", time.Now()); !errors.Is(err, ErrNotWaiting) {
		t.Fatalf("want ErrNotWaiting, got %v", err)
	}
}

func TestStart_WallClockSeedWhenRandom(t *testing.T) {
	s := readyLobby(t, "p1")
	at := time.Unix(1700000000, 42)
	desc, err := s.Start("p1", at)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if desc.Seed != at.UnixNano() {
		t.Fatalf("seed: want %d, got %d", at.UnixNano(), desc.Seed)
	}
}

func TestMarkDisconnected_KeepsRosterEntry(t *testing.T) {
	s := readyLobby(t, "p1", "p2")
	if err := s.MarkDisconnected("p2"); err != nil {
		t.Fatalf("MarkDisconnected: %v", err)
	}
	p2, ok := s.Player("p2")
	if !ok {
		t.Fatalf("disconnected player removed from roster")
	}
	if p2.Status != StatusDisconnected {
		t.Fatalf("status: want DISCONNECTED, got %s", p2.Status)
	}
	if s.Status() != StatusWaiting {
		t.Fatalf("non-host loss must leave lobby status unchanged")
	}
}

func TestKick_HostOnly(t *testing.T) {
	s := readyLobby(t, "p1", "p2", "p3")
	if err := s.Kick("p2", "p3"); !errors.Is(err, ErrNotHost) {
		t.Fatalf("want ErrNotHost, got %v", err)
	}
	if err := s.Kick("p1", "p3"); err != nil {
		t.Fatalf("host kick: %v", err)
	}
	if _, ok := s.Player("p3"); ok {
		t.Fatalf("kicked player still on roster")
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := readyLobby(t, "p1", "p2")
	snap := s.Snapshot()
	snap.Players[0].Name = "tampered"

	p1, _ := s.Player("p1")
	if p1.Name == "tampered" {
		t.Fatalf("snapshot leaked a live reference into lobby state")
	}
}
