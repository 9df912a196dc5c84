package lobby

import (
	"errors"
	"time"

	"github.com/ajmarsh/hexfront/internal/catalog"
	"github.com/ajmarsh/hexfront/internal/protocol"
)

var (
	ErrNameEmpty     = errors.New("display name must not be empty")
	ErrNameTaken     = errors.New("display name already in use")
	ErrLobbyClosed   = errors.New("lobby is no longer accepting players")
	ErrLobbyFull     = errors.New("lobby is full")
	ErrNotHost       = errors.New("no permission: only the host may do that")
	ErrNotWaiting    = errors.New("lobby is past the waiting stage")
	ErrEmptyRoster   = errors.New("cannot start with an empty roster")
	ErrNotAllReady   = errors.New("not all players are ready")
	ErrUnknownPlayer = errors.New("no such player in this lobby")
	ErrUnknownClass  = errors.New("unknown class")
	ErrColorTaken    = errors.New("color already claimed by another player")
	ErrUnknownColor  = errors.New("color is not in the palette")
)

// Status is the lobby lifecycle stage. It only ever moves forward:
// WAITING -> STARTING -> IN_GAME.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusStarting Status = "STARTING"
	StatusInGame   Status = "IN_GAME"
)

// ConnStatus is a player's connection state within the lobby.
type ConnStatus string

const (
	StatusConnected    ConnStatus = "CONNECTED"
	StatusReady        ConnStatus = "READY"
	StatusDisconnected ConnStatus = "DISCONNECTED"
)

// Palette is the fixed set of claimable player colors.
var Palette = []string{"red", "blue", "green", "yellow", "purple", "orange"}

// Settings are the host-controlled match parameters.
type Settings struct {
	Difficulty       string
	MapRadius        int
	RunLengthMinutes int
	RandomSeed       bool
	CustomSeed       int64
	JoinInProgress   bool
}

// DefaultSettings returns the settings a fresh lobby starts with.
func DefaultSettings() Settings {
	return Settings{
		Difficulty:       "normal",
		MapRadius:        5,
		RunLengthMinutes: 45,
		RandomSeed:       true,
	}
}

// PlayerData is one roster entry. Mutated only through State methods.
type PlayerData struct {
	ID      string
	Name    string
	IsHost  bool
	Status  ConnStatus
	ClassID string
	Color   string
}

// MatchDescriptor is the finalized match produced exactly once when a
// start request validates: the captured seed plus frozen snapshots of the
// settings and roster. All downstream procedural systems reuse this seed.
type MatchDescriptor struct {
	LobbyID  string
	Seed     int64
	Settings Settings
	Roster   []PlayerData
}

// State is the lobby roster and lifecycle machine. Not safe for concurrent
// use; the owning Lobby goroutine serializes access.
type State struct {
	id         string
	hostID     string
	maxPlayers int
	players    map[string]*PlayerData
	order      []string // join order, for stable snapshots
	settings   Settings
	status     Status
	classes    *catalog.Catalog
}

func NewState(id string, maxPlayers int, classes *catalog.Catalog) *State {
	return &State{
		id:         id,
		maxPlayers: maxPlayers,
		players:    make(map[string]*PlayerData),
		settings:   DefaultSettings(),
		status:     StatusWaiting,
		classes:    classes,
	}
}

func (s *State) ID() string         { return s.id }
func (s *State) HostID() string     { return s.hostID }
func (s *State) Status() Status     { return s.status }
func (s *State) Settings() Settings { return s.settings }
func (s *State) PlayerCount() int   { return len(s.players) }

// Player returns a copy of one roster entry.
func (s *State) Player(id string) (PlayerData, bool) {
	p, ok := s.players[id]
	if !ok {
		return PlayerData{}, false
	}
	return *p, true
}

// AddPlayer validates and creates a roster entry. The first successful
// joiner is granted host authority; there is no separate election step.
func (s *State) AddPlayer(id, name string) error {
	if name == "" {
		return ErrNameEmpty
	}
	if s.status != StatusWaiting && !(s.status == StatusInGame && s.settings.JoinInProgress) {
		return ErrLobbyClosed
	}
	if len(s.players) >= s.maxPlayers {
		return ErrLobbyFull
	}
	for _, p := range s.players {
		if p.Name == name {
			return ErrNameTaken
		}
	}
	p := &PlayerData{ID: id, Name: name, Status: StatusConnected}
	if len(s.players) == 0 {
		p.IsHost = true
		s.hostID = id
	}
	s.players[id] = p
	s.order = append(s.order, id)
	return nil
}

// Rename changes a player's display name while they are connected.
func (s *State) Rename(id, name string) error {
	p, ok := s.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	if name == "" {
		return ErrNameEmpty
	}
	for _, other := range s.players {
		if other.ID != id && other.Name == name {
			return ErrNameTaken
		}
	}
	p.Name = name
	return nil
}

// SetReady toggles the caller's own readiness.
func (s *State) SetReady(id string, ready bool) error {
	p, ok := s.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	if ready {
		p.Status = StatusReady
	} else {
		p.Status = StatusConnected
	}
	return nil
}

// SelectClass sets the caller's own class; the id must exist in the
// catalog.
func (s *State) SelectClass(id, classID string) error {
	p, ok := s.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	if s.classes != nil && !s.classes.Valid(classID) {
		return ErrUnknownClass
	}
	p.ClassID = classID
	return nil
}

// SelectColor claims a palette color for the caller; a color held by
// another non-disconnected player cannot be taken.
func (s *State) SelectColor(id, color string) error {
	p, ok := s.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	found := false
	for _, c := range Palette {
		if c == color {
			found = true
			break
		}
	}
	if !found {
		return ErrUnknownColor
	}
	for _, other := range s.players {
		if other.ID != id && other.Color == color && other.Status != StatusDisconnected {
			return ErrColorTaken
		}
	}
	p.Color = color
	return nil
}

// UpdateSettings replaces the lobby settings. Host only.
func (s *State) UpdateSettings(requesterID string, settings Settings) error {
	if requesterID != s.hostID {
		return ErrNotHost
	}
	if s.status != StatusWaiting {
		return ErrNotWaiting
	}
	s.settings = settings
	return nil
}

// ValidateStart checks a start request without committing it: requester is
// host, status WAITING, roster non-empty, every player READY.
func (s *State) ValidateStart(requesterID string) error {
	if requesterID != s.hostID {
		return ErrNotHost
	}
	if s.status != StatusWaiting {
		return ErrNotWaiting
	}
	if len(s.players) == 0 {
		return ErrEmptyRoster
	}
	for _, p := range s.players {
		if p.Status != StatusReady {
			return ErrNotAllReady
		}
	}
	return nil
}

// Start validates, moves the lobby to STARTING, captures the match seed
// exactly once (wall clock unless the host fixed one), produces the match
// descriptor, and lands on IN_GAME.
func (s *State) Start(requesterID string, now time.Time) (MatchDescriptor, error) {
	if err := s.ValidateStart(requesterID); err != nil {
		return MatchDescriptor{}, err
	}
	s.status = StatusStarting

	seed := s.settings.CustomSeed
	if s.settings.RandomSeed {
		seed = now.UnixNano()
	}
	desc := MatchDescriptor{
		LobbyID:  s.id,
		Seed:     seed,
		Settings: s.settings,
		Roster:   s.roster(),
	}
	s.status = StatusInGame
	return desc, nil
}

// MarkDisconnected flags a player without removing them, so late messages
// referencing them stay harmless.
func (s *State) MarkDisconnected(id string) error {
	p, ok := s.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	p.Status = StatusDisconnected
	return nil
}

// RemovePlayer drops a roster entry (leave or kick).
func (s *State) RemovePlayer(id string) error {
	if _, ok := s.players[id]; !ok {
		return ErrUnknownPlayer
	}
	delete(s.players, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Kick removes another player at the host's request.
func (s *State) Kick(requesterID, targetID string) error {
	if requesterID != s.hostID {
		return ErrNotHost
	}
	if targetID == s.hostID {
		return ErrUnknownPlayer
	}
	return s.RemovePlayer(targetID)
}

func (s *State) roster() []PlayerData {
	out := make([]PlayerData, 0, len(s.order))
	for _, id := range s.order {
		if p, ok := s.players[id]; ok {
			out = append(out, *p)
		}
	}
	return out
}

// Snapshot builds an immutable full copy of the lobby for broadcast.
func (s *State) Snapshot() protocol.LobbySnapshot {
	snap := protocol.LobbySnapshot{
		LobbyID:    s.id,
		HostID:     s.hostID,
		MaxPlayers: s.maxPlayers,
		Status:     string(s.status),
		Settings: protocol.SettingsInfo{
			Difficulty:       s.settings.Difficulty,
			MapRadius:        s.settings.MapRadius,
			RunLengthMinutes: s.settings.RunLengthMinutes,
			RandomSeed:       s.settings.RandomSeed,
			CustomSeed:       s.settings.CustomSeed,
			JoinInProgress:   s.settings.JoinInProgress,
		},
	}
	for _, p := range s.roster() {
		snap.Players = append(snap.Players, protocol.PlayerInfo{
			ID:      p.ID,
			Name:    p.Name,
			IsHost:  p.IsHost,
			Status:  string(p.Status),
			ClassID: p.ClassID,
			Color:   p.Color,
		})
	}
	return snap
}
