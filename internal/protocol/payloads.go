package protocol

import (
	"encoding/json"

	"github.com/ajmarsh/hexfront/internal/hexmap"
)

// Client -> Server payloads.

type JoinRequest struct {
	Name string `json:"name"`
}

type SetReady struct {
	Ready bool `json:"ready"`
}

type SelectClass struct {
	ClassID string `json:"classId"`
}

type SelectColor struct {
	Color string `json:"color"`
}

type Rename struct {
	Name string `json:"name"`
}

type ChangeSettings struct {
	Difficulty       string `json:"difficulty"`
	MapRadius        int    `json:"mapRadius"`
	RunLengthMinutes int    `json:"runLengthMinutes"`
	RandomSeed       bool   `json:"randomSeed"`
	CustomSeed       int64  `json:"customSeed,omitempty"`
	JoinInProgress   bool   `json:"joinInProgress"`
}

type StartMatch struct{}

type KickPlayer struct {
	PlayerID string `json:"playerId"`
}

type Chat struct {
	Text string `json:"text"`
}

// TurnAction carries a non-movement action. Data is opaque to the turn
// machine; the combat/event subsystems own its meaning.
type TurnAction struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type MoveRequest struct {
	Destination hexmap.HexCoord `json:"destination"`
}

type ResyncRequest struct{}

// Server -> Client payloads.

type Welcome struct {
	PlayerID  string `json:"playerId"`
	LobbyCode string `json:"lobbyCode"`
}

type PlayerInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsHost  bool   `json:"isHost"`
	Status  string `json:"status"`
	ClassID string `json:"classId,omitempty"`
	Color   string `json:"color,omitempty"`
}

type SettingsInfo struct {
	Difficulty       string `json:"difficulty"`
	MapRadius        int    `json:"mapRadius"`
	RunLengthMinutes int    `json:"runLengthMinutes"`
	RandomSeed       bool   `json:"randomSeed"`
	CustomSeed       int64  `json:"customSeed,omitempty"`
	JoinInProgress   bool   `json:"joinInProgress"`
}

// LobbySnapshot is the full lobby state pushed periodically to every
// connected player. Always a fresh copy, never a live reference.
type LobbySnapshot struct {
	LobbyID    string       `json:"lobbyId"`
	HostID     string       `json:"hostId"`
	MaxPlayers int          `json:"maxPlayers"`
	Status     string       `json:"status"`
	Settings   SettingsInfo `json:"settings"`
	Players    []PlayerInfo `json:"players"`
}

// MatchStart is emitted exactly once per lobby instance, immediately
// before the transition to in-game.
type MatchStart struct {
	Seed     int64        `json:"seed"`
	Settings SettingsInfo `json:"settings"`
	Roster   []PlayerInfo `json:"roster"`
}

type MovementResult struct {
	PlayerID    string            `json:"playerId"`
	From        hexmap.HexCoord   `json:"from"`
	To          hexmap.HexCoord   `json:"to"`
	Path        []hexmap.HexCoord `json:"path"`
	Cost        int               `json:"cost"`
	BiomeEffect string            `json:"biomeEffect"`
}

type ActionResult struct {
	PlayerID string          `json:"playerId"`
	Action   string          `json:"action"`
	Data     json.RawMessage `json:"data,omitempty"`
}

type TurnNotice struct {
	PlayerID    string `json:"playerId"`
	TurnCounter int    `json:"turnCounter"`
}

// Heartbeat is the coarse in-match summary used to detect silent client
// desync without resending the whole map.
type Heartbeat struct {
	TurnCounter   int            `json:"turnCounter"`
	CurrentPlayer string         `json:"currentPlayer"`
	HP            map[string]int `json:"hp"`
}

type TileInfo struct {
	Coord      hexmap.HexCoord `json:"coord"`
	Biome      string          `json:"biome"`
	Kind       string          `json:"kind"`
	OccupantID string          `json:"occupantId,omitempty"`
}

// FullSync is the explicit full resync: the complete map, positions, and
// turn state. Never part of the periodic loops.
type FullSync struct {
	Tiles         []TileInfo                 `json:"tiles"`
	Positions     map[string]hexmap.HexCoord `json:"positions"`
	TurnCounter   int                        `json:"turnCounter"`
	CurrentPlayer string                     `json:"currentPlayer"`
	WorldState    map[string]string          `json:"worldState,omitempty"`
	HP            map[string]int             `json:"hp,omitempty"`
}

type MatchEnded struct {
	Reason string `json:"reason"`
}

type ErrorMessage struct {
	Reason string `json:"reason"`
}
