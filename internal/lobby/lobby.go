// Package lobby owns one lobby instance end to end: the pre-match roster
// machine, the in-match turn loop, and the broadcast fan-out. A lobby is a
// single goroutine fed through a typed inbox; that goroutine is the sole
// owner of the roster, map, and turn state, so validate -> execute ->
// broadcast -> advance -> notify always runs as one uninterrupted sequence.
package lobby

import (
	"context"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ajmarsh/hexfront/internal/catalog"
	"github.com/ajmarsh/hexfront/internal/game"
	"github.com/ajmarsh/hexfront/internal/hexmap"
	"github.com/ajmarsh/hexfront/internal/movement"
	"github.com/ajmarsh/hexfront/internal/protocol"
)

const (
	snapshotInterval  = 300 * time.Millisecond
	heartbeatInterval = 3 * time.Second
)

// MatchArchive persists match records. Failures are logged, never fatal.
type MatchArchive interface {
	RecordMatchStart(lobbyID string, seed int64, settings protocol.SettingsInfo, roster []protocol.PlayerInfo) error
	RecordMatchEnd(lobbyID string, turns int, reason string) error
}

type Msg interface{ isLobbyMsg() }

type Join struct {
	PlayerID string
	Name     string
	Outbox   chan protocol.Envelope // where this client receives envelopes
}

func (Join) isLobbyMsg() {}

type Leave struct{ PlayerID string }

func (Leave) isLobbyMsg() {}

type FromClient struct {
	PlayerID string
	Env      protocol.Envelope
	Decoded  any
}

func (FromClient) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetView struct {
	Reply chan View
}

func (GetView) isLobbyMsg() {}

// View reflects internal state for tests without data races.
type View struct {
	Status        Status
	NumClients    int
	NumPlayers    int
	Settings      Settings
	GameActive    bool
	CurrentPlayer string
	TurnCounter   int
	Positions     map[string]hexmap.HexCoord
}

// Options carries everything a lobby needs injected at creation.
type Options struct {
	MinPlayers int
	MaxPlayers int
	Classes    *catalog.Catalog
	Archive    MatchArchive
	Logger     *zap.Logger
	OnClose    func(code string)
}

// match bundles the in-game subsystems created at start.
type match struct {
	grid      *hexmap.Map
	state     *game.State
	validator *movement.Validator
	executor  *movement.Executor
	hp        map[string]int
}

type Lobby struct {
	inbox   chan Msg
	code    string
	opts    Options
	state   *State
	match   *match
	clients map[string]chan protocol.Envelope
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
}

func NewLobby(parent context.Context, code string, opts Options) *Lobby {
	ctx, cancel := context.WithCancel(parent)
	if opts.MinPlayers < 1 {
		opts.MinPlayers = 2
	}
	if opts.MaxPlayers < opts.MinPlayers {
		opts.MaxPlayers = 6
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &Lobby{
		inbox:   make(chan Msg, 64),
		code:    code,
		opts:    opts,
		state:   NewState(code, opts.MaxPlayers, opts.Classes),
		clients: make(map[string]chan protocol.Envelope),
		log:     logger.With(zap.String("lobby", code)),
		ctx:     ctx,
		cancel:  cancel,
	}

	go l.loop()
	return l
}

// Inbox exposes the message channel to the transport layer and tests.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

func (l *Lobby) loop() {
	snapTicker := time.NewTicker(snapshotInterval)
	defer snapTicker.Stop()
	hbTicker := time.NewTicker(heartbeatInterval)
	defer hbTicker.Stop()

	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case <-snapTicker.C:
			// Full roster push; small and bounded by max party size.
			if l.state.Status() != StatusInGame {
				l.broadcastSnapshot()
			}

		case <-hbTicker.C:
			if l.match != nil && l.match.state.Active() {
				l.broadcastHeartbeat()
			}

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				l.handleJoin(msg)
			case Leave:
				l.handleLeave(msg.PlayerID)
			case FromClient:
				l.handleFromClient(msg)
			case GetView:
				msg.Reply <- l.view()
			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) handleJoin(msg Join) {
	if err := l.state.AddPlayer(msg.PlayerID, msg.Name); err != nil {
		l.log.Info("join rejected", zap.String("player", msg.PlayerID), zap.Error(err))
		sendEnvelope(msg.Outbox, mustEnvelope(protocol.TypeError, "", protocol.ErrorMessage{Reason: err.Error()}))
		close(msg.Outbox)
		return
	}
	l.clients[msg.PlayerID] = msg.Outbox
	l.log.Info("player joined", zap.String("player", msg.PlayerID), zap.String("name", msg.Name))

	l.sendTo(msg.PlayerID, mustEnvelope(protocol.TypeWelcome, "", protocol.Welcome{
		PlayerID:  msg.PlayerID,
		LobbyCode: l.code,
	}))
	l.sendTo(msg.PlayerID, mustEnvelope(protocol.TypeLobbySnapshot, "", l.state.Snapshot()))
	if l.match != nil {
		// Joined mid-match: hand over the full picture once.
		l.sendTo(msg.PlayerID, l.fullSyncEnvelope())
	}
	l.broadcastSnapshot()
}

// handleLeave runs the disconnect path: host loss tears the whole lobby
// down, anyone else is only marked disconnected. A disconnect during the
// player's own turn counts as their resolved action.
func (l *Lobby) handleLeave(playerID string) {
	if _, ok := l.state.Player(playerID); !ok {
		delete(l.clients, playerID)
		return
	}

	if playerID == l.state.HostID() {
		l.log.Info("host left, tearing down lobby", zap.String("player", playerID))
		l.broadcast(mustEnvelope(protocol.TypeMatchEnded, "", protocol.MatchEnded{Reason: "host disconnected, lobby closed"}))
		if l.match != nil && l.match.state.Active() {
			l.archiveEnd("host disconnected")
		}
		l.shutdown()
		return
	}

	_ = l.state.MarkDisconnected(playerID)
	delete(l.clients, playerID)
	l.log.Info("player disconnected", zap.String("player", playerID))
	l.broadcastSnapshot()

	l.removeFromMatch(playerID)
}

// removeFromMatch drops a player from the running match subsystems: turn
// order, map occupancy, and the HP table. Shared by the disconnect and
// kick paths so neither can strand a live match.
func (l *Lobby) removeFromMatch(playerID string) {
	if l.match == nil {
		return
	}
	current, _ := l.match.state.CurrentTurnPlayerID()
	if err := l.match.state.RemovePlayer(playerID); err != nil {
		return
	}
	l.match.grid.RemovePlayer(playerID)
	delete(l.match.hp, playerID)

	if !l.match.state.Active() {
		l.broadcast(mustEnvelope(protocol.TypeMatchEnded, "", protocol.MatchEnded{Reason: "too few players remain"}))
		l.archiveEnd("too few players")
		return
	}
	if current == playerID {
		// Implicit skip; RemovePlayer already advanced the cursor.
		l.notifyTurn()
	}
}

func (l *Lobby) handleFromClient(msg FromClient) {
	switch p := msg.Decoded.(type) {
	case *protocol.SetReady:
		l.applyRosterChange(msg.PlayerID, l.state.SetReady(msg.PlayerID, p.Ready))
	case *protocol.SelectClass:
		l.applyRosterChange(msg.PlayerID, l.state.SelectClass(msg.PlayerID, p.ClassID))
	case *protocol.SelectColor:
		l.applyRosterChange(msg.PlayerID, l.state.SelectColor(msg.PlayerID, p.Color))
	case *protocol.Rename:
		l.applyRosterChange(msg.PlayerID, l.state.Rename(msg.PlayerID, p.Name))
	case *protocol.ChangeSettings:
		l.applyRosterChange(msg.PlayerID, l.state.UpdateSettings(msg.PlayerID, Settings{
			Difficulty:       p.Difficulty,
			MapRadius:        p.MapRadius,
			RunLengthMinutes: p.RunLengthMinutes,
			RandomSeed:       p.RandomSeed,
			CustomSeed:       p.CustomSeed,
			JoinInProgress:   p.JoinInProgress,
		}))
	case *protocol.KickPlayer:
		l.handleKick(msg.PlayerID, p.PlayerID)
	case *protocol.StartMatch:
		l.handleStart(msg.PlayerID)
	case *protocol.Chat:
		// Relayed untouched; formatting is the client's business.
		l.broadcast(mustEnvelope(protocol.TypeChat, msg.PlayerID, p))
	case *protocol.ResyncRequest:
		if l.match == nil {
			l.sendError(msg.PlayerID, "no match in progress")
			return
		}
		l.sendTo(msg.PlayerID, l.fullSyncEnvelope())
	case *protocol.MoveRequest:
		l.handleMove(msg.PlayerID, p)
	case *protocol.TurnAction:
		l.handleTurnAction(msg.PlayerID, p)
	default:
		// Unknown message families pass through the decoder opaquely; the
		// lobby has nothing to do with them.
		l.log.Debug("ignoring message", zap.String("type", string(msg.Env.Type)), zap.String("player", msg.PlayerID))
	}
}

// applyRosterChange reports a rejection back to the requester or
// broadcasts the updated roster on success. Rejections never mutate state.
func (l *Lobby) applyRosterChange(playerID string, err error) {
	if err != nil {
		l.sendError(playerID, err.Error())
		return
	}
	l.broadcastSnapshot()
}

func (l *Lobby) handleKick(requesterID, targetID string) {
	if err := l.state.Kick(requesterID, targetID); err != nil {
		l.sendError(requesterID, err.Error())
		return
	}
	if out, ok := l.clients[targetID]; ok {
		sendEnvelope(out, mustEnvelope(protocol.TypeError, "", protocol.ErrorMessage{Reason: "kicked by host"}))
		close(out)
		delete(l.clients, targetID)
	}
	l.removeFromMatch(targetID)
	l.broadcastSnapshot()
}

// handleStart runs the full start sequence: validate, capture the match
// descriptor (seed resolved exactly once), generate the map, place the
// party on spawns, initialize turn order, archive, and announce.
func (l *Lobby) handleStart(requesterID string) {
	desc, err := l.state.Start(requesterID, time.Now())
	if err != nil {
		l.sendError(requesterID, err.Error())
		return
	}
	l.log.Info("match starting", zap.Int64("seed", desc.Seed), zap.Int("players", len(desc.Roster)))

	gen := hexmap.DefaultGenConfig(desc.Settings.MapRadius, desc.Seed)
	if len(desc.Roster) > gen.Spawns {
		// Oversized parties get one spawn each instead of stranding the
		// overflow without a map position.
		gen.Spawns = len(desc.Roster)
	}
	grid := hexmap.Generate(gen)
	spawns := grid.SpawnPoints()
	sort.Slice(spawns, func(i, j int) bool {
		if spawns[i].Q != spawns[j].Q {
			return spawns[i].Q < spawns[j].Q
		}
		return spawns[i].R < spawns[j].R
	})

	st := game.NewState(l.opts.MinPlayers)
	hp := make(map[string]int, len(desc.Roster))
	ids := make([]string, 0, len(desc.Roster))
	for i, p := range desc.Roster {
		ids = append(ids, p.ID)
		if i < len(spawns) {
			if err := grid.PlacePlayer(p.ID, spawns[i]); err != nil {
				l.log.Warn("spawn placement failed", zap.String("player", p.ID), zap.Error(err))
			}
		}
		hp[p.ID] = baseHP(l.opts.Classes, p.ClassID)
	}
	if err := st.InitializeGame(ids, desc.Seed); err != nil {
		l.log.Error("initialize game", zap.Error(err))
		return
	}
	st.SetWorldState("matchStartedAt", strconv.FormatInt(time.Now().Unix(), 10))

	l.match = &match{
		grid:      grid,
		state:     st,
		validator: movement.NewValidator(grid),
		executor:  movement.NewExecutor(grid),
		hp:        hp,
	}

	snap := l.state.Snapshot()
	if l.opts.Archive != nil {
		if err := l.opts.Archive.RecordMatchStart(l.code, desc.Seed, snap.Settings, snap.Players); err != nil {
			l.log.Warn("archive match start", zap.Error(err))
		}
	}

	l.broadcast(mustEnvelope(protocol.TypeMatchStart, "", protocol.MatchStart{
		Seed:     desc.Seed,
		Settings: snap.Settings,
		Roster:   snap.Players,
	}))
	l.broadcastSnapshot()
	l.notifyTurn()
}

// handleMove resolves a movement action in the mandated order:
// validate -> execute -> broadcast result -> advance -> notify next turn.
func (l *Lobby) handleMove(playerID string, req *protocol.MoveRequest) {
	if l.match == nil {
		l.sendError(playerID, "no match in progress")
		return
	}
	if err := l.match.state.ValidateAction(playerID, game.ActionMove); err != nil {
		l.sendError(playerID, err.Error())
		return
	}
	res, err := l.match.validator.ValidateMovement(playerID, req.Destination)
	if err != nil {
		l.sendError(playerID, err.Error())
		return
	}
	out, err := l.match.executor.Apply(playerID, res)
	if err != nil {
		l.log.Error("apply validated move", zap.String("player", playerID), zap.Error(err))
		l.sendError(playerID, "move could not be applied")
		return
	}
	l.broadcast(mustEnvelope(protocol.TypeMovementResult, playerID, protocol.MovementResult{
		PlayerID:    out.PlayerID,
		From:        out.From,
		To:          out.To,
		Path:        out.Path,
		Cost:        out.Cost,
		BiomeEffect: out.BiomeEffect,
	}))
	l.match.state.AdvanceTurn()
	l.notifyTurn()
}

// handleTurnAction resolves the non-movement actions. The payload data is
// transported untouched; combat and event resolution live outside the turn
// machine.
func (l *Lobby) handleTurnAction(playerID string, ta *protocol.TurnAction) {
	if l.match == nil {
		l.sendError(playerID, "no match in progress")
		return
	}
	action := game.ActionType(ta.Action)
	if err := l.match.state.ValidateAction(playerID, action); err != nil {
		l.sendError(playerID, err.Error())
		return
	}
	if action == game.ActionMove {
		l.sendError(playerID, "movement must be submitted as a MoveRequest with a destination")
		return
	}
	l.broadcast(mustEnvelope(protocol.TypeActionResult, playerID, protocol.ActionResult{
		PlayerID: playerID,
		Action:   ta.Action,
		Data:     ta.Data,
	}))
	l.match.state.AdvanceTurn()
	l.notifyTurn()
}

func (l *Lobby) notifyTurn() {
	current, ok := l.match.state.CurrentTurnPlayerID()
	if !ok {
		return
	}
	l.broadcast(mustEnvelope(protocol.TypeTurnNotice, "", protocol.TurnNotice{
		PlayerID:    current,
		TurnCounter: l.match.state.TurnCounter(),
	}))
}

func (l *Lobby) broadcastSnapshot() {
	l.broadcast(mustEnvelope(protocol.TypeLobbySnapshot, "", l.state.Snapshot()))
}

func (l *Lobby) broadcastHeartbeat() {
	current, _ := l.match.state.CurrentTurnPlayerID()
	hp := make(map[string]int, len(l.match.hp))
	for id, v := range l.match.hp {
		hp[id] = v
	}
	l.broadcast(mustEnvelope(protocol.TypeHeartbeat, "", protocol.Heartbeat{
		TurnCounter:   l.match.state.TurnCounter(),
		CurrentPlayer: current,
		HP:            hp,
	}))
}

func (l *Lobby) fullSyncEnvelope() protocol.Envelope {
	m := l.match
	tiles := m.grid.Tiles()
	infos := make([]protocol.TileInfo, 0, len(tiles))
	for _, t := range tiles {
		infos = append(infos, protocol.TileInfo{
			Coord:      t.Coord,
			Biome:      string(t.Biome),
			Kind:       string(t.Kind),
			OccupantID: t.OccupantID,
		})
	}
	current, _ := m.state.CurrentTurnPlayerID()
	hp := make(map[string]int, len(m.hp))
	for id, v := range m.hp {
		hp[id] = v
	}
	return mustEnvelope(protocol.TypeFullSync, "", protocol.FullSync{
		Tiles:         infos,
		Positions:     m.grid.PlayerPositions(),
		TurnCounter:   m.state.TurnCounter(),
		CurrentPlayer: current,
		WorldState:    m.state.WorldState(),
		HP:            hp,
	})
}

func (l *Lobby) archiveEnd(reason string) {
	if l.opts.Archive == nil {
		return
	}
	turns := 0
	if l.match != nil {
		turns = l.match.state.TurnCounter()
	}
	if err := l.opts.Archive.RecordMatchEnd(l.code, turns, reason); err != nil {
		l.log.Warn("archive match end", zap.Error(err))
	}
}

func (l *Lobby) sendError(playerID, reason string) {
	l.sendTo(playerID, mustEnvelope(protocol.TypeError, "", protocol.ErrorMessage{Reason: reason}))
}

func (l *Lobby) sendTo(playerID string, env protocol.Envelope) {
	ch, ok := l.clients[playerID]
	if !ok {
		return
	}
	if !sendEnvelope(ch, env) {
		// Client is slow/full - drop them.
		close(ch)
		delete(l.clients, playerID)
	}
}

func (l *Lobby) broadcast(env protocol.Envelope) {
	for id, ch := range l.clients {
		if !sendEnvelope(ch, env) {
			close(ch)
			delete(l.clients, id)
		}
	}
}

// mustEnvelope wraps protocol.NewEnvelope for server-built payloads, which
// always marshal.
func mustEnvelope(t protocol.MessageType, senderID string, payload any) protocol.Envelope {
	env, err := protocol.NewEnvelope(t, senderID, payload)
	if err != nil {
		return protocol.Envelope{Type: protocol.TypeError}
	}
	return env
}

func sendEnvelope(ch chan protocol.Envelope, env protocol.Envelope) bool {
	select {
	case ch <- env:
		return true
	default:
		return false
	}
}

func (l *Lobby) view() View {
	v := View{
		Status:     l.state.Status(),
		NumClients: len(l.clients),
		NumPlayers: l.state.PlayerCount(),
		Settings:   l.state.Settings(),
	}
	if l.match != nil {
		v.GameActive = l.match.state.Active()
		v.CurrentPlayer, _ = l.match.state.CurrentTurnPlayerID()
		v.TurnCounter = l.match.state.TurnCounter()
		v.Positions = l.match.grid.PlayerPositions()
	}
	return v
}

func (l *Lobby) shutdown() {
	if l.closed {
		return
	}
	l.closed = true
	for id, ch := range l.clients {
		close(ch) // tell the client no more envelopes are coming
		delete(l.clients, id)
	}
	l.cancel()
	if l.opts.OnClose != nil {
		l.opts.OnClose(l.code)
	}
}

func baseHP(c *catalog.Catalog, classID string) int {
	if c != nil {
		if cl, ok := c.Get(classID); ok {
			return cl.BaseHP
		}
	}
	return 20
}
