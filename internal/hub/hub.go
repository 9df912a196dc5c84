// Package hub tracks live lobbies by join code. Like the lobbies it owns,
// the hub is a single goroutine fed through a typed inbox.
package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajmarsh/hexfront/internal/catalog"
	"github.com/ajmarsh/hexfront/internal/lobby"
)

type HubMsg interface{ isHubMsg() }

// CreateLobby builds a lobby under the code. MinPlayers/MaxPlayers of zero
// fall back to the hub-wide defaults.
type CreateLobby struct {
	Code       string
	MinPlayers int
	MaxPlayers int
	Reply      chan *lobby.Lobby
}

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

type EnsureLobby struct {
	Code       string
	MinPlayers int
	MaxPlayers int
	Reply      chan *lobby.Lobby
}

type RemoveLobby struct {
	Code string
}

type ShutdownHub struct{}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (EnsureLobby) isHubMsg() {}
func (RemoveLobby) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

// Deps is everything new lobbies need injected.
type Deps struct {
	MinPlayers int
	MaxPlayers int
	Classes    *catalog.Catalog
	Archive    lobby.MatchArchive
	Logger     *zap.Logger
}

type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	deps    Deps
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, deps Deps) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		deps:    deps,
		log:     deps.Logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					msg.Reply <- lb
					break
				}
				msg.Reply <- h.create(msg.Code, msg.MinPlayers, msg.MaxPlayers)

			case GetLobby:
				msg.Reply <- h.lobbies[msg.Code] // may be nil

			case EnsureLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					msg.Reply <- lb
					break
				}
				msg.Reply <- h.create(msg.Code, msg.MinPlayers, msg.MaxPlayers)

			case RemoveLobby:
				delete(h.lobbies, msg.Code)

			case ShutdownHub:
				// Lobbies share the hub's context and tear themselves down
				// on cancel; sending into their inboxes here could block
				// against a lobby that is already closing.
				clear(h.lobbies)
				h.cancel()
			}
		}
	}
}

func (h *Hub) create(code string, minPlayers, maxPlayers int) *lobby.Lobby {
	if minPlayers <= 0 {
		minPlayers = h.deps.MinPlayers
	}
	if maxPlayers <= 0 {
		maxPlayers = h.deps.MaxPlayers
	}
	lb := lobby.NewLobby(h.ctx, code, lobby.Options{
		MinPlayers: minPlayers,
		MaxPlayers: maxPlayers,
		Classes:    h.deps.Classes,
		Archive:    h.deps.Archive,
		Logger:     h.deps.Logger,
		OnClose: func(c string) {
			// The lobby goroutine is tearing itself down; removal has to go
			// back through the inbox rather than touching the map directly.
			// Block until accepted so the entry can never go stale; the hub
			// context covers the case where the hub itself is gone.
			select {
			case h.inbox <- RemoveLobby{Code: c}:
			case <-h.ctx.Done():
			}
		},
	})
	h.lobbies[code] = lb
	h.log.Info("lobby created", zap.String("code", code))
	return lb
}
