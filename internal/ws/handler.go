// Package ws bridges websocket connections to lobby actors: one reader
// loop per connection plus a writer goroutine draining the lobby's outbox.
// No game logic lives here.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ajmarsh/hexfront/internal/hub"
	"github.com/ajmarsh/hexfront/internal/lobby"
	"github.com/ajmarsh/hexfront/internal/protocol"
)

const writeTimeout = 3 * time.Second

func Handler(h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
		lb := <-reply
		if lb == nil {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		playerID := uuid.NewString()
		log := logger.With(zap.String("lobby", code), zap.String("player", playerID))

		// The first frame must introduce the player.
		_, decoded, err := readEnvelope(r.Context(), conn)
		if err != nil {
			log.Warn("handshake read failed", zap.Error(err))
			return
		}
		join, ok := decoded.(*protocol.JoinRequest)
		if !ok {
			writeEnvelope(r.Context(), conn, errorEnvelope("expected a JoinRequest first"))
			return
		}

		out := make(chan protocol.Envelope, 32)
		lb.Inbox() <- lobby.Join{PlayerID: playerID, Name: join.Name, Outbox: out}
		defer func() { lb.Inbox() <- lobby.Leave{PlayerID: playerID} }()

		// Writer goroutine: per-client FIFO, bounded write time.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for env := range out {
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				if !writeEnvelope(ctx, conn, env) {
					cancel()
					return
				}
				cancel()
			}
			// Outbox closed: the lobby dropped or kicked us.
			conn.Close(websocket.StatusNormalClosure, "lobby closed")
		}()

		// Reader loop. A malformed frame drops only that frame, never the
		// connection; read failures take the disconnect path via the defer.
		for {
			env, decoded, err := readEnvelope(r.Context(), conn)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				log.Info("read failed, disconnecting", zap.Error(err))
				return
			}
			if env.Type == "" {
				log.Warn("frame without a type, dropping")
				writeEnvelope(r.Context(), conn, errorEnvelope("malformed message"))
				continue
			}
			lb.Inbox() <- lobby.FromClient{PlayerID: playerID, Env: env, Decoded: decoded}
		}
	}
}

func readEnvelope(ctx context.Context, conn *websocket.Conn) (protocol.Envelope, any, error) {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return protocol.Envelope{}, nil, err
	}
	env, decoded, err := protocol.DecodeEnvelope(data)
	if err != nil {
		// Protocol error: report it as an empty-typed envelope so the
		// caller drops the frame without closing the connection.
		return protocol.Envelope{}, nil, nil
	}
	return env, decoded, nil
}

func writeEnvelope(ctx context.Context, conn *websocket.Conn, env protocol.Envelope) bool {
	data, err := protocol.Encode(env)
	if err != nil {
		return true // nothing to send, keep the writer alive
	}
	return conn.Write(ctx, websocket.MessageText, data) == nil
}

func errorEnvelope(reason string) protocol.Envelope {
	env, _ := protocol.NewEnvelope(protocol.TypeError, "", protocol.ErrorMessage{Reason: reason})
	return env
}
