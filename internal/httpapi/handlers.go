package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ajmarsh/hexfront/internal/hub"
	"github.com/ajmarsh/hexfront/internal/lobby"
)

const (
	codeLength   = 6
	codeAttempts = 8
)

// GenerateCode returns a short join code. The alphabet omits 0/O, 1/I/L and
// similar lookalikes since codes are read aloud and typed by hand.
func GenerateCode() (string, error) {
	const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}

type createLobbyRequest struct {
	MinPlayers int `json:"minPlayers"`
	MaxPlayers int `json:"maxPlayers"`
}

// CreateLobby mints a fresh join code and builds a lobby under it. The
// optional JSON body overrides the server-wide party bounds for this one
// lobby; zero values keep the defaults.
func CreateLobby(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLobbyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}
		if req.MinPlayers < 0 || req.MaxPlayers < 0 ||
			(req.MaxPlayers > 0 && req.MinPlayers > req.MaxPlayers) {
			http.Error(w, "invalid party bounds", http.StatusBadRequest)
			return
		}

		var code string
		for attempt := 0; attempt < codeAttempts; attempt++ {
			c, err := GenerateCode()
			if err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			reply := make(chan *lobby.Lobby, 1)
			h.Inbox() <- hub.GetLobby{Code: c, Reply: reply}
			if <-reply == nil {
				code = c
				break
			}
		}
		if code == "" {
			http.Error(w, "could not allocate a free code", http.StatusInternalServerError)
			return
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.EnsureLobby{
			Code:       code,
			MinPlayers: req.MinPlayers,
			MaxPlayers: req.MaxPlayers,
			Reply:      reply,
		}
		if <-reply == nil {
			http.Error(w, "failed to create lobby", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(struct {
			Code string `json:"code"`
		}{Code: code})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
