package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ajmarsh/hexfront/internal/hub"
	"github.com/ajmarsh/hexfront/internal/ws"
)

func SetupRoutes(h *hub.Hub, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Post("/lobbies", CreateLobby(h))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, logger))
	return r
}
