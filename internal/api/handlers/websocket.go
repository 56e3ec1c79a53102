package handlers

import (
	"net/http"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/brawlhub/elo-ladder/internal/service"
	"github.com/brawlhub/elo-ladder/internal/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub         *websocket.Hub
	authService *service.AuthService
	log         zerolog.Logger
}

func NewWebSocketHandler(hub *websocket.Hub, authService *service.AuthService, log zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
		log:         log.With().Str("component", "ws_handler").Logger(),
	}
}

// Handle authenticates via the token query parameter and upgrades the
// connection to the event stream.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "token required")
		return
	}

	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	playerIDStr, ok := (*claims)["sub"].(string)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token claims")
		return
	}

	playerID, err := uuid.Parse(playerIDStr)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid player ID")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, playerID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
