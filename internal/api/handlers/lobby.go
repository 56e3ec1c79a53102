package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brawlhub/elo-ladder/internal/api/middleware"
	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/brawlhub/elo-ladder/internal/service"
)

type LobbyHandler struct {
	queueService *service.QueueService
}

func NewLobbyHandler(queueService *service.QueueService) *LobbyHandler {
	return &LobbyHandler{queueService: queueService}
}

type CreateLobbyRequest struct {
	RoomCode string `json:"roomCode"`
}

type LobbyResponse struct {
	ID       string   `json:"id"`
	Mode     string   `json:"mode"`
	RoomCode string   `json:"roomCode"`
	Players  []string `json:"players"`
	Teams    []string `json:"teams,omitempty"`
}

func lobbyResponse(lobby *domain.Lobby) LobbyResponse {
	resp := LobbyResponse{
		ID:       lobby.ID.String(),
		Mode:     string(lobby.Mode),
		RoomCode: lobby.RoomCode,
		Players:  make([]string, 0, len(lobby.Players)),
	}
	for _, id := range lobby.Players {
		resp.Players = append(resp.Players, id.String())
	}
	for _, id := range lobby.TeamIDs {
		resp.Teams = append(resp.Teams, id.String())
	}
	return resp
}

func modeParam(r *http.Request) (domain.Mode, error) {
	return domain.ParseMode(chi.URLParam(r, "mode"))
}

func (h *LobbyHandler) Create(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	mode, err := modeParam(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req CreateLobbyRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	lobby, err := h.queueService.CreateLobby(r.Context(), mode, playerID, req.RoomCode)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, lobbyResponse(lobby))
}

func (h *LobbyHandler) List(w http.ResponseWriter, r *http.Request) {
	mode, err := modeParam(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	lobbies := h.queueService.ListLobbies(mode)
	resp := make([]LobbyResponse, 0, len(lobbies))
	for _, lobby := range lobbies {
		resp = append(resp, lobbyResponse(lobby))
	}

	writeJSON(w, http.StatusOK, resp)
}

type JoinResponse struct {
	Lobby    LobbyResponse  `json:"lobby"`
	Rating   int            `json:"rating"`
	Entrants int            `json:"entrants"`
	Match    *MatchResponse `json:"match,omitempty"`
}

func (h *LobbyHandler) Join(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	mode, err := modeParam(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	lobbyID, err := uuid.Parse(chi.URLParam(r, "lobbyID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lobby ID")
		return
	}

	result, err := h.queueService.Join(r.Context(), mode, lobbyID, playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := JoinResponse{
		Lobby:    lobbyResponse(result.Lobby),
		Rating:   result.Rating,
		Entrants: result.Entrants,
	}
	if result.MatchFormed != nil {
		m := matchResponse(result.MatchFormed)
		resp.Match = &m
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *LobbyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	mode, err := modeParam(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	lobbyID, err := uuid.Parse(chi.URLParam(r, "lobbyID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid lobby ID")
		return
	}

	if err := h.queueService.Leave(r.Context(), mode, lobbyID, playerID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
