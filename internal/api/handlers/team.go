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

type TeamHandler struct {
	teamService *service.TeamService
}

func NewTeamHandler(teamService *service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

type CreateTeamRequest struct {
	Name      string `json:"name"`
	Player2ID string `json:"player2Id"`
	Player3ID string `json:"player3Id"`
}

type TeamResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CaptainID string   `json:"captainId"`
	Members   []string `json:"members"`
}

func teamResponse(team *domain.Team) TeamResponse {
	resp := TeamResponse{
		ID:        team.ID.String(),
		Name:      team.Name,
		CaptainID: team.CaptainID.String(),
	}
	for _, id := range team.MemberIDs() {
		resp.Members = append(resp.Members, id.String())
	}
	return resp
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	player2, err := uuid.Parse(req.Player2ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player2 ID")
		return
	}
	player3, err := uuid.Parse(req.Player3ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player3 ID")
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), service.CreateTeamInput{
		Name:      req.Name,
		CaptainID: playerID,
		Player2ID: player2,
		Player3ID: player3,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, teamResponse(team))
}

func (h *TeamHandler) Mine(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	team, err := h.teamService.GetTeamOf(r.Context(), playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, teamResponse(team))
}

func (h *TeamHandler) Dissolve(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	teamID, err := uuid.Parse(chi.URLParam(r, "teamID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid team ID")
		return
	}

	if err := h.teamService.DissolveTeam(r.Context(), teamID, playerID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
