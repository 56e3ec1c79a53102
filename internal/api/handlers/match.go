package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brawlhub/elo-ladder/internal/api/middleware"
	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/brawlhub/elo-ladder/internal/repository"
	"github.com/brawlhub/elo-ladder/internal/service"
)

type MatchHandler struct {
	matchRepo   repository.MatchRepository
	voteService *service.VoteService
}

func NewMatchHandler(matchRepo repository.MatchRepository, voteService *service.VoteService) *MatchHandler {
	return &MatchHandler{matchRepo: matchRepo, voteService: voteService}
}

type MatchResponse struct {
	ID        string   `json:"id"`
	Mode      string   `json:"mode"`
	RoomCode  string   `json:"roomCode"`
	Status    string   `json:"status"`
	BlueTeam  []string `json:"blueTeam"`
	RedTeam   []string `json:"redTeam"`
	CreatedAt string   `json:"createdAt"`
	SettledAt string   `json:"settledAt,omitempty"`
}

func matchResponse(m *domain.Match) MatchResponse {
	resp := MatchResponse{
		ID:        m.ID.String(),
		Mode:      string(m.Mode),
		RoomCode:  m.RoomCode,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if m.SettledAt != nil {
		resp.SettledAt = m.SettledAt.UTC().Format(time.RFC3339)
	}
	if blue, red, err := m.Sides(); err == nil {
		for _, id := range blue {
			resp.BlueTeam = append(resp.BlueTeam, id.String())
		}
		for _, id := range red {
			resp.RedTeam = append(resp.RedTeam, id.String())
		}
	}
	return resp
}

func matchIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "matchID"))
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid match ID")
		return
	}

	match, err := h.matchRepo.GetByID(r.Context(), matchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeServiceError(w, domain.ErrMatchNotFound)
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, matchResponse(match))
}

type VoteStatusResponse struct {
	MatchID     string `json:"matchId"`
	BlueVotes   int    `json:"blueVotes"`
	RedVotes    int    `json:"redVotes"`
	CancelVotes int    `json:"cancelVotes"`
	VotesCast   int    `json:"votesCast"`
}

func (h *MatchHandler) VoteStatus(w http.ResponseWriter, r *http.Request) {
	matchID, err := matchIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid match ID")
		return
	}

	status, err := h.voteService.Status(matchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, VoteStatusResponse{
		MatchID:     status.MatchID.String(),
		BlueVotes:   status.BlueVotes,
		RedVotes:    status.RedVotes,
		CancelVotes: status.CancelVotes,
		VotesCast:   status.VotesCast,
	})
}

type VoteRequest struct {
	Choice string `json:"choice"`
}

func (h *MatchHandler) Vote(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	matchID, err := matchIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid match ID")
		return
	}

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	choice, err := domain.ParseVoteChoice(req.Choice)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.voteService.CastVote(r.Context(), matchID, playerID, choice); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

type DodgeReportRequest struct {
	AccusedID string `json:"accusedId"`
}

func (h *MatchHandler) ReportDodge(w http.ResponseWriter, r *http.Request) {
	playerID, ok := middleware.GetPlayerID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	matchID, err := matchIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid match ID")
		return
	}

	var req DodgeReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accusedID, err := uuid.Parse(req.AccusedID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accused player ID")
		return
	}

	if err := h.voteService.ReportDodge(r.Context(), matchID, playerID, accusedID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
