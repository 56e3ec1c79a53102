package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brawlhub/elo-ladder/internal/service"
)

type LadderHandler struct {
	playerService *service.PlayerService
}

func NewLadderHandler(playerService *service.PlayerService) *LadderHandler {
	return &LadderHandler{playerService: playerService}
}

type LeaderboardEntry struct {
	PlayerID string  `json:"playerId"`
	Rating   int     `json:"rating"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Winrate  float64 `json:"winrate"`
}

func (h *LadderHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	mode, err := modeParam(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	ratings, err := h.playerService.Leaderboard(r.Context(), mode)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]LeaderboardEntry, 0, len(ratings))
	for _, rt := range ratings {
		resp = append(resp, LeaderboardEntry{
			PlayerID: rt.PlayerID.String(),
			Rating:   rt.Rating,
			Wins:     rt.Wins,
			Losses:   rt.Losses,
			Winrate:  rt.Winrate(),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

type PlayerStatsResponse struct {
	PlayerID    string  `json:"playerId"`
	DisplayName string  `json:"displayName"`
	Mode        string  `json:"mode"`
	Rating      int     `json:"rating"`
	Rank        int     `json:"rank"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Winrate     float64 `json:"winrate"`
	DodgeCount  int     `json:"dodgeCount"`
}

func (h *LadderHandler) PlayerStats(w http.ResponseWriter, r *http.Request) {
	mode, err := modeParam(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	playerID, err := uuid.Parse(chi.URLParam(r, "playerID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player ID")
		return
	}

	stats, err := h.playerService.GetStats(r.Context(), playerID, mode)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PlayerStatsResponse{
		PlayerID:    stats.Player.ID.String(),
		DisplayName: stats.Player.DisplayName,
		Mode:        string(mode),
		Rating:      stats.Rating.Rating,
		Rank:        stats.Rank,
		Wins:        stats.Rating.Wins,
		Losses:      stats.Rating.Losses,
		Winrate:     stats.Rating.Winrate(),
		DodgeCount:  stats.DodgeCount,
	})
}
