package handlers

import (
	"net/http"

	"github.com/brawlhub/elo-ladder/internal/service"
)

type AdminHandler struct {
	undoService *service.UndoService
}

func NewAdminHandler(undoService *service.UndoService) *AdminHandler {
	return &AdminHandler{undoService: undoService}
}

type UndoResponse struct {
	MatchID  string        `json:"matchId"`
	Mode     string        `json:"mode"`
	Reversed []DeltaDetail `json:"reversed"`
}

type DeltaDetail struct {
	PlayerID  string `json:"playerId"`
	OldRating int    `json:"oldRating"`
	NewRating int    `json:"newRating"`
	Delta     int    `json:"delta"`
}

// Undo reverses the most recently settled match in a mode.
func (h *AdminHandler) Undo(w http.ResponseWriter, r *http.Request) {
	mode, err := modeParam(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	event, err := h.undoService.UndoLast(r.Context(), mode)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := UndoResponse{
		MatchID:  event.MatchID.String(),
		Mode:     string(event.Mode),
		Reversed: make([]DeltaDetail, 0, len(event.Reversed)),
	}
	for _, d := range event.Reversed {
		resp.Reversed = append(resp.Reversed, DeltaDetail{
			PlayerID:  d.PlayerID.String(),
			OldRating: d.OldRating,
			NewRating: d.NewRating,
			Delta:     d.Delta,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
