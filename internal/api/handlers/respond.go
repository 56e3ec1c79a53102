package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brawlhub/elo-ladder/internal/domain"
	"github.com/brawlhub/elo-ladder/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps domain sentinel errors onto HTTP statuses.
// Anything unrecognized is a 500 with a generic body.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownMode),
		errors.Is(err, domain.ErrInvalidVoteChoice),
		errors.Is(err, domain.ErrTeamNameTooLong),
		errors.Is(err, domain.ErrDuplicateMembers),
		errors.Is(err, domain.ErrSelfAccusation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrLobbyNotFound),
		errors.Is(err, domain.ErrMatchNotFound),
		errors.Is(err, domain.ErrTeamNotFound),
		errors.Is(err, domain.ErrPlayerNotFound),
		errors.Is(err, domain.ErrNoMatchToUndo):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrLobbyFull),
		errors.Is(err, domain.ErrAlreadyQueued),
		errors.Is(err, domain.ErrNotQueued),
		errors.Is(err, domain.ErrMatchSettled),
		errors.Is(err, domain.ErrAlreadyInTeam),
		errors.Is(err, domain.ErrCancelNotAllowed),
		errors.Is(err, domain.ErrNoTeam),
		errors.Is(err, domain.ErrTeamRequired):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrLobbyLimit),
		errors.Is(err, domain.ErrLobbyCooldown):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrNotParticipant),
		errors.Is(err, domain.ErrNotTeamCaptain),
		errors.Is(err, domain.ErrAdminOnly):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrDisplayNameExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
