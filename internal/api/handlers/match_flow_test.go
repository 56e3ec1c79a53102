package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brawlhub/elo-ladder/internal/api/handlers"
	"github.com/brawlhub/elo-ladder/internal/testutil"
)

// TestSoloMatchLifecycle drives a full solo match over the HTTP
// surface: queue, form, vote, settle, inspect, undo.
func TestSoloMatchLifecycle(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tokens := make([]string, 6)
	ids := make([]string, 6)
	for i := range tokens {
		auth := testutil.RegisterViaAPI(t, ts, fmt.Sprintf("entrant%d", i), "password123")
		tokens[i] = auth.AccessToken
		ids[i] = auth.Player.ID
	}

	// The creator opens a lobby and is admitted to it.
	resp := testutil.AuthedRequest(t, http.MethodPost, ts.APIURL("/modes/solo/lobbies"), tokens[0],
		map[string]string{"roomCode": "ROOM42"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var lobby handlers.LobbyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lobby))
	resp.Body.Close()
	assert.Equal(t, "ROOM42", lobby.RoomCode)
	assert.Len(t, lobby.Players, 1)

	// Five more joins fill the lobby; the last response carries the
	// formed match.
	var matchID string
	for i := 1; i < 6; i++ {
		url := ts.APIURL(fmt.Sprintf("/modes/solo/lobbies/%s/join", lobby.ID))
		resp := testutil.AuthedRequest(t, http.MethodPost, url, tokens[i], nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var join handlers.JoinResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&join))
		resp.Body.Close()

		if i < 5 {
			assert.Nil(t, join.Match)
		} else {
			require.NotNil(t, join.Match)
			matchID = join.Match.ID
		}
	}

	// The duplicate join is rejected: the lobby is gone and everyone is
	// in a match.
	resp = testutil.AuthedRequest(t, http.MethodPost,
		ts.APIURL(fmt.Sprintf("/modes/solo/lobbies/%s/join", lobby.ID)), tokens[0], nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Fetch the pending match.
	resp = testutil.AuthedRequest(t, http.MethodGet, ts.APIURL("/matches/"+matchID), tokens[0], nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var match handlers.MatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&match))
	resp.Body.Close()
	assert.Equal(t, "pending", match.Status)
	assert.Len(t, match.BlueTeam, 3)
	assert.Len(t, match.RedTeam, 3)

	// Cancel votes are not allowed outside chaos.
	resp = testutil.AuthedRequest(t, http.MethodPost, ts.APIURL("/matches/"+matchID+"/vote"),
		tokens[0], map[string]string{"choice": "cancel"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Four blue_win votes settle the match.
	winners := match.BlueTeam
	for i, token := range tokens {
		if i == 4 {
			break
		}
		resp = testutil.AuthedRequest(t, http.MethodPost, ts.APIURL("/matches/"+matchID+"/vote"),
			token, map[string]string{"choice": "blue_win"})
		require.Equal(t, http.StatusAccepted, resp.StatusCode)
		resp.Body.Close()
	}

	resp = testutil.AuthedRequest(t, http.MethodGet, ts.APIURL("/matches/"+matchID), tokens[0], nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&match))
	resp.Body.Close()
	assert.Equal(t, "settled", match.Status)

	// A straggler vote bounces off the settled match.
	resp = testutil.AuthedRequest(t, http.MethodPost, ts.APIURL("/matches/"+matchID+"/vote"),
		tokens[5], map[string]string{"choice": "red_win"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Winners sit at 1015 on the leaderboard, losers at 985.
	resp = testutil.AuthedRequest(t, http.MethodGet, ts.APIURL("/modes/solo/leaderboard"), tokens[0], nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var board []handlers.LeaderboardEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&board))
	resp.Body.Close()
	require.Len(t, board, 6)

	winnerSet := make(map[string]bool, len(winners))
	for _, id := range winners {
		winnerSet[id] = true
	}
	for _, entry := range board {
		if winnerSet[entry.PlayerID] {
			assert.Equal(t, 1015, entry.Rating)
			assert.Equal(t, 1, entry.Wins)
		} else {
			assert.Equal(t, 985, entry.Rating)
			assert.Equal(t, 1, entry.Losses)
		}
	}

	// Per-player stats agree.
	resp = testutil.AuthedRequest(t, http.MethodGet,
		ts.APIURL("/modes/solo/players/"+winners[0]), tokens[0], nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats handlers.PlayerStatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	assert.Equal(t, 1015, stats.Rating)

	// Undo needs an admin token.
	resp = testutil.AuthedRequest(t, http.MethodPost, ts.APIURL("/admin/modes/solo/undo"), tokens[0], nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	adminToken := promoteToAdmin(t, ts, "entrant0", "password123")
	resp = testutil.AuthedRequest(t, http.MethodPost, ts.APIURL("/admin/modes/solo/undo"), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var undo handlers.UndoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&undo))
	resp.Body.Close()
	assert.Equal(t, matchID, undo.MatchID)
	assert.Len(t, undo.Reversed, 6)

	// Everyone is back at the default rating.
	resp = testutil.AuthedRequest(t, http.MethodGet,
		ts.APIURL("/modes/solo/players/"+winners[0]), tokens[0], nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	assert.Equal(t, 1000, stats.Rating)
	assert.Equal(t, 0, stats.Wins)

	// A second undo has nothing left to reverse.
	resp = testutil.AuthedRequest(t, http.MethodPost, ts.APIURL("/admin/modes/solo/undo"), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// promoteToAdmin flips the admin flag in storage and re-authenticates
// so the fresh token carries the admin claim.
func promoteToAdmin(t *testing.T, ts *testutil.TestServer, displayName, password string) string {
	t.Helper()

	err := ts.DB.DB.Exec("UPDATE players SET is_admin = true WHERE display_name = ?", displayName).Error
	require.NoError(t, err)

	body := map[string]string{"displayName": displayName, "password": password}
	raw, _ := json.Marshal(body)
	resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var auth testutil.AuthResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&auth))
	require.True(t, auth.Player.IsAdmin)
	return auth.AccessToken
}
