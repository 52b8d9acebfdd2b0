// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"fortyone/internal/game"
)

type createGameRequest struct {
	Name string `json:"name"`
}

type createGameResponse struct {
	Success  bool      `json:"success"`
	Error    string    `json:"error,omitempty"`
	GameID   uuid.UUID `json:"gameId,omitempty"`
	Code     string    `json:"code,omitempty"`
	PlayerID uuid.UUID `json:"playerId,omitempty"`
}

type joinGameRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type joinGameResponse struct {
	Success  bool              `json:"success"`
	Error    string            `json:"error,omitempty"`
	GameID   uuid.UUID         `json:"gameId,omitempty"`
	PlayerID uuid.UUID         `json:"playerId,omitempty"`
	Players  []game.PlayerView `json:"players,omitempty"`
}

// CreateGameHandler creates a new game with the requester as host.
func CreateGameHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req createGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, createGameResponse{Success: false, Error: "invalid JSON"})
			return
		}

		snap, err := d.CreateGame(r.Context(), req.Name)
		if err != nil {
			writeJSON(w, http.StatusOK, createGameResponse{Success: false, Error: UserMessage(err)})
			return
		}
		writeJSON(w, http.StatusOK, createGameResponse{
			Success:  true,
			GameID:   snap.Game.ID,
			Code:     snap.Game.Code,
			PlayerID: snap.Players[0].ID,
		})
	}
}

// JoinGameHandler seats a player in the game matching a join code.
func JoinGameHandler(d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req joinGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, joinGameResponse{Success: false, Error: "invalid JSON"})
			return
		}

		snap, player, err := d.JoinGame(r.Context(), req.Code, req.Name)
		if err != nil {
			writeJSON(w, http.StatusOK, joinGameResponse{Success: false, Error: UserMessage(err)})
			return
		}
		views := game.SyncView(snap, player.ID)
		writeJSON(w, http.StatusOK, joinGameResponse{
			Success:  true,
			GameID:   snap.Game.ID,
			PlayerID: player.ID,
			Players:  views.Players,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
