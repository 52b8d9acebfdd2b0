// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fortyone/internal/middleware"
	"fortyone/internal/models"
)

// GameMessage is one client frame on the game websocket.
type GameMessage struct {
	Action         string       `json:"action"`
	Card           *models.Card `json:"card,omitempty"`
	TargetPlayerID *uuid.UUID   `json:"targetPlayerId,omitempty"`
}

// ackMessage is the per-request response frame; state changes arrive
// separately as projected event payloads.
type ackMessage struct {
	Type    string `json:"type"`
	Action  string `json:"action,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// wsChannel adapts a websocket connection to the session directory's
// Channel. Writes are bounded so one stalled client cannot hold up a
// broadcast.
type wsChannel struct {
	conn *websocket.Conn
}

func (c wsChannel) Send(ctx context.Context, data []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return c.conn.Write(writeCtx, websocket.MessageText, data)
}

// GameWSHandler upgrades the HTTP connection to a websocket for one
// player in one game: /game/ws/{game_id}?player={player_id}. The
// channel registers with the session directory, receives a private
// state sync, then reads action frames until the connection drops.
func GameWSHandler(logger *logrus.Logger, d *Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameIDStr := strings.TrimPrefix(r.URL.Path, "/game/ws/")
		gameID, err := uuid.Parse(strings.Trim(gameIDStr, "/"))
		if err != nil {
			http.Error(w, "invalid game_id format", http.StatusBadRequest)
			return
		}
		playerID, err := uuid.Parse(r.URL.Query().Get("player"))
		if err != nil {
			http.Error(w, "missing or invalid player id", http.StatusBadRequest)
			return
		}

		seated, err := d.PlayerInGame(r.Context(), gameID, playerID)
		if err != nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		if !seated {
			http.Error(w, "you are not a player in this game", http.StatusForbidden)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for game %s: %v", gameID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "internal server error")

		if c.Subprotocol() != "game" {
			c.Close(websocket.StatusPolicyViolation, "client must use the 'game' subprotocol")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		d.sessions.Register(gameID, playerID, wsChannel{conn: c})
		defer d.sessions.Unregister(gameID, playerID)

		// Private reattach snapshot before any further events.
		if state, err := d.SyncState(r.Context(), gameID, playerID); err == nil {
			if data, err := json.Marshal(state); err == nil {
				_ = wsChannel{conn: c}.Send(r.Context(), data)
			}
		}

		readGameMessages(r.Context(), c, d, gameID, playerID, logger)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
	}
}

// readGameMessages reads action frames and routes them through the
// dispatcher until the connection closes or the context ends.
func readGameMessages(ctx context.Context, c *websocket.Conn, d *Dispatcher, gameID, playerID uuid.UUID, logger *logrus.Logger) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for player %s in game %s", playerID, gameID)
			} else if !strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("error reading from WebSocket for player %s in game %s: %v", playerID, gameID, err)
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("invalid JSON from player %s in game %s: %v", playerID, gameID, err)
			sendAck(ctx, c, ackMessage{Type: "ack", Success: false, Error: "invalid JSON"})
			continue
		}
		logger.Debugf("received action '%s' from player %s in game %s", msg.Action, playerID, gameID)

		switch msg.Action {
		case "startGame":
			ack(ctx, c, msg.Action, d.StartGame(ctx, gameID, playerID))

		case "playCard":
			if msg.Card == nil {
				sendAck(ctx, c, ackMessage{Type: "ack", Action: msg.Action, Success: false, Error: "missing card"})
				continue
			}
			target := uuid.Nil
			if msg.TargetPlayerID != nil {
				target = *msg.TargetPlayerID
			}
			ack(ctx, c, msg.Action, d.PlayCard(ctx, gameID, playerID, *msg.Card, target))

		case "nextRound":
			ack(ctx, c, msg.Action, d.NextRound(ctx, gameID))

		case "sync":
			if state, err := d.SyncState(ctx, gameID, playerID); err == nil {
				if data, err := json.Marshal(state); err == nil {
					_ = wsChannel{conn: c}.Send(ctx, data)
				}
			}

		case "ping":
			sendAck(ctx, c, ackMessage{Type: "pong", Success: true})

		default:
			sendAck(ctx, c, ackMessage{Type: "ack", Action: msg.Action, Success: false, Error: "unknown action"})
		}
	}
}

func ack(ctx context.Context, c *websocket.Conn, action string, err error) {
	if err != nil {
		sendAck(ctx, c, ackMessage{Type: "ack", Action: action, Success: false, Error: UserMessage(err)})
		return
	}
	sendAck(ctx, c, ackMessage{Type: "ack", Action: action, Success: true})
}

func sendAck(ctx context.Context, c *websocket.Conn, msg ackMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	_ = wsChannel{conn: c}.Send(ctx, data)
}
