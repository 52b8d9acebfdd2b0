// internal/game/events.go
package game

import (
	"github.com/google/uuid"

	"fortyone/internal/models"
)

// EventType is an enum-like type for broadcasting game actions.
type EventType string

const (
	EventPlayerJoined EventType = "playerJoined"
	EventGameStarted  EventType = "gameStarted"
	EventCardPlayed   EventType = "cardPlayed"
	EventRoundEnd     EventType = "roundEnd"
	EventGameOver     EventType = "gameOver"
	EventNewRound     EventType = "newRound"

	// EventSync is sent privately on connect or reconnect and never
	// broadcast.
	EventSync EventType = "sync"
)

// Event is one effect emitted by a state-machine operation. It carries
// unredacted state (full player clones, dealt hands); it never leaves
// the process as-is. Project derives the deliverable views.
type Event struct {
	Type               EventType
	Actor              uuid.UUID
	Card               *models.Card
	Total              int
	NextPlayerID       uuid.UUID
	CurrentPlayerID    uuid.UUID
	EliminatedPlayerID uuid.UUID
	RoundNumber        int
	Players            []*models.Player
	Hands              map[uuid.UUID][]models.Card
}

// PlayerView is the public view of one seat: the hand is redacted to a
// count.
type PlayerView struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Eliminated bool      `json:"eliminated"`
	HandCount  int       `json:"handCount"`
	JoinOrder  int       `json:"joinOrder"`
}

// Message is the wire payload for one event delivery.
type Message struct {
	Type             EventType     `json:"type"`
	Players          []PlayerView  `json:"players,omitempty"`
	PlayerID         *uuid.UUID    `json:"playerId,omitempty"`
	Card             *models.Card  `json:"card,omitempty"`
	CurrentTotal     *int          `json:"currentTotal,omitempty"`
	NextPlayerID     *uuid.UUID    `json:"nextPlayerId,omitempty"`
	CurrentPlayerID  *uuid.UUID    `json:"currentPlayerId,omitempty"`
	EliminatedPlayer *uuid.UUID    `json:"eliminatedPlayer,omitempty"`
	RoundNumber      *int          `json:"roundNumber,omitempty"`
	Hand             []models.Card `json:"hand,omitempty"`
	Status           string        `json:"status,omitempty"`
}

// Delivery is one routed notification. A Nil recipient means broadcast
// to every registered channel for the game.
type Delivery struct {
	To  uuid.UUID
	Msg Message
}

// Project derives deliveries from an event. gameStarted and newRound
// fan out per player so each recipient sees exactly their own hand;
// everything else is a single broadcast with all hands redacted to
// counts. No delivery ever carries a hand that does not belong to its
// recipient.
func Project(ev Event) []Delivery {
	views := redact(ev.Players)

	switch ev.Type {
	case EventGameStarted, EventNewRound:
		deliveries := make([]Delivery, 0, len(ev.Players))
		for _, p := range ev.Players {
			msg := Message{
				Type:            ev.Type,
				Players:         views,
				CurrentPlayerID: uuidPtr(ev.CurrentPlayerID),
				Hand:            ev.Hands[p.ID],
			}
			if ev.Type == EventNewRound {
				msg.RoundNumber = intPtr(ev.RoundNumber)
			}
			deliveries = append(deliveries, Delivery{To: p.ID, Msg: msg})
		}
		return deliveries

	case EventCardPlayed:
		msg := Message{
			Type:         ev.Type,
			Players:      views,
			PlayerID:     uuidPtr(ev.Actor),
			Card:         ev.Card,
			CurrentTotal: intPtr(ev.Total),
		}
		if ev.NextPlayerID != uuid.Nil {
			msg.NextPlayerID = uuidPtr(ev.NextPlayerID)
		}
		return []Delivery{{Msg: msg}}

	case EventRoundEnd:
		return []Delivery{{Msg: Message{
			Type:             ev.Type,
			Players:          views,
			EliminatedPlayer: uuidPtr(ev.EliminatedPlayerID),
		}}}

	default:
		// playerJoined, gameOver
		return []Delivery{{Msg: Message{
			Type:    ev.Type,
			Players: views,
		}}}
	}
}

// SyncView builds the private state snapshot for one connected player:
// full public state plus that player's own hand and nothing else.
func SyncView(s *Snapshot, playerID uuid.UUID) Message {
	msg := Message{
		Type:         EventSync,
		Players:      redact(s.Players),
		Status:       string(s.Game.Status),
		CurrentTotal: intPtr(s.Game.CurrentTotal),
		RoundNumber:  intPtr(s.Game.RoundNumber),
	}
	if s.Game.CurrentPlayerID != uuid.Nil {
		msg.CurrentPlayerID = uuidPtr(s.Game.CurrentPlayerID)
	}
	if p := s.playerByID(playerID); p != nil {
		msg.Hand = append([]models.Card(nil), p.Hand...)
	}
	return msg
}

func redact(players []*models.Player) []PlayerView {
	views := make([]PlayerView, len(players))
	for i, p := range players {
		views[i] = PlayerView{
			ID:         p.ID,
			Name:       p.Name,
			Eliminated: p.Eliminated,
			HandCount:  len(p.Hand),
			JoinOrder:  p.JoinOrder,
		}
	}
	return views
}

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }
func intPtr(v int) *int               { return &v }
