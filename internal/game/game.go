// internal/game/game.go
package game

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"fortyone/internal/deck"
	"fortyone/internal/models"
)

const (
	// BustCeiling is the running total a play must not exceed.
	BustCeiling = 40

	// MaxPlayers is the seat cap; the practical ceiling of a 54-card
	// deck with 4-card hands.
	MaxPlayers = 13
)

// Snapshot is the fully loaded state of one game: the game record plus
// its players ordered by join order. Every operation below is a pure
// state transition on a snapshot: no I/O, no clocks hidden from the
// caller beyond log timestamps. The dispatcher loads a snapshot,
// invokes one operation, persists the result and routes the returned
// events. Concurrent operations on the same game must be serialized
// by the caller.
type Snapshot struct {
	Game    *models.Game
	Players []*models.Player
}

// CreateGame builds a new game in the lobby state with the host seated
// at join order 0.
func CreateGame(hostName string) (*Snapshot, error) {
	hostName = strings.TrimSpace(hostName)
	if hostName == "" {
		return nil, ErrInvalidInput
	}

	gameID := uuid.New()
	host := &models.Player{
		ID:        uuid.New(),
		GameID:    gameID,
		Name:      hostName,
		Hand:      []models.Card{},
		JoinOrder: 0,
	}
	return &Snapshot{
		Game: &models.Game{
			ID:          gameID,
			Code:        NewCode(),
			Status:      models.StatusLobby,
			RoundNumber: 1,
		},
		Players: []*models.Player{host},
	}, nil
}

// Join seats a new player at the next join order. Only possible while
// the game is still in the lobby.
func (s *Snapshot) Join(playerName string) (*models.Player, []Event, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, nil, ErrInvalidInput
	}
	if s.Game.Status != models.StatusLobby {
		return nil, nil, ErrGameAlreadyStarted
	}
	if len(s.Players) >= MaxPlayers {
		return nil, nil, ErrGameFull
	}

	p := &models.Player{
		ID:        uuid.New(),
		GameID:    s.Game.ID,
		Name:      playerName,
		Hand:      []models.Card{},
		JoinOrder: len(s.Players),
	}
	s.Players = append(s.Players, p)

	return p, []Event{{
		Type:    EventPlayerJoined,
		Actor:   p.ID,
		Players: s.clonePlayers(),
	}}, nil
}

// Start deals the first round. Only the host (join order 0) may start,
// and only with at least two seated players.
func (s *Snapshot) Start(requestingPlayerID uuid.UUID) ([]Event, error) {
	host := s.playerBySeat(0)
	if host == nil || host.ID != requestingPlayerID {
		return nil, ErrNotHost
	}
	if s.Game.Status != models.StatusLobby {
		return nil, ErrInvalidGameState
	}
	if len(s.Players) < 2 {
		return nil, ErrInsufficientPlayers
	}

	if err := s.dealAll(false); err != nil {
		return nil, err
	}
	s.Game.Status = models.StatusPlaying
	s.Game.CurrentTotal = 0
	s.Game.CurrentPlayerID = host.ID

	return []Event{{
		Type:            EventGameStarted,
		CurrentPlayerID: host.ID,
		RoundNumber:     s.Game.RoundNumber,
		Players:         s.clonePlayers(),
		Hands:           s.cloneHands(),
	}}, nil
}

// PlayCard resolves one play by the current player. The card must be
// in the actor's hand; it is consumed unconditionally once matched.
// targetPlayerID is honored only for wild cards and only when it names
// another non-eliminated player; otherwise the turn rotates to the
// next non-eliminated seat. A play pushing the total past the ceiling
// busts: the actor is eliminated, every hand is cleared and the round
// ends, finishing the game when a single player remains.
func (s *Snapshot) PlayCard(playerID uuid.UUID, card models.Card, targetPlayerID uuid.UUID) (*models.PlayLogEntry, []Event, error) {
	if s.Game.Status != models.StatusPlaying {
		return nil, nil, ErrInvalidGameState
	}
	if playerID != s.Game.CurrentPlayerID {
		return nil, nil, ErrNotYourTurn
	}

	actor := s.playerByID(playerID)
	played, ok := removeCard(actor, card)
	if !ok {
		return nil, nil, ErrCardNotInHand
	}

	newTotal := s.Game.CurrentTotal + played.Value
	entry := &models.PlayLogEntry{
		GameID:     s.Game.ID,
		PlayerID:   playerID,
		Card:       played,
		TotalAfter: newTotal,
		Timestamp:  time.Now().UTC(),
	}

	if newTotal > BustCeiling {
		return entry, s.bust(actor, played, newTotal), nil
	}

	next := s.nextSeatAfter(actor)
	if played.IsWild {
		if target := s.playerByID(targetPlayerID); target != nil && !target.Eliminated && target.ID != actor.ID {
			next = target
		}
	}
	s.Game.CurrentTotal = newTotal
	s.Game.CurrentPlayerID = next.ID

	return entry, []Event{{
		Type:         EventCardPlayed,
		Actor:        actor.ID,
		Card:         &played,
		Total:        newTotal,
		NextPlayerID: next.ID,
		Players:      s.clonePlayers(),
	}}, nil
}

// bust eliminates the actor and ends the round. Every hand is cleared,
// not just the actor's: hidden cards are irrelevant once a round ends.
func (s *Snapshot) bust(actor *models.Player, played models.Card, totalAfter int) []Event {
	actor.Eliminated = true
	for _, p := range s.Players {
		p.Hand = []models.Card{}
	}
	s.Game.CurrentTotal = 0
	s.Game.CurrentPlayerID = uuid.Nil
	s.Game.Status = models.StatusRoundEnd
	if s.countRemaining() == 1 {
		s.Game.Status = models.StatusFinished
	}

	events := []Event{{
		Type:    EventCardPlayed,
		Actor:   actor.ID,
		Card:    &played,
		Total:   totalAfter,
		Players: s.clonePlayers(),
	}}
	if s.Game.Status == models.StatusFinished {
		events = append(events, Event{
			Type:    EventGameOver,
			Players: s.clonePlayers(),
		})
	} else {
		events = append(events, Event{
			Type:               EventRoundEnd,
			EliminatedPlayerID: actor.ID,
			Players:            s.clonePlayers(),
		})
	}
	return events
}

// NextRound redeals to the surviving players and resumes play with the
// first non-eliminated seat.
func (s *Snapshot) NextRound() ([]Event, error) {
	if s.Game.Status != models.StatusRoundEnd {
		return nil, ErrInvalidGameState
	}
	if s.countRemaining() < 2 {
		return nil, ErrInsufficientPlayers
	}

	if err := s.dealAll(true); err != nil {
		return nil, err
	}
	first := s.firstRemaining()
	s.Game.CurrentTotal = 0
	s.Game.CurrentPlayerID = first.ID
	s.Game.RoundNumber++
	s.Game.Status = models.StatusPlaying

	return []Event{{
		Type:            EventNewRound,
		CurrentPlayerID: first.ID,
		RoundNumber:     s.Game.RoundNumber,
		Players:         s.clonePlayers(),
		Hands:           s.cloneHands(),
	}}, nil
}

// dealAll shuffles a fresh deck and deals a hand to each eligible
// player in seat order. Eliminated players keep empty hands when
// survivorsOnly is set.
func (s *Snapshot) dealAll(survivorsOnly bool) error {
	eligible := make([]*models.Player, 0, len(s.Players))
	for _, p := range s.Players {
		if survivorsOnly && p.Eliminated {
			p.Hand = []models.Card{}
			continue
		}
		eligible = append(eligible, p)
	}

	hands, _, err := deck.Deal(deck.Shuffle(deck.Build()), len(eligible))
	if err != nil {
		return err
	}
	for i, p := range eligible {
		p.Hand = hands[i]
	}
	return nil
}

// nextSeatAfter returns the next non-eliminated player after the given
// one in join order, wrapping circularly. The actor itself is the
// fallback when no other seat remains, which cannot happen while the
// game is in play.
func (s *Snapshot) nextSeatAfter(from *models.Player) *models.Player {
	n := len(s.Players)
	for i := 1; i <= n; i++ {
		p := s.Players[(from.JoinOrder+i)%n]
		if !p.Eliminated {
			return p
		}
	}
	return from
}

func (s *Snapshot) playerByID(id uuid.UUID) *models.Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Snapshot) playerBySeat(joinOrder int) *models.Player {
	for _, p := range s.Players {
		if p.JoinOrder == joinOrder {
			return p
		}
	}
	return nil
}

func (s *Snapshot) countRemaining() int {
	count := 0
	for _, p := range s.Players {
		if !p.Eliminated {
			count++
		}
	}
	return count
}

func (s *Snapshot) firstRemaining() *models.Player {
	for _, p := range s.Players {
		if !p.Eliminated {
			return p
		}
	}
	return nil
}

// removeCard removes the first card matching the named suit and rank
// from the player's hand and returns the card actually held, so the
// authoritative value is used even if the client sent a forged one.
func removeCard(p *models.Player, card models.Card) (models.Card, bool) {
	for i, c := range p.Hand {
		if c.Matches(card) {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return models.Card{}, false
}

func (s *Snapshot) clonePlayers() []*models.Player {
	out := make([]*models.Player, len(s.Players))
	for i, p := range s.Players {
		cp := *p
		cp.Hand = append([]models.Card(nil), p.Hand...)
		out[i] = &cp
	}
	return out
}

func (s *Snapshot) cloneHands() map[uuid.UUID][]models.Card {
	hands := make(map[uuid.UUID][]models.Card, len(s.Players))
	for _, p := range s.Players {
		hands[p.ID] = append([]models.Card(nil), p.Hand...)
	}
	return hands
}
