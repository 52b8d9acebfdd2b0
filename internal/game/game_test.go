// internal/game/game_test.go
package game

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortyone/internal/deck"
	"fortyone/internal/models"
)

// newLobby creates a game with the first name as host and joins the rest.
func newLobby(t *testing.T, names ...string) *Snapshot {
	t.Helper()
	require.NotEmpty(t, names)
	snap, err := CreateGame(names[0])
	require.NoError(t, err)
	for _, name := range names[1:] {
		_, _, err := snap.Join(name)
		require.NoError(t, err)
	}
	return snap
}

// startGame starts a lobby as its host.
func startGame(t *testing.T, snap *Snapshot) []Event {
	t.Helper()
	events, err := snap.Start(snap.Players[0].ID)
	require.NoError(t, err)
	return events
}

// giveHand pins a player's hand so plays are deterministic.
func giveHand(snap *Snapshot, joinOrder int, cards ...models.Card) {
	snap.Players[joinOrder].Hand = cards
}

func card(suit, rank string, value int) models.Card {
	return models.Card{Suit: suit, Rank: rank, Value: value}
}

func wildCard() models.Card {
	return models.Card{Suit: models.SuitWild, Rank: models.RankWild, Value: 0, IsWild: true}
}

func TestCreateGame(t *testing.T) {
	snap, err := CreateGame("Alice")
	require.NoError(t, err)

	assert.Equal(t, models.StatusLobby, snap.Game.Status)
	assert.Equal(t, 1, snap.Game.RoundNumber)
	assert.Equal(t, uuid.Nil, snap.Game.CurrentPlayerID)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "Alice", snap.Players[0].Name)
	assert.Equal(t, 0, snap.Players[0].JoinOrder)
	assert.Empty(t, snap.Players[0].Hand)

	require.Len(t, snap.Game.Code, CodeLength)
	for _, r := range snap.Game.Code {
		assert.Contains(t, codeAlphabet, string(r))
	}
}

func TestCreateGameTrimsHostName(t *testing.T) {
	snap, err := CreateGame("  Alice  ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", snap.Players[0].Name)

	_, err = CreateGame("   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestJoinAssignsSeats(t *testing.T) {
	snap := newLobby(t, "Alice")

	bob, events, err := snap.Join("Bob")
	require.NoError(t, err)
	assert.Equal(t, 1, bob.JoinOrder)
	assert.Equal(t, snap.Game.ID, bob.GameID)

	require.Len(t, events, 1)
	assert.Equal(t, EventPlayerJoined, events[0].Type)
	assert.Len(t, events[0].Players, 2)

	carol, _, err := snap.Join("Carol")
	require.NoError(t, err)
	assert.Equal(t, 2, carol.JoinOrder)
}

func TestJoinErrors(t *testing.T) {
	snap := newLobby(t, "Alice", "Bob")

	_, _, err := snap.Join("  ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	startGame(t, snap)
	_, _, err = snap.Join("Carol")
	assert.ErrorIs(t, err, ErrGameAlreadyStarted)
}

func TestJoinFullGame(t *testing.T) {
	snap := newLobby(t, "P0")
	for i := 1; i < MaxPlayers; i++ {
		_, _, err := snap.Join("P" + strings.Repeat("x", i))
		require.NoError(t, err)
	}
	require.Len(t, snap.Players, MaxPlayers)

	_, _, err := snap.Join("Overflow")
	assert.ErrorIs(t, err, ErrGameFull)
}

func TestStartDealsHands(t *testing.T) {
	snap := newLobby(t, "Alice", "Bob", "Carol")

	events := startGame(t, snap)

	assert.Equal(t, models.StatusPlaying, snap.Game.Status)
	assert.Equal(t, 0, snap.Game.CurrentTotal)
	assert.Equal(t, snap.Players[0].ID, snap.Game.CurrentPlayerID)
	for _, p := range snap.Players {
		assert.Len(t, p.Hand, deck.HandSize)
	}

	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, EventGameStarted, ev.Type)
	assert.Equal(t, snap.Players[0].ID, ev.CurrentPlayerID)
	require.Len(t, ev.Hands, 3)
	for _, p := range snap.Players {
		assert.Equal(t, p.Hand, ev.Hands[p.ID])
	}
}

func TestStartHostInvariant(t *testing.T) {
	snap := newLobby(t, "Alice", "Bob")

	// Only the seat-0 player may start, whatever the game status.
	_, err := snap.Start(snap.Players[1].ID)
	assert.ErrorIs(t, err, ErrNotHost)
	_, err = snap.Start(uuid.New())
	assert.ErrorIs(t, err, ErrNotHost)

	startGame(t, snap)
	_, err = snap.Start(snap.Players[1].ID)
	assert.ErrorIs(t, err, ErrNotHost)

	// Host re-start after the game is underway is a state error.
	_, err = snap.Start(snap.Players[0].ID)
	assert.ErrorIs(t, err, ErrInvalidGameState)
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	snap := newLobby(t, "Alice")
	_, err := snap.Start(snap.Players[0].ID)
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
}

func TestPlayCardErrors(t *testing.T) {
	snap := newLobby(t, "Alice", "Bob")

	// Lobby game: no plays yet.
	_, _, err := snap.PlayCard(snap.Players[0].ID, card(models.SuitHearts, "5", 5), uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidGameState)

	startGame(t, snap)
	giveHand(snap, 0, card(models.SuitHearts, "5", 5))
	giveHand(snap, 1, card(models.SuitClubs, "7", 7))

	// Bob is not the current player.
	_, _, err = snap.PlayCard(snap.Players[1].ID, card(models.SuitClubs, "7", 7), uuid.Nil)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	// Alice does not hold the seven of clubs.
	_, _, err = snap.PlayCard(snap.Players[0].ID, card(models.SuitClubs, "7", 7), uuid.Nil)
	assert.ErrorIs(t, err, ErrCardNotInHand)
	// The failed play consumed nothing.
	assert.Len(t, snap.Players[0].Hand, 1)
}

func TestTwoPlayerHappyPath(t *testing.T) {
	snap := newLobby(t, "Alice", "Bob")
	startGame(t, snap)
	alice, bob := snap.Players[0], snap.Players[1]
	giveHand(snap, 0, card(models.SuitHearts, "5", 5), card(models.SuitSpades, "2", 2))

	entry, events, err := snap.PlayCard(alice.ID, card(models.SuitHearts, "5", 5), uuid.Nil)
	require.NoError(t, err)

	assert.Equal(t, 5, snap.Game.CurrentTotal)
	assert.Equal(t, bob.ID, snap.Game.CurrentPlayerID)
	assert.Len(t, alice.Hand, 1)

	require.NotNil(t, entry)
	assert.Equal(t, snap.Game.ID, entry.GameID)
	assert.Equal(t, alice.ID, entry.PlayerID)
	assert.Equal(t, 5, entry.TotalAfter)
	assert.False(t, entry.Timestamp.IsZero())

	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, EventCardPlayed, ev.Type)
	assert.Equal(t, alice.ID, ev.Actor)
	assert.Equal(t, 5, ev.Total)
	assert.Equal(t, bob.ID, ev.NextPlayerID)
	assert.Equal(t, "5", ev.Card.Rank)
}

func TestPlayCardUsesAuthoritativeValue(t *testing.T) {
	snap := newLobby(t, "Alice", "Bob")
	startGame(t, snap)
	giveHand(snap, 0, card(models.SuitDiamonds, "9", 9))

	// The client names suit and rank but lies about the value.
	forged := models.Card{Suit: models.SuitDiamonds, Rank: "9", Value: 0}
	_, _, err := snap.PlayCard(snap.Players[0].ID, forged, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, 9, snap.Game.CurrentTotal)
}

func TestBustEndsRound(t *testing.T) {
	snap := newLobby(t, "Alice", "Bob", "Carol")
	startGame(t, snap)
	snap.Game.CurrentTotal = 38
	alice := snap.Players[0]
	giveHand(snap, 0, card(models.SuitHearts, "5", 5))

	entry, events, err := snap.PlayCard(alice.ID, card(models.SuitHearts, "5", 5), uuid.Nil)
	require.NoError(t, err)

	assert.True(t, alice.Eliminated)
	for _, p := range snap.Players {
		assert.Empty(t, p.Hand)
	}
	assert.Equal(t, 0, snap.Game.CurrentTotal)
	assert.Equal(t, uuid.Nil, snap.Game.CurrentPlayerID)
	assert.Equal(t, models.StatusRoundEnd, snap.Game.Status)
	assert.Equal(t, 43, entry.TotalAfter)

	require.Len(t, events, 2)
	assert.Equal(t, EventCardPlayed, events[0].Type)
	assert.Equal(t, 43, events[0].Total)
	assert.Equal(t, uuid.Nil, events[0].NextPlayerID)
	assert.Equal(t, EventRoundEnd, events[1].Type)
	assert.Equal(t, alice.ID, events[1].EliminatedPlayerID)
}

func TestBustToFinish(t *testing.T) {
	snap := newLobby(t, "Alice", "Bob")
	startGame(t, snap)
	snap.Game.CurrentTotal = 38
	alice, bob := snap.Players[0], snap.Players[1]
	giveHand(snap, 0, card(models.SuitHearts, "5", 5))

	_, events, err := snap.PlayCard(alice.ID, card(models.SuitHearts, "5", 5), uuid.Nil)
	require.NoError(t, err)

	assert.Equal(t, models.StatusFinished, snap.Game.Status)
	assert.True(t, alice.Eliminated)
	assert.False(t, bob.Eliminated)
	assert.Empty(t, alice.Hand)
	assert.Empty(t, bob.Hand)

	require.Len(t, events, 2)
	assert.Equal(t, EventCardPlayed, events[0].Type)
	over := events[1]
	assert.Equal(t, EventGameOver, over.Type)
	require.Len(t, over.Players, 2)
	assert.True(t, over.Players[0].Eliminated)
	assert.False(t, over.Players[1].Eliminated)
}

func TestWildCardRedirect(t *testing.T) {
	snap := newLobby(t, "A", "B", "C")
	startGame(t, snap)
	a, c := snap.Players[0], snap.Players[2]
	giveHand(snap, 0, wildCard())

	_, events, err := snap.PlayCard(a.ID, wildCard(), c.ID)
	require.NoError(t, err)

	// B is skipped; wild adds nothing to the total.
	assert.Equal(t, c.ID, snap.Game.CurrentPlayerID)
	assert.Equal(t, 0, snap.Game.CurrentTotal)
	require.Len(t, events, 1)
	assert.Equal(t, c.ID, events[0].NextPlayerID)
}

func TestWildCardInvalidTargetFallsBack(t *testing.T) {
	cases := []struct {
		name   string
		target func(s *Snapshot) uuid.UUID
	}{
		{"eliminated target", func(s *Snapshot) uuid.UUID {
			s.Players[2].Eliminated = true
			return s.Players[2].ID
		}},
		{"self target", func(s *Snapshot) uuid.UUID {
			return s.Players[0].ID
		}},
		{"unknown target", func(s *Snapshot) uuid.UUID {
			return uuid.New()
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := newLobby(t, "A", "B", "C")
			startGame(t, snap)
			giveHand(snap, 0, wildCard())
			target := tc.target(snap)

			_, _, err := snap.PlayCard(snap.Players[0].ID, wildCard(), target)
			require.NoError(t, err)
			// Circular-wrap rule: next non-eliminated seat after A.
			assert.Equal(t, snap.Players[1].ID, snap.Game.CurrentPlayerID)
			// The wild card was still consumed.
			assert.Empty(t, snap.Players[0].Hand)
		})
	}
}

func TestTurnRotationSkipsEliminated(t *testing.T) {
	snap := newLobby(t, "A", "B", "C")
	startGame(t, snap)
	snap.Players[1].Eliminated = true
	giveHand(snap, 0, card(models.SuitClubs, "3", 3))

	_, _, err := snap.PlayCard(snap.Players[0].ID, card(models.SuitClubs, "3", 3), uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, snap.Players[2].ID, snap.Game.CurrentPlayerID)
}

func TestTurnWrapsAround(t *testing.T) {
	snap := newLobby(t, "A", "B", "C")
	startGame(t, snap)
	snap.Game.CurrentPlayerID = snap.Players[2].ID
	giveHand(snap, 2, card(models.SuitClubs, "3", 3))

	_, _, err := snap.PlayCard(snap.Players[2].ID, card(models.SuitClubs, "3", 3), uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, snap.Players[0].ID, snap.Game.CurrentPlayerID)
}

// bustToRoundEnd drives a started game into roundEnd by busting the
// current player.
func bustToRoundEnd(t *testing.T, snap *Snapshot) {
	t.Helper()
	snap.Game.CurrentTotal = BustCeiling
	actor := snap.playerByID(snap.Game.CurrentPlayerID)
	actor.Hand = []models.Card{card(models.SuitHearts, "5", 5)}
	_, _, err := snap.PlayCard(actor.ID, card(models.SuitHearts, "5", 5), uuid.Nil)
	require.NoError(t, err)
	require.Equal(t, models.StatusRoundEnd, snap.Game.Status)
}

func TestNextRound(t *testing.T) {
	snap := newLobby(t, "A", "B", "C")
	startGame(t, snap)
	bustToRoundEnd(t, snap)
	require.True(t, snap.Players[0].Eliminated)

	events, err := snap.NextRound()
	require.NoError(t, err)

	assert.Equal(t, models.StatusPlaying, snap.Game.Status)
	assert.Equal(t, 0, snap.Game.CurrentTotal)
	assert.Equal(t, 2, snap.Game.RoundNumber)
	// First surviving seat acts first.
	assert.Equal(t, snap.Players[1].ID, snap.Game.CurrentPlayerID)

	assert.Empty(t, snap.Players[0].Hand)
	assert.Len(t, snap.Players[1].Hand, deck.HandSize)
	assert.Len(t, snap.Players[2].Hand, deck.HandSize)

	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, EventNewRound, ev.Type)
	assert.Equal(t, 2, ev.RoundNumber)
	assert.Equal(t, snap.Players[1].ID, ev.CurrentPlayerID)
	assert.Empty(t, ev.Hands[snap.Players[0].ID])
}

func TestNextRoundErrors(t *testing.T) {
	snap := newLobby(t, "A", "B")
	startGame(t, snap)

	// Mid-play there is no round to advance.
	_, err := snap.NextRound()
	assert.ErrorIs(t, err, ErrInvalidGameState)

	// A finished game stays finished.
	bust := snap
	bust.Game.CurrentTotal = BustCeiling
	actor := bust.playerByID(bust.Game.CurrentPlayerID)
	actor.Hand = []models.Card{card(models.SuitHearts, "5", 5)}
	_, _, err = bust.PlayCard(actor.ID, card(models.SuitHearts, "5", 5), uuid.Nil)
	require.NoError(t, err)
	require.Equal(t, models.StatusFinished, bust.Game.Status)
	_, err = bust.NextRound()
	assert.ErrorIs(t, err, ErrInvalidGameState)
}

func TestNextRoundRequiresTwoSurvivors(t *testing.T) {
	snap := newLobby(t, "A", "B", "C")
	startGame(t, snap)
	bustToRoundEnd(t, snap)
	// Eliminate another survivor out-of-band to force the edge case.
	snap.Players[1].Eliminated = true

	_, err := snap.NextRound()
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
}

func TestEliminationAcrossRounds(t *testing.T) {
	snap := newLobby(t, "A", "B", "C", "D")
	startGame(t, snap)

	bustToRoundEnd(t, snap)
	_, err := snap.NextRound()
	require.NoError(t, err)

	// Round two: the first survivor busts as well.
	bustToRoundEnd(t, snap)
	assert.Equal(t, 2, snap.countRemaining())

	_, err = snap.NextRound()
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Game.RoundNumber)

	// Round three: one more bust finishes the game.
	snap.Game.CurrentTotal = BustCeiling
	actor := snap.playerByID(snap.Game.CurrentPlayerID)
	actor.Hand = []models.Card{card(models.SuitHearts, "5", 5)}
	_, events, err := snap.PlayCard(actor.ID, card(models.SuitHearts, "5", 5), uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, snap.Game.Status)
	assert.Equal(t, EventGameOver, events[len(events)-1].Type)
}
