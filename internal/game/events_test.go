// internal/game/events_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortyone/internal/models"
)

func TestProjectBroadcastRedactsHands(t *testing.T) {
	snap := newLobby(t, "Alice", "Bob")
	startGame(t, snap)
	giveHand(snap, 0, card(models.SuitHearts, "5", 5), card(models.SuitSpades, "K", 0))

	_, events, err := snap.PlayCard(snap.Players[0].ID, card(models.SuitHearts, "5", 5), uuid.Nil)
	require.NoError(t, err)

	deliveries := Project(events[0])
	require.Len(t, deliveries, 1)
	d := deliveries[0]
	assert.Equal(t, uuid.Nil, d.To, "cardPlayed is a broadcast")
	assert.Empty(t, d.Msg.Hand, "broadcast payloads carry no hand contents")

	require.Len(t, d.Msg.Players, 2)
	assert.Equal(t, 1, d.Msg.Players[0].HandCount)
	require.NotNil(t, d.Msg.CurrentTotal)
	assert.Equal(t, 5, *d.Msg.CurrentTotal)
	require.NotNil(t, d.Msg.NextPlayerID)
	assert.Equal(t, snap.Players[1].ID, *d.Msg.NextPlayerID)
}

func TestProjectGameStartedFansOutPerPlayer(t *testing.T) {
	snap := newLobby(t, "Alice", "Bob", "Carol")
	events := startGame(t, snap)

	deliveries := Project(events[0])
	require.Len(t, deliveries, 3)

	handOf := make(map[uuid.UUID][]models.Card)
	for _, p := range snap.Players {
		handOf[p.ID] = p.Hand
	}
	for _, d := range deliveries {
		require.NotEqual(t, uuid.Nil, d.To, "gameStarted is addressed per player")
		// The only hand a recipient ever sees is their own.
		assert.Equal(t, handOf[d.To], d.Msg.Hand)
		for _, view := range d.Msg.Players {
			assert.Equal(t, 4, view.HandCount)
		}
	}
}

func TestProjectNewRoundCarriesRoundNumber(t *testing.T) {
	snap := newLobby(t, "A", "B", "C")
	startGame(t, snap)
	bustToRoundEnd(t, snap)
	events, err := snap.NextRound()
	require.NoError(t, err)

	deliveries := Project(events[0])
	require.Len(t, deliveries, 3)
	for _, d := range deliveries {
		require.NotNil(t, d.Msg.RoundNumber)
		assert.Equal(t, 2, *d.Msg.RoundNumber)
		if d.To == snap.Players[0].ID {
			// Eliminated players remain addressed but hold no cards.
			assert.Empty(t, d.Msg.Hand)
		} else {
			assert.Len(t, d.Msg.Hand, 4)
		}
	}
}

func TestProjectRoundEndNamesEliminatedPlayer(t *testing.T) {
	snap := newLobby(t, "A", "B", "C")
	startGame(t, snap)
	actorID := snap.Game.CurrentPlayerID
	bustToRoundEnd(t, snap)

	ev := Event{
		Type:               EventRoundEnd,
		EliminatedPlayerID: actorID,
		Players:            snap.clonePlayers(),
	}
	deliveries := Project(ev)
	require.Len(t, deliveries, 1)
	require.NotNil(t, deliveries[0].Msg.EliminatedPlayer)
	assert.Equal(t, actorID, *deliveries[0].Msg.EliminatedPlayer)
	for _, view := range deliveries[0].Msg.Players {
		assert.Equal(t, 0, view.HandCount)
	}
}

func TestSyncViewShowsOnlyOwnHand(t *testing.T) {
	snap := newLobby(t, "Alice", "Bob")
	startGame(t, snap)

	for _, p := range snap.Players {
		msg := SyncView(snap, p.ID)
		assert.Equal(t, EventSync, msg.Type)
		assert.Equal(t, string(models.StatusPlaying), msg.Status)
		assert.Equal(t, p.Hand, msg.Hand)
		require.NotNil(t, msg.CurrentPlayerID)
		assert.Equal(t, snap.Players[0].ID, *msg.CurrentPlayerID)
		for _, view := range msg.Players {
			assert.Equal(t, 4, view.HandCount)
		}
	}

	// Unknown viewers (spectating connections) get no hand at all.
	msg := SyncView(snap, uuid.New())
	assert.Empty(t, msg.Hand)
}

func TestSnapshotClonesAreIndependent(t *testing.T) {
	snap := newLobby(t, "Alice", "Bob")
	startGame(t, snap)
	giveHand(snap, 0, card(models.SuitHearts, "5", 5))

	clones := snap.clonePlayers()
	clones[0].Hand[0] = wildCard()
	clones[0].Eliminated = true

	assert.False(t, snap.Players[0].Eliminated)
	assert.Equal(t, card(models.SuitHearts, "5", 5), snap.Players[0].Hand[0])
}
