// internal/session/directory.go
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Channel is one player's live connection. Send must not block
// indefinitely; transport adapters enforce their own write timeouts.
type Channel interface {
	Send(ctx context.Context, data []byte) error
}

// Directory maps a game id to the set of currently connected player
// channels. Entries are created on connect and removed on disconnect;
// the per-game map is dropped when its last channel unregisters.
// Delivery is best effort: a dead channel never blocks the rest.
type Directory struct {
	mu    sync.RWMutex
	games map[uuid.UUID]map[uuid.UUID]Channel
	log   *logrus.Logger
}

// NewDirectory builds an empty directory.
func NewDirectory(log *logrus.Logger) *Directory {
	return &Directory{
		games: make(map[uuid.UUID]map[uuid.UUID]Channel),
		log:   log,
	}
}

// Register attaches a player's channel, replacing any stale channel
// from a previous connection.
func (d *Directory) Register(gameID, playerID uuid.UUID, ch Channel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	chans, ok := d.games[gameID]
	if !ok {
		chans = make(map[uuid.UUID]Channel)
		d.games[gameID] = chans
	}
	chans[playerID] = ch
}

// Unregister detaches a player's channel and drops the game entry when
// it becomes empty.
func (d *Directory) Unregister(gameID, playerID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	chans, ok := d.games[gameID]
	if !ok {
		return
	}
	delete(chans, playerID)
	if len(chans) == 0 {
		delete(d.games, gameID)
	}
}

// Broadcast delivers data to every channel registered for the game.
// Failures are logged and skipped so one bad connection cannot starve
// the others.
func (d *Directory) Broadcast(ctx context.Context, gameID uuid.UUID, data []byte) {
	d.mu.RLock()
	targets := make(map[uuid.UUID]Channel, len(d.games[gameID]))
	for pid, ch := range d.games[gameID] {
		targets[pid] = ch
	}
	d.mu.RUnlock()

	for pid, ch := range targets {
		if err := ch.Send(ctx, data); err != nil {
			d.log.WithFields(logrus.Fields{
				"game":   gameID,
				"player": pid,
			}).Warnf("broadcast delivery failed: %v", err)
		}
	}
}

// SendTo delivers data to a single registered player, if connected.
func (d *Directory) SendTo(ctx context.Context, gameID, playerID uuid.UUID, data []byte) {
	d.mu.RLock()
	ch := d.games[gameID][playerID]
	d.mu.RUnlock()

	if ch == nil {
		return
	}
	if err := ch.Send(ctx, data); err != nil {
		d.log.WithFields(logrus.Fields{
			"game":   gameID,
			"player": playerID,
		}).Warnf("direct delivery failed: %v", err)
	}
}

// Connected returns the number of channels registered for a game.
func (d *Directory) Connected(gameID uuid.UUID) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.games[gameID])
}
