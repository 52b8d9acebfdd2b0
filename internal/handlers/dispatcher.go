// internal/handlers/dispatcher.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fortyone/internal/cache"
	"fortyone/internal/database"
	"fortyone/internal/game"
	"fortyone/internal/models"
	"fortyone/internal/session"
)

// Dispatcher translates client actions into state-machine calls:
// load snapshot, operate, persist, project, route. Operations on a
// given game are serialized by a per-game mutex; different games
// proceed in parallel.
type Dispatcher struct {
	store    *database.Store
	sessions *session.Directory
	queue    *cache.PlayQueue
	log      *logrus.Logger

	locks sync.Map // game id -> *sync.Mutex
}

// NewDispatcher wires the collaborators together. queue may be nil
// when no historian is configured.
func NewDispatcher(store *database.Store, sessions *session.Directory, queue *cache.PlayQueue, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		sessions: sessions,
		queue:    queue,
		log:      log,
	}
}

func (d *Dispatcher) lock(gameID uuid.UUID) *sync.Mutex {
	mu, _ := d.locks.LoadOrStore(gameID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// CreateGame makes a new lobby with the host seated and returns the
// created snapshot.
func (d *Dispatcher) CreateGame(ctx context.Context, hostName string) (*game.Snapshot, error) {
	snap, err := game.CreateGame(hostName)
	if err != nil {
		return nil, err
	}
	if err := d.store.CreateGame(ctx, snap.Game, snap.Players[0]); err != nil {
		return nil, err
	}
	d.log.WithFields(logrus.Fields{
		"game": snap.Game.ID,
		"code": snap.Game.Code,
	}).Info("game created")
	return snap, nil
}

// JoinGame seats a new player in the game matching the join code and
// broadcasts the updated roster.
func (d *Dispatcher) JoinGame(ctx context.Context, code, playerName string) (*game.Snapshot, *models.Player, error) {
	gameID, err := d.store.GameIDByCode(ctx, game.NormalizeCode(code))
	if err != nil {
		return nil, nil, err
	}

	mu := d.lock(gameID)
	mu.Lock()
	defer mu.Unlock()

	snap, err := d.loadSnapshot(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	player, events, err := snap.Join(playerName)
	if err != nil {
		return nil, nil, err
	}
	if err := d.store.SavePlayer(ctx, player); err != nil {
		return nil, nil, err
	}
	d.route(ctx, gameID, events)
	return snap, player, nil
}

// StartGame deals the first round on behalf of the host.
func (d *Dispatcher) StartGame(ctx context.Context, gameID, playerID uuid.UUID) error {
	return d.operate(ctx, gameID, func(snap *game.Snapshot) ([]game.Event, []*models.PlayLogEntry, error) {
		events, err := snap.Start(playerID)
		return events, nil, err
	})
}

// PlayCard resolves one play and publishes the audit record.
func (d *Dispatcher) PlayCard(ctx context.Context, gameID, playerID uuid.UUID, card models.Card, targetPlayerID uuid.UUID) error {
	return d.operate(ctx, gameID, func(snap *game.Snapshot) ([]game.Event, []*models.PlayLogEntry, error) {
		entry, events, err := snap.PlayCard(playerID, card, targetPlayerID)
		if err != nil {
			return nil, nil, err
		}
		return events, []*models.PlayLogEntry{entry}, nil
	})
}

// NextRound redeals after a bust.
func (d *Dispatcher) NextRound(ctx context.Context, gameID uuid.UUID) error {
	return d.operate(ctx, gameID, func(snap *game.Snapshot) ([]game.Event, []*models.PlayLogEntry, error) {
		events, err := snap.NextRound()
		return events, nil, err
	})
}

// SyncState returns the private reattach snapshot for one player.
func (d *Dispatcher) SyncState(ctx context.Context, gameID, playerID uuid.UUID) (game.Message, error) {
	mu := d.lock(gameID)
	mu.Lock()
	defer mu.Unlock()

	snap, err := d.loadSnapshot(ctx, gameID)
	if err != nil {
		return game.Message{}, err
	}
	return game.SyncView(snap, playerID), nil
}

// PlayerInGame reports whether the player is seated in the game.
func (d *Dispatcher) PlayerInGame(ctx context.Context, gameID, playerID uuid.UUID) (bool, error) {
	mu := d.lock(gameID)
	mu.Lock()
	defer mu.Unlock()

	snap, err := d.loadSnapshot(ctx, gameID)
	if err != nil {
		return false, err
	}
	for _, p := range snap.Players {
		if p.ID == playerID {
			return true, nil
		}
	}
	return false, nil
}

// operate runs one state-machine call under the per-game lock. A
// failed operation persists nothing and notifies no one.
func (d *Dispatcher) operate(ctx context.Context, gameID uuid.UUID, op func(*game.Snapshot) ([]game.Event, []*models.PlayLogEntry, error)) error {
	mu := d.lock(gameID)
	mu.Lock()
	defer mu.Unlock()

	snap, err := d.loadSnapshot(ctx, gameID)
	if err != nil {
		return err
	}
	events, entries, err := op(snap)
	if err != nil {
		return err
	}
	if err := d.store.SaveSnapshot(ctx, snap.Game, snap.Players, entries); err != nil {
		return err
	}
	d.publishEntries(ctx, entries)
	d.route(ctx, gameID, events)
	return nil
}

func (d *Dispatcher) loadSnapshot(ctx context.Context, gameID uuid.UUID) (*game.Snapshot, error) {
	g, players, err := d.store.LoadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return &game.Snapshot{Game: g, Players: players}, nil
}

// publishEntries pushes play records to the historian queue. The play
// is already durable in postgres, so a queue failure is logged and
// swallowed.
func (d *Dispatcher) publishEntries(ctx context.Context, entries []*models.PlayLogEntry) {
	if d.queue == nil {
		return
	}
	for _, e := range entries {
		if err := d.queue.PublishPlay(ctx, e); err != nil {
			d.log.WithField("game", e.GameID).Warnf("historian publish failed: %v", err)
		}
	}
}

// route projects each event into deliveries and hands them to the
// session directory.
func (d *Dispatcher) route(ctx context.Context, gameID uuid.UUID, events []game.Event) {
	for _, ev := range events {
		for _, delivery := range game.Project(ev) {
			data, err := json.Marshal(delivery.Msg)
			if err != nil {
				d.log.Errorf("failed to marshal %s event for game %s: %v", delivery.Msg.Type, gameID, err)
				continue
			}
			if delivery.To == uuid.Nil {
				d.sessions.Broadcast(ctx, gameID, data)
			} else {
				d.sessions.SendTo(ctx, gameID, delivery.To, data)
			}
		}
	}
}

// UserMessage maps an operation failure to a client-facing error
// string. Rule violations pass through verbatim; anything else is
// masked as an internal error.
func UserMessage(err error) string {
	var ge game.GameError
	if errors.As(err, &ge) {
		return ge.Error()
	}
	if errors.Is(err, database.ErrGameNotFound) {
		return database.ErrGameNotFound.Error()
	}
	return "internal error"
}
