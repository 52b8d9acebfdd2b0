// internal/models/play_log.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayLogEntry is an append-only audit record of a single accepted
// play. The core writes these and never reads them back.
type PlayLogEntry struct {
	GameID     uuid.UUID `json:"gameId"`
	PlayerID   uuid.UUID `json:"playerId"`
	Card       Card      `json:"card"`
	TotalAfter int       `json:"totalAfter"`
	Timestamp  time.Time `json:"timestamp"`
}
