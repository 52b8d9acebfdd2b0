// internal/models/player.go
package models

import "github.com/google/uuid"

// Player is one seat in a game. JoinOrder is assigned when the player
// joins and never changes; seat 0 is the host and seating order drives
// turn rotation.
type Player struct {
	ID         uuid.UUID `json:"id"`
	GameID     uuid.UUID `json:"gameId"`
	Name       string    `json:"name"`
	Eliminated bool      `json:"eliminated"`
	Hand       []Card    `json:"hand"`
	JoinOrder  int       `json:"joinOrder"`
}
