// internal/models/game.go
package models

import "github.com/google/uuid"

// GameStatus is the lifecycle state of a game.
type GameStatus string

const (
	StatusLobby    GameStatus = "lobby"
	StatusPlaying  GameStatus = "playing"
	StatusRoundEnd GameStatus = "roundEnd"
	StatusFinished GameStatus = "finished"
)

// Game is the per-game record. CurrentTotal is only meaningful while
// Status is playing; it resets to zero entering any new round.
// CurrentPlayerID is uuid.Nil outside of play.
type Game struct {
	ID              uuid.UUID  `json:"id"`
	Code            string     `json:"code"`
	Status          GameStatus `json:"status"`
	CurrentTotal    int        `json:"currentTotal"`
	CurrentPlayerID uuid.UUID  `json:"currentPlayerId"`
	RoundNumber     int        `json:"roundNumber"`
}
