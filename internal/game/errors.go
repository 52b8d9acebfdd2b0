// internal/game/errors.go
package game

// GameError is a custom error type for rule violations. Every value is
// recoverable: the triggering request is rejected and the game
// continues unchanged.
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrInvalidInput        GameError = "invalid input"
	ErrGameAlreadyStarted  GameError = "game has already started"
	ErrGameFull            GameError = "game is at maximum capacity"
	ErrNotHost             GameError = "only the host can start the game"
	ErrInsufficientPlayers GameError = "not enough players"
	ErrInvalidGameState    GameError = "action does not match the current game state"
	ErrNotYourTurn         GameError = "it is not your turn"
	ErrCardNotInHand       GameError = "card is not in your hand"
)
