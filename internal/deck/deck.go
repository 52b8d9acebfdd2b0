// internal/deck/deck.go
package deck

import (
	"math/rand"
	"time"

	"fortyone/internal/models"
)

// HandSize is the number of cards dealt to each player per round.
const HandSize = 4

type deckError string

func (e deckError) Error() string { return string(e) }

// ErrInsufficientCards is returned by Deal when the deck cannot cover
// every requested hand. Unreachable with a full 54-card deck and the
// 13-player cap, but the contract holds for arbitrary inputs.
const ErrInsufficientCards deckError = "not enough cards to deal"

var suits = []string{models.SuitHearts, models.SuitDiamonds, models.SuitClubs, models.SuitSpades}
var ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// rankValue maps a rank to its play value: aces are 1, faces are 0,
// numeric ranks count face value.
func rankValue(rank string) int {
	switch rank {
	case "A":
		return 1
	case "J", "Q", "K", models.RankWild:
		return 0
	case "10":
		return 10
	default:
		return int(rank[0] - '0')
	}
}

// Build returns the canonical 54-card deck: 13 ranks for each of the
// four suits, followed by the two wild cards. No randomness.
func Build() []models.Card {
	cards := make([]models.Card, 0, 54)
	for _, suit := range suits {
		for _, rank := range ranks {
			cards = append(cards, models.Card{
				Suit:  suit,
				Rank:  rank,
				Value: rankValue(rank),
			})
		}
	}
	for i := 0; i < 2; i++ {
		cards = append(cards, models.Card{
			Suit:   models.SuitWild,
			Rank:   models.RankWild,
			Value:  0,
			IsWild: true,
		})
	}
	return cards
}

// Shuffle returns a uniformly random permutation of cards without
// mutating its input. Gameplay randomness only; not cryptographic.
func Shuffle(cards []models.Card) []models.Card {
	shuffled := make([]models.Card, len(cards))
	copy(shuffled, cards)
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// Deal draws HandSize cards for each of playerCount hands, round-robin
// (one card per player per pass) from the end of the deck. It returns
// the hands in seat order plus the undealt remainder of the deck.
func Deal(cards []models.Card, playerCount int) ([][]models.Card, []models.Card, error) {
	need := playerCount * HandSize
	if len(cards) < need {
		return nil, nil, ErrInsufficientCards
	}

	rest := make([]models.Card, len(cards))
	copy(rest, cards)

	hands := make([][]models.Card, playerCount)
	for i := range hands {
		hands[i] = make([]models.Card, 0, HandSize)
	}
	for pass := 0; pass < HandSize; pass++ {
		for p := 0; p < playerCount; p++ {
			top := len(rest) - 1
			hands[p] = append(hands[p], rest[top])
			rest = rest[:top]
		}
	}
	return hands, rest, nil
}
