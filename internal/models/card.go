// internal/models/card.go
package models

// Suit names as they appear on the wire and in storage.
const (
	SuitHearts   = "hearts"
	SuitDiamonds = "diamonds"
	SuitClubs    = "clubs"
	SuitSpades   = "spades"
	SuitWild     = "wild"
)

// RankWild is the rank carried by the two wild cards in a deck.
const RankWild = "WILD"

// Card is a single playing card. Cards are immutable once dealt; the
// Value is fixed at deck-build time (A=1, J/Q/K=0, numerics face value,
// wild=0).
type Card struct {
	Suit   string `json:"suit"`
	Rank   string `json:"rank"`
	Value  int    `json:"value"`
	IsWild bool   `json:"isWild"`
}

// Matches reports whether two cards name the same suit and rank.
// Value and IsWild are derived from (suit, rank) and are ignored so a
// client cannot forge a card's worth.
func (c Card) Matches(other Card) bool {
	return c.Suit == other.Suit && c.Rank == other.Rank
}
