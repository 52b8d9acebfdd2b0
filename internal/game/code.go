// internal/game/code.go
package game

import (
	"math/rand"
	"strings"
)

// codeAlphabet excludes the visually ambiguous characters I, O, 0 and 1
// so codes survive being read aloud or scribbled on a napkin.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the length of a human-entry join code.
const CodeLength = 6

// NewCode returns a random join code. Collision avoidance is the
// storage layer's job (unique index on games.code).
func NewCode() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
	}
	return b.String()
}

// NormalizeCode uppercases a client-supplied code for case-insensitive
// lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
