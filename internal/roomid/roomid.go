// Package roomid generates the short, human-enterable codes that identify
// game rooms.
package roomid

import (
	"fmt"
	"strings"
)

// Alphabet is the full set of characters a room code may contain. Codes are
// meant to be read aloud and typed on phones, so it sticks to uppercase
// letters and digits.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultLength matches the original deployment's four-character codes.
const DefaultLength = 4

// RandSource is the randomness a Generator needs. *rand.Rand satisfies it.
type RandSource interface {
	IntN(n int) int
}

// Generator produces room codes of a fixed length from Alphabet.
type Generator struct {
	rng    RandSource
	length int
}

// NewGenerator creates a generator. A non-positive length falls back to
// DefaultLength.
func NewGenerator(rng RandSource, length int) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Generator{rng: rng, length: length}
}

// Generate returns a fresh room code. Uniqueness against live rooms is the
// caller's concern; regenerate on collision.
func (g *Generator) Generate() string {
	var b strings.Builder
	b.Grow(g.length)
	for i := 0; i < g.length; i++ {
		b.WriteByte(Alphabet[g.rng.IntN(len(Alphabet))])
	}
	return b.String()
}

// Length returns the configured code length.
func (g *Generator) Length() int {
	return g.length
}

// Normalize uppercases a user-entered code so lookups are case-insensitive.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks that code has the expected length and only uses Alphabet
// characters.
func Validate(code string, length int) error {
	if length <= 0 {
		length = DefaultLength
	}
	if len(code) != length {
		return fmt.Errorf("room code must be exactly %d characters, got %d", length, len(code))
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(Alphabet, rune(code[i])) {
			return fmt.Errorf("invalid character %c at position %d", code[i], i)
		}
	}
	return nil
}
