// Package roomid generates room identifiers and host tokens.
package roomid

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Lowercase base36, safe in URLs and file names.
const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

const (
	// IDLength is the length of a room id.
	IDLength = 12
	// TokenLength is the length of a host token.
	TokenLength = 24
)

// RandSource interface for dependency injection of randomness
type RandSource interface {
	IntN(n int) int
}

// Generator produces room ids and host tokens
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a new generator with optional RandSource. A nil
// source uses crypto/rand, which is what production must use since the host
// token is the only credential a room has.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// RoomID returns a new 12-character room id.
func (g *Generator) RoomID() string {
	return g.generate(IDLength)
}

// HostToken returns a new 24-character host token.
func (g *Generator) HostToken() string {
	return g.generate(TokenLength)
}

func (g *Generator) generate(n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(alphabet[g.intN(len(alphabet))])
	}
	return b.String()
}

func (g *Generator) intN(n int) int {
	if g.randSource != nil {
		return g.randSource.IntN(n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}
	return int(v.Int64())
}

// Validate checks that id looks like a room id. It is used before an id is
// turned into a file name.
func Validate(id string) error {
	return validate("room ID", id, IDLength)
}

// ValidateToken checks that token looks like a host token.
func ValidateToken(token string) error {
	return validate("host token", token, TokenLength)
}

func validate(what, s string, n int) error {
	if len(s) != n {
		return fmt.Errorf("%s must be exactly %d characters, got %d", what, n, len(s))
	}
	for i, char := range s {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
