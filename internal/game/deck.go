package game

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// Source is the randomness used by Shuffle. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// globalSource draws from the auto-seeded math/rand/v2 generator.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// NewSeededSource returns a deterministic Source for reproducible deals.
func NewSeededSource(seed1, seed2 uint64) Source {
	return rand.New(rand.NewPCG(seed1, seed2))
}

// Shuffle returns a uniformly permuted copy of in (Fisher–Yates).
// The input slice is left untouched.
func Shuffle[T any](src Source, in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	for i := len(out) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// BuildDeck creates two face-down cards per icon, each with a fresh id,
// and returns them shuffled.
func BuildDeck(src Source, icons []Icon) []Card {
	cards := make([]Card, 0, 2*len(icons))
	for _, ic := range icons {
		cards = append(cards, newCard(ic), newCard(ic))
	}
	return Shuffle(src, cards)
}

func newCard(ic Icon) Card {
	return Card{
		ID:       uuid.NewString(),
		MatchKey: ic.Key,
		Image:    ic.Image,
		Label:    ic.Label,
	}
}
