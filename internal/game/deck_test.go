package game

import (
	"fmt"
	"slices"
	"testing"
)

// identitySource makes Shuffle a no-op: every swap is i with itself.
type identitySource struct{}

func (identitySource) IntN(n int) int { return n - 1 }

func makeIcons(n int) []Icon {
	icons := make([]Icon, n)
	for i := range icons {
		icons[i] = Icon{
			Key:   fmt.Sprintf("icon_%02d", i),
			Label: fmt.Sprintf("Icon %d", i),
			Image: fmt.Sprintf("icons/%02d.png", i),
		}
	}
	return icons
}

func TestBuildDeckPairsAndIDs(t *testing.T) {
	for _, n := range []int{1, 2, 6, 12, 30} {
		t.Run(fmt.Sprintf("%d", n), func(t *testing.T) {
			deck := BuildDeck(globalSource{}, makeIcons(n))
			if len(deck) != 2*n {
				t.Fatalf("len(deck) = %d; want %d", len(deck), 2*n)
			}

			keys := map[string]int{}
			ids := map[string]bool{}
			for _, c := range deck {
				keys[c.MatchKey]++
				if ids[c.ID] {
					t.Errorf("duplicate id %s", c.ID)
				}
				ids[c.ID] = true
				if c.FaceUp || c.Matched {
					t.Errorf("card %s dealt face up or matched", c.ID)
				}
			}
			if len(keys) != n {
				t.Errorf("distinct keys = %d; want %d", len(keys), n)
			}
			for k, cnt := range keys {
				if cnt != 2 {
					t.Errorf("key %s appears %d times; want 2", k, cnt)
				}
			}
		})
	}
}

func TestBuildDeckCopiesIconFields(t *testing.T) {
	icons := []Icon{{Key: "dog_happy", Label: "Dog - smile", Image: "icons/dog-smile.png"}}
	deck := BuildDeck(identitySource{}, icons)
	for _, c := range deck {
		if c.MatchKey != "dog_happy" || c.Label != "Dog - smile" || c.Image != "icons/dog-smile.png" {
			t.Errorf("card fields not copied from icon: %+v", c)
		}
	}
}

func TestShuffleIsPermutationAndCopies(t *testing.T) {
	in := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	orig := slices.Clone(in)

	out := Shuffle(NewSeededSource(1, 2), in)

	if !slices.Equal(in, orig) {
		t.Fatalf("input mutated: %v", in)
	}
	sorted := slices.Clone(out)
	slices.Sort(sorted)
	if !slices.Equal(sorted, orig) {
		t.Fatalf("output %v is not a permutation of %v", out, orig)
	}
}

func TestShuffleShortInputs(t *testing.T) {
	if got := Shuffle(globalSource{}, []string{}); len(got) != 0 {
		t.Fatalf("empty shuffle = %v", got)
	}
	if got := Shuffle(globalSource{}, []string{"a"}); !slices.Equal(got, []string{"a"}) {
		t.Fatalf("single shuffle = %v", got)
	}
}

func TestShuffleSeededIsDeterministic(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6, 7, 8}
	a := Shuffle(NewSeededSource(7, 11), in)
	b := Shuffle(NewSeededSource(7, 11), in)
	if !slices.Equal(a, b) {
		t.Fatalf("same seed gave %v and %v", a, b)
	}
}

func TestShuffleIsRoughlyUniform(t *testing.T) {
	const runs = 6000
	src := NewSeededSource(42, 99)
	counts := map[string]int{}
	for i := 0; i < runs; i++ {
		out := Shuffle(src, []byte("abc"))
		counts[string(out)]++
	}
	if len(counts) != 6 {
		t.Fatalf("saw %d permutations of 3 elements; want 6: %v", len(counts), counts)
	}
	for perm, n := range counts {
		if n < 850 || n > 1150 {
			t.Errorf("permutation %s drawn %d times; want about %d", perm, n, runs/6)
		}
	}
}
