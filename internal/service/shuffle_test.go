package service

import (
	"testing"
)

func TestShuffleDeterministicWithSeed(t *testing.T) {
	base := []int64{1, 2, 3, 4, 5, 6, 7, 8}

	a := append([]int64(nil), base...)
	b := append([]int64(nil), base...)
	shuffleInt64(newShuffleRand(42), a)
	shuffleInt64(newShuffleRand(42), b)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different orders: %v vs %v", a, b)
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	base := []int64{10, 20, 30, 40, 50}
	s := append([]int64(nil), base...)
	shuffleInt64(newShuffleRand(7), s)

	seen := make(map[int64]int)
	for _, v := range s {
		seen[v]++
	}
	for _, v := range base {
		if seen[v] != 1 {
			t.Fatalf("shuffle lost or duplicated elements: %v", s)
		}
	}
}

func TestShuffleShortSlices(t *testing.T) {
	rng := newShuffleRand(1)

	var empty []int64
	shuffleInt64(rng, empty)

	one := []int64{99}
	shuffleInt64(rng, one)
	if one[0] != 99 {
		t.Fatalf("single-element shuffle changed contents: %v", one)
	}
}
