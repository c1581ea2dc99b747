package service

import (
	"math/rand"
	"time"

	"github.com/Tuyetzz/QuizWeb/internal/repository"
)

// newShuffleRand builds the random source used for question and option
// shuffling. A non-zero seed makes materialization reproducible; zero seeds
// from the clock.
func newShuffleRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// shuffleInt64 performs an in-place Fisher-Yates shuffle.
func shuffleInt64(rng *rand.Rand, s []int64) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// shuffleRefs performs an in-place Fisher-Yates shuffle of question refs.
func shuffleRefs(rng *rand.Rand, s []repository.QuestionRef) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
