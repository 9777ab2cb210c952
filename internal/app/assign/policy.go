package assign

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/dalemusser/questionhub/internal/domain/models"
)

// RandomSource is the randomness used by the reactive path.
// *rand.Rand from math/rand/v2 satisfies it; it must be safe for concurrent
// use if the Assigner is (wrap seeded sources with NewLockedSource).
type RandomSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Exclusions is the set of users a question must not be assigned to.
type Exclusions map[string]struct{}

// ExclusionsFor returns the questioner plus everyone who declined q.
func ExclusionsFor(q models.Question) Exclusions {
	ex := make(Exclusions, len(q.DeclinedBy)+1)
	if q.Questioner != "" {
		ex[q.Questioner] = struct{}{}
	}
	for _, id := range q.DeclinedBy {
		ex[id] = struct{}{}
	}
	return ex
}

// Has reports whether id is excluded.
func (e Exclusions) Has(id string) bool {
	_, ok := e[id]
	return ok
}

// Eligible returns candidates not in exclude, preserving order.
func Eligible(candidates []string, exclude Exclusions) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" || exclude.Has(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// PickRandom chooses uniformly from candidates \ exclude.
// ok is false when nobody is eligible.
func PickRandom(src RandomSource, candidates []string, exclude Exclusions) (id string, ok bool) {
	pool := Eligible(candidates, exclude)
	if len(pool) == 0 {
		return "", false
	}
	return pool[src.IntN(len(pool))], true
}

// RoundRobin hands out candidates in rotation. The zero value starts at
// index 0. It is safe for concurrent use.
type RoundRobin struct {
	cursor atomic.Int64
}

// Next advances the cursor by exactly one and returns the candidate at the
// previous cursor position modulo len(candidates). If that candidate is
// excluded the following candidates are probed in order; ok is false when
// every candidate is excluded or the pool is empty.
func (rr *RoundRobin) Next(candidates []string, exclude Exclusions) (id string, ok bool) {
	pos := rr.cursor.Add(1) - 1
	n := int64(len(candidates))
	if n == 0 {
		return "", false
	}
	for i := int64(0); i < n; i++ {
		c := candidates[(pos+i)%n]
		if c != "" && !exclude.Has(c) {
			return c, true
		}
	}
	return "", false
}

// Position returns how many times Next has been called.
func (rr *RoundRobin) Position() int64 {
	return rr.cursor.Load()
}
