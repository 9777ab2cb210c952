package assign

import "sync"

type lockedSource struct {
	mu  sync.Mutex
	src RandomSource
}

// NewLockedSource serializes access to src so a seeded, non-thread-safe
// generator can back a concurrently used Assigner.
func NewLockedSource(src RandomSource) RandomSource {
	return &lockedSource{src: src}
}

func (l *lockedSource) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}
