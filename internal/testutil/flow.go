package testutil

import (
	"fmt"
	"sync"
)

// RunIDs generates predictable run IDs for tests.
//
// With a fixed token every call returns the token, which keeps golden output
// byte-identical. Without one, IDs are "run-1", "run-2", and so on.
//
// Thread-safety: Next is safe for concurrent use.
type RunIDs struct {
	mu    sync.Mutex
	token string
	n     int
}

// FixedRunID returns a generator that always yields token.
//
// If token is empty, Next returns "test-run-default".
func FixedRunID(token string) *RunIDs {
	if token == "" {
		token = "test-run-default"
	}
	return &RunIDs{token: token}
}

// SequentialRunIDs returns a generator that yields run-1, run-2, ...
func SequentialRunIDs() *RunIDs {
	return &RunIDs{}
}

// Next returns the next run ID. Its signature matches the NewRunID hooks.
func (g *RunIDs) Next() string {
	if g.token != "" {
		return g.token
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("run-%d", g.n)
}
