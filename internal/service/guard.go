package service

import "sync"

// opGuard rejects duplicate in-flight operations. Keys are
// "<op>:<session>:<product>", inserted when an operation starts and removed
// when it finishes, so rapid repeated triggers for the same product are
// rejected rather than queued.
type opGuard struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

func newOpGuard() *opGuard {
	return &opGuard{pending: make(map[string]struct{})}
}

// begin marks the key in-flight. Returns false if it already is.
func (g *opGuard) begin(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.pending[key]; ok {
		return false
	}
	g.pending[key] = struct{}{}
	return true
}

// end clears the key. Safe to call for keys that were never begun.
func (g *opGuard) end(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, key)
}
