package waterforce

import "sync"

// queryKind identifies the two correlated request/reply exchanges. Write
// commands are fire-and-forget and never pass through the correlator.
type queryKind uint8

const (
	queryStatus queryKind = iota
	queryFirmware

	queryKinds
)

// correlator pairs an outbound request with the asynchronous inbound frame
// that answers it. Each kind has an independent one-shot completion slot
// and a gate mutex serializing callers of the same kind, so two concurrent
// queries of one kind never race on re-arming the slot.
type correlator struct {
	mu      sync.Mutex
	pending [queryKinds]chan struct{}
	gates   [queryKinds]sync.Mutex
}

func newCorrelator() *correlator {
	return &correlator{}
}

// lock serializes query issuers of the given kind.
func (c *correlator) lock(kind queryKind) {
	c.gates[kind].Lock()
}

func (c *correlator) unlock(kind queryKind) {
	c.gates[kind].Unlock()
}

// arm installs a fresh completion slot for the kind, replacing any stale
// one left behind by a timed-out query, and returns the channel to wait on.
func (c *correlator) arm(kind queryKind) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan struct{})
	c.pending[kind] = ch

	return ch
}

// complete fires the completion slot for the kind, if one is armed.
// Reports whether a waiter was signalled. Safe to call from the frame
// delivery path: it never blocks.
func (c *correlator) complete(kind queryKind) bool {
	c.mu.Lock()
	ch := c.pending[kind]
	c.pending[kind] = nil
	c.mu.Unlock()

	if ch == nil {
		return false
	}
	close(ch)

	return true
}
