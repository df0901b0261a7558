package waterforce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCorrelatorCompleteWakesWaiter(t *testing.T) {
	c := newCorrelator()

	ch := c.arm(queryStatus)
	assert.True(t, c.complete(queryStatus))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("waiter was not signalled")
	}
}

func TestCorrelatorCompleteWithoutWaiter(t *testing.T) {
	c := newCorrelator()

	assert.False(t, c.complete(queryStatus), "nothing armed, nothing to signal")
	assert.False(t, c.complete(queryStatus), "slot must not be re-firable")
}

func TestCorrelatorKindsAreIndependent(t *testing.T) {
	c := newCorrelator()

	statusCh := c.arm(queryStatus)
	firmwareCh := c.arm(queryFirmware)

	assert.True(t, c.complete(queryFirmware))

	select {
	case <-firmwareCh:
	case <-time.After(time.Second):
		t.Fatal("firmware waiter was not signalled")
	}

	select {
	case <-statusCh:
		t.Fatal("status waiter must not be signalled by a firmware reply")
	default:
	}
}

func TestCorrelatorRearmReplacesStaleSlot(t *testing.T) {
	c := newCorrelator()

	stale := c.arm(queryStatus)
	fresh := c.arm(queryStatus)

	assert.True(t, c.complete(queryStatus))

	select {
	case <-fresh:
	case <-time.After(time.Second):
		t.Fatal("re-armed waiter was not signalled")
	}

	select {
	case <-stale:
		t.Fatal("stale slot must not fire")
	default:
	}
}
