package repweights

import (
	"sync"

	"github.com/blocklattice/ledgerd/domain/ledger/model"
	"github.com/blocklattice/ledgerd/domain/ledger/utils/amount"
)

// Cache is the in-memory, process-wide representative weight map described
// in the ledger's concurrency model: mutated only from within an active
// write transaction, and since at most one such transaction runs at a
// time, a plain mutex around the map is all the synchronization it needs.
type Cache struct {
	mu      sync.Mutex
	weights map[model.Account]amount.Amount
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{weights: make(map[model.Account]amount.Amount)}
}

// Add applies delta to representative's tracked weight. When negative is
// true, delta is subtracted instead of added; representative weight moves
// with balance and is never set to an absolute value from outside the
// package.
func (c *Cache) Add(representative model.Account, delta amount.Amount, negative bool) {
	if delta.IsZero() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.weights[representative]
	if negative {
		c.weights[representative] = current.Sub(delta)
	} else {
		c.weights[representative] = current.Add(delta)
	}
}

// Get returns representative's currently tracked weight, or zero if it has
// never been observed.
func (c *Cache) Get(representative model.Account) amount.Amount {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weights[representative]
}

// Total returns the sum of every tracked representative's weight. Used by
// property tests to assert it always equals the sum of account balances.
func (c *Cache) Total() amount.Amount {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := amount.Zero
	for _, w := range c.weights {
		total = total.Add(w)
	}
	return total
}
