/*
store.go - Persistence contract for club state

PURPOSE:
  The engine itself is purely in-memory; durability is layered on top.
  A Store holds one snapshot of the whole club: configuration, access
  policy, registry, ledger, and the last billing date. The transport
  layer saves a snapshot after every successful mutation and restores
  it at startup.

WHY WHOLE-SNAPSHOT?
  The club is a single serialized aggregate (one write in flight at a
  time), so per-row persistence buys nothing here; a snapshot keeps the
  ledger-order invariant trivially intact across reloads.

SEE ALSO:
  - store/memory.go: In-memory implementation (tests/dev)
  - store/sqlite: Durable implementation
*/
package club

import "context"

// Snapshot is a self-contained copy of all club state.
type Snapshot struct {
	Config      CostConfig
	Access      AccessPolicy
	Members     []Member
	Payments    []Payment
	LastBilling *Timestamp
}

// Store persists club snapshots.
type Store interface {
	// Load returns the stored snapshot, or nil if the store is empty.
	Load(ctx context.Context) (*Snapshot, error)

	// Save replaces the stored snapshot.
	Save(ctx context.Context, snap Snapshot) error
}

// Snapshot returns a deep copy of the club's current state.
func (c *Club) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	payments := make([]Payment, len(c.payments))
	copy(payments, c.payments)
	var last *Timestamp
	if c.lastBilling != nil {
		t := *c.lastBilling
		last = &t
	}
	return Snapshot{
		Config:      c.config,
		Access:      c.access.clone(),
		Members:     copyMembers(c.members),
		Payments:    payments,
		LastBilling: last,
	}
}

// Restore builds a club from a previously saved snapshot.
func Restore(snap Snapshot, clock Clock) *Club {
	payments := make([]Payment, len(snap.Payments))
	copy(payments, snap.Payments)
	var last *Timestamp
	if snap.LastBilling != nil {
		t := *snap.LastBilling
		last = &t
	}
	return &Club{
		clock:       clock,
		config:      snap.Config,
		access:      snap.Access.clone(),
		members:     copyMembers(snap.Members),
		payments:    payments,
		lastBilling: last,
	}
}
