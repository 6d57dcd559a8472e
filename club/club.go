/*
club.go - The Club aggregate and its gated operations

PURPOSE:
  Club owns all state: cost configuration, the member registry, the payment
  ledger, the authorization policy, and the last billing date. Every public
  operation passes through the authorization gate first, then reads or
  mutates the state under a single lock.

CONCURRENCY:
  One RWMutex serializes everything: at most one mutating operation in
  flight, reads observe a consistent snapshot. No operation blocks on I/O
  internally; persistence is layered on top via Snapshot/Restore.

BILLING CYCLE:
  RunBillingCycle emits one new pending payment per member once per 30-day
  window. Discount eligibility for every member is computed against the
  ledger as it stood BEFORE the cycle appends anything; emission is
  all-or-nothing, so a single underflow aborts the run with no payments
  appended.

SEE ALSO:
  - policy.go: Gate semantics
  - ledger.go: Pending/settled filters
  - store.go: Snapshot persistence contract
*/
package club

import (
	"sync"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CLUB STATE
// =============================================================================

// Club is the single mutually-exclusive aggregate holding all club state.
type Club struct {
	mu    sync.RWMutex
	clock Clock

	config      CostConfig
	access      AccessPolicy
	members     []Member
	payments    []Payment
	lastBilling *Timestamp
}

// New creates a club owned by the given identity, with default pricing,
// no staff, and enforcement on. The clock supplies "now" for every
// operation; it must be monotonically non-decreasing.
func New(owner Identity, clock Clock) *Club {
	return &Club{
		clock:  clock,
		config: DefaultCostConfig(),
		access: NewAccessPolicy(owner),
	}
}

// =============================================================================
// MEMBER REGISTRY
// =============================================================================

// Register adds a member and creates their first pending payment, due in
// 10 days at the category's current price. activityCode may be nil; when
// supplied it must map to a known activity, but it is only stored for
// category-B members (category wins over the caller-supplied activity).
//
// The very first registration ever stamps the billing cycle's start date.
func (c *Club) Register(caller Identity, id MemberID, name string, categoryCode uint32, activityCode *uint32) (Payment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.access.MayAct(caller) {
		return Payment{}, ErrPermissionDenied
	}
	if c.findMember(id) != nil {
		return Payment{}, ErrMemberExists
	}

	category, err := CategoryFromCode(categoryCode)
	if err != nil {
		return Payment{}, err
	}

	var activity *Activity
	if activityCode != nil {
		a, err := ActivityFromCode(*activityCode)
		if err != nil {
			return Payment{}, err
		}
		if category == CategoryB {
			activity = &a
		}
	}

	now := c.clock.Now()
	payment := Payment{
		MemberID: id,
		Amount:   c.config.BasePrice(category),
		DueDate:  now.Add(Days(10)),
	}

	c.payments = append(c.payments, payment)
	c.members = append(c.members, Member{
		ID:       id,
		Name:     name,
		Category: category,
		Activity: activity,
	})
	if c.lastBilling == nil {
		c.lastBilling = &now
	}
	return payment, nil
}

// Member returns a copy of the member with the given id, or nil if absent.
// A missing member is not an error here; callers that require presence
// use the operations that return ErrMemberNotFound.
func (c *Club) Member(caller Identity, id MemberID) (*Member, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.access.MayAct(caller) {
		return nil, ErrPermissionDenied
	}
	m := c.findMember(id)
	if m == nil {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

// Members returns a copy of the full registry in insertion order.
func (c *Club) Members(caller Identity) ([]Member, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.access.MayAct(caller) {
		return nil, ErrPermissionDenied
	}
	return copyMembers(c.members), nil
}

// findMember returns a pointer into the live registry; callers must hold
// the lock and must copy before returning.
func (c *Club) findMember(id MemberID) *Member {
	for i := range c.members {
		if c.members[i].ID == id {
			return &c.members[i]
		}
	}
	return nil
}

// =============================================================================
// PAYMENT LEDGER
// =============================================================================

// PaymentHistory returns payments in ledger order. With a member id it
// returns that member's payments (empty if they have none or don't exist);
// with nil it returns the whole ledger.
func (c *Club) PaymentHistory(caller Identity, id *MemberID) ([]Payment, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.access.MayAct(caller) {
		return nil, ErrPermissionDenied
	}
	if id != nil {
		return paymentsFor(c.payments, *id), nil
	}
	out := make([]Payment, len(c.payments))
	copy(out, c.payments)
	return out, nil
}

// Settle marks a pending payment as paid now. Among the member's pending
// payments, the FIRST one in ledger order whose amount matches exactly is
// settled; payments carry no identifier, so the amount is the only
// disambiguator.
func (c *Club) Settle(caller Identity, id MemberID, amount decimal.Decimal) (Payment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.access.MayAct(caller) {
		return Payment{}, ErrPermissionDenied
	}
	if c.findMember(id) == nil {
		return Payment{}, ErrMemberNotFound
	}

	now := c.clock.Now()
	for i := range c.payments {
		p := &c.payments[i]
		if p.Pending() && p.MemberID == id && p.Amount.Equal(amount) {
			settledAt := now
			p.SettledAt = &settledAt
			return *p, nil
		}
	}
	return Payment{}, &NoPendingPaymentError{MemberID: id, Amount: amount}
}

// =============================================================================
// BILLING CYCLE
// =============================================================================

// EligibleForDiscount reports whether the member's most recent
// StreakRequired payments were all settled on time and not already
// discounted. Fewer payments than the streak requires means not eligible.
// The check runs over the ledger as it currently stands, which during a
// billing run is the pre-cycle ledger.
func (c *Club) EligibleForDiscount(id MemberID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return eligibleForDiscount(c.payments, id, c.config.StreakRequired)
}

func eligibleForDiscount(ledger []Payment, id MemberID, streak int) bool {
	if streak < 0 {
		return false
	}
	history := paymentsFor(ledger, id)
	if len(history) < streak {
		return false
	}
	for _, p := range history[len(history)-streak:] {
		if !p.OnTime() || p.Discounted {
			return false
		}
	}
	return true
}

// RunBillingCycle emits one new pending payment per member, due in 30
// days, discounted for members with a qualifying streak. It may run at
// most once per 30-day window and is all-or-nothing: if any member's
// discounted price would go negative, nothing is emitted.
func (c *Club) RunBillingCycle(caller Identity) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.access.MayAct(caller) {
		return false, ErrPermissionDenied
	}
	if c.lastBilling == nil {
		return false, ErrNoBillingYet
	}
	now := c.clock.Now()
	if now.Before(c.lastBilling.Add(Days(30))) {
		return false, ErrBillingNotDue
	}

	// Phase one: compute every emission against the pre-cycle ledger.
	due := now.Add(Days(30))
	emissions := make([]Payment, 0, len(c.members))
	for _, m := range c.members {
		eligible := eligibleForDiscount(c.payments, m.ID, c.config.StreakRequired)
		price := c.config.BasePrice(m.Category)
		if eligible {
			price = price.Sub(c.config.DiscountAmount)
			if price.IsNegative() {
				return false, &UnderflowError{
					MemberID:  m.ID,
					BasePrice: c.config.BasePrice(m.Category),
					Discount:  c.config.DiscountAmount,
				}
			}
		}
		emissions = append(emissions, Payment{
			MemberID:   m.ID,
			Amount:     price,
			DueDate:    due,
			Discounted: eligible,
		})
	}

	// Phase two: append atomically and advance the window.
	c.payments = append(c.payments, emissions...)
	c.lastBilling = &now
	return true, nil
}

// =============================================================================
// COST CONFIGURATION - Owner or staff, regardless of enforcement
// =============================================================================

// UpdateCategoryPrice sets the base price for the category with the given
// wire code. Negative prices are rejected.
func (c *Club) UpdateCategoryPrice(caller Identity, categoryCode uint32, amount decimal.Decimal) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.access.IsPrivileged(caller) {
		return false, ErrPermissionDenied
	}
	category, err := CategoryFromCode(categoryCode)
	if err != nil {
		return false, err
	}
	if amount.IsNegative() {
		return false, ErrNegativeAmount
	}
	switch category {
	case CategoryA:
		c.config.PriceA = amount
	case CategoryB:
		c.config.PriceB = amount
	case CategoryC:
		c.config.PriceC = amount
	}
	return true, nil
}

// UpdateDiscountAmount sets the amount subtracted from a streak-eligible
// member's billed price. Negative amounts are rejected; they would silently
// raise the billed price.
func (c *Club) UpdateDiscountAmount(caller Identity, amount decimal.Decimal) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.access.IsPrivileged(caller) {
		return false, ErrPermissionDenied
	}
	if amount.IsNegative() {
		return false, ErrNegativeAmount
	}
	c.config.DiscountAmount = amount
	return true, nil
}

// UpdateDiscountStreak sets how many consecutive on-time payments earn
// the discount. Negative streaks are rejected; the eligibility window is a
// count of trailing payments and has no meaning below zero.
func (c *Club) UpdateDiscountStreak(caller Identity, n int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.access.IsPrivileged(caller) {
		return false, ErrPermissionDenied
	}
	if n < 0 {
		return false, ErrNegativeStreak
	}
	c.config.StreakRequired = n
	return true, nil
}

// Config returns a copy of the current cost configuration.
func (c *Club) Config(caller Identity) (CostConfig, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.access.IsPrivileged(caller) {
		return CostConfig{}, ErrPermissionDenied
	}
	return c.config, nil
}

// =============================================================================
// AUTHORIZATION MANAGEMENT - Owner only
// =============================================================================

// TransferOwnership hands the club to a new owner.
func (c *Club) TransferOwnership(caller, newOwner Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.access.IsAdmin(caller) {
		return ErrPermissionDenied
	}
	c.access.Owner = newOwner
	return nil
}

// AddStaff grants operational authority to an identity.
func (c *Club) AddStaff(caller, id Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.access.IsAdmin(caller) {
		return ErrPermissionDenied
	}
	if c.access.Staff[id] {
		return ErrAlreadyStaff
	}
	c.access.Staff[id] = true
	return nil
}

// RemoveStaff revokes an identity's staff authority.
func (c *Club) RemoveStaff(caller, id Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.access.IsAdmin(caller) {
		return ErrPermissionDenied
	}
	if !c.access.Staff[id] {
		return ErrNotStaff
	}
	delete(c.access.Staff, id)
	return nil
}

// Staff returns the current staff identities (order unspecified).
func (c *Club) Staff(caller Identity) ([]Identity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.access.IsPrivileged(caller) {
		return nil, ErrPermissionDenied
	}
	return c.access.StaffList(), nil
}

// ToggleEnforcement flips the policy enforcement flag and returns the new
// value. While off, gated operations are open to any caller; owner-only
// and owner-or-staff operations stay restricted.
func (c *Club) ToggleEnforcement(caller Identity) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.access.IsAdmin(caller) {
		return false, ErrPermissionDenied
	}
	c.access.Enforced = !c.access.Enforced
	return c.access.Enforced, nil
}

// Enforcement returns the current enforcement flag.
func (c *Club) Enforcement(caller Identity) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.access.IsPrivileged(caller) {
		return false, ErrPermissionDenied
	}
	return c.access.Enforced, nil
}

// =============================================================================
// REPORTING DATA SOURCE - Consumed by the reporting engine
// =============================================================================

// MayAct exposes the standard gate for collaborators that enforce it
// themselves, such as the reporting engine.
func (c *Club) MayAct(caller Identity) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.access.MayAct(caller)
}

// Records returns registry and ledger snapshots captured under one lock,
// so every payment in the ledger resolves to a member in the returned
// registry even while mutations are in flight.
func (c *Club) Records() ([]Member, []Payment) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	payments := make([]Payment, len(c.payments))
	copy(payments, c.payments)
	return copyMembers(c.members), payments
}

func copyMembers(members []Member) []Member {
	out := make([]Member, len(members))
	copy(out, members)
	for i := range out {
		if out[i].Activity != nil {
			a := *out[i].Activity
			out[i].Activity = &a
		}
	}
	return out
}
