/*
Package reporting derives reports from the club's registry and ledger.

PURPOSE:
  Three read-only reports: delinquent members, revenue per category, and
  non-delinquent members eligible for an activity. The engine is
  deliberately decoupled from the club's storage: it consumes only two
  capabilities - "check my access" and "give me the member and payment
  records" - so it can be pointed at the live club or at a fixed-data
  double in tests. Members and payments arrive together from one call so
  a report never mixes records from two different instants.

DELINQUENCY:
  A member is delinquent when they have at least one pending payment whose
  due date has passed. Output order is first-occurrence order over the
  pending-payment scan, not registry order, and each member appears once.
  Nothing is cached; every report recomputes from a fresh snapshot.

SEE ALSO:
  - club: The live DataSource implementation
  - engine_test.go: The fixed-data double honoring the same contract
*/
package reporting

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/club-engine/club"
)

// =============================================================================
// DATA SOURCE CONTRACT
// =============================================================================

// DataSource supplies the engine's inputs. *club.Club implements it; tests
// substitute a double with fixed data. Records must return full,
// order-preserving snapshots captured at a single instant: every payment
// must reference a member present in the same result.
type DataSource interface {
	MayAct(caller club.Identity) bool
	Records() (members []club.Member, payments []club.Payment)
}

// Engine computes reports on demand.
type Engine struct {
	Source DataSource
	Clock  club.Clock
}

func NewEngine(source DataSource, clock club.Clock) *Engine {
	return &Engine{Source: source, Clock: clock}
}

// =============================================================================
// DELINQUENCY
// =============================================================================

// DelinquentMembers lists members with at least one overdue pending
// payment, each once, in first-occurrence order over the pending scan.
func (e *Engine) DelinquentMembers(caller club.Identity) ([]club.Member, error) {
	if !e.Source.MayAct(caller) {
		return nil, club.ErrPermissionDenied
	}
	members, payments := e.Source.Records()
	return delinquents(members, payments, e.Clock.Now()), nil
}

func delinquents(members []club.Member, payments []club.Payment, now club.Timestamp) []club.Member {
	seen := make(map[club.MemberID]bool)
	out := make([]club.Member, 0)
	for _, p := range club.Pending(payments) {
		if !now.After(p.DueDate) || seen[p.MemberID] {
			continue
		}
		seen[p.MemberID] = true
		out = append(out, mustMember(members, p.MemberID))
	}
	return out
}

// =============================================================================
// REVENUE
// =============================================================================

// CategoryRevenue is one bucket of the revenue report.
type CategoryRevenue struct {
	Category club.Category
	Amount   decimal.Decimal
}

// RevenueByCategory sums the amounts of all settled payments into one
// bucket per category, returned in the fixed order A, B, C.
func (e *Engine) RevenueByCategory(caller club.Identity) ([]CategoryRevenue, error) {
	if !e.Source.MayAct(caller) {
		return nil, club.ErrPermissionDenied
	}
	members, payments := e.Source.Records()

	buckets := []CategoryRevenue{
		{Category: club.CategoryA, Amount: decimal.Zero},
		{Category: club.CategoryB, Amount: decimal.Zero},
		{Category: club.CategoryC, Amount: decimal.Zero},
	}
	for _, p := range club.Settled(payments) {
		switch mustMember(members, p.MemberID).Category {
		case club.CategoryA:
			buckets[0].Amount = buckets[0].Amount.Add(p.Amount)
		case club.CategoryB:
			buckets[1].Amount = buckets[1].Amount.Add(p.Amount)
		case club.CategoryC:
			buckets[2].Amount = buckets[2].Amount.Add(p.Amount)
		}
	}
	return buckets, nil
}

// =============================================================================
// ACTIVITY ELIGIBILITY
// =============================================================================

// EligibleForActivity lists the non-delinquent members with access to the
// activity with the given code. For a sport, that is members who chose the
// sport plus all category-A members; for the gym, every member. Delinquency
// is recomputed on every call.
func (e *Engine) EligibleForActivity(caller club.Identity, code uint32) ([]club.Member, error) {
	if !e.Source.MayAct(caller) {
		return nil, club.ErrPermissionDenied
	}
	activity, err := club.ActivityFromCode(code)
	if err != nil {
		return nil, err
	}

	members, payments := e.Source.Records()

	delinquent := make(map[club.MemberID]bool)
	for _, m := range delinquents(members, payments, e.Clock.Now()) {
		delinquent[m.ID] = true
	}

	out := make([]club.Member, 0)
	for _, m := range members {
		if delinquent[m.ID] {
			continue
		}
		if activity.IsSport() {
			chosen := m.Activity != nil && *m.Activity == activity
			if !chosen && m.Category != club.CategoryA {
				continue
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// mustMember resolves a payment's member. A payment referencing a member
// absent from the registry violates the ledger's foreign-key contract, so
// this is a panic, not a recoverable error.
func mustMember(members []club.Member, id club.MemberID) club.Member {
	for _, m := range members {
		if m.ID == id {
			return m
		}
	}
	panic(fmt.Sprintf("reporting: payment references unknown member %d", id))
}
