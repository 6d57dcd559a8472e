/*
Package club provides the core membership and billing engine.

PURPOSE:
  This package contains the domain model and algorithms for managing a
  club's membership registry, its recurring payment ledger, and the
  monthly billing cycle. It is the single source of truth for who is a
  member, what they owe, and who may operate on that state.

KEY CONCEPTS IN THIS FILE (types.go):
  - Identity: An opaque caller/account identifier
  - MemberID: A unique integer identifying one member
  - Category: Membership tier (A, B, C) determining price and access
  - Activity: The sport a category-B member signed up for
  - Member: A registered club participant
  - Payment: One billing record, pending until settled

DESIGN PRINCIPLES:
  1. Immutability at the edges: Operations return copies, never internal slices
  2. Precision: Uses decimal.Decimal for money to avoid floating-point errors
  3. Total mappings: Integer codes map to enum values via explicit, total
     functions that report invalid codes instead of aborting
  4. Category is the source of truth: Only category-B members carry an
     activity, regardless of what the caller supplies at registration

SEE ALSO:
  - club.go: The Club aggregate and its gated operations
  - ledger.go: Pending/settled filters over the payment ledger
  - policy.go: Owner/staff authorization policy
*/
package club

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// Identity identifies the caller of an operation (owner, staff, or anyone).
type Identity string

// MemberID uniquely identifies a member. Assigned at registration,
// immutable thereafter.
type MemberID uint32

// =============================================================================
// CATEGORY - Membership tier
// =============================================================================

type Category string

const (
	CategoryA Category = "A" // full access: every sport plus the gym
	CategoryB Category = "B" // one chosen sport plus the gym
	CategoryC Category = "C" // gym only
)

// Category codes as supplied over the wire.
const (
	CategoryCodeA uint32 = 1
	CategoryCodeB uint32 = 2
	CategoryCodeC uint32 = 3
)

// CategoryFromCode maps a wire code to a category. Total: unknown codes
// return ErrInvalidCategory instead of panicking.
func CategoryFromCode(code uint32) (Category, error) {
	switch code {
	case CategoryCodeA:
		return CategoryA, nil
	case CategoryCodeB:
		return CategoryB, nil
	case CategoryCodeC:
		return CategoryC, nil
	default:
		return "", &InvalidCodeError{Kind: "category", Code: code}
	}
}

// Code returns the wire code for a category.
func (c Category) Code() uint32 {
	switch c {
	case CategoryA:
		return CategoryCodeA
	case CategoryB:
		return CategoryCodeB
	default:
		return CategoryCodeC
	}
}

// =============================================================================
// ACTIVITY - Sports and the gym
// =============================================================================

type Activity string

const (
	ActivityFootball   Activity = "football"
	ActivityBasketball Activity = "basketball"
	ActivityRugby      Activity = "rugby"
	ActivityHockey     Activity = "hockey"
	ActivitySwimming   Activity = "swimming"
	ActivityTennis     Activity = "tennis"
	ActivityPaddle     Activity = "paddle"
	ActivityGym        Activity = "gym"
)

// Activity codes. 1-7 are sports; 8 is the gym, which every member may use.
const (
	ActivityCodeFootball   uint32 = 1
	ActivityCodeBasketball uint32 = 2
	ActivityCodeRugby      uint32 = 3
	ActivityCodeHockey     uint32 = 4
	ActivityCodeSwimming   uint32 = 5
	ActivityCodeTennis     uint32 = 6
	ActivityCodePaddle     uint32 = 7
	ActivityCodeGym        uint32 = 8
)

var activityByCode = map[uint32]Activity{
	ActivityCodeFootball:   ActivityFootball,
	ActivityCodeBasketball: ActivityBasketball,
	ActivityCodeRugby:      ActivityRugby,
	ActivityCodeHockey:     ActivityHockey,
	ActivityCodeSwimming:   ActivitySwimming,
	ActivityCodeTennis:     ActivityTennis,
	ActivityCodePaddle:     ActivityPaddle,
	ActivityCodeGym:        ActivityGym,
}

// ActivityFromCode maps a wire code to an activity. Total: unknown codes
// return ErrInvalidActivity instead of panicking.
func ActivityFromCode(code uint32) (Activity, error) {
	a, ok := activityByCode[code]
	if !ok {
		return "", &InvalidCodeError{Kind: "activity", Code: code}
	}
	return a, nil
}

// IsSport reports whether the activity is one of the seven sports
// (everything except the gym).
func (a Activity) IsSport() bool { return a != ActivityGym && a != "" }

// =============================================================================
// MEMBER
// =============================================================================

// Member is a registered club participant.
//
// INVARIANT: Activity is non-nil only when Category is B. Categories A and C
// never carry an activity; A has access to everything, C to the gym only.
type Member struct {
	ID       MemberID
	Name     string
	Category Category
	Activity *Activity
}

// =============================================================================
// PAYMENT
// =============================================================================

// Payment is one billing record tied to a member.
//
// LIFECYCLE: Created pending (SettledAt == nil) at registration and at each
// billing cycle run. Mutated exactly once, in place, when settled. Never
// deleted. Payments carry no identifier of their own; a pending payment is
// addressed by (member, exact amount) in ledger order.
type Payment struct {
	MemberID   MemberID
	Amount     decimal.Decimal
	DueDate    Timestamp
	SettledAt  *Timestamp
	Discounted bool
}

// Pending reports whether the payment has not been settled yet.
func (p Payment) Pending() bool { return p.SettledAt == nil }

// Settled reports whether the payment has a settlement date.
func (p Payment) Settled() bool { return p.SettledAt != nil }

// Overdue reports whether the payment is pending and past its due date.
func (p Payment) Overdue(now Timestamp) bool {
	return p.Pending() && now.After(p.DueDate)
}

// OnTime reports whether the payment was settled at or before its due date.
func (p Payment) OnTime() bool {
	return p.Settled() && !(*p.SettledAt).After(p.DueDate)
}
