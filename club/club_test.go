package club_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/club-engine/club"
)

func amt(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func uintPtr(n uint32) *uint32 { return &n }

// =============================================================================
// REGISTRATION
// =============================================================================

func TestRegister_CreatesFirstPendingPayment(t *testing.T) {
	// GIVEN: A fresh club
	c, clock := newTestClub(t)
	start := clock.Now()

	// WHEN: Registering a category-A member
	payment, err := c.Register(owner, 320, "Duke Bouregard", club.CategoryCodeA, nil)
	require.NoError(t, err)

	// THEN: One pending payment at the A price, due in 10 days
	assert.True(t, payment.Pending())
	assert.True(t, payment.Amount.Equal(amt(5000)))
	assert.Equal(t, start.Add(club.Days(10)), payment.DueDate)
	assert.False(t, payment.Discounted)

	members, err := c.Members(owner)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, club.MemberID(320), members[0].ID)
	assert.Equal(t, club.CategoryA, members[0].Category)
	assert.Nil(t, members[0].Activity)
}

func TestRegister_DuplicateIDRejected(t *testing.T) {
	c, _ := newTestClub(t)
	_, err := c.Register(owner, 320, "Duke Bouregard", club.CategoryCodeA, nil)
	require.NoError(t, err)

	_, err = c.Register(owner, 320, "Duke Luke", club.CategoryCodeC, nil)
	assert.ErrorIs(t, err, club.ErrMemberExists)
}

func TestRegister_InvalidCodesRejected(t *testing.T) {
	c, _ := newTestClub(t)

	_, err := c.Register(owner, 1, "Ann", 4, nil)
	assert.ErrorIs(t, err, club.ErrInvalidCategory)

	_, err = c.Register(owner, 1, "Ann", 0, nil)
	assert.ErrorIs(t, err, club.ErrInvalidCategory)

	_, err = c.Register(owner, 1, "Ann", club.CategoryCodeB, uintPtr(99))
	assert.ErrorIs(t, err, club.ErrInvalidActivity)
}

func TestRegister_CategoryWinsOverSuppliedActivity(t *testing.T) {
	// GIVEN: Category A and C registrations that also supply an activity code
	c, _ := newTestClub(t)

	_, err := c.Register(owner, 1, "Ann", club.CategoryCodeA, uintPtr(club.ActivityCodeTennis))
	require.NoError(t, err)
	_, err = c.Register(owner, 2, "Ben", club.CategoryCodeC, uintPtr(club.ActivityCodeFootball))
	require.NoError(t, err)
	_, err = c.Register(owner, 3, "Cleo", club.CategoryCodeB, uintPtr(club.ActivityCodeTennis))
	require.NoError(t, err)

	// THEN: Only the category-B member keeps an activity
	members, err := c.Members(owner)
	require.NoError(t, err)
	assert.Nil(t, members[0].Activity)
	assert.Nil(t, members[1].Activity)
	require.NotNil(t, members[2].Activity)
	assert.Equal(t, club.ActivityTennis, *members[2].Activity)
}

func TestMember_LookupReturnsCopyOrNil(t *testing.T) {
	c, _ := newTestClub(t)
	_, err := c.Register(owner, 7, "Gina", club.CategoryCodeC, nil)
	require.NoError(t, err)

	m, err := c.Member(owner, 7)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Gina", m.Name)

	// Mutating the copy must not leak into the registry
	m.Name = "changed"
	again, err := c.Member(owner, 7)
	require.NoError(t, err)
	assert.Equal(t, "Gina", again.Name)

	missing, err := c.Member(owner, 404)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// =============================================================================
// LEDGER FILTERS
// =============================================================================

func TestLedgerFilters_PreserveOrderAndPartition(t *testing.T) {
	settled := club.Timestamp(100)
	ledger := []club.Payment{
		{MemberID: 1, Amount: amt(10), DueDate: 50},
		{MemberID: 2, Amount: amt(20), DueDate: 60, SettledAt: &settled},
		{MemberID: 1, Amount: amt(30), DueDate: 70},
		{MemberID: 3, Amount: amt(40), DueDate: 80, SettledAt: &settled},
	}

	pending := club.Pending(ledger)
	require.Len(t, pending, 2)
	assert.True(t, pending[0].Amount.Equal(amt(10)))
	assert.True(t, pending[1].Amount.Equal(amt(30)))

	done := club.Settled(ledger)
	require.Len(t, done, 2)
	assert.True(t, done[0].Amount.Equal(amt(20)))
	assert.True(t, done[1].Amount.Equal(amt(40)))

	assert.Empty(t, club.Pending(nil), "filters are total")
}

// =============================================================================
// PAYMENT HISTORY
// =============================================================================

func TestPaymentHistory_ByMemberAndFull(t *testing.T) {
	c, _ := newTestClub(t)
	_, err := c.Register(owner, 1, "Ann", club.CategoryCodeA, nil)
	require.NoError(t, err)
	_, err = c.Register(owner, 2, "Ben", club.CategoryCodeC, nil)
	require.NoError(t, err)

	all, err := c.PaymentHistory(owner, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	id := club.MemberID(1)
	mine, err := c.PaymentHistory(owner, &id)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, club.MemberID(1), mine[0].MemberID)

	// Unknown member yields an empty history, not an error
	unknown := club.MemberID(404)
	none, err := c.PaymentHistory(owner, &unknown)
	require.NoError(t, err)
	assert.Empty(t, none)
}

// =============================================================================
// SETTLEMENT
// =============================================================================

func TestSettle_ExactAmountFirstInLedgerOrder(t *testing.T) {
	// GIVEN: A member with two pending payments of the same amount
	// (registration + a billing cycle at the same price)
	c, clock := newTestClub(t)
	_, err := c.Register(owner, 9, "Hana", club.CategoryCodeC, nil)
	require.NoError(t, err)
	clock.Advance(club.Days(30))
	_, err = c.RunBillingCycle(owner)
	require.NoError(t, err)

	// WHEN: Settling twice with the same (id, amount)
	first, err := c.Settle(owner, 9, amt(2000))
	require.NoError(t, err)
	second, err := c.Settle(owner, 9, amt(2000))
	require.NoError(t, err)

	// THEN: The earlier payment (earlier due date) settled first, and the
	// second call matched the other one, never re-settling the first
	assert.True(t, first.DueDate.Before(second.DueDate))

	// A third call has nothing left to match
	_, err = c.Settle(owner, 9, amt(2000))
	assert.ErrorIs(t, err, club.ErrNoMatchingPendingPayment)
	var noMatch *club.NoPendingPaymentError
	assert.ErrorAs(t, err, &noMatch)
	assert.Equal(t, club.MemberID(9), noMatch.MemberID)
}

func TestSettle_RequiresExistingMemberAndExactAmount(t *testing.T) {
	c, _ := newTestClub(t)
	_, err := c.Register(owner, 9, "Hana", club.CategoryCodeC, nil)
	require.NoError(t, err)

	_, err = c.Settle(owner, 404, amt(2000))
	assert.ErrorIs(t, err, club.ErrMemberNotFound)

	_, err = c.Settle(owner, 9, amt(1999))
	assert.ErrorIs(t, err, club.ErrNoMatchingPendingPayment)

	// Exact match settles at "now"
	p, err := c.Settle(owner, 9, amt(2000))
	require.NoError(t, err)
	require.NotNil(t, p.SettledAt)
	assert.True(t, p.Settled())
}
