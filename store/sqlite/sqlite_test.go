package sqlite

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/club-engine/club"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func amt(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func tsPtr(t club.Timestamp) *club.Timestamp { return &t }

func actPtr(a club.Activity) *club.Activity { return &a }

// fullSnapshot exercises every column: staff, a nil and a non-nil activity,
// settled and pending payments, a discounted payment, and a billing date.
func fullSnapshot() club.Snapshot {
	return club.Snapshot{
		Config: club.CostConfig{
			PriceA:         amt(5000),
			PriceB:         amt(3000),
			PriceC:         amt(2500),
			DiscountAmount: amt(500),
			StreakRequired: 4,
		},
		Access: club.AccessPolicy{
			Owner:    "owner-1",
			Staff:    map[club.Identity]bool{"staff-1": true, "staff-2": true},
			Enforced: true,
		},
		Members: []club.Member{
			{ID: 10, Name: "Ann", Category: club.CategoryA},
			{ID: 3, Name: "Ben", Category: club.CategoryB, Activity: actPtr(club.ActivityTennis)},
			{ID: 7, Name: "Cleo", Category: club.CategoryC},
		},
		Payments: []club.Payment{
			{MemberID: 10, Amount: amt(5000), DueDate: 1000, SettledAt: tsPtr(900)},
			{MemberID: 3, Amount: amt(3000), DueDate: 1000},
			{MemberID: 7, Amount: amt(2000), DueDate: 2000, SettledAt: tsPtr(2500), Discounted: true},
			{MemberID: 7, Amount: amt(2000), DueDate: 3000},
		},
		LastBilling: tsPtr(club.Timestamp(club.Days(60))),
	}
}

func TestLoad_EmptyStoreReturnsNil(t *testing.T) {
	store := newTestStore(t)

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap, "a never-saved store has no snapshot")
}

func TestSaveLoad_RoundTripsEveryField(t *testing.T) {
	// GIVEN: A snapshot touching every column
	store := newTestStore(t)
	saved := fullSnapshot()
	require.NoError(t, store.Save(context.Background(), saved))

	// WHEN: Loading it back
	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, loaded)

	// THEN: Identity, flags and config survive
	assert.Equal(t, saved.Access.Owner, loaded.Access.Owner)
	assert.Equal(t, saved.Access.Staff, loaded.Access.Staff)
	assert.Equal(t, saved.Access.Enforced, loaded.Access.Enforced)
	require.NotNil(t, loaded.LastBilling)
	assert.Equal(t, *saved.LastBilling, *loaded.LastBilling)
	assert.True(t, loaded.Config.PriceA.Equal(saved.Config.PriceA))
	assert.True(t, loaded.Config.PriceC.Equal(saved.Config.PriceC))
	assert.True(t, loaded.Config.DiscountAmount.Equal(saved.Config.DiscountAmount))
	assert.Equal(t, saved.Config.StreakRequired, loaded.Config.StreakRequired)

	// AND: The registry keeps insertion order (not ID order) and activities
	require.Len(t, loaded.Members, 3)
	assert.Equal(t, club.MemberID(10), loaded.Members[0].ID)
	assert.Equal(t, club.MemberID(3), loaded.Members[1].ID)
	assert.Nil(t, loaded.Members[0].Activity)
	require.NotNil(t, loaded.Members[1].Activity)
	assert.Equal(t, club.ActivityTennis, *loaded.Members[1].Activity)

	// AND: The ledger keeps its order and settlement state
	require.Len(t, loaded.Payments, 4)
	for i, p := range loaded.Payments {
		assert.True(t, p.Amount.Equal(saved.Payments[i].Amount), "payment %d amount", i)
		assert.Equal(t, saved.Payments[i].DueDate, p.DueDate)
		assert.Equal(t, saved.Payments[i].Discounted, p.Discounted)
	}
	require.NotNil(t, loaded.Payments[0].SettledAt)
	assert.Equal(t, club.Timestamp(900), *loaded.Payments[0].SettledAt)
	assert.Nil(t, loaded.Payments[1].SettledAt)
	assert.True(t, loaded.Payments[2].Discounted)
}

func TestSave_ReplacesPreviousSnapshot(t *testing.T) {
	// GIVEN: A full snapshot already saved
	store := newTestStore(t)
	require.NoError(t, store.Save(context.Background(), fullSnapshot()))

	// WHEN: Saving a smaller one over it
	next := club.Snapshot{
		Config: club.DefaultCostConfig(),
		Access: club.AccessPolicy{
			Owner:    "owner-2",
			Staff:    map[club.Identity]bool{},
			Enforced: false,
		},
		Members:  []club.Member{{ID: 1, Name: "Solo", Category: club.CategoryC}},
		Payments: []club.Payment{{MemberID: 1, Amount: amt(2000), DueDate: 5000}},
	}
	require.NoError(t, store.Save(context.Background(), next))

	// THEN: Nothing from the first snapshot remains
	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, club.Identity("owner-2"), loaded.Access.Owner)
	assert.Empty(t, loaded.Access.Staff)
	assert.False(t, loaded.Access.Enforced)
	assert.Nil(t, loaded.LastBilling)
	assert.Len(t, loaded.Members, 1)
	assert.Len(t, loaded.Payments, 1)
}

func TestSaveLoad_RestoredClubKeepsBehavior(t *testing.T) {
	// GIVEN: A live club with a settlement in its ledger, persisted
	store := newTestStore(t)
	clock := club.NewManualClock(club.Timestamp(club.Years(50)))
	c := club.New("owner-1", clock)
	_, err := c.Register("owner-1", 9, "Hana", club.CategoryCodeC, nil)
	require.NoError(t, err)
	_, err = c.Settle("owner-1", 9, amt(2000))
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), c.Snapshot()))

	// WHEN: Restoring from the store
	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	restored := club.Restore(*snap, clock)

	// THEN: The ledger state carried over: nothing pending, billing window
	// still anchored to the registration
	history, err := restored.PaymentHistory("owner-1", nil)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Settled())

	_, err = restored.RunBillingCycle("owner-1")
	assert.ErrorIs(t, err, club.ErrBillingNotDue)

	clock.Advance(club.Days(30))
	ran, err := restored.RunBillingCycle("owner-1")
	require.NoError(t, err)
	assert.True(t, ran)
}
