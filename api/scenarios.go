/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the club with realistic data
	for demos and manual testing. Each scenario builds a full snapshot -
	configuration, members, ledger - and swaps it in as the live club.

AVAILABLE SCENARIOS:

	fresh:       Empty club, default pricing, enforcement on
	delinquents: Members with overdue pending payments for the reports
	streaks:     A member one on-time settlement away from a discount

HOW SCENARIOS WORK:
 1. Build a club.Snapshot with timestamps relative to the server clock
    (overdue payments get due dates in the past)
 2. Restore it into a new Club on the live clock
 3. Swap the handler's club and persist the snapshot

NOTE:

	Scenarios replace all club state. Only use in development/demo
	environments.

SEE ALSO:
  - handlers.go: Shared response helpers
  - club/store.go: Snapshot/Restore
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/warp/club-engine/club"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// scenarioOwner owns every demo club.
const scenarioOwner = club.Identity("owner-demo")

var scenarios = []ScenarioDTO{
	{
		ID:          "fresh",
		Name:        "Fresh Club",
		Description: "Empty club with default pricing, owned by owner-demo",
	},
	{
		ID:          "delinquents",
		Name:        "Delinquent Members",
		Description: "Three members, two with overdue pending payments",
	},
	{
		ID:          "streaks",
		Name:        "Discount Streaks",
		Description: "A member one on-time settlement away from discount eligibility",
	},
}

// ListScenarios returns the available demo scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the id of the last loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]string{"scenario_id": current})
}

// LoadScenario replaces the live club with a demo dataset.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	now := h.Clock.Now()
	var snap club.Snapshot
	switch req.ScenarioID {
	case "fresh":
		snap = freshScenario()
	case "delinquents":
		snap = delinquentsScenario(now)
	case "streaks":
		snap = streaksScenario(now)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.swapClub(club.Restore(snap, h.Clock), req.ScenarioID)
	if err := h.Store.Save(r.Context(), snap); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

// =============================================================================
// SCENARIO BUILDERS
// =============================================================================

func freshScenario() club.Snapshot {
	return club.Snapshot{
		Config: club.DefaultCostConfig(),
		Access: club.NewAccessPolicy(scenarioOwner),
	}
}

// delinquentsScenario seeds three members: one in good standing, two with
// pending payments already past due.
func delinquentsScenario(now club.Timestamp) club.Snapshot {
	cfg := club.DefaultCostConfig()
	tennis := club.ActivityTennis
	billingStart := now.Add(-club.Days(20))

	settled := now.Add(-club.Days(12))
	return club.Snapshot{
		Config: cfg,
		Access: club.NewAccessPolicy(scenarioOwner),
		Members: []club.Member{
			{ID: 100, Name: "Alice Carver", Category: club.CategoryA},
			{ID: 101, Name: "Bruno Keller", Category: club.CategoryB, Activity: &tennis},
			{ID: 102, Name: "Clara Novak", Category: club.CategoryC},
		},
		Payments: []club.Payment{
			{MemberID: 100, Amount: cfg.PriceA, DueDate: now.Add(-club.Days(10)), SettledAt: &settled},
			{MemberID: 101, Amount: cfg.PriceB, DueDate: now.Add(-club.Days(10))},
			{MemberID: 102, Amount: cfg.PriceC, DueDate: now.Add(-club.Days(5))},
		},
		LastBilling: &billingStart,
	}
}

// streaksScenario seeds a member with StreakRequired-1 on-time settlements
// and one pending payment due in the future; settling it on time completes
// the streak.
func streaksScenario(now club.Timestamp) club.Snapshot {
	cfg := club.DefaultCostConfig()
	cfg.StreakRequired = 2
	cfg.DiscountAmount = decimal.NewFromInt(500)
	billingStart := now.Add(-club.Days(15))

	onTime := now.Add(-club.Days(40))
	return club.Snapshot{
		Config: cfg,
		Access: club.NewAccessPolicy(scenarioOwner),
		Members: []club.Member{
			{ID: 200, Name: "Dora Lindt", Category: club.CategoryC},
		},
		Payments: []club.Payment{
			{MemberID: 200, Amount: cfg.PriceC, DueDate: now.Add(-club.Days(35)), SettledAt: &onTime},
			{MemberID: 200, Amount: cfg.PriceC, DueDate: now.Add(club.Days(10))},
		},
		LastBilling: &billingStart,
	}
}
