/*
handlers.go - HTTP API handlers for the club engine

PURPOSE:
  Exposes the club engine via REST. Handles HTTP request/response, JSON
  serialization, and delegates to domain logic.

ENDPOINTS:
  Members:
    GET    /api/members                   List all members
    POST   /api/members                   Register member (returns first payment)
    GET    /api/members/{id}              Get member details
    GET    /api/members/{id}/payments     Member payment history

  Payments:
    GET    /api/payments                  Full payment ledger
    POST   /api/payments/settle           Settle a pending payment

  Billing:
    POST   /api/billing/run               Run the monthly billing cycle

  Configuration (owner or staff):
    PUT    /api/config/prices/{category}  Update a category's base price
    PUT    /api/config/discount           Update the discount amount
    PUT    /api/config/streak             Update the discount streak length

  Admin (owner only):
    POST   /api/admin/owner               Transfer ownership
    POST   /api/admin/staff               Add staff
    GET    /api/admin/staff               List staff
    DELETE /api/admin/staff/{id}          Remove staff
    POST   /api/admin/enforcement/toggle  Toggle policy enforcement
    GET    /api/admin/enforcement         Read the enforcement flag

  Reports:
    GET    /api/reports/delinquents                   Delinquent members
    GET    /api/reports/revenue                       Revenue per category
    GET    /api/reports/activities/{code}/eligible    Non-delinquent members for activity

CALLER IDENTITY:
  Each request names its caller in the X-Caller-ID header. A missing header
  maps to the identity "anonymous", which passes gates only while policy
  enforcement is off.

ERROR HANDLING:
  Domain failures map to HTTP status by kind:
  - 400: invalid category/activity codes, malformed bodies
  - 403: permission denied
  - 404: missing member, no matching pending payment
  - 409: duplicates, staff preconditions, billing window, underflow
  - 500: persistence failures

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/club-engine/club"
	"github.com/warp/club-engine/reporting"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store club.Store
	Clock club.Clock

	mu   sync.RWMutex
	club *club.Club

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a handler around an existing club.
func NewHandler(c *club.Club, store club.Store, clock club.Clock) *Handler {
	return &Handler{Store: store, Clock: clock, club: c}
}

// Club returns the live club instance.
func (h *Handler) Club() *club.Club {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.club
}

// engine builds a reporting engine over the live club. Engines are cheap;
// building one per request keeps them pointed at the current club even
// after a scenario swap.
func (h *Handler) engine() *reporting.Engine {
	return reporting.NewEngine(h.Club(), h.Clock)
}

func (h *Handler) swapClub(c *club.Club, scenario string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.club = c
	h.currentScenario = scenario
}

// persist writes the current snapshot through to the store.
func (h *Handler) persist(r *http.Request) error {
	return h.Store.Save(r.Context(), h.Club().Snapshot())
}

func callerFrom(r *http.Request) club.Identity {
	if id := r.Header.Get("X-Caller-ID"); id != "" {
		return club.Identity(id)
	}
	return club.Identity("anonymous")
}

// =============================================================================
// MEMBER HANDLERS
// =============================================================================

// ListMembers returns all members in registration order.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Club().Members(callerFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTOs(members))
}

// RegisterMember registers a member and returns their first pending payment.
func (h *Handler) RegisterMember(w http.ResponseWriter, r *http.Request) {
	var req RegisterMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	payment, err := h.Club().Register(callerFrom(r), club.MemberID(req.ID), req.Name, req.CategoryCode, req.ActivityCode)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist state", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(payment))
}

// GetMember returns a single member.
func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	id, ok := memberIDParam(w, r)
	if !ok {
		return
	}
	member, err := h.Club().Member(callerFrom(r), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if member == nil {
		writeError(w, http.StatusNotFound, "Member not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTO(*member))
}

// GetMemberPayments returns one member's payment history in ledger order.
func (h *Handler) GetMemberPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := memberIDParam(w, r)
	if !ok {
		return
	}
	payments, err := h.Club().PaymentHistory(callerFrom(r), &id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTOs(payments))
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns the full ledger in order.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Club().PaymentHistory(callerFrom(r), nil)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTOs(payments))
}

// SettlePayment settles the first pending payment matching the exact amount.
func (h *Handler) SettlePayment(w http.ResponseWriter, r *http.Request) {
	var req SettlePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	payment, err := h.Club().Settle(callerFrom(r), club.MemberID(req.MemberID), amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist state", err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTO(payment))
}

// =============================================================================
// BILLING HANDLERS
// =============================================================================

// RunBilling runs the monthly billing cycle.
func (h *Handler) RunBilling(w http.ResponseWriter, r *http.Request) {
	ran, err := h.Club().RunBillingCycle(callerFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist state", err)
		return
	}
	writeJSON(w, http.StatusOK, BillingRunDTO{Ran: ran})
}

// =============================================================================
// CONFIGURATION HANDLERS
// =============================================================================

// UpdateCategoryPrice sets the base price for a category.
func (h *Handler) UpdateCategoryPrice(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.ParseUint(chi.URLParam(r, "category"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid category code", err)
		return
	}
	amount, ok := amountFromBody(w, r)
	if !ok {
		return
	}
	if _, err := h.Club().UpdateCategoryPrice(callerFrom(r), uint32(code), amount); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist state", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

// UpdateDiscount sets the streak discount amount.
func (h *Handler) UpdateDiscount(w http.ResponseWriter, r *http.Request) {
	amount, ok := amountFromBody(w, r)
	if !ok {
		return
	}
	if _, err := h.Club().UpdateDiscountAmount(callerFrom(r), amount); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist state", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

// UpdateStreak sets how many on-time payments earn the discount.
func (h *Handler) UpdateStreak(w http.ResponseWriter, r *http.Request) {
	var req UpdateStreakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, err := h.Club().UpdateDiscountStreak(callerFrom(r), req.Streak); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist state", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// TransferOwnership hands the club to a new owner.
func (h *Handler) TransferOwnership(w http.ResponseWriter, r *http.Request) {
	var req TransferOwnershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Club().TransferOwnership(callerFrom(r), club.Identity(req.NewOwner)); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist state", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddStaff grants staff authority.
func (h *Handler) AddStaff(w http.ResponseWriter, r *http.Request) {
	var req StaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Club().AddStaff(callerFrom(r), club.Identity(req.Identity)); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist state", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListStaff returns the staff roster.
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.Club().Staff(callerFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

// RemoveStaff revokes staff authority.
func (h *Handler) RemoveStaff(w http.ResponseWriter, r *http.Request) {
	if err := h.Club().RemoveStaff(callerFrom(r), club.Identity(chi.URLParam(r, "id"))); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist state", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleEnforcement flips the policy enforcement flag.
func (h *Handler) ToggleEnforcement(w http.ResponseWriter, r *http.Request) {
	enforced, err := h.Club().ToggleEnforcement(callerFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.persist(r); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist state", err)
		return
	}
	writeJSON(w, http.StatusOK, EnforcementDTO{Enforced: enforced})
}

// GetEnforcement reads the policy enforcement flag.
func (h *Handler) GetEnforcement(w http.ResponseWriter, r *http.Request) {
	enforced, err := h.Club().Enforcement(callerFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EnforcementDTO{Enforced: enforced})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// Delinquents lists members with overdue pending payments.
func (h *Handler) Delinquents(w http.ResponseWriter, r *http.Request) {
	members, err := h.engine().DelinquentMembers(callerFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTOs(members))
}

// Revenue reports settled revenue per category, in the order A, B, C.
func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.engine().RevenueByCategory(callerFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]RevenueDTO, len(buckets))
	for i, b := range buckets {
		dtos[i] = RevenueDTO{Category: string(b.Category), Amount: b.Amount.String()}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// EligibleForActivity lists non-delinquent members with access to an activity.
func (h *Handler) EligibleForActivity(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.ParseUint(chi.URLParam(r, "code"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid activity code", err)
		return
	}
	members, err := h.engine().EligibleForActivity(callerFrom(r), uint32(code))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTOs(members))
}

// =============================================================================
// HELPERS
// =============================================================================

func memberIDParam(w http.ResponseWriter, r *http.Request) (club.MemberID, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid member id", err)
		return 0, false
	}
	return club.MemberID(id), true
}

func amountFromBody(w http.ResponseWriter, r *http.Request) (decimal.Decimal, bool) {
	var req UpdateAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return decimal.Zero, false
	}
	return amount, true
}

// writeDomainError maps a domain failure to its HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, club.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "Permission denied", err)
	case club.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, club.ErrInvalidCategory), errors.Is(err, club.ErrInvalidActivity):
		writeError(w, http.StatusBadRequest, "Invalid code", err)
	case errors.Is(err, club.ErrNegativeAmount), errors.Is(err, club.ErrNegativeStreak):
		writeError(w, http.StatusBadRequest, "Invalid value", err)
	case club.IsClientError(err):
		writeError(w, http.StatusConflict, "Operation not applicable", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
