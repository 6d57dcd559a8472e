/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS:
  Money travels as decimal strings ("5000"), never floats, so exact-amount
  settlement matching survives the wire.

VALIDATION:
  Validation is done in handlers and the domain, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/club-engine/club"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// MemberDTO represents a member in API responses.
type MemberDTO struct {
	ID       uint32 `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Activity string `json:"activity,omitempty"`
}

// PaymentDTO represents a payment in API responses.
type PaymentDTO struct {
	MemberID   uint32 `json:"member_id"`
	Amount     string `json:"amount"`
	DueDate    string `json:"due_date"`
	SettledAt  string `json:"settled_at,omitempty"`
	Discounted bool   `json:"discounted"`
	Status     string `json:"status"` // "pending" or "settled"
}

// RegisterMemberRequest is the request to register a member.
type RegisterMemberRequest struct {
	ID           uint32  `json:"id"`
	Name         string  `json:"name"`
	CategoryCode uint32  `json:"category_code"`
	ActivityCode *uint32 `json:"activity_code,omitempty"`
}

// SettlePaymentRequest is the request to settle a pending payment.
type SettlePaymentRequest struct {
	MemberID uint32 `json:"member_id"`
	Amount   string `json:"amount"`
}

// UpdateAmountRequest carries a single decimal amount (price or discount).
type UpdateAmountRequest struct {
	Amount string `json:"amount"`
}

// UpdateStreakRequest sets the discount streak length.
type UpdateStreakRequest struct {
	Streak int `json:"streak"`
}

// TransferOwnershipRequest hands the club to a new owner.
type TransferOwnershipRequest struct {
	NewOwner string `json:"new_owner"`
}

// StaffRequest grants staff authority to an identity.
type StaffRequest struct {
	Identity string `json:"identity"`
}

// EnforcementDTO reports the policy enforcement flag.
type EnforcementDTO struct {
	Enforced bool `json:"enforced"`
}

// BillingRunDTO reports the outcome of a billing cycle run.
type BillingRunDTO struct {
	Ran bool `json:"ran"`
}

// RevenueDTO is one bucket of the revenue report.
type RevenueDTO struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toMemberDTO(m club.Member) MemberDTO {
	dto := MemberDTO{
		ID:       uint32(m.ID),
		Name:     m.Name,
		Category: string(m.Category),
	}
	if m.Activity != nil {
		dto.Activity = string(*m.Activity)
	}
	return dto
}

func toMemberDTOs(members []club.Member) []MemberDTO {
	dtos := make([]MemberDTO, len(members))
	for i, m := range members {
		dtos[i] = toMemberDTO(m)
	}
	return dtos
}

func toPaymentDTO(p club.Payment) PaymentDTO {
	dto := PaymentDTO{
		MemberID:   uint32(p.MemberID),
		Amount:     p.Amount.String(),
		DueDate:    p.DueDate.String(),
		Discounted: p.Discounted,
		Status:     "pending",
	}
	if p.SettledAt != nil {
		dto.SettledAt = p.SettledAt.String()
		dto.Status = "settled"
	}
	return dto
}

func toPaymentDTOs(payments []club.Payment) []PaymentDTO {
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	return dtos
}
