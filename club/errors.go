/*
errors.go - Centralized error types for the club engine

PURPOSE:
  All failure kinds in one place. Every operation either returns its
  documented success value or exactly one of these typed failures; callers
  distinguish kinds with errors.Is, never by string matching.

ERROR CATEGORIES:
  1. Authorization - caller fails the relevant gate
  2. Registry      - member lookup/registration preconditions
  3. Ledger        - settlement preconditions
  4. Billing       - cycle window and discount arithmetic

PROPAGATION:
  All errors are fatal to the current operation: no partial mutation is
  committed. Retries, if any, belong to the transport layer.

SEE ALSO:
  - club.go: Operations returning these errors
  - api/handlers.go: HTTP status mapping
*/
package club

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrPermissionDenied is returned when the caller fails the gate for
	// the attempted operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrMemberNotFound is returned when a member id is absent where one
	// is required.
	ErrMemberNotFound = errors.New("member not found")

	// ErrMemberExists is returned on registration with a duplicate id.
	ErrMemberExists = errors.New("member already exists")

	// ErrInvalidCategory is returned when a category code maps to no category.
	ErrInvalidCategory = errors.New("invalid category code")

	// ErrInvalidActivity is returned when an activity code maps to no activity.
	ErrInvalidActivity = errors.New("invalid activity code")

	// ErrNoMatchingPendingPayment is returned when settlement finds no pending
	// payment with the exact amount for the member.
	ErrNoMatchingPendingPayment = errors.New("no matching pending payment")

	// ErrNoBillingYet is returned when a billing run is attempted before any
	// member has ever been registered.
	ErrNoBillingYet = errors.New("no billing cycle has been initialized")

	// ErrBillingNotDue is returned when a billing run is attempted before the
	// 30-day window has elapsed.
	ErrBillingNotDue = errors.New("billing cycle not due yet")

	// ErrAlreadyStaff is returned when granting staff to an existing staff id.
	ErrAlreadyStaff = errors.New("identity is already staff")

	// ErrNotStaff is returned when revoking staff from a non-staff id.
	ErrNotStaff = errors.New("identity is not staff")

	// ErrArithmeticUnderflow is returned when the discount exceeds a category's
	// base price during a billing run. The whole run fails; nothing is emitted.
	ErrArithmeticUnderflow = errors.New("discount exceeds base price")

	// ErrNegativeAmount is returned when a price or discount update carries a
	// negative amount.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrNegativeStreak is returned when the discount streak is set below zero.
	ErrNegativeStreak = errors.New("streak must not be negative")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidCodeError reports an integer code that maps to no known
// category or activity.
type InvalidCodeError struct {
	Kind string // "category" or "activity"
	Code uint32
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("unknown %s code %d", e.Kind, e.Code)
}

func (e *InvalidCodeError) Unwrap() error {
	if e.Kind == "category" {
		return ErrInvalidCategory
	}
	return ErrInvalidActivity
}

// NoPendingPaymentError reports a settlement attempt that matched no
// pending payment.
type NoPendingPaymentError struct {
	MemberID MemberID
	Amount   decimal.Decimal
}

func (e *NoPendingPaymentError) Error() string {
	return fmt.Sprintf("member %d has no pending payment of %s", e.MemberID, e.Amount)
}

func (e *NoPendingPaymentError) Unwrap() error { return ErrNoMatchingPendingPayment }

// UnderflowError reports the member whose discounted price would have gone
// negative, aborting the billing run.
type UnderflowError struct {
	MemberID  MemberID
	BasePrice decimal.Decimal
	Discount  decimal.Decimal
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf("billing aborted: discount %s exceeds base price %s for member %d",
		e.Discount, e.BasePrice, e.MemberID)
}

func (e *UnderflowError) Unwrap() error { return ErrArithmeticUnderflow }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// or a violated operation precondition.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMemberExists) ||
		errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, ErrInvalidActivity) ||
		errors.Is(err, ErrAlreadyStaff) ||
		errors.Is(err, ErrNotStaff) ||
		errors.Is(err, ErrNoBillingYet) ||
		errors.Is(err, ErrBillingNotDue) ||
		errors.Is(err, ErrArithmeticUnderflow) ||
		errors.Is(err, ErrNegativeAmount) ||
		errors.Is(err, ErrNegativeStreak)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMemberNotFound) ||
		errors.Is(err, ErrNoMatchingPendingPayment)
}
