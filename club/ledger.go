/*
ledger.go - Pure filters over the payment ledger

PURPOSE:
  The payment ledger is an append-mostly slice: payments are created pending,
  settled in place exactly once, and never deleted. These filters derive the
  pending and settled views without touching the ledger itself.

CRITICAL INVARIANTS:
  1. ORDER-PRESERVING: Output order is input order, always. Reports and
     settlement tie-breaks depend on ledger order being stable.
  2. TOTAL: Filters never fail; empty input yields empty output.
  3. NON-ALIASING: Results are fresh slices of value copies.

SEE ALSO:
  - club.go: Settle and RunBillingCycle, the only ledger writers
  - reporting: Consumes Pending via the data-source contract
*/
package club

// Pending returns the payments that have no settlement date yet,
// in input order.
func Pending(payments []Payment) []Payment {
	out := make([]Payment, 0, len(payments))
	for _, p := range payments {
		if p.Pending() {
			out = append(out, p)
		}
	}
	return out
}

// Settled returns the payments that have a settlement date, in input order.
func Settled(payments []Payment) []Payment {
	out := make([]Payment, 0, len(payments))
	for _, p := range payments {
		if p.Settled() {
			out = append(out, p)
		}
	}
	return out
}

// paymentsFor returns the payments belonging to one member, in ledger order.
func paymentsFor(payments []Payment, id MemberID) []Payment {
	out := make([]Payment, 0)
	for _, p := range payments {
		if p.MemberID == id {
			out = append(out, p)
		}
	}
	return out
}
