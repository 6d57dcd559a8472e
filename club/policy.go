/*
policy.go - Owner/staff authorization policy

PURPOSE:
  Decides whether a caller may perform an operation. Three tiers:

  1. Owner:  may do everything, including transferring ownership, managing
             the staff set, and toggling enforcement.
  2. Staff:  may perform gated operations and configuration updates.
  3. Anyone: may perform gated operations only while enforcement is OFF.

  Configuration updates (prices, discount, streak) and reading the
  enforcement flag require owner-or-staff regardless of the toggle; the
  toggle opens only the gated operation set.

SEE ALSO:
  - club.go: Applies these gates at every operation entry
*/
package club

// =============================================================================
// ACCESS POLICY
// =============================================================================

// AccessPolicy is the club's authorization state: one owner, a staff set,
// and a global enforcement flag.
type AccessPolicy struct {
	Owner    Identity
	Staff    map[Identity]bool
	Enforced bool
}

// NewAccessPolicy creates a policy with the given owner, no staff, and
// enforcement on.
func NewAccessPolicy(owner Identity) AccessPolicy {
	return AccessPolicy{
		Owner:    owner,
		Staff:    make(map[Identity]bool),
		Enforced: true,
	}
}

// MayAct reports whether the caller passes the standard gate: the owner,
// any staff member, or anyone at all while enforcement is off.
func (p AccessPolicy) MayAct(caller Identity) bool {
	return caller == p.Owner || p.Staff[caller] || !p.Enforced
}

// IsAdmin reports whether the caller is the owner.
func (p AccessPolicy) IsAdmin(caller Identity) bool {
	return caller == p.Owner
}

// IsPrivileged reports whether the caller is the owner or staff. Unlike
// MayAct, disabling enforcement does not widen this set.
func (p AccessPolicy) IsPrivileged(caller Identity) bool {
	return caller == p.Owner || p.Staff[caller]
}

// StaffList returns the staff identities as a slice (order unspecified).
func (p AccessPolicy) StaffList() []Identity {
	out := make([]Identity, 0, len(p.Staff))
	for id := range p.Staff {
		out = append(out, id)
	}
	return out
}

// clone returns a deep copy so snapshots never alias the live staff set.
func (p AccessPolicy) clone() AccessPolicy {
	staff := make(map[Identity]bool, len(p.Staff))
	for id, v := range p.Staff {
		staff[id] = v
	}
	return AccessPolicy{Owner: p.Owner, Staff: staff, Enforced: p.Enforced}
}
