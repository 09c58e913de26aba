package model

import "sort"

// Access is the capability level granted for a single permission scope.
type Access string

const (
	AccessNone  Access = "none"
	AccessRead  Access = "read"
	AccessWrite Access = "write"
)

func (a Access) rank() int {
	switch a {
	case AccessRead:
		return 1
	case AccessWrite:
		return 2
	default:
		return 0
	}
}

// Valid reports whether a is a known access level.
func (a Access) Valid() bool {
	switch a {
	case AccessNone, AccessRead, AccessWrite:
		return true
	}
	return false
}

// Covers reports whether a grants at least the level of other.
func (a Access) Covers(other Access) bool {
	return a.rank() >= other.rank()
}

// PermissionSet maps permission scopes (e.g. "contents", "packages") to
// access levels. A scope absent from the set means no access.
type PermissionSet map[string]Access

// DefaultPermissions is the least-privilege default applied when a
// workflow declares no top-level permission set.
func DefaultPermissions() PermissionSet {
	return PermissionSet{"contents": AccessRead}
}

// Level returns the access level for a scope, AccessNone if absent.
func (p PermissionSet) Level(scope string) Access {
	if a, ok := p[scope]; ok {
		return a
	}
	return AccessNone
}

// SubsetOf reports whether every grant in p is covered by caller.
func (p PermissionSet) SubsetOf(caller PermissionSet) bool {
	return len(p.Exceeding(caller)) == 0
}

// Exceeding returns the scopes in p whose level exceeds the caller's,
// sorted for deterministic error reporting.
func (p PermissionSet) Exceeding(caller PermissionSet) []string {
	var over []string
	for scope, a := range p {
		if !caller.Level(scope).Covers(a) {
			over = append(over, scope)
		}
	}
	sort.Strings(over)
	return over
}

// Intersect returns the scope-wise minimum of p and caller.
func (p PermissionSet) Intersect(caller PermissionSet) PermissionSet {
	out := make(PermissionSet, len(p))
	for scope, a := range p {
		c := caller.Level(scope)
		if c.rank() < a.rank() {
			a = c
		}
		if a != AccessNone {
			out[scope] = a
		}
	}
	return out
}

// Clone returns a copy of p.
func (p PermissionSet) Clone() PermissionSet {
	out := make(PermissionSet, len(p))
	for scope, a := range p {
		out[scope] = a
	}
	return out
}

// Scopes returns the scope names in p, sorted.
func (p PermissionSet) Scopes() []string {
	scopes := make([]string, 0, len(p))
	for scope := range p {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	return scopes
}
