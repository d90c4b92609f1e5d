package zone

import "sort"

// Membership is the set of zones a detection occupies in one frame.
// The zero value is an empty, read-only set.
type Membership map[Name]struct{}

// NewMembership builds a set from names.
func NewMembership(names ...Name) Membership {
	m := make(Membership, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// Has reports whether n is in the set.
func (m Membership) Has(n Name) bool {
	_, ok := m[n]
	return ok
}

// HasAny reports whether any of names is in the set.
func (m Membership) HasAny(names ...Name) bool {
	for _, n := range names {
		if m.Has(n) {
			return true
		}
	}
	return false
}

// First returns the first of names present in the set.
func (m Membership) First(names ...Name) (Name, bool) {
	for _, n := range names {
		if m.Has(n) {
			return n, true
		}
	}
	return "", false
}

// Diff compares m with the previous frame's set and returns the zones that
// were entered and exited, both sorted.
func (m Membership) Diff(prev Membership) (entered, exited []Name) {
	for n := range m {
		if !prev.Has(n) {
			entered = append(entered, n)
		}
	}
	for n := range prev {
		if !m.Has(n) {
			exited = append(exited, n)
		}
	}
	sortNames(entered)
	sortNames(exited)
	return entered, exited
}

// Sorted returns the names in lexical order.
func (m Membership) Sorted() []Name {
	out := make([]Name, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	sortNames(out)
	return out
}

// Clone returns an independent copy.
func (m Membership) Clone() Membership {
	out := make(Membership, len(m))
	for n := range m {
		out[n] = struct{}{}
	}
	return out
}

func sortNames(ns []Name) {
	sort.Slice(ns, func(i, j int) bool { return ns[i] < ns[j] })
}
