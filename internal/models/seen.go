package models

import "github.com/samber/lo"

// SeenSet is the ordered, duplicate-free list of track ids a session has used as seeds.
//
// Methods never mutate the receiver; callers store the returned value.
type SeenSet []string

// Contains reports whether id is already in the set.
func (s SeenSet) Contains(id string) bool {
	return lo.Contains(s, id)
}

// Add returns the set with id appended if it is absent.
func (s SeenSet) Add(id string) SeenSet {
	if id == "" || s.Contains(id) {
		return s
	}
	next := make(SeenSet, len(s), len(s)+1)
	copy(next, s)
	return append(next, id)
}

// Merge adds each id in order.
func (s SeenSet) Merge(ids ...string) SeenSet {
	for _, id := range ids {
		s = s.Add(id)
	}
	return s
}

// IDs returns a copy of the ids.
func (s SeenSet) IDs() []string {
	return append([]string(nil), s...)
}
