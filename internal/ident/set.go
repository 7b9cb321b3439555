package ident

import "slices"

// Set is an unordered collection of ids.
type Set map[Id]struct{}

func NewSet(ids ...Id) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s Set) Add(id Id) {
	s[id] = struct{}{}
}

func (s Set) Has(id Id) bool {
	_, ok := s[id]
	return ok
}

// Union adds every id in o to s.
func (s Set) Union(o Set) {
	for id := range o {
		s.Add(id)
	}
}

// Sorted returns the members ordered by Compare.
func (s Set) Sorted() []Id {
	ids := make([]Id, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, Id.Compare)
	return ids
}
