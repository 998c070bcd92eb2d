package library

import (
	"sort"
	"strings"
)

// PathSet holds lower-cased, slash-separated library file paths relative to the game folder.
type PathSet map[string]struct{}

func NewPathSet(paths ...string) PathSet {
	set := make(PathSet, len(paths))
	for _, p := range paths {
		set.Add(p)
	}
	return set
}

func (s PathSet) Add(path string) {
	s[strings.ToLower(path)] = struct{}{}
}

func (s PathSet) Contains(path string) bool {
	_, exists := s[strings.ToLower(path)]
	return exists
}

func (s PathSet) Merge(other PathSet) {
	for p := range other {
		s[p] = struct{}{}
	}
}

// Difference yields all paths of s which are not in other.
func (s PathSet) Difference(other PathSet) PathSet {
	diff := make(PathSet)
	for p := range s {
		if _, exists := other[p]; !exists {
			diff[p] = struct{}{}
		}
	}
	return diff
}

func (s PathSet) Sorted() []string {
	list := make([]string, 0, len(s))
	for p := range s {
		list = append(list, p)
	}
	sort.Strings(list)
	return list
}
