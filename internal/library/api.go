package library

import "sort"

type FileStatus rune

const (
	Written   FileStatus = '~'
	Unchanged FileStatus = '='
	Deleted   FileStatus = 'X'
	Skipped   FileStatus = '?'
)

// FileStatuses lists every library file the pass dealt with, sorted by path.
func (r Report) FileStatuses() (paths []string, statuses map[string]FileStatus) {
	statuses = make(map[string]FileStatus)
	for _, p := range r.Unchanged {
		statuses[p] = Unchanged
	}
	for _, p := range r.Written {
		statuses[p] = Written
	}
	for _, p := range r.Deleted {
		statuses[p] = Deleted
	}
	for _, p := range r.Skipped {
		statuses[p] = Skipped
	}
	for p := range statuses {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return
}
