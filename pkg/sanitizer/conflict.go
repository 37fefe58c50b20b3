package sanitizer

import (
	"fmt"
	"path"
	"strings"
)

// SiblingSet tracks the names present, or already claimed during the
// current run, within one directory. Ownership is per-directory: callers
// seed it from a listing, add each final name as it is decided, and
// discard it once the directory's children are all decided.
type SiblingSet struct {
	names map[string]struct{}
}

// NewSiblingSet creates a set containing the given names.
func NewSiblingSet(names ...string) *SiblingSet {
	s := &SiblingSet{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.names[n] = struct{}{}
	}
	return s
}

// Contains reports whether name is present. Matching is exact: the remote
// is case-sensitive.
func (s *SiblingSet) Contains(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Add claims name in the set.
func (s *SiblingSet) Add(name string) {
	s.names[name] = struct{}{}
}

// Len returns the number of names in the set.
func (s *SiblingSet) Len() int {
	return len(s.names)
}

// Resolve returns a final name for candidate that does not collide with
// siblings, and whether a collision occurred. With overwrite set a
// colliding candidate is returned unchanged and the caller overwrites.
// Otherwise suffixes _1, _2, ... are inserted before the file extension
// (appended for directories) until a free name is found. siblings is
// never mutated; the caller adds the final name after deciding.
func Resolve(candidate string, siblings *SiblingSet, isDir, overwrite bool) (string, bool) {
	if !siblings.Contains(candidate) {
		return candidate, false
	}
	if overwrite {
		return candidate, true
	}

	ext := ""
	base := candidate
	if !isDir {
		ext = path.Ext(candidate)
		base = strings.TrimSuffix(candidate, ext)
	}

	for n := 1; ; n++ {
		name := fmt.Sprintf("%s_%d%s", base, n, ext)
		if !siblings.Contains(name) {
			return name, true
		}
	}
}
