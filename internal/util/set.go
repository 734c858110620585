package util

// StringSet is a map[string]bool with a couple of convenience methods added,
// trimmed down from the teacher's generic ISet/VSet hierarchy to the
// handful of set operations this package's callers actually reach
// (membership tracking during diagnostic rendering).
type StringSet map[string]bool

// NewStringSet returns a new, empty StringSet.
func NewStringSet() StringSet {
	return StringSet{}
}

// Has reports whether value is in the set.
func (s StringSet) Has(value string) bool {
	_, has := s[value]
	return has
}

// Add puts value in the set.
func (s StringSet) Add(value string) {
	s[value] = true
}
