package validator

// SeenSet tracks duplicate keys within one validation pass. Create one per
// pass; it is not safe for concurrent use.
type SeenSet struct {
	keys map[string]struct{}
}

// NewSeenSet returns an empty set
func NewSeenSet() *SeenSet {
	return &SeenSet{keys: make(map[string]struct{})}
}

// Add records key and reports whether it was new
func (s *SeenSet) Add(key string) bool {
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	return true
}

// Len returns the number of distinct keys recorded
func (s *SeenSet) Len() int {
	return len(s.keys)
}
