package bridge

// Set is an ordered collection of runtimes keyed by entry id. It is
// assembled at boot and read-only afterwards.
type Set struct {
	order []*Runtime
	byID  map[string]*Runtime
}

// NewSet creates a Set from zero or more runtimes.
func NewSet(runtimes ...*Runtime) *Set {
	s := &Set{byID: make(map[string]*Runtime)}
	for _, r := range runtimes {
		s.Add(r)
	}
	return s
}

// Add appends a runtime, keeping insertion order.
func (s *Set) Add(r *Runtime) {
	s.order = append(s.order, r)
	s.byID[r.Entry.ID] = r
}

// Get returns the runtime for an entry id.
func (s *Set) Get(id string) (*Runtime, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// All returns the runtimes in insertion order.
func (s *Set) All() []*Runtime {
	return s.order
}

// Len reports the number of runtimes.
func (s *Set) Len() int {
	return len(s.order)
}
