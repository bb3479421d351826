package shared

// StringSet is a de-duplicated collection that remembers insertion order. It is the
// in-memory form of the unique-address and blocked-address sets; on disk both are plain
// JSON arrays and the conversion happens through NewStringSet and Values.
type StringSet struct {
	items []string
	index map[string]struct{}
}

func NewStringSet(values ...string) *StringSet {
	s := &StringSet{
		items: make([]string, 0, len(values)),
		index: make(map[string]struct{}, len(values)),
	}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v and reports whether it was not present before.
func (s *StringSet) Add(v string) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

func (s *StringSet) Has(v string) bool {
	_, ok := s.index[v]
	return ok
}

func (s *StringSet) Remove(v string) bool {
	if _, ok := s.index[v]; !ok {
		return false
	}
	delete(s.index, v)
	for i, item := range s.items {
		if item == v {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return true
}

func (s *StringSet) Len() int {
	return len(s.items)
}

// Values returns a copy in insertion order, ready to be serialized as an array.
func (s *StringSet) Values() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
