// Package sparse provides the sparse set used by the matching engine
// to deduplicate active NFA states within one simulation generation.
//
// The classic sparse/dense pair gives O(1) insert and membership with
// O(1) reset, which matters because the engine clears the set once per
// input position. Values are NFA state IDs, so the universe is small
// and known at construction time.
package sparse

// Set is a set of uint32 values below a fixed capacity.
//
// The zero value is not usable; call NewSet. Not safe for concurrent
// use; each simulation owns its set.
type Set struct {
	sparse []uint32 // value -> index into dense
	dense  []uint32 // members in insertion order
}

// NewSet creates a set able to hold values in [0, capacity).
func NewSet(capacity int) *Set {
	return &Set{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Insert adds v to the set. Inserting a member again is a no-op.
// v must be below the capacity given to NewSet.
func (s *Set) Insert(v uint32) {
	if s.Contains(v) {
		return
	}
	s.sparse[v] = uint32(len(s.dense))
	s.dense = append(s.dense, v)
}

// Contains reports whether v is a member.
func (s *Set) Contains(v uint32) bool {
	if int(v) >= len(s.sparse) {
		return false
	}
	i := s.sparse[v]
	return int(i) < len(s.dense) && s.dense[i] == v
}

// Clear empties the set without releasing storage.
func (s *Set) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.dense)
}

// Values returns the members in insertion order. The slice aliases
// internal storage and is invalidated by the next Insert or Clear.
func (s *Set) Values() []uint32 {
	return s.dense
}
