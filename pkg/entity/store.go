package entity

import (
	"github.com/repeale/fp-go/option"
)

// Store maps identifiers to entity state. Iteration follows insertion order
// so every pass over the store (simulation, broadcast) is reproducible.
type Store struct {
	entities map[ID]*Entity
	order    []ID
}

func NewStore() *Store {
	return &Store{
		entities: make(map[ID]*Entity),
	}
}

// Add inserts a copy of e. It returns the stored entity and false if an
// entity with the same ID already exists, in which case nothing changes.
func (s *Store) Add(e Entity) (*Entity, bool) {
	if existing, ok := s.entities[e.ID]; ok {
		return existing, false
	}

	stored := e
	s.entities[e.ID] = &stored
	s.order = append(s.order, e.ID)
	return &stored, true
}

// Get returns the entity with the given ID or nil.
func (s *Store) Get(id ID) *Entity {
	return s.entities[id]
}

func (s *Store) Lookup(id ID) opt.Option[*Entity] {
	if e, ok := s.entities[id]; ok {
		return opt.Some(e)
	}
	return opt.None[*Entity]()
}

func (s *Store) Has(id ID) bool {
	_, ok := s.entities[id]
	return ok
}

func (s *Store) Len() int {
	return len(s.order)
}

// IDs returns a copy of the identifiers in insertion order.
func (s *Store) IDs() []ID {
	ids := make([]ID, len(s.order))
	copy(ids, s.order)
	return ids
}

func (s *Store) Each(fn func(e *Entity)) {
	for _, id := range s.order {
		fn(s.entities[id])
	}
}

// NextID returns one past the largest identifier in the store, starting at
// zero for an empty store. It never returns None unless all other
// identifiers are taken.
func (s *Store) NextID() ID {
	if len(s.order) == 0 {
		return 0
	}

	max := s.order[0]
	for _, id := range s.order {
		if id > max {
			max = id
		}
	}

	if next := max + 1; next != None {
		return next
	}

	for id := ID(0); id < None; id++ {
		if !s.Has(id) {
			return id
		}
	}

	return None
}
