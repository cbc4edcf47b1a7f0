package block

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/kbukum/blockflow/errors"
	"github.com/kbukum/blockflow/registry"
)

// Store holds the block instances of one stage canvas and enforces link
// symmetry, single in/out degree, acyclicity and capacity on every mutation.
// A failed mutation leaves the store unchanged.
//
// Store is not safe for concurrent use; callers serialize access.
type Store struct {
	reg   *registry.Registry
	order []string
	byID  map[string]*Instance
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the uuid id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates an empty store for the registry's stage.
func NewStore(reg *registry.Registry, opts ...Option) *Store {
	s := &Store{
		reg:   reg,
		byID:  make(map[string]*Instance),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the registry the store validates against.
func (s *Store) Registry() *registry.Registry { return s.reg }

// Stage returns the store's stage id.
func (s *Store) Stage() string { return s.reg.Stage() }

// Len returns the number of instances.
func (s *Store) Len() int { return len(s.order) }

// Get returns a copy of the instance with the given id.
func (s *Store) Get(id string) (Instance, error) {
	inst, err := s.lookup(id)
	if err != nil {
		return Instance{}, err
	}
	return *inst, nil
}

// List returns copies of all instances in creation order.
func (s *Store) List() []Instance {
	out := make([]Instance, len(s.order))
	for i, id := range s.order {
		out[i] = *s.byID[id]
	}
	return out
}

// Count returns how many instances of typeKey are placed.
func (s *Store) Count(typeKey string) int {
	n := 0
	for _, id := range s.order {
		if s.byID[id].TypeKey == typeKey {
			n++
		}
	}
	return n
}

// Add places a new unlinked instance of typeKey at pos with default data.
func (s *Store) Add(typeKey string, pos Position) (Instance, error) {
	desc, err := s.reg.Get(typeKey)
	if err != nil {
		return Instance{}, err
	}
	if !desc.MaxInstances.Allows(s.Count(typeKey)) {
		return Instance{}, errors.CapacityExceeded(typeKey, int(desc.MaxInstances))
	}
	inst := s.insert(desc, pos)
	return *inst, nil
}

func (s *Store) insert(desc registry.Descriptor, pos Position) *Instance {
	id := s.newID()
	for _, taken := s.byID[id]; taken || id == ""; _, taken = s.byID[id] {
		id = s.newID()
	}
	inst := &Instance{
		ID:       id,
		TypeKey:  desc.TypeKey,
		Data:     desc.DefaultData(),
		Position: pos,
	}
	s.byID[id] = inst
	s.order = append(s.order, id)
	return inst
}

// Seed places one instance of every protected type that is not yet present
// and returns the instances it created.
func (s *Store) Seed() []Instance {
	var seeded []Instance
	for _, desc := range s.reg.Protected() {
		if s.Count(desc.TypeKey) > 0 {
			continue
		}
		inst := s.insert(desc, Position{X: desc.SeedX, Y: desc.SeedY})
		seeded = append(seeded, *inst)
	}
	return seeded
}

// Remove deletes an instance and clears the links its neighbours held to it.
// The former neighbours are not re-linked to each other.
func (s *Store) Remove(id string) error {
	inst, err := s.lookup(id)
	if err != nil {
		return err
	}
	if desc, err := s.reg.Get(inst.TypeKey); err == nil && desc.Protected {
		return errors.Protected(id, inst.TypeKey)
	}

	if p, ok := s.byID[inst.Predecessor]; ok {
		p.Successor = ""
	}
	if n, ok := s.byID[inst.Successor]; ok {
		n.Predecessor = ""
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(x string) bool { return x == id })
	return nil
}

// Connect links from's output to to's input.
func (s *Store) Connect(from, to string) error {
	if from == to {
		return errors.SelfLink(from)
	}
	a, err := s.lookup(from)
	if err != nil {
		return err
	}
	b, err := s.lookup(to)
	if err != nil {
		return err
	}
	if a.Successor != "" {
		return errors.AlreadyLinked(from, "output")
	}
	if b.Predecessor != "" {
		return errors.AlreadyLinked(to, "input")
	}
	if err := s.checkPorts(a, b); err != nil {
		return err
	}
	if s.reaches(to, from) {
		return errors.WouldCycle(from, to)
	}

	a.Successor = to
	b.Predecessor = from
	return nil
}

func (s *Store) checkPorts(a, b *Instance) error {
	da, err := s.reg.Get(a.TypeKey)
	if err != nil {
		return err
	}
	db, err := s.reg.Get(b.TypeKey)
	if err != nil {
		return err
	}
	if !da.ProducesOutput {
		return errors.IncompatiblePorts(a.ID, b.ID, fmt.Sprintf("%s blocks have no output.", da.Label))
	}
	if !db.AcceptsInput {
		return errors.IncompatiblePorts(a.ID, b.ID, fmt.Sprintf("%s blocks take no input.", db.Label))
	}
	return nil
}

// reaches reports whether target is start or lies downstream of it.
func (s *Store) reaches(start, target string) bool {
	seen := make(map[string]bool)
	for cur := start; cur != "" && !seen[cur]; {
		if cur == target {
			return true
		}
		seen[cur] = true
		next, ok := s.byID[cur]
		if !ok {
			return false
		}
		cur = next.Successor
	}
	return false
}

// Disconnect removes the link from → to. Both sides must agree on it.
func (s *Store) Disconnect(from, to string) error {
	a, err := s.lookup(from)
	if err != nil {
		return err
	}
	b, err := s.lookup(to)
	if err != nil {
		return err
	}
	if a.Successor != to || b.Predecessor != from {
		return errors.NotLinked(from, to)
	}
	a.Successor = ""
	b.Predecessor = ""
	return nil
}

// Move updates an instance's canvas position.
func (s *Store) Move(id string, pos Position) error {
	inst, err := s.lookup(id)
	if err != nil {
		return err
	}
	inst.Position = pos
	return nil
}

// SetData replaces an instance's payload. The payload must have the type's
// concrete payload type and pass validation.
func (s *Store) SetData(id string, data Payload) error {
	inst, err := s.lookup(id)
	if err != nil {
		return err
	}
	desc, err := s.reg.Get(inst.TypeKey)
	if err != nil {
		return err
	}
	if err := checkPayload(desc, data); err != nil {
		return err
	}
	inst.Data = data
	return nil
}

// Restore replaces the store's contents with instances after checking every
// invariant. On error the store is unchanged.
func (s *Store) Restore(instances []Instance) error {
	if err := CheckIntegrity(s.reg, instances); err != nil {
		return err
	}
	s.order = make([]string, 0, len(instances))
	s.byID = make(map[string]*Instance, len(instances))
	for _, inst := range instances {
		s.byID[inst.ID] = &inst
		s.order = append(s.order, inst.ID)
	}
	return nil
}

// Reset removes every instance and re-seeds the protected types.
func (s *Store) Reset() []Instance {
	s.order = nil
	s.byID = make(map[string]*Instance)
	return s.Seed()
}

func (s *Store) lookup(id string) (*Instance, error) {
	inst, ok := s.byID[id]
	if !ok {
		return nil, errors.NotFound("block", id)
	}
	return inst, nil
}
