package kb

import (
	"fmt"
	"sync"

	"github.com/novaworks/stellarsim/model"
	"github.com/novaworks/stellarsim/timectrl"
)

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventSystemAdded EventType = iota
	EventSystemRemoved
)

// Event is emitted to subscribers when the set of systems changes.
type Event struct {
	Type     EventType
	SystemID string
}

// KnowledgeBase is an in-memory, thread-safe store for star systems. It owns
// the region set; the scheduler only borrows per-subpulse snapshots of it.
type KnowledgeBase struct {
	mu sync.RWMutex

	systems map[string]*model.StarSystem

	subs []func(Event)
}

// NewKnowledgeBase constructs an empty KB.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		systems: make(map[string]*model.StarSystem),
	}
}

// AddSystem adds a new star system. It returns an error if the ID already
// exists.
func (kb *KnowledgeBase) AddSystem(s *model.StarSystem) error {
	kb.mu.Lock()
	if _, exists := kb.systems[s.ID]; exists {
		kb.mu.Unlock()
		return fmt.Errorf("system with ID %q already exists", s.ID)
	}
	// store pointer so that processors can update contents in place
	kb.systems[s.ID] = s
	subs := kb.subs
	kb.mu.Unlock()

	for _, fn := range subs {
		fn(Event{Type: EventSystemAdded, SystemID: s.ID})
	}
	return nil
}

// RemoveSystem deletes a system. It returns an error if the ID is unknown.
func (kb *KnowledgeBase) RemoveSystem(id string) error {
	kb.mu.Lock()
	if _, ok := kb.systems[id]; !ok {
		kb.mu.Unlock()
		return fmt.Errorf("system with ID %q not found", id)
	}
	delete(kb.systems, id)
	subs := kb.subs
	kb.mu.Unlock()

	for _, fn := range subs {
		fn(Event{Type: EventSystemRemoved, SystemID: id})
	}
	return nil
}

// System returns the system with the given ID, or nil if not found.
func (kb *KnowledgeBase) System(id string) *model.StarSystem {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.systems[id]
}

// ListSystems returns a snapshot slice of all systems, active or not.
func (kb *KnowledgeBase) ListSystems() []*model.StarSystem {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make([]*model.StarSystem, 0, len(kb.systems))
	for _, s := range kb.systems {
		res = append(res, s)
	}
	return res
}

// ActiveSystems returns a snapshot slice of systems participating in
// simulation.
func (kb *KnowledgeBase) ActiveSystems() []*model.StarSystem {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make([]*model.StarSystem, 0, len(kb.systems))
	for _, s := range kb.systems {
		if s.Active {
			res = append(res, s)
		}
	}
	return res
}

// ActiveRegions implements timectrl.RegionSource over the active systems.
func (kb *KnowledgeBase) ActiveRegions() []timectrl.Region {
	systems := kb.ActiveSystems()
	regions := make([]timectrl.Region, 0, len(systems))
	for _, s := range systems {
		regions = append(regions, s)
	}
	return regions
}

// Subscribe registers a callback invoked on every KB change event.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.subs = append(kb.subs, fn)
}
