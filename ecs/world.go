package ecs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/milk9111/frobworld/ecs/component"
)

var (
	ErrNameTaken      = errors.New("ecs: entity name already in use")
	ErrEntityNotAlive = errors.New("ecs: entity not alive")
	ErrNilComponent   = errors.New("ecs: component is nil")
)

// World owns entities, their components, the name directory and system order.
type World struct {
	entities entityStore
	stores   map[component.ID]*SparseSet
	names    map[string]Entity
	entNames map[Entity]string
	systems  []System
	events   EventQueue
	tick     uint64
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{
		stores:   map[component.ID]*SparseSet{},
		names:    map[string]Entity{},
		entNames: map[Entity]string{},
	}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity kills e, dropping its components and its name.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.destroy(e) {
		return false
	}
	for _, store := range w.stores {
		store.Remove(e)
	}
	if name, ok := w.entNames[e]; ok {
		delete(w.entNames, e)
		delete(w.names, name)
	}
	return true
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Len returns the number of live entities.
func (w *World) Len() int {
	if w == nil {
		return 0
	}
	return w.entities.live
}

// SetName binds name to e. Names are unique among live entities; rebinding an
// entity replaces its previous name.
func (w *World) SetName(e Entity, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("ecs: set name: empty name")
	}
	if !w.IsAlive(e) {
		return fmt.Errorf("ecs: set name %q: %w", name, ErrEntityNotAlive)
	}
	if other, ok := w.names[name]; ok && other != e && w.IsAlive(other) {
		return fmt.Errorf("ecs: set name %q: %w", name, ErrNameTaken)
	}
	if prev, ok := w.entNames[e]; ok {
		delete(w.names, prev)
	}
	w.names[name] = e
	w.entNames[e] = name
	return nil
}

// Name returns the name bound to e, if any.
func (w *World) Name(e Entity) (string, bool) {
	if w == nil {
		return "", false
	}
	name, ok := w.entNames[e]
	return name, ok
}

// FindByName looks up a live entity by name.
func (w *World) FindByName(name string) (Entity, bool) {
	if w == nil || name == "" {
		return 0, false
	}
	e, ok := w.names[name]
	if !ok || !w.IsAlive(e) {
		return 0, false
	}
	return e, true
}

// Hide marks e hidden. Hidden entities stay alive and addressable by name.
func (w *World) Hide(e Entity) {
	if !w.IsAlive(e) {
		return
	}
	_ = Add(w, e, component.HiddenKind, &component.Hidden{})
}

// Show clears the hidden mark.
func (w *World) Show(e Entity) {
	Remove(w, e, component.HiddenKind)
}

// IsHidden reports whether e carries the hidden mark.
func (w *World) IsHidden(e Entity) bool {
	return Has(w, e, component.HiddenKind)
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if w == nil || s == nil {
		return
	}
	w.systems = append(w.systems, s)
}

// Tick returns the number of completed Update calls.
func (w *World) Tick() uint64 {
	if w == nil {
		return 0
	}
	return w.tick
}

// Update advances the tick counter and runs all systems once. Events still
// queued after the last system are discarded.
func (w *World) Update() {
	if w == nil {
		return
	}
	w.tick++
	for _, s := range w.systems {
		s.Update(w)
	}
	w.events.flush()
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

func (w *World) store(id component.ID, create bool) *SparseSet {
	if w == nil {
		return nil
	}
	s, ok := w.stores[id]
	if !ok && create {
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}
