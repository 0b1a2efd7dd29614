package obj

import (
	"github.com/milk9111/frobworld/common"
	"github.com/milk9111/frobworld/ecs"
)

// Lookup returns the interactable attached to an entity.
type Lookup func(e ecs.Entity) (Interactable, bool)

// Player is the controller that frobs objects and receives activations
// forwarded to owner entities.
type Player struct {
	entity  ecs.Entity
	world   *ecs.World
	objects Lookup
	scripts Scripts
	logf    common.Logf

	// active holds entities whose OnActivate is on the stack, so forwarding
	// cycles between owners terminate.
	active map[ecs.Entity]bool
}

func NewPlayer(w *ecs.World, e ecs.Entity, objects Lookup, scripts Scripts, logf common.Logf) *Player {
	return &Player{
		entity:  e,
		world:   w,
		objects: objects,
		scripts: scripts,
		logf:    logf,
		active:  map[ecs.Entity]bool{},
	}
}

func (p *Player) Entity() ecs.Entity { return p.entity }

// Frob activates target with the player as activator. Hidden entities and
// entities without an interactable are ignored.
func (p *Player) Frob(target ecs.Entity) bool {
	if p == nil || !p.world.IsAlive(target) || p.world.IsHidden(target) {
		return false
	}
	o, ok := p.objects(target)
	if !ok {
		return false
	}
	return p.activate(target, o)
}

// FrobNamed frobs the entity bound to name.
func (p *Player) FrobNamed(name string) bool {
	e, ok := p.world.FindByName(name)
	if !ok {
		return false
	}
	return p.Frob(e)
}

// UseFrob handles an activation forwarded to owner. It records a FrobEvent,
// activates the owner when it is interactable, then queues hint as a script
// call with the owner's name as argument.
func (p *Player) UseFrob(owner ecs.Entity, hint string) {
	if p == nil {
		return
	}
	p.world.Events().Push(ecs.Event{
		Type: ecs.EventFrob,
		Data: ecs.FrobEvent{Activator: p.entity, Target: owner, Hint: hint},
	})

	if o, ok := p.objects(owner); ok {
		p.activate(owner, o)
	}

	if hint == "" || p.scripts == nil {
		return
	}
	fn, ok := p.scripts.Resolve(hint)
	if !ok {
		return
	}
	name, _ := p.world.Name(owner)
	p.scripts.ScheduleAsync(fn, 0, name)
}

func (p *Player) activate(e ecs.Entity, o Interactable) bool {
	if p.active[e] {
		p.logf.Printf("player: skipping re-entrant activation of %s", e)
		return false
	}
	p.active[e] = true
	defer delete(p.active, e)
	o.OnActivate(p.entity)
	return true
}
