package obj

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/frobworld/ecs"
	"github.com/milk9111/frobworld/ecs/component"
	"github.com/milk9111/frobworld/script"
)

// Directory resolves entity names and toggles visibility.
type Directory interface {
	FindEntityByName(name string) (ecs.Entity, bool)
	Hide(e ecs.Entity)
}

// Scripts resolves script functions and queues them on the tick scheduler.
type Scripts interface {
	Resolve(name string) (script.Function, bool)
	ScheduleAsync(fn script.Function, delay int, args ...any)
}

// Physics is the object's own body.
type Physics interface {
	SetSolid(solid bool)
	Origin() cp.Vector
}

// Controller receives activations forwarded to an owner entity.
type Controller interface {
	UseFrob(owner ecs.Entity, hint string)
}

// WorldDirectory serves Directory from the ECS name registry.
type WorldDirectory struct {
	World *ecs.World
}

func (d WorldDirectory) FindEntityByName(name string) (ecs.Entity, bool) {
	return d.World.FindByName(name)
}

func (d WorldDirectory) Hide(e ecs.Entity) {
	d.World.Hide(e)
}

// BodyPhysics serves Physics from an entity's transform and physics body
// components. SetSolid only flags the body; the physics system applies it on
// its next sync.
type BodyPhysics struct {
	World  *ecs.World
	Entity ecs.Entity
}

func (p BodyPhysics) SetSolid(solid bool) {
	body, ok := ecs.Get(p.World, p.Entity, component.PhysicsBodyKind)
	if !ok {
		body = &component.PhysicsBody{}
	}
	body.Solid = solid
	_ = ecs.Add(p.World, p.Entity, component.PhysicsBodyKind, body)
}

func (p BodyPhysics) Origin() cp.Vector {
	tf, ok := ecs.Get(p.World, p.Entity, component.TransformKind)
	if !ok {
		return cp.Vector{}
	}
	return cp.Vector{X: tf.X, Y: tf.Y}
}
