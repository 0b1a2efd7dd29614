package system

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/frobworld/ecs"
	"github.com/milk9111/frobworld/ecs/component"
)

const physicsStep = 1.0 / 60.0

// PhysicsSystem mirrors entity bodies into a Chipmunk2D space. Every body is
// a static box centred on the entity transform: a sensor while not solid,
// and filtered out of all queries while hidden.
type PhysicsSystem struct {
	space  *cp.Space
	shapes map[ecs.Entity]*cp.Shape
}

func NewPhysicsSystem() *PhysicsSystem {
	return &PhysicsSystem{
		space:  cp.NewSpace(),
		shapes: map[ecs.Entity]*cp.Shape{},
	}
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	ps.Sync(w)
	ps.space.Step(physicsStep)
}

// Sync creates shapes for new bodies, drops shapes of dead entities, and
// applies solidity and visibility flags.
func (ps *PhysicsSystem) Sync(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	ps.cleanupEntities(w)

	ecs.ForEach2(w, component.PhysicsBodyKind, component.TransformKind, func(e ecs.Entity, body *component.PhysicsBody, tf *component.Transform) {
		shape := ps.shapes[e]
		if shape == nil {
			shape = ps.createShape(e, body, tf)
			ps.shapes[e] = shape
			body.Shape = shape
		}
		if shape.Sensor() == body.Solid {
			shape.SetSensor(!body.Solid)
		}
		if w.IsHidden(e) {
			shape.SetFilter(cp.SHAPE_FILTER_NONE)
		} else {
			shape.SetFilter(cp.SHAPE_FILTER_ALL)
		}
	})
}

func (ps *PhysicsSystem) createShape(e ecs.Entity, body *component.PhysicsBody, tf *component.Transform) *cp.Shape {
	w, h := body.Width, body.Height
	if w <= 0 {
		w = 32
	}
	if h <= 0 {
		h = 32
	}
	bb := cp.BB{L: tf.X - w/2, B: tf.Y - h/2, R: tf.X + w/2, T: tf.Y + h/2}
	shape := cp.NewBox2(ps.space.StaticBody, bb, 0)
	shape.UserData = e
	shape.SetSensor(!body.Solid)
	ps.space.AddShape(shape)
	return shape
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, shape := range ps.shapes {
		if w.IsAlive(e) && ecs.Has(w, e, component.PhysicsBodyKind) {
			continue
		}
		ps.space.RemoveShape(shape)
		delete(ps.shapes, e)
	}
}

// EntityAt returns the visible entity whose volume is nearest to (x, y),
// within maxDist. Sensors count; ties go to the lower entity handle.
func (ps *PhysicsSystem) EntityAt(x, y, maxDist float64) (ecs.Entity, bool) {
	if ps == nil {
		return 0, false
	}
	var (
		best     ecs.Entity
		bestDist float64
		found    bool
	)
	pt := cp.Vector{X: x, Y: y}
	ps.space.BBQuery(cp.NewBBForCircle(pt, maxDist), cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, _ interface{}) {
		e, ok := shape.UserData.(ecs.Entity)
		if !ok {
			return
		}
		distance := shape.PointQuery(pt).Distance
		if distance > maxDist {
			return
		}
		if !found || distance < bestDist || (distance == bestDist && e < best) {
			best, bestDist, found = e, distance, true
		}
	}, nil)
	return best, found
}

// Solid reports whether e currently has a blocking shape.
func (ps *PhysicsSystem) Solid(e ecs.Entity) bool {
	shape, ok := ps.shapes[e]
	return ok && !shape.Sensor()
}
