package component

import "github.com/jakecoffman/cp"

// PhysicsBody stores Chipmunk2D runtime data and collider configuration.
// Shapes are static boxes; Solid selects between a blocking shape and a
// sensor-only trigger volume.
type PhysicsBody struct {
	Shape  *cp.Shape
	Width  float64
	Height float64
	Solid  bool
}

var PhysicsBodyKind = NewKind[PhysicsBody]()
