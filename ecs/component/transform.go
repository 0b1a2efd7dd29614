package component

// Transform is the world-space origin of an entity. For trigger volumes the
// origin is the center of the box.
type Transform struct {
	X float64
	Y float64
}

var TransformKind = NewKind[Transform]()
