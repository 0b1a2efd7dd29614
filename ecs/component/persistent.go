package component

// Persistent marks an entity whose interactable state is written to save
// games. Order is the spawn order; saves walk entities by ascending Order.
type Persistent struct {
	Class string
	Order int
}

var PersistentKind = NewKind[Persistent]()
