package component

// Hidden marks an entity as not rendered and not hit by focus queries.
type Hidden struct{}

var HiddenKind = NewKind[Hidden]()
