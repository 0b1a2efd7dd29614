package component

type PlayerTag struct{}

var PlayerTagKind = NewKind[PlayerTag]()
