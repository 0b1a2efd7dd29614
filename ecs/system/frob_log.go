package system

import (
	"github.com/milk9111/frobworld/common"
	"github.com/milk9111/frobworld/ecs"
)

// FrobLogSystem drains forwarded-frob events and reports them.
type FrobLogSystem struct {
	Logf common.Logf
	seen int
}

func NewFrobLogSystem(logf common.Logf) *FrobLogSystem {
	return &FrobLogSystem{Logf: logf}
}

func (s *FrobLogSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	for _, evt := range w.Events().Drain() {
		frob, ok := evt.Data.(ecs.FrobEvent)
		if evt.Type != ecs.EventFrob || !ok {
			continue
		}
		s.seen++
		target, _ := w.Name(frob.Target)
		s.Logf.Printf("frob: tick=%d activator=%s owner=%q hint=%q", w.Tick(), frob.Activator, target, frob.Hint)
	}
}

// Seen returns the number of frob events reported so far.
func (s *FrobLogSystem) Seen() int {
	if s == nil {
		return 0
	}
	return s.seen
}
