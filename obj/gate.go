package obj

import (
	"fmt"

	"github.com/milk9111/frobworld/common"
	"github.com/milk9111/frobworld/ecs"
	"github.com/milk9111/frobworld/savegame"
)

const ArgOpen = "open"

// Gate is a door-like owner target: each activation toggles it between open
// (passable sensor) and closed (solid).
type Gate struct {
	open bool
	name string
	phys Physics
	logf common.Logf
}

func (g *Gate) Spawn(ctx *SpawnContext) error {
	if err := ctx.require(ClassGate); err != nil {
		return err
	}
	g.name = ctx.Name
	g.phys = ctx.Physics
	g.logf = ctx.Logf
	g.setOpen(ctx.Args.GetBool(ArgOpen, false))
	return nil
}

func (g *Gate) OnActivate(activator ecs.Entity) {
	g.setOpen(!g.open)
	state := "closed"
	if g.open {
		state = "opened"
	}
	g.logf.Printf("gate: '%s' %s by %s", g.name, state, activator)
}

func (g *Gate) Save(w *savegame.Writer) error {
	if err := w.WriteBool(g.open); err != nil {
		return fmt.Errorf("gate %q: save open: %w", g.name, err)
	}
	return nil
}

func (g *Gate) Restore(r *savegame.Reader) error {
	open, err := r.ReadBool()
	if err != nil {
		return fmt.Errorf("gate %q: restore open: %w", g.name, err)
	}
	g.setOpen(open)
	return nil
}

func (g *Gate) Open() bool { return g.open }

func (g *Gate) setOpen(open bool) {
	g.open = open
	g.phys.SetSolid(!open)
}
