package obj

import (
	"fmt"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/frobworld/ecs"
	"github.com/milk9111/frobworld/prefabs"
	"github.com/milk9111/frobworld/script"
)

// callLog records collaborator calls in order across all fakes.
type callLog struct {
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) String() string { return strings.Join(l.calls, "; ") }

type fakeDirectory struct {
	log   *callLog
	names map[string]ecs.Entity
}

func (d *fakeDirectory) FindEntityByName(name string) (ecs.Entity, bool) {
	d.log.add("find %s", name)
	e, ok := d.names[name]
	return e, ok
}

func (d *fakeDirectory) Hide(e ecs.Entity) {
	d.log.add("hide %d", uint64(e))
}

type fakeFunction struct{ name string }

func (f fakeFunction) Name() string           { return f.name }
func (f fakeFunction) Call(args ...any) error { return nil }

type fakeScripts struct {
	log   *callLog
	known map[string]bool
	// onSchedule runs after each ScheduleAsync is recorded.
	onSchedule func()
}

func (s *fakeScripts) Resolve(name string) (script.Function, bool) {
	s.log.add("resolve %s", name)
	if !s.known[name] {
		return nil, false
	}
	return fakeFunction{name: name}, true
}

func (s *fakeScripts) ScheduleAsync(fn script.Function, delay int, args ...any) {
	s.log.add("schedule %s delay=%d args=%v", fn.Name(), delay, args)
	if s.onSchedule != nil {
		s.onSchedule()
	}
}

type fakePhysics struct {
	log    *callLog
	origin cp.Vector
}

func (p *fakePhysics) SetSolid(solid bool) { p.log.add("solid %v", solid) }
func (p *fakePhysics) Origin() cp.Vector   { return p.origin }

type fakeController struct {
	log *callLog
}

func (c *fakeController) UseFrob(owner ecs.Entity, hint string) {
	c.log.add("usefrob %d %q", uint64(owner), hint)
}

type harness struct {
	log     *callLog
	dir     *fakeDirectory
	scripts *fakeScripts
	phys    *fakePhysics
	ctrl    *fakeController
	logged  []string
}

func newHarness(names map[string]ecs.Entity, scripts ...string) *harness {
	log := &callLog{}
	known := map[string]bool{}
	for _, s := range scripts {
		known[s] = true
	}
	return &harness{
		log:     log,
		dir:     &fakeDirectory{log: log, names: names},
		scripts: &fakeScripts{log: log, known: known},
		phys:    &fakePhysics{log: log, origin: cp.Vector{X: 64, Y: 32}},
		ctrl:    &fakeController{log: log},
	}
}

func (h *harness) context(class, name string, args prefabs.Args) *SpawnContext {
	return &SpawnContext{
		Entity:     ecs.Entity(99),
		Name:       name,
		Args:       args,
		Directory:  h.dir,
		Scripts:    h.scripts,
		Physics:    h.phys,
		Controller: h.ctrl,
		Logf: func(format string, args ...any) {
			h.logged = append(h.logged, fmt.Sprintf(format, args...))
		},
	}
}

// reset clears the call log, typically after Spawn.
func (h *harness) reset() { h.log.calls = nil }
