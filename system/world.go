// Package system runs a level: it spawns interactables, steps the ECS world,
// and saves and restores interactable state.
package system

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/milk9111/frobworld/common"
	"github.com/milk9111/frobworld/ecs"
	"github.com/milk9111/frobworld/ecs/component"
	ecssystem "github.com/milk9111/frobworld/ecs/system"
	"github.com/milk9111/frobworld/levels"
	"github.com/milk9111/frobworld/obj"
	"github.com/milk9111/frobworld/prefabs"
	"github.com/milk9111/frobworld/script"
)

const (
	playerName   = "player"
	defaultSize  = 32.0
	frobDistance = 16.0
)

// Options configures a World. Zero values pick the defaults.
type Options struct {
	Registry *obj.Registry
	Classes  *prefabs.Classes
	// LoadScript fetches script source by name; defaults to prefabs.LoadScript.
	LoadScript func(name string) ([]byte, error)
	Logf       common.Logf
}

// World owns the loaded level and everything spawned from it.
type World struct {
	ECS     *ecs.World
	Level   *levels.Level
	Physics *ecssystem.PhysicsSystem
	Scripts *script.Runtime
	Player  *obj.Player
	FrobLog *ecssystem.FrobLogSystem

	registry   *obj.Registry
	classes    *prefabs.Classes
	loadScript func(string) ([]byte, error)
	logf       common.Logf

	objects map[ecs.Entity]obj.Interactable
}

// NewWorld creates a world and loads lvl into it.
func NewWorld(lvl *levels.Level, opts Options) (*World, error) {
	w := &World{
		registry:   opts.Registry,
		classes:    opts.Classes,
		loadScript: opts.LoadScript,
		logf:       opts.Logf,
	}
	if w.registry == nil {
		w.registry = obj.DefaultRegistry()
	}
	if w.loadScript == nil {
		w.loadScript = prefabs.LoadScript
	}
	if err := w.Load(lvl); err != nil {
		return nil, err
	}
	return w, nil
}

// Load discards the current level state and spawns lvl from scratch. On
// error w is left as it was.
func (w *World) Load(lvl *levels.Level) error {
	if w == nil {
		return fmt.Errorf("world is nil")
	}
	next, err := w.build(lvl)
	if err != nil {
		return err
	}
	w.adopt(next)
	return nil
}

// build spawns lvl into a new World sharing w's options.
func (w *World) build(lvl *levels.Level) (*World, error) {
	if lvl == nil {
		return nil, fmt.Errorf("load level: level is nil")
	}
	next := &World{
		ECS:        ecs.NewWorld(),
		Level:      lvl,
		Physics:    ecssystem.NewPhysicsSystem(),
		FrobLog:    ecssystem.NewFrobLogSystem(w.logf),
		registry:   w.registry,
		classes:    w.classes,
		loadScript: w.loadScript,
		logf:       w.logf,
		objects:    map[ecs.Entity]obj.Interactable{},
	}
	next.Scripts = script.NewRuntime(script.NewScheduler(w.logf), next.scriptHost(), w.logf)

	if err := next.loadLevelScript(); err != nil {
		return nil, err
	}

	playerEnt := next.ECS.CreateEntity()
	if err := next.ECS.SetName(playerEnt, playerName); err != nil {
		return nil, fmt.Errorf("load level %s: %w", lvl.Name, err)
	}
	_ = ecs.Add(next.ECS, playerEnt, component.PlayerTagKind, &component.PlayerTag{})
	next.Player = obj.NewPlayer(next.ECS, playerEnt, next.Object, next.Scripts, w.logf)

	for _, ent := range lvl.Entities {
		if err := next.spawn(ent); err != nil {
			return nil, fmt.Errorf("load level %s: %w", lvl.Name, err)
		}
	}

	next.ECS.AddSystem(ecs.NewScheduler(
		next.Scripts.Scheduler(),
		next.Physics,
		next.FrobLog,
	))
	next.Physics.Sync(next.ECS)
	return next, nil
}

// adopt takes over a built level. The script host and player stay bound to
// next, whose fields match w's until the following Load replaces them all.
func (w *World) adopt(next *World) {
	*w = *next
}

func (w *World) loadLevelScript() error {
	name := strings.TrimSpace(w.Level.Script)
	if name == "" {
		return nil
	}
	src, err := w.loadScript(name)
	if err != nil {
		return fmt.Errorf("load level %s: script %s: %w", w.Level.Name, name, err)
	}
	if err := w.Scripts.Load(name, src); err != nil {
		return fmt.Errorf("load level %s: %w", w.Level.Name, err)
	}
	return nil
}

// ReloadScript recompiles the level script. A failed reload keeps the old
// program running.
func (w *World) ReloadScript() error {
	return w.loadLevelScript()
}

// ReloadClasses respawns the level under new class defaults and carries the
// saved state of every interactable across. On error w keeps its old classes
// and level state.
func (w *World) ReloadClasses(classes *prefabs.Classes) error {
	var buf bytes.Buffer
	if err := w.Save(&buf); err != nil {
		return fmt.Errorf("reload classes: %w", err)
	}
	prev := w.classes
	w.classes = classes
	if err := w.Restore(&buf); err != nil {
		w.classes = prev
		return fmt.Errorf("reload classes: %w", err)
	}
	return nil
}

func (w *World) spawn(ent levels.Entity) error {
	args := prefabs.ArgsFromMap(ent.Args)
	if w.classes.Has(ent.Class) {
		defaults, err := w.classes.Defaults(ent.Class)
		if err != nil {
			return err
		}
		args = defaults.Merge(args)
	}

	e := w.ECS.CreateEntity()
	if err := w.ECS.SetName(e, ent.Name); err != nil {
		return err
	}
	_ = ecs.Add(w.ECS, e, component.TransformKind, &component.Transform{X: ent.X, Y: ent.Y})
	body := &component.PhysicsBody{
		Width:  args.GetFloat("width", defaultSize),
		Height: args.GetFloat("height", defaultSize),
	}
	_ = ecs.Add(w.ECS, e, component.PhysicsBodyKind, body)

	o, ok := w.registry.New(ent.Class)
	if !ok {
		// Plain props: nothing else will apply their solidity.
		body.Solid = args.GetBool(obj.ArgSolid, false)
		return nil
	}
	ctx := &obj.SpawnContext{
		Entity:     e,
		Name:       ent.Name,
		Args:       args,
		Directory:  obj.WorldDirectory{World: w.ECS},
		Scripts:    w.Scripts,
		Physics:    obj.BodyPhysics{World: w.ECS, Entity: e},
		Controller: w.Player,
		Logf:       w.logf,
	}
	if err := o.Spawn(ctx); err != nil {
		return err
	}
	_ = ecs.Add(w.ECS, e, component.PersistentKind, &component.Persistent{Class: ent.Class, Order: len(w.objects)})
	w.objects[e] = o
	return nil
}

// Object returns the interactable attached to e.
func (w *World) Object(e ecs.Entity) (obj.Interactable, bool) {
	o, ok := w.objects[e]
	return o, ok
}

// ObjectNamed returns the interactable bound to name.
func (w *World) ObjectNamed(name string) (obj.Interactable, bool) {
	e, ok := w.ECS.FindByName(name)
	if !ok {
		return nil, false
	}
	return w.Object(e)
}

// Frob has the player activate the named entity.
func (w *World) Frob(name string) bool {
	return w.Player.FrobNamed(name)
}

// FrobAt has the player activate whatever visible volume is at (x, y).
func (w *World) FrobAt(x, y float64) bool {
	w.Physics.Sync(w.ECS)
	e, ok := w.Physics.EntityAt(x, y, frobDistance)
	if !ok {
		return false
	}
	return w.Player.Frob(e)
}

// Step advances the simulation by n ticks.
func (w *World) Step(n int) {
	for i := 0; i < n; i++ {
		w.ECS.Update()
	}
}

func (w *World) scriptHost() script.Host {
	return script.Host{
		"hide": func(args ...any) (any, error) {
			return w.setHidden(args, true), nil
		},
		"show": func(args ...any) (any, error) {
			return w.setHidden(args, false), nil
		},
		"frob": func(args ...any) (any, error) {
			if len(args) < 1 {
				return false, nil
			}
			name, _ := args[0].(string)
			return w.Frob(name), nil
		},
		"say": func(args ...any) (any, error) {
			parts := make([]string, 0, len(args))
			for _, a := range args {
				parts = append(parts, fmt.Sprint(a))
			}
			w.logf.Printf("script: say: %s", strings.Join(parts, " "))
			return nil, nil
		},
	}
}

func (w *World) setHidden(args []any, hidden bool) bool {
	if len(args) < 1 {
		return false
	}
	name, _ := args[0].(string)
	e, ok := w.ECS.FindByName(name)
	if !ok {
		return false
	}
	if hidden {
		w.ECS.Hide(e)
	} else {
		w.ECS.Show(e)
	}
	return true
}
