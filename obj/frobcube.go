package obj

import (
	"fmt"

	"github.com/milk9111/frobworld/common"
	"github.com/milk9111/frobworld/ecs"
	"github.com/milk9111/frobworld/prefabs"
	"github.com/milk9111/frobworld/savegame"
)

// Spawn arg keys read by the frob cube.
const (
	ArgSolid    = "solid"
	ArgUseOnce  = "useonce"
	ArgFuncName = "funcName"
	ArgOwner    = "owner"
	ArgHideName = "hidename"
	ArgCall     = "call"
	ArgGettable = "gettable"
)

// FrobCubeConfig is the typed form of a frob cube's spawn args.
type FrobCubeConfig struct {
	// FunctionName is passed to the owner as a hint; the cube never runs it.
	FunctionName string
	OwnerName    string
	HideName     string
	// CallName is the script the cube itself runs on activation.
	CallName string
	UseOnce  bool
	Gettable bool
	Solid    bool
}

// ResolveFrobCubeConfig reads args into a config. It never fails; the
// returned keys are optional args that were expected but missing, for the
// caller to report.
func ResolveFrobCubeConfig(args prefabs.Args) (FrobCubeConfig, []string) {
	var missing []string
	cfg := FrobCubeConfig{
		Solid:    args.GetBool(ArgSolid, false),
		UseOnce:  args.GetBool(ArgUseOnce, false),
		Gettable: args.GetBool(ArgGettable, false),
	}

	var ok bool
	if cfg.FunctionName, ok = args.GetString(ArgFuncName); !ok {
		missing = append(missing, ArgFuncName)
	}
	if cfg.OwnerName, ok = args.GetString(ArgOwner); !ok {
		missing = append(missing, ArgOwner)
	}
	cfg.HideName, _ = args.GetString(ArgHideName)
	cfg.CallName, _ = args.GetString(ArgCall)
	return cfg, missing
}

// FrobState is the one-shot state of a frob cube.
type FrobState int

const (
	FrobFresh FrobState = iota
	FrobFired
)

func (s FrobState) String() string {
	if s == FrobFired {
		return "fired"
	}
	return "fresh"
}

// FrobCube is an interactive trigger volume. Activating it may hide another
// entity, start a script, and forward the activation to an owner entity
// through the controller.
type FrobCube struct {
	cfg  FrobCubeConfig
	used bool

	name    string
	dir     Directory
	scripts Scripts
	ctrl    Controller
	logf    common.Logf
}

func (f *FrobCube) Spawn(ctx *SpawnContext) error {
	if err := ctx.require(ClassFrobCube); err != nil {
		return err
	}
	f.name = ctx.Name
	f.dir = ctx.Directory
	f.scripts = ctx.Scripts
	f.ctrl = ctx.Controller
	f.logf = ctx.Logf
	f.used = false

	var missing []string
	f.cfg, missing = ResolveFrobCubeConfig(ctx.Args)
	if f.cfg.Solid {
		ctx.Physics.SetSolid(true)
	}
	if len(missing) > 0 {
		origin := ctx.Physics.Origin()
		for _, key := range missing {
			f.logf.Printf("frobcube: '%s' at (%.0f %.0f): cannot find %s.", f.name, origin.X, origin.Y, key)
		}
	}
	return nil
}

// OnActivate runs one activation. Steps always happen in this order: hide,
// script, gettable cut-off, owner forwarding. Lookups that fail skip their
// step silently.
func (f *FrobCube) OnActivate(_ ecs.Entity) {
	if f.cfg.HideName != "" {
		if ent, ok := f.dir.FindEntityByName(f.cfg.HideName); ok {
			f.dir.Hide(ent)
		}
	}

	if f.cfg.CallName != "" {
		fn, ok := f.scripts.Resolve(f.cfg.CallName)
		if ok && (!f.used || !f.cfg.UseOnce) {
			// Mark before scheduling so a re-entrant activation in the same
			// tick sees the cube as fired.
			if f.cfg.UseOnce {
				f.used = true
			}
			f.scripts.ScheduleAsync(fn, 0)
		}
	}

	if f.cfg.Gettable {
		return
	}

	if f.cfg.OwnerName == "" {
		return
	}
	owner, ok := f.dir.FindEntityByName(f.cfg.OwnerName)
	if !ok {
		return
	}
	f.ctrl.UseFrob(owner, f.cfg.FunctionName)
}

// Save writes the function name then the owner name. Nothing else is
// persisted, so a restored one-shot cube starts fresh.
func (f *FrobCube) Save(w *savegame.Writer) error {
	if err := w.WriteString(f.cfg.FunctionName); err != nil {
		return fmt.Errorf("frobcube %q: save function name: %w", f.name, err)
	}
	if err := w.WriteString(f.cfg.OwnerName); err != nil {
		return fmt.Errorf("frobcube %q: save owner name: %w", f.name, err)
	}
	return nil
}

func (f *FrobCube) Restore(r *savegame.Reader) error {
	fn, err := r.ReadString()
	if err != nil {
		return fmt.Errorf("frobcube %q: restore function name: %w", f.name, err)
	}
	owner, err := r.ReadString()
	if err != nil {
		return fmt.Errorf("frobcube %q: restore owner name: %w", f.name, err)
	}
	f.cfg.FunctionName = fn
	f.cfg.OwnerName = owner
	return nil
}

func (f *FrobCube) Config() FrobCubeConfig { return f.cfg }

func (f *FrobCube) State() FrobState {
	if f.used {
		return FrobFired
	}
	return FrobFresh
}
