// Package obj holds the interactable world objects and the player controller
// that drives them.
package obj

import (
	"errors"
	"fmt"
	"sort"

	"github.com/milk9111/frobworld/common"
	"github.com/milk9111/frobworld/ecs"
	"github.com/milk9111/frobworld/prefabs"
	"github.com/milk9111/frobworld/savegame"
)

var ErrMissingCollaborator = errors.New("obj: missing collaborator")

const (
	ClassFrobCube = "func_frobcube"
	ClassGate     = "func_gate"
)

// Interactable is implemented by every object the player can frob. The
// simulation drives all variants through this interface.
type Interactable interface {
	Spawn(ctx *SpawnContext) error
	Save(w *savegame.Writer) error
	Restore(r *savegame.Reader) error
	OnActivate(activator ecs.Entity)
}

// SpawnContext carries everything an object may keep hold of after spawn.
type SpawnContext struct {
	Entity     ecs.Entity
	Name       string
	Args       prefabs.Args
	Directory  Directory
	Scripts    Scripts
	Physics    Physics
	Controller Controller
	Logf       common.Logf
}

func (ctx *SpawnContext) require(class string) error {
	switch {
	case ctx == nil:
		return fmt.Errorf("%s: %w: spawn context", class, ErrMissingCollaborator)
	case ctx.Directory == nil:
		return fmt.Errorf("%s %q: %w: directory", class, ctx.Name, ErrMissingCollaborator)
	case ctx.Scripts == nil:
		return fmt.Errorf("%s %q: %w: scripts", class, ctx.Name, ErrMissingCollaborator)
	case ctx.Physics == nil:
		return fmt.Errorf("%s %q: %w: physics", class, ctx.Name, ErrMissingCollaborator)
	case ctx.Controller == nil:
		return fmt.Errorf("%s %q: %w: controller", class, ctx.Name, ErrMissingCollaborator)
	}
	return nil
}

// Factory builds an unspawned object.
type Factory func() Interactable

// Registry maps entity classes to factories.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// DefaultRegistry knows every class in this package.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ClassFrobCube, func() Interactable { return &FrobCube{} })
	r.Register(ClassGate, func() Interactable { return &Gate{} })
	return r
}

func (r *Registry) Register(class string, f Factory) {
	if r == nil || class == "" || f == nil {
		return
	}
	r.factories[class] = f
}

// New returns a fresh object for class, or false when class is not
// interactable.
func (r *Registry) New(class string) (Interactable, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.factories[class]
	if !ok {
		return nil, false
	}
	return f(), true
}

func (r *Registry) Classes() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.factories))
	for class := range r.factories {
		out = append(out, class)
	}
	sort.Strings(out)
	return out
}
