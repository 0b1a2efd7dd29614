package system

import (
	"fmt"
	"io"
	"sort"

	"github.com/milk9111/frobworld/ecs"
	"github.com/milk9111/frobworld/ecs/component"
	"github.com/milk9111/frobworld/levels"
	"github.com/milk9111/frobworld/savegame"
)

type persisted struct {
	entity ecs.Entity
	class  string
	name   string
	order  int
}

// persistedObjects lists interactables in spawn order.
func (w *World) persistedObjects() []persisted {
	var out []persisted
	ecs.ForEach(w.ECS, component.PersistentKind, func(e ecs.Entity, p *component.Persistent) {
		name, _ := w.ECS.Name(e)
		out = append(out, persisted{entity: e, class: p.Class, name: name, order: p.Order})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].order < out[j].order })
	return out
}

// Save writes the level name, the hidden entities, then every interactable
// in spawn order, each prefixed with its class and name.
func (w *World) Save(out io.Writer) error {
	sw := savegame.NewWriter(out)
	if err := sw.WriteHeader(); err != nil {
		return err
	}
	if err := sw.WriteString(w.Level.Name); err != nil {
		return err
	}

	hidden := w.hiddenNames()
	if err := sw.WriteUint(uint64(len(hidden))); err != nil {
		return err
	}
	for _, name := range hidden {
		if err := sw.WriteString(name); err != nil {
			return err
		}
	}

	objects := w.persistedObjects()
	if err := sw.WriteUint(uint64(len(objects))); err != nil {
		return err
	}
	for _, p := range objects {
		if err := sw.WriteString(p.class); err != nil {
			return err
		}
		if err := sw.WriteString(p.name); err != nil {
			return err
		}
		if err := w.objects[p.entity].Save(sw); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// Restore respawns the saved level from its source and then reads each
// interactable's saved state back over the fresh objects. Pending script
// calls are not part of a save and are dropped. The restore runs against a
// separate world; w only changes once the whole save has been read.
func (w *World) Restore(in io.Reader) error {
	sr := savegame.NewReader(in)
	if _, err := sr.ReadHeader(); err != nil {
		return err
	}
	levelName, err := sr.ReadString()
	if err != nil {
		return err
	}

	lvl := w.Level
	if lvl == nil || lvl.Name != levelName {
		if lvl, err = levels.LoadLevel(levelName); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
	}
	next, err := w.build(lvl)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if err := next.readState(sr); err != nil {
		return err
	}
	w.adopt(next)
	return nil
}

func (w *World) readState(sr *savegame.Reader) error {
	hiddenCount, err := sr.ReadUint()
	if err != nil {
		return err
	}
	for i := uint64(0); i < hiddenCount; i++ {
		name, err := sr.ReadString()
		if err != nil {
			return err
		}
		if e, ok := w.ECS.FindByName(name); ok {
			w.ECS.Hide(e)
		}
	}

	objects := w.persistedObjects()
	count, err := sr.ReadUint()
	if err != nil {
		return err
	}
	if count != uint64(len(objects)) {
		return fmt.Errorf("%w: save has %d objects, level %s has %d", savegame.ErrCorrupt, count, w.Level.Name, len(objects))
	}
	for _, p := range objects {
		class, err := sr.ReadString()
		if err != nil {
			return err
		}
		name, err := sr.ReadString()
		if err != nil {
			return err
		}
		if class != p.class || name != p.name {
			return fmt.Errorf("%w: expected %s %q, found %s %q", savegame.ErrCorrupt, p.class, p.name, class, name)
		}
		if err := w.objects[p.entity].Restore(sr); err != nil {
			return err
		}
	}
	w.Physics.Sync(w.ECS)
	return nil
}

func (w *World) hiddenNames() []string {
	var names []string
	ecs.ForEach(w.ECS, component.HiddenKind, func(e ecs.Entity, _ *component.Hidden) {
		if name, ok := w.ECS.Name(e); ok {
			names = append(names, name)
		}
	})
	sort.Strings(names)
	return names
}
