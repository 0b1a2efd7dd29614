// Command frobsim runs a level headless: it frobs a sequence of entities,
// steps the scheduler, and can save or restore the result in a slot.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/milk9111/frobworld/levels"
	"github.com/milk9111/frobworld/prefabs"
	"github.com/milk9111/frobworld/savegame"
	"github.com/milk9111/frobworld/script"
	"github.com/milk9111/frobworld/system"
)

const classesFile = "classes.yaml"

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg Config) error {
	prefabs.Dir = cfg.PrefabDir
	levels.Dir = cfg.LevelDir

	var store *savegame.Store
	if cfg.ListSlots || cfg.SaveSlot != "" || cfg.LoadSlot != "" {
		s, err := savegame.Open(cfg.SaveDB)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	}

	if cfg.ListSlots {
		return listSlots(ctx, store)
	}

	classes, err := prefabs.LoadClasses(classesFile)
	if err != nil {
		return err
	}
	lvl, err := levels.LoadLevel(cfg.Level)
	if err != nil {
		return err
	}
	world, err := system.NewWorld(lvl, system.Options{
		Classes: classes,
		Logf:    log.Printf,
	})
	if err != nil {
		return err
	}

	if cfg.LoadSlot != "" {
		slot, err := store.Get(ctx, cfg.LoadSlot)
		if err != nil {
			return err
		}
		if err := world.Restore(bytes.NewReader(slot.Data)); err != nil {
			return fmt.Errorf("restore slot %s: %w", cfg.LoadSlot, err)
		}
		log.Printf("frobsim: restored slot %s (level %s, tick %d)", slot.Name, slot.Level, slot.Tick)
	}

	for _, name := range cfg.Frobs {
		if !world.Frob(name) {
			log.Printf("frobsim: nothing to frob at %q", name)
		}
		world.Step(cfg.Ticks)
	}
	if len(cfg.Frobs) == 0 {
		world.Step(cfg.Ticks)
	}

	if cfg.SaveSlot != "" {
		var buf bytes.Buffer
		if err := world.Save(&buf); err != nil {
			return fmt.Errorf("save slot %s: %w", cfg.SaveSlot, err)
		}
		err := store.Put(ctx, savegame.Slot{
			Name:  cfg.SaveSlot,
			Level: world.Level.Name,
			Tick:  world.ECS.Tick(),
			Data:  buf.Bytes(),
		})
		if err != nil {
			return err
		}
		log.Printf("frobsim: saved slot %s (%d bytes)", cfg.SaveSlot, buf.Len())
	}

	if cfg.Watch {
		return watch(ctx, cfg, world)
	}
	return nil
}

func listSlots(ctx context.Context, store *savegame.Store) error {
	slots, err := store.List(ctx)
	if err != nil {
		return err
	}
	for _, s := range slots {
		fmt.Printf("%-16s %-12s tick=%-6d %s\n", s.Name, s.Level, s.Tick, s.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}

// watch reloads the level script and class defaults on change and keeps
// ticking until ctx ends.
func watch(ctx context.Context, cfg Config, world *system.World) error {
	scriptDir := filepath.Join(cfg.PrefabDir, "scripts")
	w, err := prefabs.NewWatcher(cfg.WatchDelay, cfg.PrefabDir, scriptDir)
	if err != nil {
		return err
	}
	defer w.Close()

	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	log.Printf("frobsim: watching %s and %s", cfg.PrefabDir, scriptDir)
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case change := <-w.Events:
			if err := applyChange(world, change); err != nil {
				log.Printf("frobsim: reload %s: %v", change.Path, err)
			}
		case err := <-w.Errors:
			log.Printf("frobsim: watch: %v", err)
		case <-ticker.C:
			world.Step(1)
		}
	}
}

// applyChange reloads whatever a watched file feeds: the level script or the
// class defaults. Other files are ignored.
func applyChange(world *system.World, change prefabs.Change) error {
	switch change.Kind {
	case prefabs.ChangeScript:
		if !script.IsScriptFile(change.Path) || filepath.Base(change.Path) != filepath.Base(world.Level.Script) {
			return nil
		}
		return world.ReloadScript()
	case prefabs.ChangeSpec:
		if filepath.Base(change.Path) != classesFile {
			return nil
		}
		classes, err := prefabs.LoadClasses(classesFile)
		if err != nil {
			return err
		}
		if err := world.ReloadClasses(classes); err != nil {
			return err
		}
		log.Printf("frobsim: reloaded %s", classesFile)
	}
	return nil
}
