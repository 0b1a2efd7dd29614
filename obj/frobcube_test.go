package obj

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/milk9111/frobworld/ecs"
	"github.com/milk9111/frobworld/prefabs"
	"github.com/milk9111/frobworld/savegame"
)

const (
	door ecs.Entity = 7
	lamp ecs.Entity = 8
)

func spawnCube(t *testing.T, h *harness, args prefabs.Args) *FrobCube {
	t.Helper()
	cube := &FrobCube{}
	if err := cube.Spawn(h.context(ClassFrobCube, "cube", args)); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	h.reset()
	return cube
}

func TestResolveFrobCubeConfig(t *testing.T) {
	cases := []struct {
		name        string
		args        prefabs.Args
		want        FrobCubeConfig
		wantMissing []string
	}{
		{
			name:        "empty",
			args:        prefabs.Args{},
			want:        FrobCubeConfig{},
			wantMissing: []string{ArgFuncName, ArgOwner},
		},
		{
			name: "full",
			args: prefabs.Args{
				ArgSolid: "1", ArgUseOnce: "true", ArgGettable: "0",
				ArgFuncName: "vault_opened", ArgOwner: "vault_door",
				ArgHideName: "lamp_1", ArgCall: "lights_out",
			},
			want: FrobCubeConfig{
				FunctionName: "vault_opened", OwnerName: "vault_door",
				HideName: "lamp_1", CallName: "lights_out",
				UseOnce: true, Solid: true,
			},
		},
		{
			name:        "blank_counts_as_missing",
			args:        prefabs.Args{ArgFuncName: " ", ArgOwner: "vault_door"},
			want:        FrobCubeConfig{OwnerName: "vault_door"},
			wantMissing: []string{ArgFuncName},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, missing := ResolveFrobCubeConfig(c.args)
			if got != c.want {
				t.Fatalf("expected %+v, got %+v", c.want, got)
			}
			if !reflect.DeepEqual(missing, c.wantMissing) {
				t.Fatalf("expected missing %v, got %v", c.wantMissing, missing)
			}
		})
	}
}

func TestFrobCubeSpawn(t *testing.T) {
	t.Run("diagnostics_for_missing_keys", func(t *testing.T) {
		h := newHarness(nil)
		cube := &FrobCube{}
		if err := cube.Spawn(h.context(ClassFrobCube, "decoration", prefabs.Args{})); err != nil {
			t.Fatalf("Spawn: %v", err)
		}
		want := []string{
			"frobcube: 'decoration' at (64 32): cannot find funcName.",
			"frobcube: 'decoration' at (64 32): cannot find owner.",
		}
		if !reflect.DeepEqual(h.logged, want) {
			t.Fatalf("expected diagnostics %v, got %v", want, h.logged)
		}
		if len(h.log.calls) != 0 {
			t.Fatalf("non-solid spawn should not touch collaborators: %s", h.log)
		}
	})

	t.Run("solid_applied_once", func(t *testing.T) {
		h := newHarness(nil)
		cube := &FrobCube{}
		args := prefabs.Args{ArgSolid: "1", ArgFuncName: "f", ArgOwner: "o"}
		if err := cube.Spawn(h.context(ClassFrobCube, "crate", args)); err != nil {
			t.Fatalf("Spawn: %v", err)
		}
		if got := h.log.String(); got != "solid true" {
			t.Fatalf("expected a single SetSolid(true), got %q", got)
		}
		if len(h.logged) != 0 {
			t.Fatalf("unexpected diagnostics %v", h.logged)
		}
	})

	t.Run("missing_collaborator", func(t *testing.T) {
		h := newHarness(nil)
		ctx := h.context(ClassFrobCube, "cube", prefabs.Args{})
		ctx.Scripts = nil
		if err := (&FrobCube{}).Spawn(ctx); !errors.Is(err, ErrMissingCollaborator) {
			t.Fatalf("expected ErrMissingCollaborator, got %v", err)
		}
	})
}

func TestFrobCubeActivation(t *testing.T) {
	names := map[string]ecs.Entity{"Door1": door, "Lamp1": lamp}

	cases := []struct {
		name    string
		args    prefabs.Args
		scripts []string
		first   []string
		second  []string
	}{
		{
			name:    "scenario_a_oneshot_then_forward",
			args:    prefabs.Args{ArgUseOnce: "1", ArgCall: "S1", ArgOwner: "Door1", ArgFuncName: "hint"},
			scripts: []string{"S1"},
			first:   []string{"resolve S1", "schedule S1 delay=0 args=[]", "find Door1", `usefrob 7 "hint"`},
			second:  []string{"resolve S1", "find Door1", `usefrob 7 "hint"`},
		},
		{
			name:   "scenario_b_gettable_never_forwards",
			args:   prefabs.Args{ArgGettable: "1", ArgOwner: "Door1"},
			first:  nil,
			second: nil,
		},
		{
			name:   "scenario_c_missing_hide_target",
			args:   prefabs.Args{ArgHideName: "Lamp2"},
			first:  []string{"find Lamp2"},
			second: []string{"find Lamp2"},
		},
		{
			name:   "hide_resolves",
			args:   prefabs.Args{ArgHideName: "Lamp1"},
			first:  []string{"find Lamp1", "hide 8"},
			second: []string{"find Lamp1", "hide 8"},
		},
		{
			name:    "reusable_script_runs_every_time",
			args:    prefabs.Args{ArgCall: "S1"},
			scripts: []string{"S1"},
			first:   []string{"resolve S1", "schedule S1 delay=0 args=[]"},
			second:  []string{"resolve S1", "schedule S1 delay=0 args=[]"},
		},
		{
			name:   "unresolved_script_continues_to_owner",
			args:   prefabs.Args{ArgUseOnce: "1", ArgCall: "nope", ArgOwner: "Door1"},
			first:  []string{"resolve nope", "find Door1", `usefrob 7 ""`},
			second: []string{"resolve nope", "find Door1", `usefrob 7 ""`},
		},
		{
			name:   "unresolved_owner_is_silent",
			args:   prefabs.Args{ArgOwner: "Ghost", ArgFuncName: "hint"},
			first:  []string{"find Ghost"},
			second: []string{"find Ghost"},
		},
		{
			name:    "order_hide_script_gettable",
			args:    prefabs.Args{ArgHideName: "Lamp1", ArgCall: "S1", ArgGettable: "1", ArgOwner: "Door1"},
			scripts: []string{"S1"},
			first:   []string{"find Lamp1", "hide 8", "resolve S1", "schedule S1 delay=0 args=[]"},
			second:  []string{"find Lamp1", "hide 8", "resolve S1", "schedule S1 delay=0 args=[]"},
		},
		{
			name:   "all_absent_is_a_no_op",
			args:   prefabs.Args{},
			first:  nil,
			second: nil,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness(names, c.scripts...)
			cube := spawnCube(t, h, c.args)
			before := cube.Config()

			cube.OnActivate(ecs.Entity(1))
			if !reflect.DeepEqual(h.log.calls, c.first) {
				t.Fatalf("first activation: expected %v, got %v", c.first, h.log.calls)
			}
			h.reset()
			cube.OnActivate(ecs.Entity(1))
			if !reflect.DeepEqual(h.log.calls, c.second) {
				t.Fatalf("second activation: expected %v, got %v", c.second, h.log.calls)
			}
			if cube.Config() != before {
				t.Fatalf("activation must not change the config")
			}
		})
	}
}

func TestFrobCubeOneShotState(t *testing.T) {
	h := newHarness(nil, "S1")

	cube := spawnCube(t, h, prefabs.Args{ArgUseOnce: "1", ArgCall: "S1"})
	if cube.State() != FrobFresh {
		t.Fatalf("expected fresh after spawn, got %s", cube.State())
	}
	cube.OnActivate(0)
	if cube.State() != FrobFired {
		t.Fatalf("expected fired after first activation, got %s", cube.State())
	}
	for i := 0; i < 3; i++ {
		cube.OnActivate(0)
	}
	if cube.State() != FrobFired {
		t.Fatalf("fired state must be monotonic")
	}

	scheduled := 0
	for _, call := range h.log.calls {
		if call == "schedule S1 delay=0 args=[]" {
			scheduled++
		}
	}
	if scheduled != 1 {
		t.Fatalf("one-shot script scheduled %d times", scheduled)
	}

	reusable := spawnCube(t, h, prefabs.Args{ArgCall: "S1"})
	reusable.OnActivate(0)
	if reusable.State() != FrobFresh {
		t.Fatalf("a reusable cube never reports fired, got %s", reusable.State())
	}
}

func TestFrobCubeReentrantActivation(t *testing.T) {
	cases := []struct {
		name    string
		useOnce string
		want    int
	}{
		{"one_shot", "1", 1},
		{"reusable", "0", 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness(nil, "S1")
			cube := spawnCube(t, h, prefabs.Args{ArgUseOnce: c.useOnce, ArgCall: "S1"})

			reentries := 0
			h.scripts.onSchedule = func() {
				if reentries < 3 {
					reentries++
					cube.OnActivate(0)
				}
			}
			cube.OnActivate(0)

			scheduled := 0
			for _, call := range h.log.calls {
				if call == "schedule S1 delay=0 args=[]" {
					scheduled++
				}
			}
			if scheduled != c.want {
				t.Fatalf("scheduled %d times, want %d (calls: %s)", scheduled, c.want, h.log)
			}
		})
	}
}

func saveCube(t *testing.T, cube *FrobCube) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := savegame.NewWriter(&buf)
	if err := cube.Save(w); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	return buf.Bytes()
}

func TestFrobCubeSaveRestore(t *testing.T) {
	cases := []struct {
		name  string
		args  prefabs.Args
		fn    string
		owner string
	}{
		{"both_set", prefabs.Args{ArgFuncName: "vault_opened", ArgOwner: "vault_door"}, "vault_opened", "vault_door"},
		{"both_empty", prefabs.Args{}, "", ""},
		{"owner_only", prefabs.Args{ArgOwner: "vault_door"}, "", "vault_door"},
		{"odd_bytes", prefabs.Args{ArgFuncName: "a\x00b", ArgOwner: "ü"}, "a\x00b", "ü"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness(nil)
			data := saveCube(t, spawnCube(t, h, c.args))

			// Restore into a cube spawned without the persisted keys so only
			// the save data can supply them.
			restored := spawnCube(t, h, prefabs.Args{})
			if err := restored.Restore(savegame.NewReader(bytes.NewReader(data))); err != nil {
				t.Fatalf("Restore: %v", err)
			}
			cfg := restored.Config()
			if cfg.FunctionName != c.fn || cfg.OwnerName != c.owner {
				t.Fatalf("expected (%q, %q), got (%q, %q)", c.fn, c.owner, cfg.FunctionName, cfg.OwnerName)
			}
		})
	}
}

func TestFrobCubeRestoreTruncated(t *testing.T) {
	h := newHarness(nil)
	data := saveCube(t, spawnCube(t, h, prefabs.Args{ArgFuncName: "vault_opened", ArgOwner: "vault_door"}))

	for _, n := range []int{0, 1, len(data) - 1} {
		cube := spawnCube(t, h, prefabs.Args{ArgOwner: "before"})
		err := cube.Restore(savegame.NewReader(bytes.NewReader(data[:n])))
		if !errors.Is(err, savegame.ErrCorrupt) {
			t.Fatalf("truncated at %d: expected ErrCorrupt, got %v", n, err)
		}
		if cube.Config().OwnerName != "before" {
			t.Fatalf("failed restore must leave the cube untouched")
		}
	}
}

func TestFrobCubeRestoreDoesNotPersistFired(t *testing.T) {
	names := map[string]ecs.Entity{"Door1": door}
	args := prefabs.Args{ArgUseOnce: "1", ArgCall: "S1", ArgOwner: "Door1"}

	h := newHarness(names, "S1")
	cube := spawnCube(t, h, args)
	cube.OnActivate(0)
	data := saveCube(t, cube)

	t.Run("same_object_stays_fired", func(t *testing.T) {
		if err := cube.Restore(savegame.NewReader(bytes.NewReader(data))); err != nil {
			t.Fatalf("Restore: %v", err)
		}
		h.reset()
		cube.OnActivate(0)
		for _, call := range h.log.calls {
			if call == "schedule S1 delay=0 args=[]" {
				t.Fatalf("restoring in place must not re-arm the one-shot script")
			}
		}
	})

	t.Run("fresh_object_fires_again", func(t *testing.T) {
		fresh := spawnCube(t, h, args)
		if err := fresh.Restore(savegame.NewReader(bytes.NewReader(data))); err != nil {
			t.Fatalf("Restore: %v", err)
		}
		if fresh.State() != FrobFresh {
			t.Fatalf("fired flag is not saved, expected fresh, got %s", fresh.State())
		}
		fresh.OnActivate(0)
		want := []string{"resolve S1", "schedule S1 delay=0 args=[]", "find Door1", `usefrob 7 ""`}
		if !reflect.DeepEqual(h.log.calls, want) {
			t.Fatalf("expected %v, got %v", want, h.log.calls)
		}
	})
}
