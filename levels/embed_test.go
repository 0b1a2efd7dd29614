package levels

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name: "ok",
			data: `
script: frob.lua
entities:
  - {class: func_frobcube, name: switch, x: 1, y: 2, args: {owner: door}}
  - {class: func_gate, name: door}
`,
		},
		{name: "missing_class", data: "entities:\n  - {name: switch}\n", wantErr: "no class"},
		{name: "missing_name", data: "entities:\n  - {class: func_gate}\n", wantErr: "no name"},
		{name: "duplicate_name", data: "entities:\n  - {class: func_gate, name: a}\n  - {class: func_gate, name: a}\n", wantErr: "duplicate"},
		{name: "bad_yaml", data: "entities: [", wantErr: "unmarshal"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			lvl, err := ParseLevel("test.yaml", []byte(c.data))
			if c.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), c.wantErr) {
					t.Fatalf("expected error containing %q, got %v", c.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel: %v", err)
			}
			if lvl.Name != "test" {
				t.Fatalf("expected name from file, got %q", lvl.Name)
			}
			if len(lvl.Entities) != 2 || lvl.Entities[0].Args["owner"] != "door" || lvl.Entities[0].X != 1 {
				t.Fatalf("unexpected entities %+v", lvl.Entities)
			}
		})
	}
}

func TestLoadLevelFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"tiny.yaml": {Data: []byte("name: custom\nentities:\n  - {class: func_gate, name: door}\n")},
	}
	lvl, err := LoadLevelFromFS(fsys, "tiny.yaml")
	if err != nil {
		t.Fatalf("LoadLevelFromFS: %v", err)
	}
	if lvl.Name != "custom" {
		t.Fatalf("explicit name should win, got %q", lvl.Name)
	}
	if _, err := LoadLevelFromFS(fsys, "missing.yaml"); err == nil {
		t.Fatalf("expected an error for a missing level")
	}
}

func TestLoadEmbeddedVault(t *testing.T) {
	lvl, err := LoadLevel("vault")
	if err != nil {
		t.Fatalf("LoadLevel: %v", err)
	}
	if lvl.Name != "vault" || lvl.Script != "frob.tengo" {
		t.Fatalf("unexpected level header %+v", lvl)
	}
	names := map[string]bool{}
	for _, e := range lvl.Entities {
		names[e.Name] = true
	}
	for _, want := range []string{"lamp_1", "vault_door", "light_switch", "keycard", "decoration"} {
		if !names[want] {
			t.Fatalf("vault is missing %s", want)
		}
	}
}
