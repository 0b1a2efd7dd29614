package prefabs

import (
	"reflect"
	"testing"
)

func TestArgsFromMap(t *testing.T) {
	got := ArgsFromMap(map[string]any{
		"name":    "lamp",
		"solid":   true,
		"useonce": false,
		"width":   32,
		"scale":   1.5,
		"owner":   nil,
	})
	want := Args{
		"name":    "lamp",
		"solid":   "1",
		"useonce": "0",
		"width":   "32",
		"scale":   "1.5",
		"owner":   "",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestArgsGetString(t *testing.T) {
	args := Args{"owner": "vault_door", "funcName": "   ", "call": ""}
	cases := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{"owner", "vault_door", true},
		{"funcName", "", false},
		{"call", "", false},
		{"missing", "", false},
	}
	for _, c := range cases {
		t.Run(c.key, func(t *testing.T) {
			got, ok := args.GetString(c.key)
			if got != c.want || ok != c.wantOK {
				t.Fatalf("GetString(%q) = %q %v, want %q %v", c.key, got, ok, c.want, c.wantOK)
			}
		})
	}
}

func TestArgsGetBool(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"1", false, true},
		{"0", true, false},
		{"2", false, true},
		{"true", false, true},
		{"Yes", false, true},
		{"off", true, false},
		{"FALSE", true, false},
		{"", true, true},
		{"maybe", true, true},
		{"maybe", false, false},
	}
	for _, c := range cases {
		t.Run(c.value, func(t *testing.T) {
			args := Args{"solid": c.value}
			if got := args.GetBool("solid", c.def); got != c.want {
				t.Fatalf("GetBool(%q, %v) = %v, want %v", c.value, c.def, got, c.want)
			}
		})
	}

	if !(Args{}).GetBool("missing", true) {
		t.Fatalf("missing key should return the default")
	}
}

func TestArgsGetFloat(t *testing.T) {
	args := Args{"width": "48", "height": "tall"}
	if got := args.GetFloat("width", 32); got != 48 {
		t.Fatalf("expected 48, got %v", got)
	}
	if got := args.GetFloat("height", 32); got != 32 {
		t.Fatalf("unparseable value should return the default, got %v", got)
	}
	if got := args.GetFloat("depth", 8); got != 8 {
		t.Fatalf("missing value should return the default, got %v", got)
	}
}

func TestArgsMerge(t *testing.T) {
	base := Args{"solid": "0", "width": "32"}
	over := Args{"solid": "1", "owner": "door"}
	got := base.Merge(over)

	want := Args{"solid": "1", "width": "32", "owner": "door"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if base["solid"] != "0" {
		t.Fatalf("Merge must not modify the receiver")
	}
	if keys := got.Keys(); !reflect.DeepEqual(keys, []string{"owner", "solid", "width"}) {
		t.Fatalf("unexpected keys %v", keys)
	}
}
