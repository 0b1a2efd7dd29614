package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var LevelsFS embed.FS

// Dir is checked before the embedded levels.
var Dir = "levels"

type Level struct {
	Name     string   `yaml:"name"`
	Script   string   `yaml:"script"`
	Entities []Entity `yaml:"entities"`
}

// Entity is one placed object: its class, unique name, origin and raw spawn
// args.
type Entity struct {
	Class string         `yaml:"class"`
	Name  string         `yaml:"name"`
	X     float64        `yaml:"x"`
	Y     float64        `yaml:"y"`
	Args  map[string]any `yaml:"args,omitempty"`
}

// LoadLevel reads name from Dir, falling back to the embedded levels. A
// missing extension defaults to .yaml.
func LoadLevel(name string) (*Level, error) {
	if filepath.Ext(name) == "" {
		name += ".yaml"
	}
	if data, err := os.ReadFile(filepath.Join(Dir, name)); err == nil {
		return ParseLevel(name, data)
	}
	return LoadLevelFromFS(LevelsFS, name)
}

func LoadLevelFromFS(fsys fs.FS, name string) (*Level, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return ParseLevel(name, data)
}

// ParseLevel decodes a level and checks entity names are present and unique.
func ParseLevel(name string, data []byte) (*Level, error) {
	var lvl Level
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level %s: %w", name, err)
	}
	if lvl.Name == "" {
		lvl.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	seen := make(map[string]bool, len(lvl.Entities))
	for i, ent := range lvl.Entities {
		if strings.TrimSpace(ent.Class) == "" {
			return nil, fmt.Errorf("level %s: entity %d has no class", name, i)
		}
		if strings.TrimSpace(ent.Name) == "" {
			return nil, fmt.Errorf("level %s: entity %d (%s) has no name", name, i, ent.Class)
		}
		if seen[ent.Name] {
			return nil, fmt.Errorf("level %s: duplicate entity name %q", name, ent.Name)
		}
		seen[ent.Name] = true
	}
	return &lvl, nil
}
