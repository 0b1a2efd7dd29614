package prefabs

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownClass     = errors.New("prefabs: unknown class")
	ErrInheritanceCycle = errors.New("prefabs: class inheritance cycle")
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// ClassSpec is an entity class definition: default spawn args, optionally
// inherited from another class.
type ClassSpec struct {
	Inherit string         `yaml:"inherit"`
	Args    map[string]any `yaml:"args"`
}

type ClassesSpec struct {
	Classes map[string]ClassSpec `yaml:"classes"`
}

// Classes resolves class defaults with inheritance.
type Classes struct {
	specs map[string]ClassSpec
}

func LoadClasses(filename string) (*Classes, error) {
	spec, err := LoadSpec[ClassesSpec](filename)
	if err != nil {
		return nil, err
	}
	return NewClasses(spec), nil
}

func NewClasses(spec ClassesSpec) *Classes {
	specs := make(map[string]ClassSpec, len(spec.Classes))
	for name, c := range spec.Classes {
		specs[strings.TrimSpace(name)] = c
	}
	return &Classes{specs: specs}
}

// Has reports whether class is defined.
func (c *Classes) Has(class string) bool {
	if c == nil {
		return false
	}
	_, ok := c.specs[class]
	return ok
}

// Defaults returns the merged default args for class, parents first.
func (c *Classes) Defaults(class string) (Args, error) {
	if c == nil {
		return Args{}, nil
	}
	var chain []ClassSpec
	seen := map[string]bool{}
	for name := class; name != ""; {
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrInheritanceCycle, class)
		}
		seen[name] = true
		spec, ok := c.specs[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownClass, name)
		}
		chain = append(chain, spec)
		name = strings.TrimSpace(spec.Inherit)
	}

	out := Args{}
	for i := len(chain) - 1; i >= 0; i-- {
		out = out.Merge(ArgsFromMap(chain[i].Args))
	}
	return out, nil
}
