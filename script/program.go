// Package script loads simulation scripts and runs their functions on the
// cooperative tick scheduler.
package script

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedScript = errors.New("script: unsupported script type")
	ErrNoProgram         = errors.New("script: no program loaded")
)

// Function is a resolved script function.
type Function interface {
	Name() string
	Call(args ...any) error
}

// Program is one compiled script unit.
type Program interface {
	// Resolve looks up a top-level function by name.
	Resolve(name string) (Function, bool)
	// Functions lists the names Resolve would accept, sorted.
	Functions() []string
}

// HostFunc is a Go function exposed to scripts as a global.
type HostFunc func(args ...any) (any, error)

// Host is the set of globals injected into every program.
type Host map[string]HostFunc

// LoadSource compiles src, picking the backend from name's extension.
func LoadSource(name string, src []byte, host Host) (Program, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tengo":
		return LoadTengo(name, src, host)
	case ".lua":
		return LoadLua(name, src, host)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScript, name)
	}
}

// IsScriptFile reports whether path has an extension LoadSource understands.
func IsScriptFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".tengo" || ext == ".lua"
}
