package script

import (
	"fmt"
	"sort"

	"github.com/Shopify/go-lua"
)

// LuaProgram runs functions of a Lua script sharing one interpreter state.
type LuaProgram struct {
	name  string
	state *lua.State
	funcs map[string]bool
}

type luaFunction struct {
	program *LuaProgram
	name    string
}

// LoadLua executes src once and records the global functions it defined.
func LoadLua(name string, src []byte, host Host) (*LuaProgram, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	for hostName, fn := range host {
		state.Register(hostName, luaHostFunction(fn))
	}

	baseline := luaGlobalFunctions(state)
	if err := lua.DoString(state, string(src)); err != nil {
		return nil, fmt.Errorf("script: run %s: %w", name, err)
	}

	funcs := map[string]bool{}
	for global := range luaGlobalFunctions(state) {
		if !baseline[global] {
			funcs[global] = true
		}
	}
	return &LuaProgram{name: name, state: state, funcs: funcs}, nil
}

func luaGlobalFunctions(state *lua.State) map[string]bool {
	out := map[string]bool{}
	state.PushGlobalTable()
	state.PushNil()
	for state.Next(-2) {
		// ToString on a non-string key would corrupt the traversal.
		if state.TypeOf(-2) == lua.TypeString && state.IsFunction(-1) {
			key, _ := state.ToString(-2)
			out[key] = true
		}
		state.Pop(1)
	}
	state.Pop(1)
	return out
}

func (p *LuaProgram) Resolve(name string) (Function, bool) {
	if p == nil || name == "" || !p.funcs[name] {
		return nil, false
	}
	return &luaFunction{program: p, name: name}, true
}

func (p *LuaProgram) Functions() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.funcs))
	for name := range p.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *luaFunction) Name() string { return f.name }

func (f *luaFunction) Call(args ...any) error {
	state := f.program.state
	state.Global(f.name)
	if !state.IsFunction(-1) {
		state.Pop(1)
		return fmt.Errorf("script: %s: %s is no longer a function", f.program.name, f.name)
	}
	for _, arg := range args {
		pushLuaValue(state, arg)
	}
	if err := state.ProtectedCall(len(args), 0, 0); err != nil {
		return fmt.Errorf("script: %s: %s: %w", f.program.name, f.name, err)
	}
	return nil
}

func luaHostFunction(fn HostFunc) lua.Function {
	return func(state *lua.State) int {
		n := state.Top()
		args := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			args = append(args, luaValue(state, i))
		}
		out, err := fn(args...)
		if err != nil {
			lua.Errorf(state, "%s", err.Error())
			return 0
		}
		if out == nil {
			return 0
		}
		pushLuaValue(state, out)
		return 1
	}
}

func luaValue(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		s, _ := state.ToString(index)
		return s
	case lua.TypeNumber:
		n, _ := state.ToNumber(index)
		return n
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	default:
		return nil
	}
}

func pushLuaValue(state *lua.State, v any) {
	switch val := v.(type) {
	case nil:
		state.PushNil()
	case string:
		state.PushString(val)
	case bool:
		state.PushBoolean(val)
	case int:
		state.PushInteger(val)
	case float64:
		state.PushNumber(val)
	default:
		state.PushString(fmt.Sprint(val))
	}
}
