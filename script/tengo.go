package script

import (
	"fmt"
	"sort"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

const (
	tengoCallVar = "__call"
	tengoArgsVar = "__args"
)

// TengoProgram runs functions of a tengo script. The script is compiled with
// a generated dispatch epilogue; calling a function sets __call/__args and
// re-runs the compiled unit, so scripts should keep top-level code free of
// side effects.
type TengoProgram struct {
	name     string
	compiled *tengo.Compiled
	arity    map[string]int
}

type tengoFunction struct {
	program *TengoProgram
	name    string
}

// LoadTengo compiles src and discovers its top-level functions.
func LoadTengo(name string, src []byte, host Host) (*TengoProgram, error) {
	scan, err := compileTengo(src, host)
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	if err := scan.Run(); err != nil {
		return nil, fmt.Errorf("script: run %s: %w", name, err)
	}

	arity := map[string]int{}
	for _, v := range scan.GetAll() {
		fn, ok := v.Object().(*tengo.CompiledFunction)
		if !ok || strings.HasPrefix(v.Name(), "__") {
			continue
		}
		if _, isHost := host[v.Name()]; isHost {
			continue
		}
		n := fn.NumParameters
		if fn.VarArgs {
			n--
		}
		arity[v.Name()] = n
	}

	full := append(append([]byte(nil), src...), []byte(tengoDispatch(arity))...)
	compiled, err := compileTengo(full, host)
	if err != nil {
		return nil, fmt.Errorf("script: compile %s dispatch: %w", name, err)
	}

	return &TengoProgram{name: name, compiled: compiled, arity: arity}, nil
}

func compileTengo(src []byte, host Host) (*tengo.Compiled, error) {
	s := tengo.NewScript(src)
	_ = s.Add(tengoCallVar, "")
	_ = s.Add(tengoArgsVar, []any{})
	for name, fn := range host {
		if err := s.Add(name, tengoHostFunction(name, fn)); err != nil {
			return nil, err
		}
	}
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	return s.Compile()
}

func tengoDispatch(arity map[string]int) string {
	names := make([]string, 0, len(arity))
	for name := range arity {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("\n")
	for i, name := range names {
		if i == 0 {
			fmt.Fprintf(&b, "if %s == %q {\n", tengoCallVar, name)
		} else {
			fmt.Fprintf(&b, "} else if %s == %q {\n", tengoCallVar, name)
		}
		params := make([]string, arity[name])
		for j := range params {
			params[j] = fmt.Sprintf("%s[%d]", tengoArgsVar, j)
		}
		fmt.Fprintf(&b, "\t%s(%s)\n", name, strings.Join(params, ", "))
	}
	if len(names) > 0 {
		b.WriteString("}\n")
	}
	return b.String()
}

func (p *TengoProgram) Resolve(name string) (Function, bool) {
	if p == nil || name == "" {
		return nil, false
	}
	if _, ok := p.arity[name]; !ok {
		return nil, false
	}
	return &tengoFunction{program: p, name: name}, true
}

func (p *TengoProgram) Functions() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.arity))
	for name := range p.arity {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *tengoFunction) Name() string { return f.name }

func (f *tengoFunction) Call(args ...any) error {
	p := f.program
	padded := make([]any, p.arity[f.name])
	copy(padded, args)
	if err := p.compiled.Set(tengoCallVar, f.name); err != nil {
		return err
	}
	if err := p.compiled.Set(tengoArgsVar, padded); err != nil {
		return err
	}
	defer func() {
		_ = p.compiled.Set(tengoCallVar, "")
	}()
	if err := p.compiled.Run(); err != nil {
		return fmt.Errorf("script: %s: %s: %w", p.name, f.name, err)
	}
	return nil
}

func tengoHostFunction(name string, fn HostFunc) *tengo.UserFunction {
	return &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
		in := make([]any, 0, len(args))
		for _, arg := range args {
			in = append(in, objectToAny(arg))
		}
		out, err := fn(in...)
		if err != nil {
			return nil, err
		}
		if out == nil {
			return tengo.UndefinedValue, nil
		}
		return tengo.FromInterface(out)
	}}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
