package script

import (
	"fmt"

	"github.com/milk9111/frobworld/common"
)

// Runtime pairs the currently loaded program with the scheduler. Reloading
// swaps the program; tasks already queued keep the function they resolved.
type Runtime struct {
	program Program
	source  string
	host    Host
	sched   *Scheduler
	logf    common.Logf
}

func NewRuntime(sched *Scheduler, host Host, logf common.Logf) *Runtime {
	if sched == nil {
		sched = NewScheduler(logf)
	}
	return &Runtime{sched: sched, host: host, logf: logf}
}

// Load compiles src under name and makes it the active program. On error the
// previous program stays active.
func (r *Runtime) Load(name string, src []byte) error {
	program, err := LoadSource(name, src, r.host)
	if err != nil {
		return err
	}
	r.program = program
	r.source = name
	r.logf.Printf("script: loaded %s (%d functions)", name, len(program.Functions()))
	return nil
}

// Source returns the name of the active program.
func (r *Runtime) Source() string {
	return r.source
}

// Resolve looks a function up in the active program.
func (r *Runtime) Resolve(name string) (Function, bool) {
	if r == nil || r.program == nil {
		return nil, false
	}
	return r.program.Resolve(name)
}

// ScheduleAsync queues fn on the cooperative scheduler.
func (r *Runtime) ScheduleAsync(fn Function, delay int, args ...any) {
	r.sched.Schedule(fn, delay, args...)
}

// Scheduler returns the runtime's scheduler.
func (r *Runtime) Scheduler() *Scheduler {
	return r.sched
}

// Call resolves and runs name immediately, outside the scheduler.
func (r *Runtime) Call(name string, args ...any) error {
	if r == nil || r.program == nil {
		return ErrNoProgram
	}
	fn, ok := r.program.Resolve(name)
	if !ok {
		return fmt.Errorf("script: function %q not found in %s", name, r.source)
	}
	return fn.Call(args...)
}
