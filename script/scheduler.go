package script

import (
	"sort"

	"github.com/milk9111/frobworld/common"
	"github.com/milk9111/frobworld/ecs"
)

type task struct {
	fn   Function
	args []any
	due  uint64
	seq  uint64
}

// Scheduler is a cooperative, tick-driven queue of script calls. Nothing runs
// concurrently: due tasks execute inside Advance on the simulation goroutine.
type Scheduler struct {
	now   uint64
	seq   uint64
	tasks []task
	Logf  common.Logf
}

func NewScheduler(logf common.Logf) *Scheduler {
	return &Scheduler{Logf: logf}
}

// Schedule queues fn to run delay ticks after the next tick. A zero delay runs
// it on the next tick, never inside the current one.
func (s *Scheduler) Schedule(fn Function, delay int, args ...any) {
	if s == nil || fn == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}
	s.seq++
	s.tasks = append(s.tasks, task{
		fn:   fn,
		args: args,
		due:  s.now + 1 + uint64(delay),
		seq:  s.seq,
	})
}

// Advance moves the clock to tick and runs every task due at or before it, in
// due-then-submission order. Tasks scheduled by a running task are deferred
// to a later tick. Errors are logged and the task is dropped.
func (s *Scheduler) Advance(tick uint64) {
	if s == nil {
		return
	}
	if tick > s.now {
		s.now = tick
	}

	var due, later []task
	for _, t := range s.tasks {
		if t.due <= s.now {
			due = append(due, t)
		} else {
			later = append(later, t)
		}
	}
	if len(due) == 0 {
		return
	}
	s.tasks = later

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		if err := t.fn.Call(t.args...); err != nil {
			s.Logf.Printf("script: tick=%d %s failed: %v", s.now, t.fn.Name(), err)
		}
	}
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	if s == nil {
		return 0
	}
	return len(s.tasks)
}

// Now returns the last tick passed to Advance.
func (s *Scheduler) Now() uint64 {
	if s == nil {
		return 0
	}
	return s.now
}

// Update implements ecs.System.
func (s *Scheduler) Update(w *ecs.World) {
	s.Advance(w.Tick())
}
