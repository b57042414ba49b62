package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/skrm/sim/hooking"
)

// CollectTrace let the tracer to collect trace from a domain.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	hooks := domain.Hooks()
	for _, hook := range hooks {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	h := traceHook{t: tracer}
	domain.AcceptHook(&h)
}

// A traceHook is a hook that traces tasks.
type traceHook struct {
	t Tracer
}

// Func calls the tracer interfaces when the hook is triggered. Hooks fired at
// other positions are ignored. If the domain can tell time, the task is
// stamped with the domain time first.
func (h *traceHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case HookPosTaskStart:
		task := ctx.Item.(Task)
		task.StartTime = domainTime(ctx.Domain)
		h.t.StartTask(task)
	case HookPosTaskStep:
		task := ctx.Item.(Task)
		task.Steps[0].Time = domainTime(ctx.Domain)
		h.t.StepTask(task)
	case HookPosTaskEnd:
		task := ctx.Item.(Task)
		task.EndTime = domainTime(ctx.Domain)
		h.t.EndTask(task)
	}
}

func domainTime(domain hooking.Hookable) float64 {
	if tt, ok := domain.(hooking.TimeTeller); ok {
		return tt.Now()
	}

	return 0
}

// now returns the time of timeTeller, or stamped if there is no timeTeller.
func now(timeTeller hooking.TimeTeller, stamped float64) float64 {
	if timeTeller == nil {
		return stamped
	}

	return timeTeller.Now()
}
